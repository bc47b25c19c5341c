// Package testutil opens throwaway sqlite databases with the production
// schema for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	dbpkg "github.com/Horridhunk/carmannagement/internal/db"
	"github.com/Horridhunk/carmannagement/internal/models"
)

// NewDB returns a migrated in-memory database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, time.Now().UnixNano())

	db, err := dbpkg.Open(dsn, nil)
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Fixtures creates rows directly, bypassing use-case rules.
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
	n  int
}

func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) seq() int {
	f.n++
	return f.n
}

func (f *Fixtures) Client() *models.Client {
	f.t.Helper()
	n := f.seq()
	c := &models.Client{
		Email:        fmt.Sprintf("client%d@example.com", n),
		PasswordHash: "x",
		FirstName:    "Client",
		LastName:     fmt.Sprintf("%d", n),
	}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

func (f *Fixtures) Vehicle(clientID uint) *models.Vehicle {
	f.t.Helper()
	n := f.seq()
	v := &models.Vehicle{
		ClientID:     clientID,
		Make:         "Toyota",
		Model:        "Corolla",
		LicensePlate: fmt.Sprintf("KAA %03dA", n),
		VehicleType:  "sedan",
	}
	require.NoError(f.t, f.db.Create(v).Error)
	return v
}

// Washer creates an available, active washer hired at hired.
func (f *Fixtures) Washer(hired time.Time) *models.Washer {
	f.t.Helper()
	n := f.seq()
	w := &models.Washer{
		Email:        fmt.Sprintf("washer%d@example.com", n),
		PasswordHash: "x",
		FirstName:    "Washer",
		LastName:     fmt.Sprintf("%d", n),
		Phone:        fmt.Sprintf("07%08d", n),
		IsAvailable:  true,
		Status:       "active",
		DateHired:    hired,
	}
	require.NoError(f.t, f.db.Create(w).Error)
	return w
}

// Order creates an order in status, optionally held by washerID.
func (f *Fixtures) Order(clientID, vehicleID uint, status string, washerID *uint, created time.Time) *models.WashOrder {
	f.t.Helper()
	o := &models.WashOrder{
		ClientID:  clientID,
		VehicleID: vehicleID,
		WasherID:  washerID,
		WashType:  "basic",
		Status:    status,
		Price:     15,
		CreatedAt: created,
	}
	require.NoError(f.t, f.db.Create(o).Error)
	return o
}

func (f *Fixtures) Slot(date, start string, capacity int) *models.TimeSlot {
	f.t.Helper()
	s := &models.TimeSlot{
		Date:        date,
		StartTime:   start,
		EndTime:     start,
		MaxCapacity: capacity,
		IsActive:    true,
	}
	require.NoError(f.t, f.db.Create(s).Error)
	return s
}

func (f *Fixtures) Reload(dest any, id uint) {
	f.t.Helper()
	require.NoError(f.t, f.db.First(dest, id).Error)
}

func (f *Fixtures) DB() *gorm.DB {
	return f.db
}
