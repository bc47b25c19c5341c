package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Horridhunk/carmannagement/internal/config"
	"github.com/Horridhunk/carmannagement/internal/models"
)

const sqlitePrefix = "sqlite://"

// activeWasherIndex backs the one-active-order-per-washer rule at the
// storage level. Both postgres and sqlite accept partial indexes.
const activeWasherIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS ux_wash_orders_active_washer
ON wash_orders (washer_id)
WHERE status IN ('assigned', 'in_progress')`

func NewDB(cfg *config.Config, log *logrus.Entry) *gorm.DB {
	db, err := Open(cfg.DBUrl, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}

	if err := Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate")
	}

	return db
}

// gormWriter sends gorm's warnings, errors and slow queries to logrus.
type gormWriter struct {
	log *logrus.Entry
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Warnf(format, args...)
}

// NewLogger adapts log for gorm. Missing rows are an expected outcome of
// lookups such as the free washer query and are not logged. A nil entry
// silences gorm.
func NewLogger(log *logrus.Entry) logger.Interface {
	if log == nil {
		return logger.Discard
	}
	return logger.New(gormWriter{log: log.WithField("source", "gorm")}, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Open picks the dialect from the DSN: "sqlite://path" and "file:" DSNs use
// sqlite, anything else is handed to postgres.
func Open(dsn string, log *logrus.Entry) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         NewLogger(log),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, sqlitePrefix):
		dialector = sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix))
	case strings.HasPrefix(dsn, "file:"):
		dialector = sqlite.Open(dsn)
	default:
		gcfg.PrepareStmt = true
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	if IsSQLite(db) {
		// sqlite serialises writers; a single connection keeps in-memory
		// databases shared and avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Client{},
		&models.Washer{},
		&models.Admin{},
		&models.Vehicle{},
		&models.WashOrder{},
		&models.TimeSlot{},
		&models.Appointment{},
		&models.Review{},
		&models.PasswordResetToken{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(activeWasherIndex).Error; err != nil {
		return fmt.Errorf("create active washer index: %w", err)
	}

	return nil
}

func IsSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == "sqlite"
}
