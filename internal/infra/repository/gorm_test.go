package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/infra/repository"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/testutil"
)

var base = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func TestSaveRejectsSecondActiveOrderForWasher(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	cl := fx.Client()
	v := fx.Vehicle(cl.ID)
	w := fx.Washer(base)

	fx.Order(cl.ID, v.ID, "assigned", &w.ID, base)
	second := fx.Order(cl.ID, v.ID, "pending", nil, base.Add(time.Minute))

	second.WasherID = &w.ID
	second.Status = "assigned"
	err := repo.UpdateOrder(ctx, second)
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "washer_busy"))
	assert.True(t, httperr.IsKind(err, httperr.KindValidation))

	var stored models.WashOrder
	fx.Reload(&stored, second.ID)
	assert.Equal(t, "pending", stored.Status)
	assert.Nil(t, stored.WasherID)
}

func TestSaveAllowsRewritingTheActiveOrderItself(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repository.NewGormRepository(db)

	cl := fx.Client()
	v := fx.Vehicle(cl.ID)
	w := fx.Washer(base)
	o := fx.Order(cl.ID, v.ID, "assigned", &w.ID, base)

	o.Status = "in_progress"
	require.NoError(t, repo.UpdateOrder(context.Background(), o))
}

func TestPartialIndexBacksTheInvariant(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	cl := fx.Client()
	v := fx.Vehicle(cl.ID)
	w := fx.Washer(base)
	fx.Order(cl.ID, v.ID, "in_progress", &w.ID, base)
	other := fx.Order(cl.ID, v.ID, "pending", nil, base)

	// raw SQL skips model hooks; the index must still refuse the write
	err := db.Exec(
		"UPDATE wash_orders SET washer_id = ?, status = 'assigned' WHERE id = ?",
		w.ID, other.ID,
	).Error
	assert.Error(t, err)
}

func TestFindFreeWasherReturnsNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewGormRepository(db)

	_, err := repo.FindFreeWasher(context.Background(), domain.PolicySeniority)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	cl := fx.Client()
	boom := httperr.ErrConflict("boom", "boom")

	err := repo.Transaction(ctx, func(tx domain.Repository) error {
		cl.FirstName = "Changed"
		require.NoError(t, tx.UpdateClient(ctx, cl))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetClient(ctx, cl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Client", got.FirstName)
}

func TestNestedTransactionRollsBackOnlyTheSavepoint(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	a := fx.Client()
	b := fx.Client()

	err := repo.Transaction(ctx, func(tx domain.Repository) error {
		a.FirstName = "Kept"
		if err := tx.UpdateClient(ctx, a); err != nil {
			return err
		}

		inner := tx.Transaction(ctx, func(tx2 domain.Repository) error {
			b.FirstName = "Dropped"
			if err := tx2.UpdateClient(ctx, b); err != nil {
				return err
			}
			return httperr.ErrConflict("inner", "inner")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	gotA, _ := repo.GetClient(ctx, a.ID)
	gotB, _ := repo.GetClient(ctx, b.ID)
	assert.Equal(t, "Kept", gotA.FirstName)
	assert.Equal(t, "Client", gotB.FirstName)
}

func TestCountBookingsIgnoresCancelled(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	cl := fx.Client()
	v := fx.Vehicle(cl.ID)
	s := fx.Slot("2026-03-03", "09:00", 3)

	for i, cancelled := range []bool{false, false, true} {
		ap := &models.Appointment{
			ClientID:    cl.ID,
			VehicleID:   v.ID,
			TimeSlotID:  s.ID,
			WashType:    "basic",
			IsCancelled: cancelled,
		}
		require.NoError(t, repo.CreateAppointment(ctx, ap), i)
	}

	counts, err := repo.CountBookings(ctx, []uint{s.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, counts[s.ID])
}

func TestDuplicatePlateIsConflict(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	cl := fx.Client()
	v := fx.Vehicle(cl.ID)

	err := repo.CreateVehicle(ctx, &models.Vehicle{
		ClientID:     cl.ID,
		Make:         "Mazda",
		Model:        "Demio",
		LicensePlate: v.LicensePlate,
		VehicleType:  "sedan",
	})
	assert.True(t, httperr.IsBusiness(err, "plate_taken"))
}

func TestDeleteClientRemovesOwnedRecords(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	repo := repository.NewGormRepository(db)
	ctx := context.Background()

	cl := fx.Client()
	v := fx.Vehicle(cl.ID)
	fx.Order(cl.ID, v.ID, "pending", nil, base)

	require.NoError(t, repo.DeleteClient(ctx, cl.ID))

	var orders int64
	require.NoError(t, db.Model(&models.WashOrder{}).Count(&orders).Error)
	assert.Zero(t, orders)

	assert.ErrorIs(t, repo.DeleteClient(ctx, cl.ID), domain.ErrNotFound)
}
