package order

import (
	"time"

	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
)

// New builds a pending order priced from prices.
func New(clientID, vehicleID uint, wt WashType, prices PriceList, notes string, now time.Time) *models.WashOrder {
	return &models.WashOrder{
		ClientID:  clientID,
		VehicleID: vehicleID,
		WashType:  string(wt),
		Status:    string(StatusPending),
		Price:     prices.Price(wt),
		Notes:     notes,
		CreatedAt: now,
	}
}

// ===============================
// Domain Actions
// ===============================

// Assign hands the order to washerID. An already assigned order is
// reassigned and its previous washer returned so the caller can release it.
func Assign(o *models.WashOrder, washerID uint, now time.Time) (previous *uint, err error) {
	if err := CanAssign(Status(o.Status)); err != nil {
		return nil, err
	}

	if Status(o.Status) == StatusAssigned && o.WasherID != nil && *o.WasherID != washerID {
		prev := *o.WasherID
		previous = &prev
	}

	id := washerID
	o.WasherID = &id
	o.Washer = nil
	o.Status = string(StatusAssigned)
	o.AssignedAt = &now
	return previous, nil
}

func Start(o *models.WashOrder, washerID uint, now time.Time) error {
	if !heldBy(o, washerID) {
		return httperr.ErrNotFound("order_not_found", "Order not found or not assigned to you.")
	}
	if err := CanStart(Status(o.Status)); err != nil {
		return err
	}

	o.Status = string(StatusInProgress)
	o.StartedAt = &now
	return nil
}

func Complete(o *models.WashOrder, washerID uint, now time.Time) error {
	if !heldBy(o, washerID) {
		return httperr.ErrNotFound("order_not_found", "Order not found or not assigned to you.")
	}
	if err := CanComplete(Status(o.Status)); err != nil {
		return err
	}

	o.Status = string(StatusCompleted)
	o.CompletedAt = &now
	return nil
}

// Cancel moves the order to cancelled. When the order was holding a washer
// that washer's id is returned.
func Cancel(o *models.WashOrder, reason string, now time.Time) (freed *uint, err error) {
	if err := CanCancel(Status(o.Status)); err != nil {
		return nil, err
	}

	if Status(o.Status).IsActive() && o.WasherID != nil {
		id := *o.WasherID
		freed = &id
	}

	o.Status = string(StatusCancelled)
	o.CancelledAt = &now
	o.CancellationReason = reason
	return freed, nil
}

// Unassign returns an active order to the queue, e.g. when its washer leaves.
func Unassign(o *models.WashOrder) {
	o.WasherID = nil
	o.Washer = nil
	o.AssignedAt = nil
	o.StartedAt = nil
	o.Status = string(StatusPending)
}

func heldBy(o *models.WashOrder, washerID uint) bool {
	return o.WasherID != nil && *o.WasherID == washerID
}
