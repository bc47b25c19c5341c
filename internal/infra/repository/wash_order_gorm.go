package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
)

var (
	activeStatuses  = order.Strings(order.ActiveStatuses)
	waitingStatuses = order.Strings(order.WaitingStatuses)
)

var errWasherBusy = httperr.ErrValidation(
	"washer_busy",
	"This washer already has an active order. A washer can only handle one order at a time.",
)

func (r *GormRepository) CreateOrder(ctx context.Context, o *models.WashOrder) error {
	return unique(
		r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error,
		"washer_busy", errWasherBusy.Error(),
	)
}

func (r *GormRepository) GetOrder(ctx context.Context, id uint) (*models.WashOrder, error) {
	var o models.WashOrder
	if err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Washer").
		Preload("Client").
		First(&o, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *GormRepository) LockOrder(ctx context.Context, id uint) (*models.WashOrder, error) {
	var o models.WashOrder
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *GormRepository) UpdateOrder(ctx context.Context, o *models.WashOrder) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error
	if isDuplicate(err) {
		return errWasherBusy
	}
	return err
}

func (r *GormRepository) ListPendingOrders(ctx context.Context) ([]models.WashOrder, error) {
	var orders []models.WashOrder
	if err := r.db.WithContext(ctx).
		Where("status IN ?", waitingStatuses).
		Order("created_at ASC, id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepository) ListOrders(ctx context.Context, f domain.OrderFilter) ([]models.WashOrder, error) {
	q := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Washer").
		Preload("Client")

	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.VehicleID != nil {
		q = q.Where("vehicle_id = ?", *f.VehicleID)
	}
	if f.WasherID != nil {
		q = q.Where("washer_id = ?", *f.WasherID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.Since != nil {
		q = q.Where("created_at >= ?", *f.Since)
	}

	var orders []models.WashOrder
	if err := q.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
