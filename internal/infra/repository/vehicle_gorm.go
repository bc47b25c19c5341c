package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/models"
)

func (r *GormRepository) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	return unique(
		r.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error,
		"plate_taken", "A vehicle with this license plate already exists.",
	)
}

func (r *GormRepository) GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (r *GormRepository) ListVehiclesByClient(ctx context.Context, clientID uint) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *GormRepository) LicensePlateTaken(ctx context.Context, plate string) (bool, error) {
	return exists(r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("license_plate = ?", plate))
}

func (r *GormRepository) DeleteVehicle(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Vehicle{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
