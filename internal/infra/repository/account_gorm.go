package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/models"
)

// --------------------------------------------------
// Clients
// --------------------------------------------------

func (r *GormRepository) CreateClient(ctx context.Context, c *models.Client) error {
	return unique(
		r.db.WithContext(ctx).Create(c).Error,
		"email_taken", "A client with this email already exists.",
	)
}

func (r *GormRepository) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *GormRepository) FindClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *GormRepository) ListClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *GormRepository) UpdateClient(ctx context.Context, c *models.Client) error {
	return unique(
		r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error,
		"email_taken", "A client with this email already exists.",
	)
}

// DeleteClient removes the client and everything the client owns.
func (r *GormRepository) DeleteClient(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			model any
			where string
		}{
			{&models.Review{}, "client_id = ?"},
			{&models.Appointment{}, "client_id = ?"},
			{&models.WashOrder{}, "client_id = ?"},
			{&models.Vehicle{}, "client_id = ?"},
			{&models.PasswordResetToken{}, "client_id = ?"},
		}
		for _, s := range steps {
			if err := tx.Where(s.where, id).Delete(s.model).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&models.Client{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// --------------------------------------------------
// Washers
// --------------------------------------------------

func (r *GormRepository) CreateWasher(ctx context.Context, w *models.Washer) error {
	return unique(
		r.db.WithContext(ctx).Create(w).Error,
		"washer_exists", "A washer with this email or phone number already exists.",
	)
}

func (r *GormRepository) GetWasher(ctx context.Context, id uint) (*models.Washer, error) {
	var w models.Washer
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (r *GormRepository) FindWasherByEmail(ctx context.Context, email string) (*models.Washer, error) {
	var w models.Washer
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&w).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (r *GormRepository) WasherPhoneTaken(ctx context.Context, phone string, exceptID uint) (bool, error) {
	return exists(r.db.WithContext(ctx).
		Model(&models.Washer{}).
		Where("phone = ? AND id <> ?", phone, exceptID))
}

func (r *GormRepository) ListWashers(ctx context.Context) ([]models.Washer, error) {
	var washers []models.Washer
	if err := r.db.WithContext(ctx).Order("date_hired ASC, id ASC").Find(&washers).Error; err != nil {
		return nil, err
	}
	return washers, nil
}

func (r *GormRepository) UpdateWasher(ctx context.Context, w *models.Washer) error {
	return unique(
		r.db.WithContext(ctx).Omit(clause.Associations).Save(w).Error,
		"washer_exists", "A washer with this email or phone number already exists.",
	)
}

// DeleteWasher detaches the washer from historical orders and reviews, then
// deletes it. Active orders must have been released by the caller.
func (r *GormRepository) DeleteWasher(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.WashOrder{}).
			Where("washer_id = ?", id).
			Update("washer_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Review{}).
			Where("washer_id = ?", id).
			Update("washer_id", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Washer{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *GormRepository) FindFreeWasher(
	ctx context.Context,
	policy domain.SelectionPolicy,
) (*models.Washer, error) {

	busy := r.db.WithContext(ctx).
		Model(&models.WashOrder{}).
		Select("washer_id").
		Where("washer_id IS NOT NULL AND status IN ?", activeStatuses)

	order := "date_hired ASC, id ASC"
	if policy == domain.PolicyRegistration {
		order = "id ASC"
	}

	var w models.Washer
	if err := r.db.WithContext(ctx).
		Where("is_available = ? AND status = ?", true, "active").
		Where("id NOT IN (?)", busy).
		Order(order).
		First(&w).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (r *GormRepository) WasherBusy(ctx context.Context, washerID uint, exceptOrderID uint) (bool, error) {
	return exists(r.db.WithContext(ctx).
		Model(&models.WashOrder{}).
		Where("washer_id = ? AND status IN ? AND id <> ?", washerID, activeStatuses, exceptOrderID))
}

// --------------------------------------------------
// Admins
// --------------------------------------------------

func (r *GormRepository) CreateAdmin(ctx context.Context, a *models.Admin) error {
	return unique(
		r.db.WithContext(ctx).Create(a).Error,
		"admin_exists", "An admin with this username or email already exists.",
	)
}

func (r *GormRepository) FindAdminByLogin(ctx context.Context, login string) (*models.Admin, error) {
	var a models.Admin
	if err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// --------------------------------------------------
// Password reset tokens
// --------------------------------------------------

func (r *GormRepository) CreateResetToken(ctx context.Context, t *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *GormRepository) FindResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *GormRepository) InvalidateResetTokens(ctx context.Context, clientID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("client_id = ? AND is_used = ?", clientID, false).
		Update("is_used", true).Error
}

func (r *GormRepository) UpdateResetToken(ctx context.Context, t *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(t).Error
}
