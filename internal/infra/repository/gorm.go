package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/httperr"
)

// GormRepository implements domain.Repository on gorm. The same type serves
// the root connection and every transaction derived from it.
type GormRepository struct {
	db *gorm.DB
}

var _ domain.Repository = (*GormRepository)(nil)

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

// --------------------------------------------------
// Error translation
// --------------------------------------------------

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// unique converts a uniqueness violation into a conflict with code/message.
func unique(err error, code, message string) error {
	if isDuplicate(err) {
		return httperr.ErrConflict(code, message)
	}
	return err
}

func exists(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
