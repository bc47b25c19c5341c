package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/models"
)

// --------------------------------------------------
// Time slots
// --------------------------------------------------

func (r *GormRepository) CreateTimeSlot(ctx context.Context, s *models.TimeSlot) error {
	return unique(
		r.db.WithContext(ctx).Create(s).Error,
		"slot_exists", "A time slot already starts at this date and time.",
	)
}

func (r *GormRepository) GetTimeSlot(ctx context.Context, id uint) (*models.TimeSlot, error) {
	var s models.TimeSlot
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *GormRepository) LockTimeSlot(ctx context.Context, id uint) (*models.TimeSlot, error) {
	var s models.TimeSlot
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *GormRepository) TimeSlotExists(ctx context.Context, date, start string) (bool, error) {
	return exists(r.db.WithContext(ctx).
		Model(&models.TimeSlot{}).
		Where("date = ? AND start_time = ?", date, start))
}

func (r *GormRepository) ListTimeSlotsByDate(ctx context.Context, date string) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	if err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *GormRepository) CountBookings(ctx context.Context, slotIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(slotIDs))
	if len(slotIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TimeSlotID uint
		Bookings   int
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("time_slot_id, COUNT(*) AS bookings").
		Where("time_slot_id IN ? AND is_cancelled = ?", slotIDs, false).
		Group("time_slot_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.TimeSlotID] = row.Bookings
	}
	return counts, nil
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (r *GormRepository) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error
}

func (r *GormRepository) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("TimeSlot").
		Preload("Vehicle").
		Preload("WashOrder").
		First(&ap, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

func (r *GormRepository) FindAppointmentByOrder(ctx context.Context, orderID uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("TimeSlot").
		Where("wash_order_id = ?", orderID).
		First(&ap).Error; err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

func (r *GormRepository) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(ap).Error
}

func (r *GormRepository) ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]models.Appointment, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN time_slots ON time_slots.id = appointments.time_slot_id").
		Preload("TimeSlot").
		Preload("Vehicle").
		Preload("WashOrder").
		Preload("Client")

	if f.ClientID != nil {
		q = q.Where("appointments.client_id = ?", *f.ClientID)
	}
	if f.FromDate != "" {
		q = q.Where("time_slots.date >= ?", f.FromDate)
	}
	if !f.IncludeVoid {
		q = q.Where("appointments.is_cancelled = ?", false)
	}

	var apps []models.Appointment
	if err := q.
		Order("time_slots.date ASC, time_slots.start_time ASC, appointments.id ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Reviews
// --------------------------------------------------

func (r *GormRepository) CreateReview(ctx context.Context, rv *models.Review) error {
	return unique(
		r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error,
		"already_reviewed", "This order has already been reviewed.",
	)
}

func (r *GormRepository) ReviewExists(ctx context.Context, orderID uint) (bool, error) {
	return exists(r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("wash_order_id = ?", orderID))
}

func (r *GormRepository) ListReviews(ctx context.Context, f domain.ReviewFilter) ([]models.Review, error) {
	q := r.db.WithContext(ctx).Preload("WashOrder").Preload("Washer")
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.WasherID != nil {
		q = q.Where("washer_id = ?", *f.WasherID)
	}

	var reviews []models.Review
	if err := q.Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// --------------------------------------------------
// Audit
// --------------------------------------------------

func (r *GormRepository) ListAuditLogs(ctx context.Context, f domain.AuditFilter) ([]models.AuditLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.EntityID != nil {
		q = q.Where("entity_id = ?", *f.EntityID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(f.Offset).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
