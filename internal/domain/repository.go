package domain

import (
	"context"
	"errors"
	"time"

	"github.com/Horridhunk/carmannagement/internal/models"
)

var ErrNotFound = errors.New("record not found")

// SelectionPolicy decides which free washer is picked first.
type SelectionPolicy string

const (
	// PolicySeniority picks the earliest hire date, then the lowest id.
	PolicySeniority SelectionPolicy = "seniority"
	// PolicyRegistration picks the lowest id.
	PolicyRegistration SelectionPolicy = "registration"
)

func ParsePolicy(s string) (SelectionPolicy, error) {
	switch SelectionPolicy(s) {
	case PolicySeniority, PolicyRegistration:
		return SelectionPolicy(s), nil
	case "":
		return PolicySeniority, nil
	}
	return "", errors.New("unknown selection policy: " + s)
}

type OrderFilter struct {
	ClientID  *uint
	VehicleID *uint
	WasherID  *uint
	Statuses  []string
	Since     *time.Time
}

type AppointmentFilter struct {
	ClientID    *uint
	FromDate    string
	IncludeVoid bool
}

type ReviewFilter struct {
	ClientID *uint
	WasherID *uint
}

type AuditFilter struct {
	Action   string
	Entity   string
	EntityID *uint
	Limit    int
	Offset   int
}

// Repository is the entity store. Implementations must make every method
// see the writes of the transaction they were obtained from.
type Repository interface {
	// Transaction runs fn against a repository bound to a single transaction.
	// Nested calls use savepoints.
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// -------- Clients --------
	CreateClient(ctx context.Context, c *models.Client) error
	GetClient(ctx context.Context, id uint) (*models.Client, error)
	FindClientByEmail(ctx context.Context, email string) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	UpdateClient(ctx context.Context, c *models.Client) error
	DeleteClient(ctx context.Context, id uint) error

	// -------- Washers --------
	CreateWasher(ctx context.Context, w *models.Washer) error
	GetWasher(ctx context.Context, id uint) (*models.Washer, error)
	FindWasherByEmail(ctx context.Context, email string) (*models.Washer, error)
	WasherPhoneTaken(ctx context.Context, phone string, exceptID uint) (bool, error)
	ListWashers(ctx context.Context) ([]models.Washer, error)
	UpdateWasher(ctx context.Context, w *models.Washer) error
	DeleteWasher(ctx context.Context, id uint) error
	// FindFreeWasher returns the first truly available washer under policy,
	// or ErrNotFound.
	FindFreeWasher(ctx context.Context, policy SelectionPolicy) (*models.Washer, error)
	WasherBusy(ctx context.Context, washerID uint, exceptOrderID uint) (bool, error)

	// -------- Admins --------
	CreateAdmin(ctx context.Context, a *models.Admin) error
	FindAdminByLogin(ctx context.Context, login string) (*models.Admin, error)

	// -------- Vehicles --------
	CreateVehicle(ctx context.Context, v *models.Vehicle) error
	GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error)
	ListVehiclesByClient(ctx context.Context, clientID uint) ([]models.Vehicle, error)
	LicensePlateTaken(ctx context.Context, plate string) (bool, error)
	DeleteVehicle(ctx context.Context, id uint) error

	// -------- Wash orders --------
	CreateOrder(ctx context.Context, o *models.WashOrder) error
	GetOrder(ctx context.Context, id uint) (*models.WashOrder, error)
	// LockOrder reads the order with a row lock where the store supports it.
	LockOrder(ctx context.Context, id uint) (*models.WashOrder, error)
	UpdateOrder(ctx context.Context, o *models.WashOrder) error
	// ListPendingOrders returns pending and scheduled orders, oldest first.
	ListPendingOrders(ctx context.Context) ([]models.WashOrder, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.WashOrder, error)

	// -------- Time slots --------
	CreateTimeSlot(ctx context.Context, s *models.TimeSlot) error
	GetTimeSlot(ctx context.Context, id uint) (*models.TimeSlot, error)
	LockTimeSlot(ctx context.Context, id uint) (*models.TimeSlot, error)
	TimeSlotExists(ctx context.Context, date, start string) (bool, error)
	ListTimeSlotsByDate(ctx context.Context, date string) ([]models.TimeSlot, error)
	// CountBookings returns the non-cancelled appointment count per slot.
	CountBookings(ctx context.Context, slotIDs []uint) (map[uint]int, error)

	// -------- Appointments --------
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	FindAppointmentByOrder(ctx context.Context, orderID uint) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error
	ListAppointments(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error)

	// -------- Reviews --------
	CreateReview(ctx context.Context, r *models.Review) error
	ReviewExists(ctx context.Context, orderID uint) (bool, error)
	ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, error)

	// -------- Password reset tokens --------
	CreateResetToken(ctx context.Context, t *models.PasswordResetToken) error
	FindResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	InvalidateResetTokens(ctx context.Context, clientID uint) error
	UpdateResetToken(ctx context.Context, t *models.PasswordResetToken) error

	// -------- Audit --------
	ListAuditLogs(ctx context.Context, f AuditFilter) ([]models.AuditLog, int64, error)
}
