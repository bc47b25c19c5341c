// Package vehicle manages the vehicles clients book washes for.
package vehicle

import (
	"context"
	"errors"
	"strings"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/order"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/validators"
)

var (
	errVehicleNotFound = httperr.ErrNotFound("vehicle_not_found", "Vehicle not found.")
	errClientOnly      = httperr.ErrForbidden("forbidden", "Only clients can manage vehicles.")
)

type Input struct {
	Make         string
	Model        string
	Year         *int
	Color        string
	LicensePlate string
	VehicleType  string
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Make) == "" || strings.TrimSpace(in.Model) == "" {
		return httperr.ErrValidation("vehicle_required", "Make and model are required.")
	}
	if validators.NormalizePlate(in.LicensePlate) == "" {
		return httperr.ErrValidation("plate_required", "License plate is required.")
	}
	if in.Year != nil && (*in.Year < 1900 || *in.Year > 2100) {
		return httperr.ErrValidation("invalid_year", "Year must be between 1900 and 2100.")
	}
	for _, t := range models.VehicleTypes {
		if t == in.VehicleType {
			return nil
		}
	}
	return httperr.ErrValidation("invalid_vehicle_type", "Unknown vehicle type.")
}

type Service struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewService(repo domain.Repository, audit *audit.Dispatcher) *Service {
	return &Service{repo: repo, audit: audit}
}

// ======================================================
// ADD
// ======================================================

func (s *Service) Add(ctx context.Context, p auth.Principal, in Input) (*models.Vehicle, error) {
	if !p.IsClient() {
		return nil, errClientOnly
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	plate := validators.NormalizePlate(in.LicensePlate)
	taken, err := s.repo.LicensePlateTaken(ctx, plate)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, httperr.ErrConflict("plate_taken", "A vehicle with this license plate is already registered.")
	}

	v := &models.Vehicle{
		ClientID:     p.ID,
		Make:         strings.TrimSpace(in.Make),
		Model:        strings.TrimSpace(in.Model),
		Year:         in.Year,
		Color:        strings.TrimSpace(in.Color),
		LicensePlate: plate,
		VehicleType:  in.VehicleType,
	}
	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}

	s.audit.Dispatch(audit.For(p, "vehicle_added", "vehicle", v.ID, map[string]any{"plate": plate}))
	return v, nil
}

// ======================================================
// LIST
// ======================================================

func (s *Service) List(ctx context.Context, p auth.Principal) ([]models.Vehicle, error) {
	if !p.IsClient() {
		return nil, errClientOnly
	}
	return s.repo.ListVehiclesByClient(ctx, p.ID)
}

// ======================================================
// DELETE
// ======================================================

// Delete removes one of the client's vehicles. Vehicles with unfinished
// orders are kept.
func (s *Service) Delete(ctx context.Context, p auth.Principal, vehicleID uint) error {
	if !p.IsClient() {
		return errClientOnly
	}

	err := s.repo.Transaction(ctx, func(tx domain.Repository) error {
		v, err := tx.GetVehicle(ctx, vehicleID)
		if errors.Is(err, domain.ErrNotFound) {
			return errVehicleNotFound
		}
		if err != nil {
			return err
		}
		if v.ClientID != p.ID {
			return errVehicleNotFound
		}

		open, err := tx.ListOrders(ctx, domain.OrderFilter{
			VehicleID: &v.ID,
			Statuses: order.Strings([]order.Status{
				order.StatusPending, order.StatusScheduled,
				order.StatusAssigned, order.StatusInProgress,
			}),
		})
		if err != nil {
			return err
		}
		if len(open) > 0 {
			return httperr.ErrConflict("vehicle_in_use", "This vehicle has unfinished wash orders.")
		}

		return tx.DeleteVehicle(ctx, v.ID)
	})
	if err != nil {
		return err
	}

	s.audit.Dispatch(audit.For(p, "vehicle_deleted", "vehicle", vehicleID, nil))
	return nil
}
