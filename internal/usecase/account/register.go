package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	accountdomain "github.com/Horridhunk/carmannagement/internal/domain/account"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/timezone"
	"github.com/Horridhunk/carmannagement/internal/validators"
)

var (
	errInvalidEmail = httperr.ErrValidation("invalid_email", "Enter a valid email address.")
	errNameRequired = httperr.ErrValidation("name_required", "First and last name are required.")
	errEmailTaken   = httperr.ErrConflict("email_taken", "An account with this email already exists.")
	errInvalidPhone = httperr.ErrValidation(
		"invalid_phone",
		"Phone number must be 10 digits and start with 01 or 07.",
	)
)

// ======================================================
// CLIENT SIGNUP
// ======================================================

type RegisterClientInput struct {
	Email           string
	FirstName       string
	LastName        string
	Phone           string
	Password        string
	ConfirmPassword string
}

type RegisterClient struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewRegisterClient(repo domain.Repository, audit *audit.Dispatcher) *RegisterClient {
	return &RegisterClient{repo: repo, audit: audit}
}

func (uc *RegisterClient) Execute(ctx context.Context, in RegisterClientInput) (*models.Client, error) {
	email := validators.NormalizeEmail(in.Email)
	if !validators.IsEmail(email) {
		return nil, errInvalidEmail
	}
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, errNameRequired
	}
	if err := accountdomain.ValidateNewPassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}

	if _, err := uc.repo.FindClientByEmail(ctx, email); err == nil {
		return nil, errEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	c := &models.Client{
		Email:        email,
		FirstName:    first,
		LastName:     last,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
	}
	if err := uc.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.For(auth.Principal{Role: auth.RoleClient, ID: c.ID}, "client_registered", "client", c.ID, nil))
	return c, nil
}

// ======================================================
// WASHER SIGNUP / ADMIN ADD
// ======================================================

type WasherInput struct {
	Email           string
	FirstName       string
	LastName        string
	Phone           string
	Password        string
	ConfirmPassword string
	HourlyRate      *float64
	// Status and Unavailable are honoured for admins only.
	Status      string
	Unavailable bool
}

// CreateWasher registers a washer. Without an admin principal it is a
// self-signup: the washer starts active and available.
type CreateWasher struct {
	repo  domain.Repository
	clock timezone.Clock
	audit *audit.Dispatcher
}

func NewCreateWasher(repo domain.Repository, clock timezone.Clock, audit *audit.Dispatcher) *CreateWasher {
	if clock == nil {
		clock = timezone.System
	}
	return &CreateWasher{repo: repo, clock: clock, audit: audit}
}

func (uc *CreateWasher) Execute(ctx context.Context, p auth.Principal, in WasherInput) (*models.Washer, error) {
	email := validators.NormalizeEmail(in.Email)
	if !validators.IsEmail(email) {
		return nil, errInvalidEmail
	}
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, errNameRequired
	}
	phone, ok := validators.NormalizePhone(in.Phone)
	if !ok {
		return nil, errInvalidPhone
	}
	if err := accountdomain.ValidateNewPassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	if in.HourlyRate != nil && *in.HourlyRate < 0 {
		return nil, httperr.ErrValidation("invalid_hourly_rate", "Hourly rate cannot be negative.")
	}

	status := accountdomain.WasherActive
	available := true
	if p.IsAdmin() {
		if in.Status != "" {
			if err := accountdomain.ValidateWasherStatus(in.Status); err != nil {
				return nil, err
			}
			status = in.Status
		}
		available = !in.Unavailable
	}

	if _, err := uc.repo.FindWasherByEmail(ctx, email); err == nil {
		return nil, errEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	taken, err := uc.repo.WasherPhoneTaken(ctx, phone, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, httperr.ErrConflict("phone_taken", "A staff member with this phone number already exists.")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	w := &models.Washer{
		Email:        email,
		FirstName:    first,
		LastName:     last,
		Phone:        phone,
		HourlyRate:   in.HourlyRate,
		PasswordHash: hash,
		IsAvailable:  available,
		Status:       status,
		DateHired:    uc.clock().UTC().Truncate(time.Second),
	}
	if err := uc.repo.CreateWasher(ctx, w); err != nil {
		return nil, err
	}

	actor := p
	if !p.IsAdmin() {
		actor = auth.Principal{Role: auth.RoleWasher, ID: w.ID}
	}
	uc.audit.Dispatch(audit.For(actor, "washer_created", "washer", w.ID, nil))
	return w, nil
}
