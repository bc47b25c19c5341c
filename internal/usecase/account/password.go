package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	accountdomain "github.com/Horridhunk/carmannagement/internal/domain/account"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/metrics"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/timezone"
	"github.com/Horridhunk/carmannagement/internal/validators"
)

// ResetSender delivers reset links to clients.
type ResetSender interface {
	SendPasswordReset(ctx context.Context, c *models.Client, link string) error
}

// ======================================================
// FORGOT PASSWORD
// ======================================================

type RequestPasswordReset struct {
	repo    domain.Repository
	sender  ResetSender
	baseURL string
	clock   timezone.Clock
	log     *logrus.Entry
	metrics *metrics.Metrics
}

func NewRequestPasswordReset(
	repo domain.Repository,
	sender ResetSender,
	baseURL string,
	clock timezone.Clock,
	log *logrus.Entry,
	m *metrics.Metrics,
) *RequestPasswordReset {
	if clock == nil {
		clock = timezone.System
	}
	return &RequestPasswordReset{
		repo:    repo,
		sender:  sender,
		baseURL: baseURL,
		clock:   clock,
		log:     log,
		metrics: m,
	}
}

// Execute issues a fresh reset token for the client with email and returns
// the reset link. Unknown addresses succeed with an empty link so callers
// cannot probe for accounts.
func (uc *RequestPasswordReset) Execute(ctx context.Context, email string) (string, error) {
	c, err := uc.repo.FindClientByEmail(ctx, validators.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	t := &models.PasswordResetToken{
		ClientID:  c.ID,
		Token:     uuid.NewString(),
		CreatedAt: uc.clock().UTC(),
	}
	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.InvalidateResetTokens(ctx, c.ID); err != nil {
			return err
		}
		return tx.CreateResetToken(ctx, t)
	})
	if err != nil {
		return "", err
	}

	link := uc.baseURL + "/reset-password/" + t.Token
	if uc.sender != nil {
		if err := uc.sender.SendPasswordReset(ctx, c, link); err != nil {
			uc.metrics.ObserveNotifyFailure("password_reset")
			uc.log.WithError(err).WithField("client_id", c.ID).Warn("password reset notification failed")
		}
	}
	return link, nil
}

// ======================================================
// RESET PASSWORD
// ======================================================

type ResetPassword struct {
	repo  domain.Repository
	ttl   time.Duration
	clock timezone.Clock
	audit *audit.Dispatcher
}

func NewResetPassword(repo domain.Repository, ttl time.Duration, clock timezone.Clock, audit *audit.Dispatcher) *ResetPassword {
	if clock == nil {
		clock = timezone.System
	}
	return &ResetPassword{repo: repo, ttl: ttl, clock: clock, audit: audit}
}

// Execute sets a new password and burns the token in one transaction.
func (uc *ResetPassword) Execute(ctx context.Context, token, password, confirm string) error {
	if err := accountdomain.ValidateNewPassword(password, confirm); err != nil {
		return err
	}

	var clientID uint
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		t, err := tx.FindResetToken(ctx, token)
		if errors.Is(err, domain.ErrNotFound) {
			return accountdomain.ErrTokenInvalid
		}
		if err != nil {
			return err
		}
		if err := accountdomain.ConsumeToken(t, uc.clock(), uc.ttl); err != nil {
			return err
		}

		c, err := tx.GetClient(ctx, t.ClientID)
		if err != nil {
			return err
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		c.PasswordHash = hash
		if err := tx.UpdateClient(ctx, c); err != nil {
			return err
		}

		clientID = c.ID
		return tx.UpdateResetToken(ctx, t)
	})
	if err != nil {
		return err
	}

	uc.audit.Dispatch(audit.For(auth.Principal{Role: auth.RoleClient, ID: clientID}, "password_reset", "client", clientID, nil))
	return nil
}

// ======================================================
// WASHER CHANGE PASSWORD
// ======================================================

type ChangeWasherPassword struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewChangeWasherPassword(repo domain.Repository, audit *audit.Dispatcher) *ChangeWasherPassword {
	return &ChangeWasherPassword{repo: repo, audit: audit}
}

func (uc *ChangeWasherPassword) Execute(ctx context.Context, p auth.Principal, current, password, confirm string) error {
	if !p.IsWasher() {
		return httperr.ErrForbidden("forbidden", "Only washers can change their password here.")
	}

	w, err := uc.repo.GetWasher(ctx, p.ID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(w.PasswordHash, current) {
		return httperr.ErrValidation("wrong_password", "Your current password is incorrect.")
	}
	if err := accountdomain.ValidateNewPassword(password, confirm); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	w.PasswordHash = hash
	if err := uc.repo.UpdateWasher(ctx, w); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.For(p, "password_changed", "washer", w.ID, nil))
	return nil
}
