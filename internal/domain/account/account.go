package account

import (
	"time"

	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
)

const (
	MinPasswordLength = 8
	// bcrypt only accepts up to 72 bytes.
	MaxPasswordLength = 72
)

var ErrTokenInvalid = httperr.ErrValidation(
	"invalid_token",
	"This password reset link has expired or is invalid.",
)

func ValidateNewPassword(password, confirm string) error {
	if password != confirm {
		return httperr.ErrValidation("password_mismatch", "Passwords do not match.")
	}
	if len(password) < MinPasswordLength {
		return httperr.ErrValidation("password_too_short", "Password must be at least 8 characters long.")
	}
	if len(password) > MaxPasswordLength {
		return httperr.ErrValidation("password_too_long", "Password must be at most 72 bytes long.")
	}
	return nil
}

// TokenValid reports whether t is unused and younger than ttl at now.
func TokenValid(t *models.PasswordResetToken, now time.Time, ttl time.Duration) bool {
	return !t.IsUsed && now.Before(t.CreatedAt.Add(ttl))
}

// ConsumeToken marks a valid token used.
func ConsumeToken(t *models.PasswordResetToken, now time.Time, ttl time.Duration) error {
	if !TokenValid(t, now, ttl) {
		return ErrTokenInvalid
	}
	t.IsUsed = true
	return nil
}

// ===============================
// Washer status
// ===============================

const (
	WasherActive   = "active"
	WasherInactive = "inactive"
	WasherOnBreak  = "on_break"
)

var WasherStatuses = []string{WasherActive, WasherInactive, WasherOnBreak}

func ValidateWasherStatus(s string) error {
	for _, v := range WasherStatuses {
		if v == s {
			return nil
		}
	}
	return httperr.ErrValidation("invalid_status", "Status must be one of active, inactive, on_break.")
}

// Eligible reports whether w may be picked by the assignment engine,
// ignoring the orders it holds.
func Eligible(w *models.Washer) bool {
	return w.IsAvailable && w.Status == WasherActive
}
