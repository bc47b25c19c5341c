package account

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
)

func TestValidateNewPassword(t *testing.T) {
	assert.NoError(t, ValidateNewPassword("s3cretpass", "s3cretpass"))
	assert.True(t, httperr.IsBusiness(ValidateNewPassword("s3cretpass", "other"), "password_mismatch"))
	assert.True(t, httperr.IsBusiness(ValidateNewPassword("short", "short"), "password_too_short"))

	long := strings.Repeat("p", MaxPasswordLength+1)
	assert.True(t, httperr.IsBusiness(ValidateNewPassword(long, long), "password_too_long"))
	edge := strings.Repeat("p", MaxPasswordLength)
	assert.NoError(t, ValidateNewPassword(edge, edge))
}

func TestTokenValidityWindow(t *testing.T) {
	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tok := &models.PasswordResetToken{CreatedAt: created}

	assert.True(t, TokenValid(tok, created.Add(30*time.Minute), time.Hour))
	assert.False(t, TokenValid(tok, created.Add(time.Hour), time.Hour))
	assert.False(t, TokenValid(tok, created.Add(61*time.Minute), time.Hour))
}

func TestConsumeTokenIsSingleUse(t *testing.T) {
	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tok := &models.PasswordResetToken{CreatedAt: created}

	require.NoError(t, ConsumeToken(tok, created.Add(time.Minute), time.Hour))
	assert.True(t, tok.IsUsed)
	assert.ErrorIs(t, ConsumeToken(tok, created.Add(2*time.Minute), time.Hour), ErrTokenInvalid)
}
