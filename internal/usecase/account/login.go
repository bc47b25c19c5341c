package account

import (
	"context"
	"errors"

	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/validators"
)

var errInvalidCredentials = httperr.ErrUnauthorized("invalid_credentials", "Invalid email or password.")

type LoginResult struct {
	Token     string         `json:"token"`
	Principal auth.Principal `json:"-"`
	Name      string         `json:"name"`
	Role      auth.Role      `json:"role"`
}

// credentials is what a login needs to know about any account kind.
type credentials struct {
	id   uint
	hash string
	name string
}

// Login checks credentials for one of the three account kinds and issues a
// signed token for the resulting principal.
type Login struct {
	repo   domain.Repository
	issuer *auth.Issuer
}

func NewLogin(repo domain.Repository, issuer *auth.Issuer) *Login {
	return &Login{repo: repo, issuer: issuer}
}

func (uc *Login) Execute(ctx context.Context, role auth.Role, login, password string) (*LoginResult, error) {
	if !role.Valid() {
		return nil, httperr.ErrValidation("invalid_role", "Unknown account type.")
	}

	cred, err := uc.lookup(ctx, role, login)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(cred.hash, password) {
		return nil, errInvalidCredentials
	}

	p := auth.Principal{Role: role, ID: cred.id}
	token, err := uc.issuer.Issue(p)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Principal: p, Name: cred.name, Role: role}, nil
}

func (uc *Login) lookup(ctx context.Context, role auth.Role, login string) (credentials, error) {
	switch role {
	case auth.RoleClient:
		c, err := uc.repo.FindClientByEmail(ctx, validators.NormalizeEmail(login))
		if err != nil {
			return credentials{}, err
		}
		return credentials{c.ID, c.PasswordHash, c.FullName()}, nil

	case auth.RoleWasher:
		w, err := uc.repo.FindWasherByEmail(ctx, validators.NormalizeEmail(login))
		if err != nil {
			return credentials{}, err
		}
		return credentials{w.ID, w.PasswordHash, w.FullName()}, nil

	default:
		a, err := uc.repo.FindAdminByLogin(ctx, login)
		if err != nil {
			return credentials{}, err
		}
		return credentials{a.ID, a.PasswordHash, a.Username}, nil
	}
}
