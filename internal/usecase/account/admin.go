package account

import (
	"context"
	"errors"
	"strings"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	accountdomain "github.com/Horridhunk/carmannagement/internal/domain/account"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/validators"
)

// CreateAdmin provisions an administrator. It is reachable from the CLI only.
type CreateAdmin struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCreateAdmin(repo domain.Repository, audit *audit.Dispatcher) *CreateAdmin {
	return &CreateAdmin{repo: repo, audit: audit}
}

func (uc *CreateAdmin) Execute(ctx context.Context, username, email, password string) (*models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, httperr.ErrValidation("username_required", "Username is required.")
	}
	email = validators.NormalizeEmail(email)
	if !validators.IsEmail(email) {
		return nil, errInvalidEmail
	}
	if err := accountdomain.ValidateNewPassword(password, password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	a := &models.Admin{Username: username, Email: email, PasswordHash: hash}
	if err := uc.repo.CreateAdmin(ctx, a); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.For(auth.System, "admin_created", "admin", a.ID, map[string]any{
		"username": username,
	}))
	return a, nil
}

// ======================================================
// CLIENT ADMINISTRATION
// ======================================================

type ManageClients struct {
	repo   domain.Repository
	engine *assignment.Engine
	audit  *audit.Dispatcher
}

func NewManageClients(repo domain.Repository, engine *assignment.Engine, audit *audit.Dispatcher) *ManageClients {
	return &ManageClients{repo: repo, engine: engine, audit: audit}
}

func (uc *ManageClients) List(ctx context.Context, p auth.Principal) ([]models.Client, error) {
	if !p.IsAdmin() {
		return nil, httperr.ErrForbidden("forbidden", "Only administrators can perform this action.")
	}
	return uc.repo.ListClients(ctx)
}

func (uc *ManageClients) ListWashers(ctx context.Context, p auth.Principal) ([]models.Washer, error) {
	if !p.IsAdmin() {
		return nil, httperr.ErrForbidden("forbidden", "Only administrators can perform this action.")
	}
	return uc.repo.ListWashers(ctx)
}

// Delete removes a client together with everything the client owns. Washers
// released by the deleted orders pick up the queue.
func (uc *ManageClients) Delete(ctx context.Context, p auth.Principal, clientID uint) error {
	if !p.IsAdmin() {
		return httperr.ErrForbidden("forbidden", "Only administrators can perform this action.")
	}

	var assigned []*models.WashOrder
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.DeleteClient(ctx, clientID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return httperr.ErrNotFound("client_not_found", "Client not found.")
			}
			return err
		}

		var err error
		assigned, err = uc.engine.Scan(ctx, tx)
		return err
	})
	if err != nil {
		return err
	}

	uc.engine.Notify(ctx, assigned...)
	uc.audit.Dispatch(audit.For(p, "client_deleted", "client", clientID, nil))
	return nil
}
