package order

import (
	"context"

	"github.com/Horridhunk/carmannagement/internal/audit"
	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
)

// AutoAssign runs the assignment engine on demand and reports how many
// orders it placed.
type AutoAssign struct {
	repo   domain.Repository
	engine *assignment.Engine
	audit  *audit.Dispatcher
}

func NewAutoAssign(repo domain.Repository, engine *assignment.Engine, audit *audit.Dispatcher) *AutoAssign {
	return &AutoAssign{repo: repo, engine: engine, audit: audit}
}

func (uc *AutoAssign) Execute(ctx context.Context, p auth.Principal) (int, error) {
	if !p.IsAdmin() {
		return 0, errAdminOnly
	}

	assigned, err := uc.engine.AutoAssign(ctx, uc.repo)
	if err != nil {
		return len(assigned), err
	}

	uc.audit.Dispatch(audit.For(p, "orders_auto_assigned", "wash_order", 0, map[string]any{
		"assigned": len(assigned),
	}))
	return len(assigned), nil
}
