package order

import "github.com/Horridhunk/carmannagement/internal/httperr"

// ===============================
// Wash order status
// ===============================

type Status string

const (
	StatusPending    Status = "pending"
	StatusScheduled  Status = "scheduled"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ActiveStatuses are the statuses in which an order occupies its washer.
var ActiveStatuses = []Status{StatusAssigned, StatusInProgress}

// WaitingStatuses are picked up by the assignment engine.
var WaitingStatuses = []Status{StatusPending, StatusScheduled}

func (s Status) IsActive() bool {
	return s == StatusAssigned || s == StatusInProgress
}

func (s Status) IsWaiting() bool {
	return s == StatusPending || s == StatusScheduled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusAssigned,
		StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func Strings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// ===============================
// Validations
// ===============================

// CanAssign allows waiting orders, and assigned ones for an admin reassignment.
func CanAssign(current Status) error {
	if current.IsWaiting() || current == StatusAssigned {
		return nil
	}
	return httperr.ErrConflict(
		"invalid_state",
		"Only pending, scheduled or assigned orders can be assigned to a washer.",
	)
}

func CanStart(current Status) error {
	if current != StatusAssigned {
		return httperr.ErrConflict("invalid_state", "Only assigned orders can be started.")
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusInProgress {
		return httperr.ErrConflict("invalid_state", "Only orders in progress can be completed.")
	}
	return nil
}

func CanCancel(current Status) error {
	switch current {
	case StatusCancelled:
		return httperr.ErrConflict("already_cancelled", "This order is already cancelled.")
	case StatusCompleted:
		return httperr.ErrConflict("order_completed", "Completed orders cannot be cancelled.")
	}
	return nil
}
