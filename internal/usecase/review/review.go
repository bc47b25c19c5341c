// Package review lets clients rate completed washes.
package review

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
)

var errNotReviewable = httperr.ErrNotFound("order_not_found", "Order not found or is not completed.")

type Service struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewService(repo domain.Repository, audit *audit.Dispatcher) *Service {
	return &Service{repo: repo, audit: audit}
}

// Add records the client's single review of a completed order. The washer
// is taken from the order.
func (s *Service) Add(ctx context.Context, p auth.Principal, orderID uint, rating int, comment string) (*models.Review, error) {
	if !p.IsClient() {
		return nil, httperr.ErrForbidden("forbidden", "Only clients can leave reviews.")
	}
	if rating < 1 || rating > 5 {
		return nil, httperr.ErrValidation("invalid_rating", "Rating must be between 1 and 5.")
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errNotReviewable
	}
	if err != nil {
		return nil, err
	}
	if o.ClientID != p.ID || order.Status(o.Status) != order.StatusCompleted {
		return nil, errNotReviewable
	}

	done, err := s.repo.ReviewExists(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, httperr.ErrConflict("already_reviewed", "You have already reviewed this order.")
	}

	r := &models.Review{
		WashOrderID: o.ID,
		ClientID:    p.ID,
		WasherID:    o.WasherID,
		Rating:      rating,
		Comment:     strings.TrimSpace(comment),
	}
	if err := s.repo.CreateReview(ctx, r); err != nil {
		return nil, err
	}

	s.audit.Dispatch(audit.For(p, "review_added", "review", r.ID, map[string]any{
		"wash_order_id": o.ID,
		"rating":        rating,
	}))
	return r, nil
}

// List returns the client's own reviews, a washer's reviews, or all of them
// for an admin.
func (s *Service) List(ctx context.Context, p auth.Principal) ([]models.Review, error) {
	var f domain.ReviewFilter
	switch {
	case p.IsClient():
		f.ClientID = &p.ID
	case p.IsWasher():
		f.WasherID = &p.ID
	}
	return s.repo.ListReviews(ctx, f)
}
