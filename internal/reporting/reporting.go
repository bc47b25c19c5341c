// Package reporting computes the admin dashboard and analytics with plain SQL
// over the same database the entity store writes to.
package reporting

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/Horridhunk/carmannagement/internal/timezone"
)

// Cache stores computed reports between requests.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	db    *sqlx.DB
	loc   *time.Location
	clock timezone.Clock
	cache Cache
	ttl   time.Duration
	log   *logrus.Entry
}

type Option func(*Service)

// WithCache caches the dashboard for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

func WithClock(c timezone.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// NewService wraps db. driver is the database/sql driver name and decides
// the placeholder style ("pgx" or "postgres" for $1, "sqlite3" for ?).
func NewService(db *sql.DB, driver string, loc *time.Location, log *logrus.Entry, opts ...Option) *Service {
	s := &Service{
		db:    sqlx.NewDb(db, driver),
		loc:   loc,
		clock: timezone.System,
		log:   log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) get(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
}

func (s *Service) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}

// today returns midnight of the current business day.
func (s *Service) today() time.Time {
	return timezone.StartOfDay(s.clock(), s.loc)
}
