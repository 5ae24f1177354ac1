// Package crm holds the ownership-scoped stores for workers, projects and
// their assignments, the admin-managed catalogs, and the view assembler that
// joins them into response objects.
//
// Every read path filters through the rbac predicates and every write path
// re-checks them; handlers never query the tables directly.
package crm

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"workforce_crm/internal/apperr"
	"workforce_crm/internal/rbac"
)

// maxListSize caps list queries the same way for every collection.
const maxListSize = 1000

// Clock returns the current time. Tests swap it for a deterministic one.
type Clock func() time.Time

type deps struct {
	db    *gorm.DB
	now   Clock
	newID func() string
}

func (d deps) orm(ctx context.Context) *gorm.DB { return d.db.WithContext(ctx) }

// Option customizes a Service.
type Option func(*deps)

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(c Clock) Option {
	return func(d *deps) { d.now = c }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(fn func() string) Option {
	return func(d *deps) { d.newID = fn }
}

// Service bundles the stores that share one database handle.
type Service struct {
	Workers  *WorkerStore
	Projects *ProjectStore
	Ledger   *Ledger
	Catalog  *Catalog
	Users    *Users
	Views    *Assembler
}

func New(db *gorm.DB, opts ...Option) *Service {
	d := deps{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&d)
	}

	return &Service{
		Workers:  &WorkerStore{deps: d},
		Projects: &ProjectStore{deps: d},
		Ledger:   &Ledger{deps: d},
		Catalog:  &Catalog{deps: d},
		Users:    &Users{deps: d},
		Views:    &Assembler{deps: d},
	}
}

func requireAdmin(caller rbac.Identity, action string) error {
	if !caller.IsAdmin() {
		return apperr.Forbidden("only admins may %s", action)
	}
	return nil
}

// notFound converts gorm's missing-row error into a domain NotFound and
// passes every other error through.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return err
}

func uniq(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
