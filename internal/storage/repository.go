// Package storage defines the backend-agnostic persistence contract for
// normalized personnel records plus a kind registry. Concrete backends
// (sqlite, postgres) register themselves in init; importing
// internal/storage/all enables every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"efetivo/internal/roster"
)

// Repository persists normalized personnel records. Implementations own
// their connection lifecycle; Close releases it.
type Repository interface {
	// EnsureSchema creates the destination table when it does not exist.
	EnsureSchema(ctx context.Context) error

	// Save inserts the records and returns the number of rows written.
	// Implementations batch internally and cancel promptly on ctx.
	Save(ctx context.Context, recs []roster.Record) (int64, error)

	Close()
}

// Config selects and configures a backend.
type Config struct {
	// Kind selects the registered backend ("sqlite", "postgres").
	Kind string

	// DSN is the backend connection string.
	DSN string

	// Table is the destination table name; backends apply their own
	// default when empty.
	Table string
}

// Factory constructs a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Later registrations of the
// same kind replace earlier ones.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered backend kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Columns is the destination column order shared by all backends; RowValues
// produces values in the same order.
var Columns = []string{
	"id", "name", "cpf", "birth_date", "age",
	"work_unit_code", "work_unit", "rank", "rank_order",
	"start_date", "service_years", "receives_bonus",
}

// RowValues flattens one record into driver values aligned with Columns.
// Unknown ages, dates and service years become NULL, and an invalid CPF
// becomes NULL, so sentinel values never leak into the database.
func RowValues(r roster.Record) []any {
	var (
		cpf, age, birth, start, years any
	)
	if r.CPF != "" {
		cpf = r.CPF
	}
	if r.HasAge() {
		age = r.Age
	}
	if !r.BirthDate.IsZero() {
		birth = r.BirthDate
	}
	if r.HasStartDate() {
		start = r.StartDate
		if r.ServiceYears != roster.ServiceYearsUnknown {
			years = r.ServiceYears
		}
	}
	return []any{
		r.ID, r.Name, cpf, birth, age,
		r.WorkUnitCode, r.WorkUnit, r.Rank, r.RankOrder,
		start, years, r.ReceivesBonus,
	}
}
