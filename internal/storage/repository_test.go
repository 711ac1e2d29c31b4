package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"efetivo/internal/roster"
)

type fakeRepo struct {
	saved  int64
	closed bool
}

func (f *fakeRepo) EnsureSchema(ctx context.Context) error { return nil }
func (f *fakeRepo) Save(ctx context.Context, recs []roster.Record) (int64, error) {
	f.saved += int64(len(recs))
	return int64(len(recs)), nil
}
func (f *fakeRepo) Close() { f.closed = true }

func TestRegisterAndNew(t *testing.T) {
	t.Parallel()

	Register("fake", func(ctx context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Kind: "fake"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if repo == nil {
		t.Fatal("New returned nil repo")
	}

	found := false
	for _, k := range ListKinds() {
		if k == "fake" {
			found = true
		}
	}
	if !found {
		t.Fatalf("registered kind missing from ListKinds: %v", ListKinds())
	}
}

func TestNewUnsupportedKind(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "no-such-backend"})
	if err == nil {
		t.Fatal("want error for unregistered kind")
	}
}

func TestNewPropagatesFactoryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	Register("failing", func(ctx context.Context, cfg Config) (Repository, error) {
		return nil, boom
	})
	if _, err := New(context.Background(), Config{Kind: "failing"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestRowValuesNullsSentinels(t *testing.T) {
	t.Parallel()

	vals := RowValues(roster.Record{
		ID:           "1",
		Name:         "Alpha",
		Age:          roster.AgeUnknown,
		ServiceYears: roster.ServiceYearsUnknown,
	})
	if len(vals) != len(Columns) {
		t.Fatalf("len(vals) = %d, want %d", len(vals), len(Columns))
	}
	byCol := map[string]any{}
	for i, c := range Columns {
		byCol[c] = vals[i]
	}
	for _, c := range []string{"cpf", "birth_date", "age", "start_date", "service_years"} {
		if byCol[c] != nil {
			t.Errorf("%s = %v, want nil", c, byCol[c])
		}
	}

	full := roster.Record{
		ID:            "2",
		Name:          "Bravo",
		CPF:           "12345678900",
		BirthDate:     time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC),
		Age:           40,
		Rank:          "Capitão",
		RankOrder:     11,
		StartDate:     time.Date(2010, 2, 10, 0, 0, 0, 0, time.UTC),
		ServiceYears:  15.3,
		ReceivesBonus: true,
	}
	vals = RowValues(full)
	for i, c := range Columns {
		if vals[i] == nil {
			t.Errorf("%s = nil for fully populated record", c)
		}
	}
}
