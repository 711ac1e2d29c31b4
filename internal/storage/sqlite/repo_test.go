package sqlite

import (
	"context"
	"testing"
	"time"

	"efetivo/internal/roster"
	"efetivo/internal/storage"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, closeFn, err := NewRepository(context.Background(), Config{DSN: ":memory:"})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(closeFn)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return repo
}

func TestSaveAndCount(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	recs := []roster.Record{
		{
			ID:            "1001",
			Name:          "João Silva",
			CPF:           "12345678900",
			BirthDate:     time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC),
			Age:           40,
			WorkUnit:      "1º GB",
			Rank:          "Capitão",
			RankOrder:     11,
			StartDate:     time.Date(2010, 2, 10, 0, 0, 0, 0, time.UTC),
			ServiceYears:  15.3,
			ReceivesBonus: true,
		},
		{
			ID:           "1002",
			Name:         "Maria Souza",
			Age:          roster.AgeUnknown,
			WorkUnit:     "GOST",
			Rank:         "Major",
			RankOrder:    12,
			ServiceYears: roster.ServiceYearsUnknown,
		},
	}
	n, err := repo.Save(context.Background(), recs)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted = %d, want 2", n)
	}

	var count int
	if err := repo.db.QueryRow("SELECT COUNT(*) FROM " + DefaultTable).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("rows = %d, want 2", count)
	}

	// Sentinels land as NULL, never as -1.
	var withAge int
	if err := repo.db.QueryRow("SELECT COUNT(*) FROM " + DefaultTable + " WHERE age IS NULL").Scan(&withAge); err != nil {
		t.Fatalf("null count: %v", err)
	}
	if withAge != 1 {
		t.Errorf("NULL ages = %d, want 1", withAge)
	}
}

func TestSaveEmpty(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	n, err := repo.Save(context.Background(), nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n != 0 {
		t.Errorf("inserted = %d, want 0", n)
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}

func TestFactoryRegistration(t *testing.T) {
	t.Parallel()

	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
}

func TestNewRepositoryEmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatal("want error for empty DSN")
	}
}
