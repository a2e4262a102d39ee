package testutil

import (
	"context"
	"testing"

	"github.com/nhle/kitchen-roster/internal/model"
	"github.com/nhle/kitchen-roster/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedTask inserts rec and returns its id, failing the test on error.
func SeedTask(t *testing.T, s store.Store, rec model.TaskRecord) string {
	t.Helper()

	if rec.ForDate == "" {
		rec.ForDate = model.Today()
	}
	id, err := s.InsertTask(context.Background(), rec)
	if err != nil {
		t.Fatalf("seeding task %q: %v", rec.Title, err)
	}
	return id
}
