package prefs

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func newRepoForTest(t *testing.T) StorePreferenceRepository {
	t.Helper()
	db, err := OpenDatabase("sqlite", fmt.Sprintf("file:prefs_%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return NewStorePreferenceRepository(db)
}

func TestStorePreferenceRoundTrip(t *testing.T) {
	repo := newRepoForTest(t)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "U1"); !errors.Is(err, ErrPreferenceNotFound) {
		t.Fatalf("expected ErrPreferenceNotFound, got %v", err)
	}
	if err := repo.Set(ctx, "U1", "S1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := repo.Get(ctx, "U1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "S1" {
		t.Fatalf("expected S1, got %q", got)
	}
}

func TestStorePreferenceSetOverwrites(t *testing.T) {
	repo := newRepoForTest(t)
	ctx := context.Background()

	if err := repo.Set(ctx, "U1", "S1"); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := repo.Set(ctx, "U1", "S2"); err != nil {
		t.Fatalf("second set: %v", err)
	}
	got, err := repo.Get(ctx, "U1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "S2" {
		t.Fatalf("expected overwrite to S2, got %q", got)
	}
}

func TestStorePreferenceDeleteIdempotent(t *testing.T) {
	repo := newRepoForTest(t)
	ctx := context.Background()

	if err := repo.Set(ctx, "U1", "S1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Delete(ctx, "U1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := repo.Delete(ctx, "U1"); err != nil {
		t.Fatalf("second delete must stay silent: %v", err)
	}
	if _, err := repo.Get(ctx, "U1"); !errors.Is(err, ErrPreferenceNotFound) {
		t.Fatalf("expected ErrPreferenceNotFound after delete, got %v", err)
	}
}

func TestOpenDatabaseRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenDatabase("oracle", "dsn"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
