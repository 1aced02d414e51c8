package store

import (
	"context"
	"errors"
	"testing"

	"bracketrank/internal/models"
)

func TestMemoryPlayerRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p := &models.Player{ID: "p1", Name: "Alice", Aliases: []string{"alice"}, Regions: []string{"nyc"}}
	if err := m.CreatePlayer(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := m.GetPlayerByID(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Name != "Alice" {
		t.Fatalf("expected to round-trip player, got %+v", got)
	}

	byAlias, err := m.GetPlayerByAlias(ctx, "alice", "nyc", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byAlias == nil || byAlias.ID != "p1" {
		t.Fatalf("expected alias lookup to resolve p1, got %+v", byAlias)
	}
}

func TestMemoryRunInTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p := &models.Player{ID: "p1", Name: "Alice", Regions: []string{"nyc"}}
	if err := m.CreatePlayer(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sentinel := errors.New("boom")
	err := m.RunInTransaction(ctx, func(tx Store) error {
		updated, _ := tx.GetPlayerByID(ctx, "p1")
		updated.Name = "Bob"
		if err := tx.UpdatePlayer(ctx, updated); err != nil {
			return err
		}
		return sentinel
	})
	if err != sentinel {
		t.Fatalf("expected sentinel error to propagate, got %v", err)
	}

	after, _ := m.GetPlayerByID(ctx, "p1")
	if after.Name != "Alice" {
		t.Fatalf("expected rollback to restore original name, got %q", after.Name)
	}
}

func TestMemoryRunInTransactionCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p := &models.Player{ID: "p1", Name: "Alice", Regions: []string{"nyc"}}
	if err := m.CreatePlayer(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := m.RunInTransaction(ctx, func(tx Store) error {
		updated, _ := tx.GetPlayerByID(ctx, "p1")
		updated.Name = "Bob"
		return tx.UpdatePlayer(ctx, updated)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, _ := m.GetPlayerByID(ctx, "p1")
	if after.Name != "Bob" {
		t.Fatalf("expected committed name change, got %q", after.Name)
	}
}

func TestMemoryGetAllTournamentsFiltersByRegionAndPlayer(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	t1 := &models.Tournament{ID: "t1", Regions: []string{"nyc"}, Players: []string{"a", "b"}}
	t2 := &models.Tournament{ID: "t2", Regions: []string{"westchester"}, Players: []string{"c", "d"}}
	if err := m.CreateTournament(ctx, t1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.CreateTournament(ctx, t2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nyc, err := m.GetAllTournaments(ctx, nil, []string{"nyc"}, OpAnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nyc) != 1 || nyc[0].ID != "t1" {
		t.Fatalf("expected only t1 in nyc, got %+v", nyc)
	}

	byPlayer, err := m.GetAllTournaments(ctx, []string{"c"}, nil, OpAnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byPlayer) != 1 || byPlayer[0].ID != "t2" {
		t.Fatalf("expected only t2 for player c, got %+v", byPlayer)
	}
}
