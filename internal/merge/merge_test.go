package merge

import (
	"context"
	"testing"

	"bracketrank/internal/models"
	"bracketrank/internal/store"
	"bracketrank/pkg/errors"
)

func seedPlayer(t *testing.T, s store.Store, id, name, region string) *models.Player {
	t.Helper()
	p := &models.Player{
		ID:      id,
		Name:    name,
		Aliases: []string{name},
		Regions: []string{region},
		Ratings: map[string]models.Rating{region: models.DefaultRating()},
	}
	if err := s.CreatePlayer(context.Background(), p); err != nil {
		t.Fatalf("seed player %s: %v", id, err)
	}
	return p
}

func seedTournament(t *testing.T, s store.Store, id, region string, players []string, matches []models.Match) *models.Tournament {
	t.Helper()
	orig := append([]string{}, players...)
	tr := &models.Tournament{
		ID:      id,
		Name:    id,
		Regions: []string{region},
		Players: players,
		Matches: matches,
		OrigIds: orig,
	}
	if err := s.CreateTournament(context.Background(), tr); err != nil {
		t.Fatalf("seed tournament %s: %v", id, err)
	}
	return tr
}

// Scenario C from the end-to-end walkthrough: A and C co-participated in T2,
// so merging source=C into target=A must be rejected and nothing changed.
func TestApplyRejectsCoParticipation(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	seedPlayer(t, s, "a", "A", "norcal")
	seedPlayer(t, s, "b", "B", "norcal")
	seedPlayer(t, s, "c", "C", "norcal")
	seedTournament(t, s, "t1", "norcal", []string{"a", "b"}, []models.Match{{Winner: "a", Loser: "b"}})
	seedTournament(t, s, "t2", "norcal", []string{"a", "c"}, []models.Match{{Winner: "a", Loser: "c"}})

	eng := New(s)
	_, err := eng.Apply(ctx, "norcal", "admin", "c", "a")
	if err == nil {
		t.Fatal("expected rejection for co-participating players")
	}
	if errors.As(err).Code != errors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", errors.As(err).Code)
	}

	a, _ := s.GetPlayerByID(ctx, "a")
	c, _ := s.GetPlayerByID(ctx, "c")
	if a.Merged || c.Merged {
		t.Fatal("players should be unchanged after rejected merge")
	}
	t2, _ := s.GetTournamentByID(ctx, "t2")
	if len(t2.Players) != 2 {
		t.Fatalf("tournament should be unchanged, got players=%v", t2.Players)
	}
}

func TestApplyThenUndoRestoresTournaments(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	seedPlayer(t, s, "a", "A", "norcal")
	seedPlayer(t, s, "b", "B", "norcal")
	seedPlayer(t, s, "c", "C", "norcal")
	seedTournament(t, s, "t1", "norcal", []string{"a", "b"}, []models.Match{{Winner: "a", Loser: "b"}})
	seedTournament(t, s, "t2", "norcal", []string{"a", "c"}, []models.Match{{Winner: "a", Loser: "c"}})

	eng := New(s)
	mg, err := eng.Apply(ctx, "norcal", "admin", "c", "b")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	t2, _ := s.GetTournamentByID(ctx, "t2")
	if t2.Players[0] != "b" && t2.Players[1] != "b" {
		t.Fatalf("expected t2 players to reference b after merge, got %v", t2.Players)
	}
	for _, m := range t2.Matches {
		if m.ContainsPlayer("c") {
			t.Fatal("match should no longer reference merged-away source")
		}
	}

	if err := eng.Undo(ctx, "norcal", mg.ID); err != nil {
		t.Fatalf("undo: %v", err)
	}

	t2After, _ := s.GetTournamentByID(ctx, "t2")
	foundC := false
	for _, p := range t2After.Players {
		if p == "c" {
			foundC = true
		}
	}
	if !foundC {
		t.Fatalf("expected t2 to reference c again after undo, got %v", t2After.Players)
	}

	c, _ := s.GetPlayerByID(ctx, "c")
	if c.Merged {
		t.Fatal("source should no longer be merged after undo")
	}
}

func TestApplyRejectsSamePlayer(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	seedPlayer(t, s, "a", "A", "norcal")

	eng := New(s)
	_, err := eng.Apply(ctx, "norcal", "admin", "a", "a")
	if errors.As(err) == nil || errors.As(err).Code != errors.CodeValidation {
		t.Fatalf("expected VALIDATION error for source==target, got %v", err)
	}
}
