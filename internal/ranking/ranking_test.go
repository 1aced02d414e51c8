package ranking

import (
	"context"
	"testing"
	"time"

	"bracketrank/internal/models"
	"bracketrank/internal/players"
	"bracketrank/internal/store"
)

func seedTournament(t *testing.T, ctx context.Context, s store.Store, region string, date time.Time, winner, loser string) *models.Tournament {
	t.Helper()
	tr := &models.Tournament{
		ID:      "t-" + winner + "-" + loser + "-" + date.Format("20060102"),
		Name:    "event",
		Date:    date,
		Regions: []string{region},
		Players: []string{winner, loser},
		Matches: []models.Match{{Winner: winner, Loser: loser}},
		OrigIds: []string{winner, loser},
	}
	if err := s.CreateTournament(ctx, tr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tr
}

func TestGenerateRanksWinnerAboveLoser(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	playersSvc := players.New(s)

	a, err := playersSvc.Create(ctx, "Alice", "nyc", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := playersSvc.Create(ctx, "Bob", "nyc", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Now()
	seedTournament(t, ctx, s, "nyc", now.AddDate(0, 0, -1), a.ID, b.ID)

	pipeline := New(s)
	r, err := pipeline.Generate(ctx, "nyc", now, 60, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Entries) != 2 {
		t.Fatalf("expected 2 ranked entries, got %d", len(r.Entries))
	}
	if r.Entries[0].Player != a.ID {
		t.Fatalf("expected winner %s ranked first, got %s", a.ID, r.Entries[0].Player)
	}
	if r.Entries[0].Rank != 1 || r.Entries[1].Rank != 2 {
		t.Fatalf("expected ranks 1 and 2, got %d and %d", r.Entries[0].Rank, r.Entries[1].Rank)
	}
}

func TestGenerateExcludesInactivePlayers(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	playersSvc := players.New(s)

	a, _ := playersSvc.Create(ctx, "Stale", "nyc", nil)
	b, _ := playersSvc.Create(ctx, "AlsoStale", "nyc", nil)

	now := time.Now()
	seedTournament(t, ctx, s, "nyc", now.AddDate(0, 0, -200), a.ID, b.ID)

	pipeline := New(s)
	r, err := pipeline.Generate(ctx, "nyc", now, 60, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Entries) != 0 {
		t.Fatalf("expected activity window to exclude both players, got %d entries", len(r.Entries))
	}
}

func TestGenerateRequiresMinimumTourneyCount(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	playersSvc := players.New(s)

	a, _ := playersSvc.Create(ctx, "OneOff", "nyc", nil)
	b, _ := playersSvc.Create(ctx, "Regular", "nyc", nil)
	c, _ := playersSvc.Create(ctx, "AlsoRegular", "nyc", nil)

	now := time.Now()
	seedTournament(t, ctx, s, "nyc", now.AddDate(0, 0, -1), a.ID, b.ID)
	seedTournament(t, ctx, s, "nyc", now.AddDate(0, 0, -2), b.ID, c.ID)
	seedTournament(t, ctx, s, "nyc", now.AddDate(0, 0, -3), c.ID, b.ID)

	pipeline := New(s)
	r, err := pipeline.Generate(ctx, "nyc", now, 60, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range r.Entries {
		if e.Player == a.ID {
			t.Fatalf("expected the single-tournament player to be excluded under numTourneys=2")
		}
	}
}

func TestLatestReturnsNotFoundBeforeAnyGeneration(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	pipeline := New(s)
	if _, err := pipeline.Latest(ctx, "nyc"); err == nil {
		t.Fatalf("expected an error before any ranking has been generated")
	}
}
