package pending

import (
	"context"
	"testing"
	"time"

	"bracketrank/internal/alias"
	"bracketrank/internal/models"
	"bracketrank/internal/players"
	"bracketrank/internal/scraper"
	"bracketrank/internal/store"
	"bracketrank/pkg/errors"
)

func newServiceForTest() (*Service, *players.Service, store.Store) {
	s := store.NewMemory()
	playersSvc := players.New(s)
	aliasSvc := alias.New(playersSvc)
	return New(s, playersSvc, aliasSvc), playersSvc, s
}

func TestCreateFromScraperSeedsAliasesAndMapping(t *testing.T) {
	ctx := context.Background()
	svc, playersSvc, _ := newServiceForTest()

	known, err := playersSvc.Create(ctx, "Mang0", "nyc", []string{"mango"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sc := &scraper.TIOScraper{
		Name:    "Genesis 9",
		Date:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Raw:     "raw-bracket-bytes",
		Players: []string{"mango", "zain"},
		Matches: []scraper.Match{{Winner: "mango", Loser: "zain"}},
	}

	pt, err := svc.CreateFromScraper(ctx, models.SourceTIO, sc, []string{"nyc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pt.Aliases) != 2 {
		t.Fatalf("expected 2 aliases, got %v", pt.Aliases)
	}
	if pt.AliasMapping["mango"] != known.ID {
		t.Fatalf("expected mango to pre-resolve to %s, got %q", known.ID, pt.AliasMapping["mango"])
	}
	if pt.AliasMapping["zain"] != "" {
		t.Fatalf("expected zain to remain unresolved, got %q", pt.AliasMapping["zain"])
	}
}

func TestCreateFromScraperRequiresRegion(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newServiceForTest()
	sc := &scraper.TIOScraper{Name: "x", Players: []string{"a", "b"}}
	_, err := svc.CreateFromScraper(ctx, models.SourceTIO, sc, nil)
	if errors.As(err).Code != errors.CodeValidation {
		t.Fatalf("expected CodeValidation, got %v", err)
	}
}

func TestFinalizeCreatesMissingPlayersAndBuildsTournament(t *testing.T) {
	ctx := context.Background()
	svc, playersSvc, s := newServiceForTest()

	known, err := playersSvc.Create(ctx, "Mang0", "nyc", []string{"mango"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sc := &scraper.TIOScraper{
		Name:    "Genesis 9",
		Date:    time.Now(),
		Players: []string{"mango", "zain"},
		Matches: []scraper.Match{{Winner: "mango", Loser: "zain"}},
	}
	pt, err := svc.CreateFromScraper(ctx, models.SourceTIO, sc, []string{"nyc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr, err := svc.Finalize(ctx, pt.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.Players) != 2 {
		t.Fatalf("expected 2 players in finalized tournament, got %v", tr.Players)
	}
	foundKnown := false
	for _, id := range tr.Players {
		if id == known.ID {
			foundKnown = true
		}
	}
	if !foundKnown {
		t.Fatalf("expected finalized tournament to include pre-resolved player %s", known.ID)
	}
	if len(tr.OrigIds) != len(tr.Players) {
		t.Fatalf("expected orig_ids to snapshot the finalized player set")
	}

	if stillPending, err := s.GetPendingTournamentByID(ctx, pt.ID); err != nil || stillPending != nil {
		t.Fatalf("expected pending tournament to be deleted after finalize, got %+v (err=%v)", stillPending, err)
	}
	if stored, err := s.GetTournamentByID(ctx, tr.ID); err != nil || stored == nil {
		t.Fatalf("expected finalized tournament to be persisted, got %+v (err=%v)", stored, err)
	}
}

func TestFinalizeRejectsMappingToMergedPlayer(t *testing.T) {
	ctx := context.Background()
	svc, playersSvc, s := newServiceForTest()

	target, err := playersSvc.Create(ctx, "Target", "nyc", []string{"target"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mergedAway, err := playersSvc.Create(ctx, "Source", "nyc", []string{"source"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mergedAway.Merged = true
	mergedAway.MergeParent = &target.ID
	if err := s.UpdatePlayer(ctx, mergedAway); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sc := &scraper.TIOScraper{
		Name:    "Test Event",
		Players: []string{"source", "target"},
		Matches: []scraper.Match{{Winner: "source", Loser: "target"}},
	}
	pt, err := svc.CreateFromScraper(ctx, models.SourceTIO, sc, []string{"nyc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SetAliasMapping(ctx, pt.ID, "source", mergedAway.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Finalize(ctx, pt.ID)
	if errors.As(err).Code != errors.CodeConflict {
		t.Fatalf("expected CodeConflict for mapping to a merged player, got %v", err)
	}
}

func TestSetAndDeleteAliasMapping(t *testing.T) {
	ctx := context.Background()
	svc, playersSvc, _ := newServiceForTest()

	p, err := playersSvc.Create(ctx, "Zain", "nyc", []string{"zain"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sc := &scraper.TIOScraper{Name: "x", Players: []string{"zain", "mango"}}
	pt, err := svc.CreateFromScraper(ctx, models.SourceTIO, sc, []string{"nyc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.SetAliasMapping(ctx, pt.ID, "mango", p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated, _ := svc.GetByID(ctx, pt.ID)
	if updated.AliasMapping["mango"] != p.ID {
		t.Fatalf("expected mango mapped to %s, got %q", p.ID, updated.AliasMapping["mango"])
	}

	if err := svc.DeleteAliasMapping(ctx, pt.ID, "mango"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cleared, _ := svc.GetByID(ctx, pt.ID)
	if cleared.AliasMapping["mango"] != "" {
		t.Fatalf("expected mango mapping cleared, got %q", cleared.AliasMapping["mango"])
	}
}
