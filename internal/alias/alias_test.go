package alias

import (
	"context"
	"testing"

	"bracketrank/internal/players"
	"bracketrank/internal/store"
)

func TestTopSuggestionPrefersExactRegionMatch(t *testing.T) {
	ctx := context.Background()
	playersSvc := players.New(store.NewMemory())
	aliasSvc := New(playersSvc)

	exact, err := playersSvc.Create(ctx, "SFAT", "nyc", []string{"sfat"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A similarly-named player in another region should never outrank an
	// exact in-region match, even if its id sorts lower.
	if _, err := playersSvc.Create(ctx, "Team SFAT", "westchester", []string{"team | sfat"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := aliasSvc.TopSuggestion(ctx, "sfat", "nyc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != exact.ID {
		t.Fatalf("expected exact match %s, got %+v", exact.ID, got)
	}
}

func TestTopSuggestionPrefersCloserCandidateOverMereMembership(t *testing.T) {
	ctx := context.Background()
	playersSvc := players.New(store.NewMemory())
	aliasSvc := New(playersSvc)

	// Both candidates turn up via the same similar-alias variant search
	// (the word-suffix expansion of the query includes both the full
	// string and its trailing "axe"), but "team foo | axe" is identical
	// to the query while a bare "axe" is only a loose suffix match — the
	// closer one must win regardless of id ordering.
	exact, err := playersSvc.Create(ctx, "FooAxe", "nyc", []string{"team foo | axe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loose, err := playersSvc.Create(ctx, "AAxe", "nyc", []string{"axe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := aliasSvc.TopSuggestion(ctx, "team foo | axe", "nowhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != exact.ID {
		t.Fatalf("expected the exact-text candidate %s to win over the loose match %s, got %+v", exact.ID, loose.ID, got)
	}
}

func TestTopSuggestionTieBreaksByAscendingID(t *testing.T) {
	ctx := context.Background()
	playersSvc := players.New(store.NewMemory())
	aliasSvc := New(playersSvc)

	a, err := playersSvc.Create(ctx, "PlayerA", "nyc", []string{"axe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := playersSvc.Create(ctx, "PlayerB", "westchester", []string{"axe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Neither is an exact match in "eu" (neither player is a member of
	// that region), so both surface as equally-close similar-alias
	// candidates and only the id tie-break distinguishes them.
	got, err := aliasSvc.TopSuggestion(ctx, "axe", "eu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatalf("expected a candidate suggestion, got none")
	}
	want := a.ID
	if b.ID < want {
		want = b.ID
	}
	if got.ID != want {
		t.Fatalf("expected lowest-id candidate %s, got %s", want, got.ID)
	}
}

func TestTopSuggestionReturnsNilWhenUnresolved(t *testing.T) {
	ctx := context.Background()
	playersSvc := players.New(store.NewMemory())
	aliasSvc := New(playersSvc)

	got, err := aliasSvc.TopSuggestion(ctx, "nobody-like-this", "nyc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no suggestion, got %+v", got)
	}
}

func TestMappingsResolvesEachAliasIndependently(t *testing.T) {
	ctx := context.Background()
	playersSvc := players.New(store.NewMemory())
	aliasSvc := New(playersSvc)

	p, err := playersSvc.Create(ctx, "Armada", "nyc", []string{"armada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := aliasSvc.Mappings(ctx, []string{"armada", "unknown-player"}, "nyc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["armada"] != p.ID {
		t.Fatalf("expected armada to resolve to %s, got %q", p.ID, out["armada"])
	}
	if out["unknown-player"] != "" {
		t.Fatalf("expected unknown-player to remain unresolved, got %q", out["unknown-player"])
	}
}
