package players

import (
	"context"
	"testing"

	"bracketrank/internal/store"
	"bracketrank/pkg/errors"
)

func TestCreateRejectsEmptyName(t *testing.T) {
	svc := New(store.NewMemory())
	_, err := svc.Create(context.Background(), "  ", "nyc", nil)
	if errors.As(err).Code != errors.CodeValidation {
		t.Fatalf("expected CodeValidation, got %v", err)
	}
}

func TestCreateNormalizesAliases(t *testing.T) {
	svc := New(store.NewMemory())
	p, err := svc.Create(context.Background(), "Hax$lox", "nyc", []string{"HaX", "hax"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Aliases) != 2 {
		t.Fatalf("expected 2 unique normalized aliases, got %v", p.Aliases)
	}
	if _, ok := p.Ratings["nyc"]; !ok {
		t.Fatalf("expected a default rating seeded for nyc")
	}
}

func TestGetByAliasExactRegionMatch(t *testing.T) {
	svc := New(store.NewMemory())
	ctx := context.Background()
	created, err := svc.Create(ctx, "Hungrybox", "nyc", []string{"hbox"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetByAlias(ctx, "hbox", "nyc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("expected to resolve hbox to %s, got %+v", created.ID, got)
	}

	none, err := svc.GetByAlias(ctx, "hbox", "westchester")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no match outside the player's region, got %+v", none)
	}
}

func TestSimilarAliasSetStripsPoolPrefixAndTags(t *testing.T) {
	cands := similarAliasSet("1 1 Team Foo | SloX")
	want := []string{"slox", "foo | slox", "team foo | slox"}
	for _, w := range want {
		found := false
		for _, c := range cands {
			if c == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected candidate set to contain %q, got %v", w, cands)
		}
	}
}

func TestEnsureAliasIsIdempotent(t *testing.T) {
	svc := New(store.NewMemory())
	ctx := context.Background()
	p, _ := svc.Create(ctx, "Mango", "nyc", nil)

	if err := svc.EnsureAlias(ctx, p, "mango"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := len(p.Aliases)
	if err := svc.EnsureAlias(ctx, p, "Mango"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Aliases) != before {
		t.Fatalf("expected EnsureAlias to be idempotent on case-insensitive duplicates, went from %d to %d", before, len(p.Aliases))
	}
}
