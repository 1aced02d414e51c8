// Package players implements the Player Registry of §4.3: creation, lookup
// and the "similar alias" candidate search used by the Alias Resolution
// Service (§4.5) to surface merge suggestions. The candidate-generation
// regexes are ported from garpr's dao.py get_players_with_similar_alias.
package players

import (
	"context"
	"regexp"
	"strings"

	"bracketrank/internal/models"
	"bracketrank/internal/store"
	"bracketrank/pkg/errors"
	"bracketrank/pkg/logger"

	"github.com/google/uuid"
)

var (
	specialChars      = regexp.MustCompile(`[^\w\s]*`)
	specialCharsSplit = regexp.MustCompile(`[^\w\s]+`)
	poolPrefix1       = regexp.MustCompile(`([1-9]+\s+[1-9]+\s+)(.+)`)
	poolPrefix2       = regexp.MustCompile(`(.[1-9]+.[1-9]+\s+)(.+)`)
)

// Service is the Player Registry.
type Service struct {
	store store.Store
}

func New(s store.Store) *Service {
	return &Service{store: s}
}

// Create registers a brand-new player with a fresh skill prior for region.
func (s *Service) Create(ctx context.Context, name, region string, aliases []string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("player name is required", nil)
	}
	if region == "" {
		return nil, errors.Validation("region is required", nil)
	}

	normalized := normalizeAliases(append(aliases, name))

	p := &models.Player{
		ID:      uuid.NewString(),
		Name:    name,
		Aliases: normalized,
		Regions: []string{region},
		Ratings: map[string]models.Rating{region: models.DefaultRating()},
	}
	if err := s.store.CreatePlayer(ctx, p); err != nil {
		return nil, errors.Internal(err)
	}
	logger.Info("player created", "id", p.ID, "name", p.Name, "region", region)
	return p, nil
}

// GetByID returns a single player or a NOT_FOUND error.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Player, error) {
	p, err := s.store.GetPlayerByID(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if p == nil {
		return nil, errors.NotFound("player not found: " + id)
	}
	return p, nil
}

// GetByAlias resolves alias within a single region, exact-match only,
// excluding merged-away players.
func (s *Service) GetByAlias(ctx context.Context, alias, region string) (*models.Player, error) {
	p, err := s.store.GetPlayerByAlias(ctx, alias, region, false)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return p, nil
}

// List returns every non-merged player in a region, or every region if
// region is empty.
func (s *Service) List(ctx context.Context, region string) ([]models.Player, error) {
	ps, err := s.store.GetAllPlayers(ctx, region, false)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return ps, nil
}

// EnsureAlias adds alias to the player's alias set if not already present,
// then saves the player.
func (s *Service) EnsureAlias(ctx context.Context, p *models.Player, alias string) error {
	alias = strings.ToLower(strings.TrimSpace(alias))
	present := false
	for _, a := range p.Aliases {
		if a == alias {
			present = true
			break
		}
	}
	if !present {
		p.Aliases = append(p.Aliases, alias)
	}
	if err := s.store.UpdatePlayer(ctx, p); err != nil {
		return errors.Internal(err)
	}
	return nil
}

// SimilarAliasCandidates returns every non-merged player across all regions
// whose alias set overlaps the candidate set generated from alias. This is
// the "here be regex dragons" search: pool-prefix stripping (e.g. "1 1 slox",
// "p1s1 slox"), special-character stripping to drop crew/sponsor tags, and
// word-suffix expansion so "Team Foo | Bar" also turns up "bar".
func (s *Service) SimilarAliasCandidates(ctx context.Context, alias string) ([]models.Player, error) {
	candidates := similarAliasSet(alias)
	ps, err := s.store.GetPlayersWithSimilarAliases(ctx, candidates)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return ps, nil
}

func similarAliasSet(alias string) []string {
	lower := strings.ToLower(strings.TrimSpace(alias))

	set := map[string]struct{}{
		lower:                              {},
		strings.ReplaceAll(lower, " ", ""): {},
		specialChars.ReplaceAllString(lower, ""): {},
	}

	// "remove everything before the last special character" — the segment
	// following the final run of non-word characters, hopefully the tag
	// left after stripping a crew/sponsor prefix.
	parts := specialCharsSplit.Split(lower, -1)
	if len(parts) > 0 {
		set[strings.TrimSpace(parts[len(parts)-1])] = struct{}{}
	}

	if m := poolPrefix1.FindStringSubmatch(lower); len(m) == 3 {
		set[strings.TrimSpace(m[2])] = struct{}{}
	}
	if m := poolPrefix2.FindStringSubmatch(lower); len(m) == 3 {
		set[strings.TrimSpace(m[2])] = struct{}{}
	}

	words := strings.Fields(lower)
	for i := range words {
		set[strings.Join(words[i:], " ")] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for a := range set {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

func normalizeAliases(aliases []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, a := range aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
