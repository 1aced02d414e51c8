// Package alias implements the Alias Resolution Service of §4.5: mapping
// the free-text names on a PendingTournament to Player Registry entries,
// first by exact in-region alias match, then by similar-alias suggestion
// across all regions. Ported from garpr's alias_service (exercised by
// test/test_alias_service.py; the module itself was not preserved upstream,
// so behavior here follows the test's expectations).
package alias

import (
	"context"
	"sort"
	"strings"

	"bracketrank/internal/models"
	"bracketrank/internal/players"
	"bracketrank/pkg/errors"
)

type Service struct {
	players *players.Service
}

func New(p *players.Service) *Service {
	return &Service{players: p}
}

// TopSuggestion resolves a single alias within region: an exact, in-region
// alias match wins outright; failing that, the candidate whose
// edit-distance-like closeness to the query is maximal wins (§4.5 step 2),
// ties broken by ascending player id. Returns (nil, nil) when nothing
// plausible is found — that is not an error, just "unresolved".
func (s *Service) TopSuggestion(ctx context.Context, alias, region string) (*models.Player, error) {
	exact, err := s.players.GetByAlias(ctx, alias, region)
	if err != nil {
		return nil, err
	}
	if exact != nil {
		return exact, nil
	}

	candidates, err := s.players.SimilarAliasCandidates(ctx, alias)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	closeness := make([]float64, len(candidates))
	for i, c := range candidates {
		closeness[i] = bestCloseness(alias, c.Aliases)
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if closeness[a] != closeness[b] {
			return closeness[a] > closeness[b]
		}
		return candidates[a].ID < candidates[b].ID
	})
	return &candidates[order[0]], nil
}

// bestCloseness returns the highest normalized closeness of query against
// any of candidateAliases: 1 - (levenshtein distance / longer string's
// length), so an exact match scores 1 and completely dissimilar strings
// score toward 0.
func bestCloseness(query string, candidateAliases []string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	best := 0.0
	for _, a := range candidateAliases {
		c := levenshteinCloseness(q, strings.ToLower(strings.TrimSpace(a)))
		if c > best {
			best = c
		}
	}
	return best
}

func levenshteinCloseness(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshteinDistance(a, b))/float64(maxLen)
}

// levenshteinDistance is the standard single-character insert/delete/
// substitute edit distance. No edit-distance library appears anywhere in
// the retrieval pack, so this is implemented directly (see DESIGN.md).
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Mappings resolves every alias in aliases, returning a map keyed by the
// literal alias text to either a resolved player id or "" if unresolved.
// Mirrors get_alias_mappings: one entry per input alias, for the caller to
// attach to a PendingTournament.
func (s *Service) Mappings(ctx context.Context, aliases []string, region string) (map[string]string, error) {
	out := make(map[string]string, len(aliases))
	for _, a := range aliases {
		p, err := s.TopSuggestion(ctx, a, region)
		if err != nil {
			return nil, errors.Internal(err)
		}
		if p == nil {
			out[a] = ""
			continue
		}
		out[a] = p.ID
	}
	return out, nil
}
