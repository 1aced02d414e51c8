// Package webview implements the web-context half of §9's dynamic field
// serialization strategy: ids pass through as the strings they already are,
// and dates are rendered "MM/DD/YY" — matching responsify's use of
// datetime.strftime("%x") in the source server. The persistence context
// (native time.Time, opaque ids) is simply the models package; this package
// only concerns itself with the shape handlers send over the wire.
package webview

import (
	"time"

	"bracketrank/internal/models"
)

const dateLayout = "01/02/06"

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func EncodePlayer(p models.Player) map[string]interface{} {
	ratings := make(map[string]map[string]float64, len(p.Ratings))
	for region, r := range p.Ratings {
		ratings[region] = map[string]float64{"mu": r.Mu, "sigma": r.Sigma}
	}
	return map[string]interface{}{
		"id":             p.ID,
		"name":           p.Name,
		"aliases":        p.Aliases,
		"regions":        p.Regions,
		"ratings":        ratings,
		"merged":         p.Merged,
		"merge_parent":   p.MergeParent,
		"merge_children": p.MergeChildren,
	}
}

func EncodeMatch(m models.Match) map[string]interface{} {
	return map[string]interface{}{"winner": m.Winner, "loser": m.Loser}
}

func EncodeTournament(t models.Tournament) map[string]interface{} {
	matches := make([]map[string]interface{}, 0, len(t.Matches))
	for _, m := range t.Matches {
		matches = append(matches, EncodeMatch(m))
	}
	return map[string]interface{}{
		"id":          t.ID,
		"name":        t.Name,
		"source_type": t.SourceType,
		"date":        date(t.Date),
		"regions":     t.Regions,
		"players":     t.Players,
		"matches":     matches,
		"orig_ids":    t.OrigIds,
	}
}

func EncodePendingTournament(p models.PendingTournament) map[string]interface{} {
	return map[string]interface{}{
		"id":             p.ID,
		"name":           p.Name,
		"source_type":    p.SourceType,
		"date":           date(p.Date),
		"regions":        p.Regions,
		"aliases":        p.Aliases,
		"alias_matches":  p.AliasMatches,
		"alias_mappings": p.AliasMapping,
	}
}

func EncodeMerge(m models.Merge) map[string]interface{} {
	return map[string]interface{}{
		"id":            m.ID,
		"requester":     m.Requester,
		"source_player": m.SourcePlayer,
		"target_player": m.TargetPlayer,
		"time":          date(m.Time),
	}
}

func EncodeRanking(r models.Ranking) map[string]interface{} {
	entries := make([]map[string]interface{}, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, map[string]interface{}{
			"rank":   e.Rank,
			"player": e.Player,
			"rating": map[string]float64{"mu": e.Rating.Mu, "sigma": e.Rating.Sigma},
		})
	}
	return map[string]interface{}{
		"id":          r.ID,
		"region":      r.Region,
		"time":        date(r.Time),
		"tournaments": r.Tournaments,
		"entries":     entries,
	}
}

func EncodeRegion(r models.Region) map[string]interface{} {
	return map[string]interface{}{"id": r.ID, "display_name": r.DisplayName}
}
