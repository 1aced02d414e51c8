// Package ranking implements the Ranking Pipeline of §4.7: replay every
// canonical tournament in a region in date order, refreshing each player's
// first-seen-this-run rating to the default prior, applying §4.2 rate1v1 per
// match, then materializing an append-only leaderboard snapshot filtered by
// activity. Ported from garpr's rankings.py generate_ranking.
package ranking

import (
	"context"
	"sort"
	"sync"
	"time"

	"bracketrank/internal/metrics"
	"bracketrank/internal/models"
	"bracketrank/internal/ratings"
	"bracketrank/internal/store"
	"bracketrank/pkg/errors"
	"bracketrank/pkg/logger"

	"github.com/google/uuid"
)

// Pipeline materializes rankings, serialized per region because the pass
// touches every player and tournament in that region (§5).
type Pipeline struct {
	store store.Store

	mu      sync.Mutex
	regions map[string]*sync.Mutex
}

func New(s store.Store) *Pipeline {
	return &Pipeline{store: s, regions: map[string]*sync.Mutex{}}
}

func (p *Pipeline) regionLock(region string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.regions[region]
	if !ok {
		m = &sync.Mutex{}
		p.regions[region] = m
	}
	return m
}

// Generate runs the full pipeline for region as of now, using dayLimit and
// numTourneys as the activity-inclusion window (§4.7 step 5).
func (p *Pipeline) Generate(ctx context.Context, region string, now time.Time, dayLimit, numTourneys int) (*models.Ranking, error) {
	lock := p.regionLock(region)
	lock.Lock()
	defer lock.Unlock()

	tournaments, err := p.store.GetAllTournaments(ctx, nil, []string{region}, store.OpAnd)
	if err != nil {
		return nil, errors.Internal(err)
	}
	sort.Slice(tournaments, func(i, j int) bool { return tournaments[i].Date.Before(tournaments[j].Date) })

	seen := map[string]struct{}{}
	lastActive := map[string]time.Time{}
	tourneyCountWithin := map[string]int{}
	windowStart := now.AddDate(0, 0, -dayLimit)

	playerCache := map[string]*models.Player{}
	loadPlayer := func(id string) (*models.Player, error) {
		if pl, ok := playerCache[id]; ok {
			return pl, nil
		}
		pl, err := p.store.GetPlayerByID(ctx, id)
		if err != nil {
			return nil, errors.Internal(err)
		}
		if pl == nil {
			return nil, errors.NotFound("player referenced by tournament not found: " + id)
		}
		playerCache[id] = pl
		return pl, nil
	}

	for _, t := range tournaments {
		for _, pid := range t.Players {
			lastActive[pid] = t.Date
			if !t.Date.Before(windowStart) {
				tourneyCountWithin[pid]++
			}
		}
		for _, m := range t.Matches {
			winner, err := loadPlayer(m.Winner)
			if err != nil {
				return nil, err
			}
			loser, err := loadPlayer(m.Loser)
			if err != nil {
				return nil, err
			}

			if _, ok := seen[winner.ID]; !ok {
				resetRating(winner, region)
				seen[winner.ID] = struct{}{}
			}
			if _, ok := seen[loser.ID]; !ok {
				resetRating(loser, region)
				seen[loser.ID] = struct{}{}
			}

			wr, lr := ratings.Rate1v1(toRatingsRating(winner.Ratings[region]), toRatingsRating(loser.Ratings[region]))
			winner.Ratings[region] = fromRatingsRating(wr)
			loser.Ratings[region] = fromRatingsRating(lr)
		}
	}

	for id := range seen {
		pl, err := loadPlayer(id)
		if err != nil {
			return nil, err
		}
		if err := p.store.UpdatePlayer(ctx, pl); err != nil {
			return nil, errors.Internal(err)
		}
	}

	var entries []models.RankingEntry
	for id := range seen {
		pl := playerCache[id]
		if !isInRegion(pl, region) {
			continue
		}
		if lastActive[id].Before(windowStart) {
			continue
		}
		if tourneyCountWithin[id] < numTourneys {
			continue
		}
		entries = append(entries, models.RankingEntry{
			Player: id,
			Rating: pl.Ratings[region],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		si := ratings.Score(toRatingsRating(entries[i].Rating))
		sj := ratings.Score(toRatingsRating(entries[j].Rating))
		if si != sj {
			return si > sj
		}
		return entries[i].Player < entries[j].Player
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	tournamentIDs := make([]string, 0, len(tournaments))
	for _, t := range tournaments {
		tournamentIDs = append(tournamentIDs, t.ID)
	}

	ranking := &models.Ranking{
		ID:          uuid.NewString(),
		Region:      region,
		Time:        now,
		Tournaments: tournamentIDs,
		Entries:     entries,
	}
	if err := p.store.CreateRanking(ctx, ranking); err != nil {
		return nil, errors.Internal(err)
	}
	metrics.RankingsGenerated.WithLabelValues(region).Inc()
	logger.Info("ranking generated", "region", region, "entries", len(entries), "tournaments", len(tournaments))
	return ranking, nil
}

func (p *Pipeline) Latest(ctx context.Context, region string) (*models.Ranking, error) {
	r, err := p.store.GetLatestRanking(ctx, region)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if r == nil {
		return nil, errors.NotFound("no ranking has been generated for region: " + region)
	}
	return r, nil
}

func resetRating(p *models.Player, region string) {
	if p.Ratings == nil {
		p.Ratings = map[string]models.Rating{}
	}
	p.Ratings[region] = models.DefaultRating()
}

func isInRegion(p *models.Player, region string) bool {
	for _, r := range p.Regions {
		if r == region {
			return true
		}
	}
	return false
}

func toRatingsRating(r models.Rating) ratings.Rating {
	return ratings.Rating{Mu: r.Mu, Sigma: r.Sigma}
}

func fromRatingsRating(r ratings.Rating) models.Rating {
	return models.Rating{Mu: r.Mu, Sigma: r.Sigma}
}
