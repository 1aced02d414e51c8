// Package pending implements the Pending Tournament Store of §4.6: the
// staging area between a scrape and a canonical Tournament, where an admin
// resolves alias-to-player mappings before finalize. Grounded in garpr's
// server.py PendingTournamentResource and dao.py tournament-building code.
package pending

import (
	"context"
	"sort"
	"strings"

	"bracketrank/internal/alias"
	"bracketrank/internal/metrics"
	"bracketrank/internal/models"
	"bracketrank/internal/players"
	"bracketrank/internal/scraper"
	"bracketrank/internal/store"
	"bracketrank/pkg/errors"
	"bracketrank/pkg/logger"

	"github.com/google/uuid"
)

type Service struct {
	store   store.Store
	players *players.Service
	alias   *alias.Service
}

func New(s store.Store, p *players.Service, a *alias.Service) *Service {
	return &Service{store: s, players: p, alias: a}
}

// CreateFromScraper pulls a raw bracket via scraper.Scraper (§6: the core
// consumes only getName/getDate/getRaw/getPlayers/getMatches/getUrl), seeds
// the PendingTournament's alias set from the raw match list, and
// pre-populates alias mappings with the Alias Resolution Service's best
// guesses.
func (s *Service) CreateFromScraper(ctx context.Context, sourceType models.SourceType, sc scraper.Scraper, regions []string) (*models.PendingTournament, error) {
	if len(regions) == 0 {
		return nil, errors.Validation("at least one region is required", nil)
	}

	aliasSet := map[string]struct{}{}
	for _, a := range sc.GetPlayers() {
		aliasSet[strings.ToLower(a)] = struct{}{}
	}
	for _, m := range sc.GetMatches() {
		aliasSet[strings.ToLower(m.Winner)] = struct{}{}
		aliasSet[strings.ToLower(m.Loser)] = struct{}{}
	}
	aliases := make([]string, 0, len(aliasSet))
	for a := range aliasSet {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)

	matches := make([]models.AliasMatch, 0, len(sc.GetMatches()))
	for _, m := range sc.GetMatches() {
		matches = append(matches, models.AliasMatch{
			Winner: strings.ToLower(m.Winner),
			Loser:  strings.ToLower(m.Loser),
		})
	}

	mapping, err := s.alias.Mappings(ctx, aliases, regions[0])
	if err != nil {
		return nil, err
	}

	pt := &models.PendingTournament{
		ID:           uuid.NewString(),
		Name:         sc.GetName(),
		SourceType:   sourceType,
		Date:         sc.GetDate(),
		Regions:      regions,
		Raw:          sc.GetRaw(),
		Aliases:      aliases,
		AliasMatches: matches,
		AliasMapping: mapping,
	}
	if err := s.store.CreatePendingTournament(ctx, pt); err != nil {
		return nil, errors.Internal(err)
	}
	logger.Info("pending tournament created", "id", pt.ID, "source", sourceType, "aliases", len(aliases))
	return pt, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.PendingTournament, error) {
	pt, err := s.store.GetPendingTournamentByID(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if pt == nil {
		return nil, errors.NotFound("pending tournament not found: " + id)
	}
	return pt, nil
}

func (s *Service) List(ctx context.Context, regions []string) ([]models.PendingTournament, error) {
	pts, err := s.store.GetAllPendingTournaments(ctx, regions)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return pts, nil
}

// SetAliasMapping idempotently assigns alias to playerID. playerID == ""
// clears the mapping back to unresolved.
func (s *Service) SetAliasMapping(ctx context.Context, id, alias, playerID string) error {
	pt, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !containsString(pt.Aliases, alias) {
		return errors.Validation("alias is not part of this pending tournament: "+alias, nil)
	}
	pt.SetAliasMapping(alias, playerID)
	if err := s.store.UpdatePendingTournament(ctx, pt); err != nil {
		return errors.Internal(err)
	}
	return nil
}

func (s *Service) DeleteAliasMapping(ctx context.Context, id, alias string) error {
	pt, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	pt.DeleteAliasMapping(alias)
	if err := s.store.UpdatePendingTournament(ctx, pt); err != nil {
		return errors.Internal(err)
	}
	return nil
}

// Finalize implements §4.6 step 4: unmapped aliases become new players,
// every mapping is re-checked against merged players, the canonical
// Tournament is built from origIds = players (the set snapshot), and the
// PendingTournament is deleted in the same transaction.
func (s *Service) Finalize(ctx context.Context, id string) (*models.Tournament, error) {
	var result *models.Tournament
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		pt, err := tx.GetPendingTournamentByID(ctx, id)
		if err != nil {
			return errors.Internal(err)
		}
		if pt == nil {
			return errors.NotFound("pending tournament not found: " + id)
		}

		region := ""
		if len(pt.Regions) > 0 {
			region = pt.Regions[0]
		}

		if pt.AliasMapping == nil {
			pt.AliasMapping = map[string]string{}
		}
		for _, a := range pt.Aliases {
			if pt.AliasMapping[a] != "" {
				continue
			}
			p := &models.Player{
				ID:      uuid.NewString(),
				Name:    a,
				Aliases: []string{a},
				Regions: []string{region},
				Ratings: map[string]models.Rating{region: models.DefaultRating()},
			}
			if err := tx.CreatePlayer(ctx, p); err != nil {
				return errors.Internal(err)
			}
			pt.AliasMapping[a] = p.ID
		}

		for _, a := range pt.Aliases {
			playerID := pt.AliasMapping[a]
			p, err := tx.GetPlayerByID(ctx, playerID)
			if err != nil {
				return errors.Internal(err)
			}
			if p == nil {
				return errors.NotFound("mapped player not found: " + playerID)
			}
			if p.Merged {
				return errors.Conflict("player already merged: " + a + " maps to a merged player; undo that merge or remap")
			}
		}

		playerSet := map[string]struct{}{}
		var playersList []string
		for _, a := range pt.Aliases {
			id := pt.AliasMapping[a]
			if _, ok := playerSet[id]; ok {
				return errors.Validation("duplicate player in tournament players: "+id, nil)
			}
			playerSet[id] = struct{}{}
			playersList = append(playersList, id)
		}

		matches := make([]models.Match, 0, len(pt.AliasMatches))
		for _, am := range pt.AliasMatches {
			matches = append(matches, models.Match{
				Winner: pt.AliasMapping[am.Winner],
				Loser:  pt.AliasMapping[am.Loser],
			})
		}
		for _, m := range matches {
			if m.Winner == m.Loser {
				return errors.Validation("match winner and loser must differ", nil)
			}
		}

		tr := &models.Tournament{
			ID:         uuid.NewString(),
			Name:       pt.Name,
			SourceType: pt.SourceType,
			Date:       pt.Date,
			Regions:    pt.Regions,
			Raw:        pt.Raw,
			Players:    playersList,
			Matches:    matches,
			OrigIds:    append([]string{}, playersList...),
		}
		if err := tx.CreateTournament(ctx, tr); err != nil {
			return errors.Internal(err)
		}
		if err := tx.DeletePendingTournament(ctx, id); err != nil {
			return errors.Internal(err)
		}
		result = tr
		return nil
	})
	if err != nil {
		metrics.FinalizeFailuresTotal.WithLabelValues(string(errors.As(err).Code)).Inc()
		return nil, err
	}
	logger.Info("pending tournament finalized", "tournament_id", result.ID)
	return result, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
