// Package merge implements the Identity Merge Engine of §4.4: apply and
// undo, driven by each Tournament's immutable origIds snapshot rather than
// its live, mutable players set. Ported from garpr's dao.py merge_players /
// unmerge_players and model.py Merge.clean, adapted to keep the three
// distinct pre-check rejection causes the original raised (ValidationError
// messages) rather than collapsing them into one generic error.
package merge

import (
	"context"
	"sync"
	"time"

	"bracketrank/internal/metrics"
	"bracketrank/internal/models"
	"bracketrank/internal/store"
	"bracketrank/pkg/errors"
	"bracketrank/pkg/logger"

	"github.com/google/uuid"
)

// Engine serializes merge/unmerge per region (§5: both rewrite many
// tournaments and players, so concurrent merges in the same region could
// race on the same tournament).
type Engine struct {
	store store.Store

	mu      sync.Mutex
	regions map[string]*sync.Mutex
}

func New(s store.Store) *Engine {
	return &Engine{store: s, regions: map[string]*sync.Mutex{}}
}

func (e *Engine) regionLock(region string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.regions[region]
	if !ok {
		m = &sync.Mutex{}
		e.regions[region] = m
	}
	return m
}

// Apply merges sourceID into targetID on behalf of requesterID, scoped to
// region for the purpose of exclusive locking (the lock taken is the one for
// the region argument as given by the caller).
func (e *Engine) Apply(ctx context.Context, region, requesterID, sourceID, targetID string) (*models.Merge, error) {
	lock := e.regionLock(region)
	lock.Lock()
	defer lock.Unlock()

	var result *models.Merge
	err := e.store.RunInTransaction(ctx, func(tx store.Store) error {
		source, target, err := loadPair(ctx, tx, sourceID, targetID)
		if err != nil {
			return err
		}
		if err := precheckApply(source, target); err != nil {
			return err
		}

		coParticipated, err := anyTournamentContainsBoth(ctx, tx, source.ID, target.ID)
		if err != nil {
			return err
		}
		if coParticipated {
			return errors.Conflict("source and target have competed against each other and cannot be merged")
		}

		target.Aliases = unionStrings(target.Aliases, source.Aliases)
		target.Regions = unionStrings(target.Regions, source.Regions)
		target.MergeChildren = unionStrings(target.MergeChildren, append([]string{source.ID}, source.MergeChildren...))
		source.MergeParent = &target.ID
		source.Merged = true

		if err := tx.UpdatePlayer(ctx, source); err != nil {
			return errors.Internal(err)
		}
		if err := tx.UpdatePlayer(ctx, target); err != nil {
			return errors.Internal(err)
		}

		tournaments, err := tx.GetAllTournaments(ctx, []string{source.ID}, nil, store.OpAnd)
		if err != nil {
			return errors.Internal(err)
		}
		for i := range tournaments {
			t := &tournaments[i]
			t.ReplacePlayer(source.ID, target.ID)
			if err := tx.UpdateTournament(ctx, t); err != nil {
				return errors.Internal(err)
			}
		}

		mg := &models.Merge{
			ID:           uuid.NewString(),
			Requester:    requesterID,
			SourcePlayer: source.ID,
			TargetPlayer: target.ID,
			Time:         time.Now(),
		}
		if err := tx.CreateMerge(ctx, mg); err != nil {
			return errors.Internal(err)
		}
		result = mg
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MergesApplied.WithLabelValues(region).Inc()
	logger.Info("merge applied", "id", result.ID, "source", sourceID, "target", targetID)
	return result, nil
}

// Undo reverses a previously applied merge, using origIds to decide which
// tournaments belong to source's lineage rather than target's.
func (e *Engine) Undo(ctx context.Context, region, mergeID string) error {
	lock := e.regionLock(region)
	lock.Lock()
	defer lock.Unlock()

	err := e.store.RunInTransaction(ctx, func(tx store.Store) error {
		mg, err := tx.GetMerge(ctx, mergeID)
		if err != nil {
			return errors.Internal(err)
		}
		if mg == nil {
			return errors.NotFound("merge not found: " + mergeID)
		}

		source, target, err := loadPair(ctx, tx, mg.SourcePlayer, mg.TargetPlayer)
		if err != nil {
			return err
		}
		if source.MergeParent == nil || *source.MergeParent != target.ID {
			return errors.Validation("source is not currently merged into target", nil)
		}
		if target.Merged {
			return errors.Validation("target has itself been merged; undo that merge first", nil)
		}

		sourceFamily := append([]string{source.ID}, source.MergeChildren...)

		source.MergeParent = nil
		source.Merged = false
		target.MergeChildren = removeAll(target.MergeChildren, sourceFamily)

		if err := tx.UpdatePlayer(ctx, source); err != nil {
			return errors.Internal(err)
		}
		if err := tx.UpdatePlayer(ctx, target); err != nil {
			return errors.Internal(err)
		}

		tournaments, err := tx.GetAllTournaments(ctx, []string{source.ID, target.ID}, nil, store.OpOr)
		if err != nil {
			return errors.Internal(err)
		}
		for i := range tournaments {
			t := &tournaments[i]
			if !containsString(t.Players, target.ID) {
				continue
			}
			if !overlaps(t.OrigIds, sourceFamily) {
				continue
			}
			t.ReplacePlayer(target.ID, source.ID)
			if err := tx.UpdateTournament(ctx, t); err != nil {
				return errors.Internal(err)
			}
		}

		return tx.DeleteMerge(ctx, mergeID)
	})
	if err != nil {
		return err
	}
	metrics.MergesUndone.WithLabelValues(region).Inc()
	logger.Info("merge undone", "id", mergeID)
	return nil
}

func loadPair(ctx context.Context, tx store.Store, sourceID, targetID string) (*models.Player, *models.Player, error) {
	source, err := tx.GetPlayerByID(ctx, sourceID)
	if err != nil {
		return nil, nil, errors.Internal(err)
	}
	if source == nil {
		return nil, nil, errors.NotFound("source player not found: " + sourceID)
	}
	target, err := tx.GetPlayerByID(ctx, targetID)
	if err != nil {
		return nil, nil, errors.Internal(err)
	}
	if target == nil {
		return nil, nil, errors.NotFound("target player not found: " + targetID)
	}
	return source, target, nil
}

// precheckApply reproduces model.py Merge.clean: three distinct causes,
// reported as three distinct validation messages rather than one generic
// rejection (§7's "surface underlying error kinds").
func precheckApply(source, target *models.Player) error {
	if source.ID == target.ID {
		return errors.Validation("source and target must be different players", nil)
	}
	if source.Merged {
		return errors.Validation("source is already merged", nil)
	}
	if target.Merged {
		return errors.Validation("target is already merged", nil)
	}
	return nil
}

func anyTournamentContainsBoth(ctx context.Context, tx store.Store, a, b string) (bool, error) {
	tournaments, err := tx.GetAllTournaments(ctx, []string{a}, nil, store.OpAnd)
	if err != nil {
		return false, errors.Internal(err)
	}
	for _, t := range tournaments {
		if containsString(t.Players, b) {
			return true, nil
		}
	}
	return false, nil
}

func unionStrings(a, b []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func removeAll(from []string, remove []string) []string {
	drop := map[string]struct{}{}
	for _, s := range remove {
		drop[s] = struct{}{}
	}
	var out []string
	for _, s := range from {
		if _, ok := drop[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func overlaps(a, b []string) bool {
	set := map[string]struct{}{}
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}
