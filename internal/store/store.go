// Package store implements the Persistence Layer of §4.1: typed queries over
// the document collections named in §6 (region, player, tournament,
// pending_tournament, ranking, merge, session, user).
//
// Store is satisfied by two implementations: Postgres (internal/store's
// postgres.go, the production backend, JSONB columns over lib/pq) and Memory
// (memory.go, an in-process map-backed store used by tests and by any
// deployment too small to need Postgres). Both honor the same read-after-
// write consistency contract described in §4.1.
package store

import (
	"bracketrank/internal/models"
	"context"
)

// NotFoundError reports an update against a missing record; callers detect
// it with errors.As.
type NotFoundError struct{ Collection, ID string }

func (e *NotFoundError) Error() string {
	return e.Collection + " not found: " + e.ID
}

// AliasOp selects how multiple player/region filters combine in GetAllTournaments.
type AliasOp string

const (
	OpAnd AliasOp = "and"
	OpOr  AliasOp = "or"
)

// Store is the full persistence contract of §4.1, plus the collections
// needed by §4.6–§4.8 (pending tournaments, merges, users, sessions).
type Store interface {
	// Regions
	CreateRegion(ctx context.Context, r *models.Region) error
	GetRegion(ctx context.Context, id string) (*models.Region, error)
	GetAllRegions(ctx context.Context) ([]models.Region, error)

	// Players
	CreatePlayer(ctx context.Context, p *models.Player) error
	GetPlayerByID(ctx context.Context, id string) (*models.Player, error)
	GetPlayerByAlias(ctx context.Context, alias, region string, includeMerged bool) (*models.Player, error)
	GetPlayersByAlias(ctx context.Context, alias string, includeMerged bool) ([]models.Player, error)
	GetAllPlayers(ctx context.Context, region string, includeMerged bool) ([]models.Player, error)
	GetPlayersWithSimilarAliases(ctx context.Context, candidateAliases []string) ([]models.Player, error)
	UpdatePlayer(ctx context.Context, p *models.Player) error

	// Tournaments
	CreateTournament(ctx context.Context, t *models.Tournament) error
	GetTournamentByID(ctx context.Context, id string) (*models.Tournament, error)
	GetAllTournaments(ctx context.Context, players, regions []string, op AliasOp) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, t *models.Tournament) error
	DeleteTournament(ctx context.Context, id string) error

	// Pending tournaments
	CreatePendingTournament(ctx context.Context, p *models.PendingTournament) error
	GetPendingTournamentByID(ctx context.Context, id string) (*models.PendingTournament, error)
	GetAllPendingTournaments(ctx context.Context, regions []string) ([]models.PendingTournament, error)
	UpdatePendingTournament(ctx context.Context, p *models.PendingTournament) error
	DeletePendingTournament(ctx context.Context, id string) error

	// Merges
	CreateMerge(ctx context.Context, m *models.Merge) error
	GetMerge(ctx context.Context, id string) (*models.Merge, error)
	GetAllMerges(ctx context.Context) ([]models.Merge, error)
	DeleteMerge(ctx context.Context, id string) error

	// Rankings
	CreateRanking(ctx context.Context, r *models.Ranking) error
	GetLatestRanking(ctx context.Context, region string) (*models.Ranking, error)

	// Users & sessions
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	CreateSession(ctx context.Context, s *models.Session) error
	GetSessionByID(ctx context.Context, id string) (*models.Session, error)
	GetSessionByUser(ctx context.Context, userID string) (*models.Session, error)
	DeleteSessionsForUser(ctx context.Context, userID string) error
	DeleteSession(ctx context.Context, id string) error

	// RunInTransaction executes fn against a Store bound to a single
	// transaction; all writes inside fn commit atomically or none do.
	// This realizes §9's preferred partial-failure strategy (a) for merge
	// and finalize, in place of the source system's un-rolled-back writes.
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error
}
