// Package models defines the entities of §3: Region, Player, Rating, Match,
// Tournament, PendingTournament, Merge, Ranking, User and Session. Fields
// that reference another entity store only its id — never a nested object
// (§9 "Cyclic references"): Player <-> Player forms a forest via
// MergeParent/MergeChildren, dereferenced through the registry, not embedded.
package models

import "time"

// SourceType enumerates the bracket providers a Tournament can originate from.
type SourceType string

const (
	SourceTIO       SourceType = "tio"
	SourceChallonge SourceType = "challonge"
	SourceSmashGG   SourceType = "smashgg"
	SourceOther     SourceType = "other"
)

// AdminLevel is the optional elevated-privilege tier for a User.
type AdminLevel string

const (
	AdminLevelRegion AdminLevel = "REGION"
	AdminLevelSuper  AdminLevel = "SUPER"
)

// Region is immutable once created; its id is the human-readable key.
type Region struct {
	ID          string `json:"id" db:"id"`
	DisplayName string `json:"display_name" db:"display_name"`
}

// Rating is a (mu, sigma) belief pair about a player's skill in one region.
type Rating struct {
	Mu    float64 `json:"mu" db:"mu"`
	Sigma float64 `json:"sigma" db:"sigma"`
}

// DefaultMu and DefaultSigma are the TrueSkill-equivalent priors (§4.2).
const (
	DefaultMu    = 25.0
	DefaultSigma = 25.0 / 3.0
)

// DefaultRating returns a fresh (mu0, sigma0) prior.
func DefaultRating() Rating {
	return Rating{Mu: DefaultMu, Sigma: DefaultSigma}
}

// Player is the identity-graph node described in §3.
type Player struct {
	ID            string            `json:"id" db:"id"`
	Name          string            `json:"name" db:"name"`
	Aliases       []string          `json:"aliases" db:"aliases"`
	Regions       []string          `json:"regions" db:"regions"`
	Ratings       map[string]Rating `json:"ratings" db:"ratings"`
	Merged        bool              `json:"merged" db:"merged"`
	MergeParent   *string           `json:"merge_parent,omitempty" db:"merge_parent"`
	MergeChildren []string          `json:"merge_children" db:"merge_children"`
}

// Match is embedded in a Tournament; Winner ≠ Loser is a Tournament invariant.
type Match struct {
	Winner string `json:"winner" db:"winner"`
	Loser  string `json:"loser" db:"loser"`
}

// ContainsPlayer reports whether the match involves the given player id.
func (m Match) ContainsPlayer(playerID string) bool {
	return m.Winner == playerID || m.Loser == playerID
}

// ReplacePlayer rewrites every reference to oldID with newID, used by the
// merge engine (§4.4) to rewrite matches in place.
func (m *Match) ReplacePlayer(oldID, newID string) {
	if m.Winner == oldID {
		m.Winner = newID
	}
	if m.Loser == oldID {
		m.Loser = newID
	}
}

// Tournament is the canonical, finalized bracket result (§3).
type Tournament struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	SourceType SourceType `json:"source_type" db:"source_type"`
	Date       time.Time  `json:"date" db:"date"`
	Regions    []string   `json:"regions" db:"regions"`
	Raw        string     `json:"raw" db:"raw"`
	Players    []string   `json:"players" db:"players"`
	Matches    []Match    `json:"matches" db:"matches"`
	OrigIds    []string   `json:"orig_ids" db:"orig_ids"`
}

// ReplacePlayer removes playerToRemove from Players (if present), adds
// playerToAdd, and rewrites every Match accordingly. It does not touch
// OrigIds — that snapshot is immutable outside of finalize (§4.4 step 6).
// Caller is responsible for persisting the result.
func (t *Tournament) ReplacePlayer(playerToRemove, playerToAdd string) {
	if playerToRemove == "" || playerToAdd == "" {
		panic("cannot replace with an empty player id")
	}
	for i, p := range t.Players {
		if p == playerToRemove {
			t.Players = append(t.Players[:i], t.Players[i+1:]...)
			break
		}
	}
	hasTarget := false
	for _, p := range t.Players {
		if p == playerToAdd {
			hasTarget = true
			break
		}
	}
	if !hasTarget {
		t.Players = append(t.Players, playerToAdd)
	}
	for i := range t.Matches {
		t.Matches[i].ReplacePlayer(playerToRemove, playerToAdd)
	}
}

// AliasMatch is PendingTournament's unresolved counterpart to Match.
type AliasMatch struct {
	Winner string `json:"winner" db:"winner"`
	Loser  string `json:"loser" db:"loser"`
}

// PendingTournament awaits alias-to-player resolution before finalize (§3, §4.6).
type PendingTournament struct {
	ID           string            `json:"id" db:"id"`
	Name         string            `json:"name" db:"name"`
	SourceType   SourceType        `json:"source_type" db:"source_type"`
	Date         time.Time         `json:"date" db:"date"`
	Regions      []string          `json:"regions" db:"regions"`
	Raw          string            `json:"raw" db:"raw"`
	Aliases      []string          `json:"aliases" db:"aliases"`
	AliasMatches []AliasMatch      `json:"alias_matches" db:"alias_matches"`
	AliasMapping map[string]string `json:"alias_mappings" db:"alias_mappings"`
}

// SetAliasMapping idempotently rewrites or inserts the mapping for alias.
// playerID == "" removes the mapping (maps the alias back to unresolved).
func (p *PendingTournament) SetAliasMapping(alias, playerID string) {
	if p.AliasMapping == nil {
		p.AliasMapping = map[string]string{}
	}
	if playerID == "" {
		delete(p.AliasMapping, alias)
		return
	}
	p.AliasMapping[alias] = playerID
}

// DeleteAliasMapping removes any mapping entry for alias.
func (p *PendingTournament) DeleteAliasMapping(alias string) {
	delete(p.AliasMapping, alias)
}

// Merge records the declaration that source refers to the same identity as target.
type Merge struct {
	ID           string    `json:"id" db:"id"`
	Requester    string    `json:"requester" db:"requester"`
	SourcePlayer string    `json:"source_player" db:"source_player"`
	TargetPlayer string    `json:"target_player" db:"target_player"`
	Time         time.Time `json:"time" db:"time"`
}

// RankingEntry is one row of a materialized leaderboard.
type RankingEntry struct {
	Rank   int    `json:"rank" db:"rank"`
	Player string `json:"player" db:"player"`
	Rating Rating `json:"rating" db:"rating"`
}

// Ranking is an append-only leaderboard snapshot for one region.
type Ranking struct {
	ID          string         `json:"id" db:"id"`
	Region      string         `json:"region" db:"region"`
	Time        time.Time      `json:"time" db:"time"`
	Tournaments []string       `json:"tournaments" db:"tournaments"`
	Entries     []RankingEntry `json:"entries" db:"entries"`
}

// User is an authenticated principal, optionally a region or super admin.
type User struct {
	Username       string     `json:"username" db:"username"`
	Salt           string     `json:"salt" db:"salt"`
	HashedPassword string     `json:"hashed_password" db:"hashed_password"`
	AdminRegions   []string   `json:"admin_regions" db:"admin_regions"`
	AdminLevel     AdminLevel `json:"admin_level,omitempty" db:"admin_level"`
}

// Session binds an opaque bearer token to a user. At most one per user (§3).
type Session struct {
	ID   string `json:"id" db:"id"`
	User string `json:"user" db:"user"`
}
