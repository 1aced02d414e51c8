package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"bracketrank/internal/models"
)

// Memory is an in-process Store, organized as one map per collection
// guarded by a single RWMutex. It exists for tests and for deployments that
// don't need Postgres; it honors the same interface contract as Postgres so
// every package above internal/store is backend-agnostic.
type Memory struct {
	mu sync.RWMutex

	regions            map[string]models.Region
	players            map[string]models.Player
	tournaments        map[string]models.Tournament
	pendingTournaments map[string]models.PendingTournament
	merges             map[string]models.Merge
	rankings           []models.Ranking
	users              map[string]models.User
	sessions           map[string]models.Session
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		regions:            map[string]models.Region{},
		players:            map[string]models.Player{},
		tournaments:        map[string]models.Tournament{},
		pendingTournaments: map[string]models.PendingTournament{},
		merges:             map[string]models.Merge{},
		users:              map[string]models.User{},
		sessions:           map[string]models.Session{},
	}
}

// --- Regions ---

func (m *Memory) CreateRegion(_ context.Context, r *models.Region) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions[r.ID] = *r
	return nil
}

func (m *Memory) GetRegion(_ context.Context, id string) (*models.Region, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.regions[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) GetAllRegions(_ context.Context) ([]models.Region, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Region, 0, len(m.regions))
	for _, r := range m.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

// --- Players ---

func (m *Memory) CreatePlayer(_ context.Context, p *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.ID] = clonePlayer(*p)
	return nil
}

func (m *Memory) GetPlayerByID(_ context.Context, id string) (*models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return nil, nil
	}
	cp := clonePlayer(p)
	return &cp, nil
}

func hasString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (m *Memory) GetPlayerByAlias(_ context.Context, alias, region string, includeMerged bool) (*models.Player, error) {
	alias = strings.ToLower(alias)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.players {
		if !includeMerged && p.Merged {
			continue
		}
		if !hasString(p.Regions, region) {
			continue
		}
		if hasString(p.Aliases, alias) {
			cp := clonePlayer(p)
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetPlayersByAlias(_ context.Context, alias string, includeMerged bool) ([]models.Player, error) {
	alias = strings.ToLower(alias)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Player
	for _, p := range m.players {
		if !includeMerged && p.Merged {
			continue
		}
		if hasString(p.Aliases, alias) {
			out = append(out, clonePlayer(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetAllPlayers(_ context.Context, region string, includeMerged bool) ([]models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Player
	for _, p := range m.players {
		if !includeMerged && p.Merged {
			continue
		}
		if region != "" && !hasString(p.Regions, region) {
			continue
		}
		out = append(out, clonePlayer(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (m *Memory) GetPlayersWithSimilarAliases(_ context.Context, candidateAliases []string) ([]models.Player, error) {
	set := map[string]bool{}
	for _, a := range candidateAliases {
		set[strings.ToLower(a)] = true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Player
	for _, p := range m.players {
		if p.Merged {
			continue
		}
		for _, a := range p.Aliases {
			if set[a] {
				out = append(out, clonePlayer(p))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdatePlayer(_ context.Context, p *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[p.ID]; !ok {
		return &NotFoundError{Collection: "player", ID: p.ID}
	}
	m.players[p.ID] = clonePlayer(*p)
	return nil
}

// --- Tournaments ---

func (m *Memory) CreateTournament(_ context.Context, t *models.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tournaments[t.ID] = cloneTournament(*t)
	return nil
}

func (m *Memory) GetTournamentByID(_ context.Context, id string) (*models.Tournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tournaments[id]
	if !ok {
		return nil, nil
	}
	cp := cloneTournament(t)
	return &cp, nil
}

func anyOverlap(a, b []string) bool {
	for _, x := range a {
		if hasString(b, x) {
			return true
		}
	}
	return false
}

func (m *Memory) GetAllTournaments(_ context.Context, players, regions []string, op AliasOp) ([]models.Tournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Tournament
	for _, t := range m.tournaments {
		matchesPlayers := len(players) == 0 || anyOverlap(players, t.Players)
		matchesRegions := len(regions) == 0 || anyOverlap(regions, t.Regions)

		var include bool
		switch {
		case len(players) == 0 && len(regions) == 0:
			include = true
		case op == OpOr:
			include = (len(players) > 0 && matchesPlayers) || (len(regions) > 0 && matchesRegions)
		default: // and
			include = matchesPlayers && matchesRegions
		}

		if include {
			out = append(out, cloneTournament(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (m *Memory) UpdateTournament(_ context.Context, t *models.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tournaments[t.ID]; !ok {
		return &NotFoundError{Collection: "tournament", ID: t.ID}
	}
	m.tournaments[t.ID] = cloneTournament(*t)
	return nil
}

func (m *Memory) DeleteTournament(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tournaments, id)
	return nil
}

// --- Pending tournaments ---

func (m *Memory) CreatePendingTournament(_ context.Context, p *models.PendingTournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingTournaments[p.ID] = clonePending(*p)
	return nil
}

func (m *Memory) GetPendingTournamentByID(_ context.Context, id string) (*models.PendingTournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pendingTournaments[id]
	if !ok {
		return nil, nil
	}
	cp := clonePending(p)
	return &cp, nil
}

func (m *Memory) GetAllPendingTournaments(_ context.Context, regions []string) ([]models.PendingTournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.PendingTournament
	for _, p := range m.pendingTournaments {
		if len(regions) > 0 && !anyOverlap(regions, p.Regions) {
			continue
		}
		out = append(out, clonePending(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) UpdatePendingTournament(_ context.Context, p *models.PendingTournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pendingTournaments[p.ID]; !ok {
		return &NotFoundError{Collection: "pending_tournament", ID: p.ID}
	}
	m.pendingTournaments[p.ID] = clonePending(*p)
	return nil
}

func (m *Memory) DeletePendingTournament(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pendingTournaments, id)
	return nil
}

// --- Merges ---

func (m *Memory) CreateMerge(_ context.Context, mg *models.Merge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.merges[mg.ID] = *mg
	return nil
}

func (m *Memory) GetMerge(_ context.Context, id string) (*models.Merge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mg, ok := m.merges[id]
	if !ok {
		return nil, nil
	}
	return &mg, nil
}

func (m *Memory) GetAllMerges(_ context.Context) ([]models.Merge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Merge, 0, len(m.merges))
	for _, mg := range m.merges {
		out = append(out, mg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (m *Memory) DeleteMerge(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.merges, id)
	return nil
}

// --- Rankings ---

func (m *Memory) CreateRanking(_ context.Context, r *models.Ranking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rankings = append(m.rankings, *r)
	return nil
}

func (m *Memory) GetLatestRanking(_ context.Context, region string) (*models.Ranking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *models.Ranking
	for i := range m.rankings {
		r := m.rankings[i]
		if r.Region != region {
			continue
		}
		if latest == nil || r.Time.After(latest.Time) {
			rc := r
			latest = &rc
		}
	}
	return latest, nil
}

// --- Users & sessions ---

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Username] = *u
	return nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Memory) UpdateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; !ok {
		return &NotFoundError{Collection: "user", ID: u.Username}
	}
	m.users[u.Username] = *u
	return nil
}

func (m *Memory) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *Memory) GetSessionByID(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) GetSessionByUser(_ context.Context, userID string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.User == userID {
			sc := s
			return &sc, nil
		}
	}
	return nil, nil
}

func (m *Memory) DeleteSessionsForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.User == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *Memory) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// RunInTransaction on Memory snapshots players, tournaments, pending
// tournaments, merges and rankings before running fn, and restores that
// snapshot if fn returns an error. The lock is held only while taking and
// restoring the snapshot, not while fn runs, so other callers can see fn's
// writes before it returns.
func (m *Memory) RunInTransaction(ctx context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	err := fn(m)
	if err != nil {
		m.mu.Lock()
		m.restoreLocked(snapshot)
		m.mu.Unlock()
	}
	return err
}

type memorySnapshot struct {
	players            map[string]models.Player
	tournaments        map[string]models.Tournament
	pendingTournaments map[string]models.PendingTournament
	merges             map[string]models.Merge
	rankings           []models.Ranking
}

func (m *Memory) snapshotLocked() memorySnapshot {
	s := memorySnapshot{
		players:            make(map[string]models.Player, len(m.players)),
		tournaments:        make(map[string]models.Tournament, len(m.tournaments)),
		pendingTournaments: make(map[string]models.PendingTournament, len(m.pendingTournaments)),
		merges:             make(map[string]models.Merge, len(m.merges)),
		rankings:           append([]models.Ranking{}, m.rankings...),
	}
	for k, v := range m.players {
		s.players[k] = clonePlayer(v)
	}
	for k, v := range m.tournaments {
		s.tournaments[k] = cloneTournament(v)
	}
	for k, v := range m.pendingTournaments {
		s.pendingTournaments[k] = clonePending(v)
	}
	for k, v := range m.merges {
		s.merges[k] = v
	}
	return s
}

func (m *Memory) restoreLocked(s memorySnapshot) {
	m.players = s.players
	m.tournaments = s.tournaments
	m.pendingTournaments = s.pendingTournaments
	m.merges = s.merges
	m.rankings = s.rankings
}

func clonePlayer(p models.Player) models.Player {
	cp := p
	cp.Aliases = append([]string{}, p.Aliases...)
	cp.Regions = append([]string{}, p.Regions...)
	cp.MergeChildren = append([]string{}, p.MergeChildren...)
	if p.Ratings != nil {
		cp.Ratings = make(map[string]models.Rating, len(p.Ratings))
		for k, v := range p.Ratings {
			cp.Ratings[k] = v
		}
	}
	if p.MergeParent != nil {
		parent := *p.MergeParent
		cp.MergeParent = &parent
	}
	return cp
}

func cloneTournament(t models.Tournament) models.Tournament {
	ct := t
	ct.Regions = append([]string{}, t.Regions...)
	ct.Players = append([]string{}, t.Players...)
	ct.OrigIds = append([]string{}, t.OrigIds...)
	ct.Matches = append([]models.Match{}, t.Matches...)
	return ct
}

func clonePending(p models.PendingTournament) models.PendingTournament {
	cp := p
	cp.Regions = append([]string{}, p.Regions...)
	cp.Aliases = append([]string{}, p.Aliases...)
	cp.AliasMatches = append([]models.AliasMatch{}, p.AliasMatches...)
	if p.AliasMapping != nil {
		cp.AliasMapping = make(map[string]string, len(p.AliasMapping))
		for k, v := range p.AliasMapping {
			cp.AliasMapping[k] = v
		}
	}
	return cp
}

var _ Store = (*Memory)(nil)
