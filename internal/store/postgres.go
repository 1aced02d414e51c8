package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bracketrank/internal/models"

	"github.com/lib/pq"
)

// querier is satisfied by both *sql.DB and *sql.Tx, letting Postgres run
// identical queries whether or not it's inside RunInTransaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Postgres is the production Store, backed by JSONB document tables over
// lib/pq (teacher pattern: db.Initialize + raw SQL, see DESIGN.md).
type Postgres struct {
	db *sql.DB
	q  querier
}

// Open connects to Postgres, pings it, tunes the pool and runs migrations,
// mirroring db.Initialize + db.RunMigrations.
func Open(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	return &Postgres{db: db, q: db}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// --- Regions ---

func (p *Postgres) CreateRegion(ctx context.Context, r *models.Region) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = p.q.ExecContext(ctx,
		`INSERT INTO region (id, doc) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`,
		r.ID, doc)
	return err
}

func (p *Postgres) GetRegion(ctx context.Context, id string) (*models.Region, error) {
	var doc []byte
	err := p.q.QueryRowContext(ctx, `SELECT doc FROM region WHERE id = $1`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r models.Region
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Postgres) GetAllRegions(ctx context.Context) ([]models.Region, error) {
	rows, err := p.q.QueryContext(ctx, `SELECT doc FROM region ORDER BY doc->>'display_name'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Region
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var r models.Region
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Players ---

func (p *Postgres) CreatePlayer(ctx context.Context, pl *models.Player) error {
	return p.upsertPlayer(ctx, pl)
}

func (p *Postgres) upsertPlayer(ctx context.Context, pl *models.Player) error {
	doc, err := json.Marshal(pl)
	if err != nil {
		return err
	}
	_, err = p.q.ExecContext(ctx, `
		INSERT INTO player (id, doc, name_lower, aliases, regions, merged)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			doc = EXCLUDED.doc,
			name_lower = EXCLUDED.name_lower,
			aliases = EXCLUDED.aliases,
			regions = EXCLUDED.regions,
			merged = EXCLUDED.merged`,
		pl.ID, doc, strings.ToLower(pl.Name), pq.Array(pl.Aliases), pq.Array(pl.Regions), pl.Merged)
	return err
}

func scanPlayer(scan func(dest ...interface{}) error) (*models.Player, error) {
	var doc []byte
	if err := scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	var pl models.Player
	if err := json.Unmarshal(doc, &pl); err != nil {
		return nil, err
	}
	return &pl, nil
}

func (p *Postgres) GetPlayerByID(ctx context.Context, id string) (*models.Player, error) {
	row := p.q.QueryRowContext(ctx, `SELECT doc FROM player WHERE id = $1`, id)
	return scanPlayer(row.Scan)
}

func (p *Postgres) GetPlayerByAlias(ctx context.Context, alias, region string, includeMerged bool) (*models.Player, error) {
	query := `SELECT doc FROM player WHERE $1 = ANY(aliases) AND $2 = ANY(regions)`
	args := []interface{}{strings.ToLower(alias), region}
	if !includeMerged {
		query += ` AND merged = false`
	}
	query += ` LIMIT 1`
	row := p.q.QueryRowContext(ctx, query, args...)
	return scanPlayer(row.Scan)
}

func (p *Postgres) GetPlayersByAlias(ctx context.Context, alias string, includeMerged bool) ([]models.Player, error) {
	query := `SELECT doc FROM player WHERE $1 = ANY(aliases)`
	args := []interface{}{strings.ToLower(alias)}
	if !includeMerged {
		query += ` AND merged = false`
	}
	query += ` ORDER BY id`
	return p.queryPlayers(ctx, query, args...)
}

func (p *Postgres) GetAllPlayers(ctx context.Context, region string, includeMerged bool) ([]models.Player, error) {
	query := `SELECT doc FROM player WHERE true`
	var args []interface{}
	if region != "" {
		args = append(args, region)
		query += fmt.Sprintf(` AND $%d = ANY(regions)`, len(args))
	}
	if !includeMerged {
		query += ` AND merged = false`
	}
	query += ` ORDER BY name_lower`
	return p.queryPlayers(ctx, query, args...)
}

func (p *Postgres) GetPlayersWithSimilarAliases(ctx context.Context, candidateAliases []string) ([]models.Player, error) {
	query := `SELECT doc FROM player WHERE aliases && $1 AND merged = false ORDER BY id`
	return p.queryPlayers(ctx, query, pq.Array(candidateAliases))
}

func (p *Postgres) queryPlayers(ctx context.Context, query string, args ...interface{}) ([]models.Player, error) {
	rows, err := p.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Player
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var pl models.Player
		if err := json.Unmarshal(doc, &pl); err != nil {
			return nil, err
		}
		out = append(out, pl)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdatePlayer(ctx context.Context, pl *models.Player) error {
	return p.upsertPlayer(ctx, pl)
}

// --- Tournaments ---

func (p *Postgres) upsertTournament(ctx context.Context, t *models.Tournament) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = p.q.ExecContext(ctx, `
		INSERT INTO tournament (id, doc, date, regions, players)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			doc = EXCLUDED.doc, date = EXCLUDED.date,
			regions = EXCLUDED.regions, players = EXCLUDED.players`,
		t.ID, doc, t.Date, pq.Array(t.Regions), pq.Array(t.Players))
	return err
}

func (p *Postgres) CreateTournament(ctx context.Context, t *models.Tournament) error {
	return p.upsertTournament(ctx, t)
}

func (p *Postgres) UpdateTournament(ctx context.Context, t *models.Tournament) error {
	return p.upsertTournament(ctx, t)
}

func (p *Postgres) GetTournamentByID(ctx context.Context, id string) (*models.Tournament, error) {
	var doc []byte
	err := p.q.QueryRowContext(ctx, `SELECT doc FROM tournament WHERE id = $1`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var t models.Tournament
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *Postgres) GetAllTournaments(ctx context.Context, players, regions []string, op AliasOp) ([]models.Tournament, error) {
	query := `SELECT doc FROM tournament`
	var conds []string
	var args []interface{}

	if len(players) > 0 {
		args = append(args, pq.Array(players))
		conds = append(conds, fmt.Sprintf(`players && $%d`, len(args)))
	}
	if len(regions) > 0 {
		args = append(args, pq.Array(regions))
		conds = append(conds, fmt.Sprintf(`regions && $%d`, len(args)))
	}

	if len(conds) > 0 {
		joiner := " AND "
		if op == OpOr {
			joiner = " OR "
		}
		query += " WHERE " + strings.Join(conds, joiner)
	}
	query += ` ORDER BY date ASC, id ASC`

	rows, err := p.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Tournament
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var t models.Tournament
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteTournament(ctx context.Context, id string) error {
	_, err := p.q.ExecContext(ctx, `DELETE FROM tournament WHERE id = $1`, id)
	return err
}

// --- Pending tournaments ---

func (p *Postgres) upsertPending(ctx context.Context, pt *models.PendingTournament) error {
	doc, err := json.Marshal(pt)
	if err != nil {
		return err
	}
	_, err = p.q.ExecContext(ctx, `
		INSERT INTO pending_tournament (id, doc, date, regions)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, date = EXCLUDED.date, regions = EXCLUDED.regions`,
		pt.ID, doc, pt.Date, pq.Array(pt.Regions))
	return err
}

func (p *Postgres) CreatePendingTournament(ctx context.Context, pt *models.PendingTournament) error {
	return p.upsertPending(ctx, pt)
}

func (p *Postgres) UpdatePendingTournament(ctx context.Context, pt *models.PendingTournament) error {
	return p.upsertPending(ctx, pt)
}

func (p *Postgres) GetPendingTournamentByID(ctx context.Context, id string) (*models.PendingTournament, error) {
	var doc []byte
	err := p.q.QueryRowContext(ctx, `SELECT doc FROM pending_tournament WHERE id = $1`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pt models.PendingTournament
	if err := json.Unmarshal(doc, &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

func (p *Postgres) GetAllPendingTournaments(ctx context.Context, regions []string) ([]models.PendingTournament, error) {
	query := `SELECT doc FROM pending_tournament`
	var args []interface{}
	if len(regions) > 0 {
		args = append(args, pq.Array(regions))
		query += ` WHERE regions && $1`
	}
	query += ` ORDER BY date ASC`

	rows, err := p.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PendingTournament
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var pt models.PendingTournament
		if err := json.Unmarshal(doc, &pt); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

func (p *Postgres) DeletePendingTournament(ctx context.Context, id string) error {
	_, err := p.q.ExecContext(ctx, `DELETE FROM pending_tournament WHERE id = $1`, id)
	return err
}

// --- Merges ---

func (p *Postgres) CreateMerge(ctx context.Context, mg *models.Merge) error {
	doc, err := json.Marshal(mg)
	if err != nil {
		return err
	}
	_, err = p.q.ExecContext(ctx, `INSERT INTO merge (id, doc, time) VALUES ($1, $2, $3)`, mg.ID, doc, mg.Time)
	return err
}

func (p *Postgres) GetMerge(ctx context.Context, id string) (*models.Merge, error) {
	var doc []byte
	err := p.q.QueryRowContext(ctx, `SELECT doc FROM merge WHERE id = $1`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var mg models.Merge
	if err := json.Unmarshal(doc, &mg); err != nil {
		return nil, err
	}
	return &mg, nil
}

func (p *Postgres) GetAllMerges(ctx context.Context) ([]models.Merge, error) {
	rows, err := p.q.QueryContext(ctx, `SELECT doc FROM merge ORDER BY time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Merge
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var mg models.Merge
		if err := json.Unmarshal(doc, &mg); err != nil {
			return nil, err
		}
		out = append(out, mg)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteMerge(ctx context.Context, id string) error {
	_, err := p.q.ExecContext(ctx, `DELETE FROM merge WHERE id = $1`, id)
	return err
}

// --- Rankings ---

func (p *Postgres) CreateRanking(ctx context.Context, r *models.Ranking) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = p.q.ExecContext(ctx, `INSERT INTO ranking (id, doc, region, time) VALUES ($1, $2, $3, $4)`,
		r.ID, doc, r.Region, r.Time)
	return err
}

func (p *Postgres) GetLatestRanking(ctx context.Context, region string) (*models.Ranking, error) {
	var doc []byte
	err := p.q.QueryRowContext(ctx,
		`SELECT doc FROM ranking WHERE region = $1 ORDER BY time DESC LIMIT 1`, region).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r models.Ranking
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// --- Users & sessions ---

func (p *Postgres) upsertUser(ctx context.Context, u *models.User) error {
	doc, err := json.Marshal(u)
	if err != nil {
		return err
	}
	_, err = p.q.ExecContext(ctx, `
		INSERT INTO app_user (username, doc) VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET doc = EXCLUDED.doc`,
		u.Username, doc)
	return err
}

func (p *Postgres) CreateUser(ctx context.Context, u *models.User) error { return p.upsertUser(ctx, u) }
func (p *Postgres) UpdateUser(ctx context.Context, u *models.User) error { return p.upsertUser(ctx, u) }

func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var doc []byte
	err := p.q.QueryRowContext(ctx, `SELECT doc FROM app_user WHERE username = $1`, username).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(doc, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *Postgres) CreateSession(ctx context.Context, s *models.Session) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = p.q.ExecContext(ctx, `
		INSERT INTO session (id, doc, user_id) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET id = EXCLUDED.id, doc = EXCLUDED.doc`,
		s.ID, doc, s.User)
	return err
}

func (p *Postgres) GetSessionByID(ctx context.Context, id string) (*models.Session, error) {
	var doc []byte
	err := p.q.QueryRowContext(ctx, `SELECT doc FROM session WHERE id = $1`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s models.Session
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *Postgres) GetSessionByUser(ctx context.Context, userID string) (*models.Session, error) {
	var doc []byte
	err := p.q.QueryRowContext(ctx, `SELECT doc FROM session WHERE user_id = $1`, userID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s models.Session
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *Postgres) DeleteSessionsForUser(ctx context.Context, userID string) error {
	_, err := p.q.ExecContext(ctx, `DELETE FROM session WHERE user_id = $1`, userID)
	return err
}

func (p *Postgres) DeleteSession(ctx context.Context, id string) error {
	_, err := p.q.ExecContext(ctx, `DELETE FROM session WHERE id = $1`, id)
	return err
}

// RunInTransaction opens a real Postgres transaction and hands the caller a
// Store bound to it; per §9 this is the preferred way to make merge/finalize
// atomic rather than leaving partial writes in place on failure.
func (p *Postgres) RunInTransaction(ctx context.Context, fn func(tx Store) error) error {
	sqlTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	txStore := &Postgres{db: p.db, q: sqlTx}
	if err := fn(txStore); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	return sqlTx.Commit()
}

var _ Store = (*Postgres)(nil)
