package store

// Schema follows db.RunMigrations' style: a fixed list of DDL statements
// executed in order, idempotent via IF NOT EXISTS.
// Each collection from §6 is one JSONB-backed table; the non-doc columns
// exist purely to give the Persistence Layer's index-backed queries (§4.1)
// somewhere to land (GIN indexes on array columns, btree on date).
const (
	createRegionTable = `
CREATE TABLE IF NOT EXISTS region (
	id TEXT PRIMARY KEY,
	doc JSONB NOT NULL
)`

	createPlayerTable = `
CREATE TABLE IF NOT EXISTS player (
	id TEXT PRIMARY KEY,
	doc JSONB NOT NULL,
	name_lower TEXT NOT NULL,
	aliases TEXT[] NOT NULL DEFAULT '{}',
	regions TEXT[] NOT NULL DEFAULT '{}',
	merged BOOLEAN NOT NULL DEFAULT false
)`
	createPlayerAliasesIndex = `CREATE INDEX IF NOT EXISTS player_aliases_gin ON player USING GIN (aliases)`
	createPlayerRegionsIndex = `CREATE INDEX IF NOT EXISTS player_regions_gin ON player USING GIN (regions)`
	createPlayerNameIndex    = `CREATE INDEX IF NOT EXISTS player_name_lower_idx ON player (name_lower)`

	createTournamentTable = `
CREATE TABLE IF NOT EXISTS tournament (
	id TEXT PRIMARY KEY,
	doc JSONB NOT NULL,
	date TIMESTAMPTZ NOT NULL,
	regions TEXT[] NOT NULL DEFAULT '{}',
	players TEXT[] NOT NULL DEFAULT '{}'
)`
	createTournamentDateIndex    = `CREATE INDEX IF NOT EXISTS tournament_date_idx ON tournament (date)`
	createTournamentRegionsIndex = `CREATE INDEX IF NOT EXISTS tournament_regions_gin ON tournament USING GIN (regions)`
	createTournamentPlayersIndex = `CREATE INDEX IF NOT EXISTS tournament_players_gin ON tournament USING GIN (players)`

	createPendingTournamentTable = `
CREATE TABLE IF NOT EXISTS pending_tournament (
	id TEXT PRIMARY KEY,
	doc JSONB NOT NULL,
	date TIMESTAMPTZ NOT NULL,
	regions TEXT[] NOT NULL DEFAULT '{}'
)`
	createPendingTournamentRegionsIndex = `CREATE INDEX IF NOT EXISTS pending_tournament_regions_gin ON pending_tournament USING GIN (regions)`

	createMergeTable = `
CREATE TABLE IF NOT EXISTS merge (
	id TEXT PRIMARY KEY,
	doc JSONB NOT NULL,
	time TIMESTAMPTZ NOT NULL
)`

	createRankingTable = `
CREATE TABLE IF NOT EXISTS ranking (
	id TEXT PRIMARY KEY,
	doc JSONB NOT NULL,
	region TEXT NOT NULL,
	time TIMESTAMPTZ NOT NULL
)`
	createRankingRegionTimeIndex = `CREATE INDEX IF NOT EXISTS ranking_region_time_idx ON ranking (region, time DESC)`

	createUserTable = `
CREATE TABLE IF NOT EXISTS app_user (
	username TEXT PRIMARY KEY,
	doc JSONB NOT NULL
)`

	createSessionTable = `
CREATE TABLE IF NOT EXISTS session (
	id TEXT PRIMARY KEY,
	doc JSONB NOT NULL,
	user_id TEXT NOT NULL UNIQUE
)`
)

var migrations = []string{
	createRegionTable,
	createPlayerTable,
	createPlayerAliasesIndex,
	createPlayerRegionsIndex,
	createPlayerNameIndex,
	createTournamentTable,
	createTournamentDateIndex,
	createTournamentRegionsIndex,
	createTournamentPlayersIndex,
	createPendingTournamentTable,
	createPendingTournamentRegionsIndex,
	createMergeTable,
	createRankingTable,
	createRankingRegionTimeIndex,
	createUserTable,
	createSessionTable,
}
