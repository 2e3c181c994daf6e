package database

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS grass (
		user_id      TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		total_score  BIGINT NOT NULL DEFAULT 0,
		last_update  TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS teams (
		name       TEXT PRIMARY KEY,
		owner_id   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS team_members (
		team      TEXT NOT NULL REFERENCES teams(name) ON DELETE CASCADE,
		user_id   TEXT NOT NULL UNIQUE,
		joined_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (team, user_id)
	);`,
	`CREATE TABLE IF NOT EXISTS team_requests (
		team       TEXT NOT NULL REFERENCES teams(name) ON DELETE CASCADE,
		user_id    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (team, user_id)
	);`,
	`CREATE TABLE IF NOT EXISTS cords (
		id          SERIAL PRIMARY KEY,
		user_id     TEXT NOT NULL,
		name        TEXT NOT NULL,
		x           BIGINT NOT NULL,
		y           BIGINT NOT NULL,
		z           BIGINT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		visibility  TEXT NOT NULL CHECK (visibility IN ('public', 'private', 'team')),
		team        TEXT,
		created_at  TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS joined_players (
		id         SERIAL PRIMARY KEY,
		name       TEXT UNIQUE NOT NULL,
		first_seen TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS warnings (
		id           SERIAL PRIMARY KEY,
		guild_id     TEXT NOT NULL,
		user_id      TEXT NOT NULL,
		moderator_id TEXT NOT NULL,
		reason       TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL
	);`,
}

var schemaSqlite = []string{
	`CREATE TABLE IF NOT EXISTS grass (
		user_id      TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		total_score  INTEGER NOT NULL DEFAULT 0,
		last_update  TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS teams (
		name       TEXT PRIMARY KEY,
		owner_id   TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS team_members (
		team      TEXT NOT NULL REFERENCES teams(name) ON DELETE CASCADE,
		user_id   TEXT NOT NULL UNIQUE,
		joined_at TIMESTAMP NOT NULL,
		PRIMARY KEY (team, user_id)
	);`,
	`CREATE TABLE IF NOT EXISTS team_requests (
		team       TEXT NOT NULL REFERENCES teams(name) ON DELETE CASCADE,
		user_id    TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (team, user_id)
	);`,
	`CREATE TABLE IF NOT EXISTS cords (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     TEXT NOT NULL,
		name        TEXT NOT NULL,
		x           INTEGER NOT NULL,
		y           INTEGER NOT NULL,
		z           INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		visibility  TEXT NOT NULL CHECK (visibility IN ('public', 'private', 'team')),
		team        TEXT,
		created_at  TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS joined_players (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT UNIQUE NOT NULL,
		first_seen TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS warnings (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id     TEXT NOT NULL,
		user_id      TEXT NOT NULL,
		moderator_id TEXT NOT NULL,
		reason       TEXT NOT NULL,
		created_at   TIMESTAMP NOT NULL
	);`,
}
