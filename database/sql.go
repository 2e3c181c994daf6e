package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type SqlDB struct {
	pool    *sqlx.DB
	log     *zap.Logger
	driver  string
	connStr string
}

var _ DB = (*SqlDB)(nil)

func NewDatabase(c *Config) (*SqlDB, error) {
	db := &SqlDB{
		log:     c.Log,
		driver:  c.Driver,
		connStr: c.ConnStr,
	}

	pool, err := sqlx.Connect(db.driver, db.connStr)
	if err != nil {
		db.log.Error("unable to connect to db", zap.String("driver", db.driver), zap.Error(err))
		return nil, err
	}
	if db.driver == "sqlite" {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY
		pool.SetMaxOpenConns(1)
	}
	db.pool = pool

	return db, nil
}

func (p *SqlDB) Close() error {
	return p.pool.Close()
}

func (p *SqlDB) Migrate(ctx context.Context) error {
	schema := schemaPostgres
	if p.driver == "sqlite" {
		schema = schemaSqlite
	}
	for _, stmt := range schema {
		if _, err := p.pool.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (p *SqlDB) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return p.pool.ExecContext(ctx, p.pool.Rebind(query), args...)
}

func (p *SqlDB) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := p.pool.GetContext(ctx, dest, p.pool.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (p *SqlDB) sel(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return p.pool.SelectContext(ctx, dest, p.pool.Rebind(query), args...)
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func (p *SqlDB) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := p.pool.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			p.log.Error("failed to roll back", zap.Error(rbErr))
		}
		return err
	}
	return tx.Commit()
}

func txGet(ctx context.Context, tx *sqlx.Tx, dest interface{}, query string, args ...interface{}) error {
	err := tx.GetContext(ctx, dest, tx.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func txExec(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (sql.Result, error) {
	return tx.ExecContext(ctx, tx.Rebind(query), args...)
}

//
// grass
//

// AddGrass adds increment to the user's score in a single statement and
// returns the new total.
func (p *SqlDB) AddGrass(ctx context.Context, userID, displayName string, increment int64, at time.Time) (int64, error) {
	if increment < 0 {
		return 0, fmt.Errorf("negative grass increment %v", increment)
	}
	var total int64
	err := p.get(ctx, &total, `
		INSERT INTO grass (user_id, display_name, total_score, last_update)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = excluded.display_name,
			total_score = grass.total_score + excluded.total_score,
			last_update = excluded.last_update
		RETURNING total_score;`,
		userID, displayName, increment, at.UTC())
	return total, err
}

// TopGrass orders by score, breaking ties by user id so pages are stable.
func (p *SqlDB) TopGrass(ctx context.Context, limit int) ([]*GrassAccount, error) {
	var accounts []*GrassAccount
	err := p.sel(ctx, &accounts, `
		SELECT user_id, display_name, total_score, last_update
		FROM grass
		ORDER BY total_score DESC, user_id ASC
		LIMIT ?;`, limit)
	return accounts, err
}

func (p *SqlDB) GrassTotals(ctx context.Context) (*GrassTotals, error) {
	var t GrassTotals
	err := p.get(ctx, &t, `
		SELECT CAST(COALESCE(SUM(total_score), 0) AS BIGINT) AS total, COUNT(*) AS accounts
		FROM grass;`)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

//
// coords
//

const coordColumns = `id, user_id, name, x, y, z, description, visibility, team, created_at`

func (p *SqlDB) CreateCoord(ctx context.Context, c *Coord) error {
	if !c.Visibility.Valid() {
		return fmt.Errorf("invalid visibility %q", c.Visibility)
	}
	return p.get(ctx, &c.ID, `
		INSERT INTO cords (user_id, name, x, y, z, description, visibility, team, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id;`,
		c.UserID, c.Name, c.X, c.Y, c.Z, c.Description, c.Visibility, c.Team, c.CreatedAt.UTC())
}

func (p *SqlDB) PrivateCoords(ctx context.Context, userID string) ([]*Coord, error) {
	var coords []*Coord
	err := p.sel(ctx, &coords, `SELECT `+coordColumns+` FROM cords WHERE user_id = ? AND visibility = 'private' ORDER BY id;`, userID)
	return coords, err
}

func (p *SqlDB) PublicCoords(ctx context.Context) ([]*Coord, error) {
	var coords []*Coord
	err := p.sel(ctx, &coords, `SELECT `+coordColumns+` FROM cords WHERE visibility = 'public' ORDER BY id;`)
	return coords, err
}

func (p *SqlDB) TeamCoords(ctx context.Context, team string) ([]*Coord, error) {
	var coords []*Coord
	err := p.sel(ctx, &coords, `SELECT `+coordColumns+` FROM cords WHERE visibility = 'team' AND team = ? ORDER BY id;`, team)
	return coords, err
}

func (p *SqlDB) DeleteCoord(ctx context.Context, userID, name string) error {
	res, err := p.exec(ctx, `DELETE FROM cords WHERE user_id = ? AND name = ?;`, userID, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

//
// teams
//

func (p *SqlDB) CreateTeam(ctx context.Context, name, ownerID string, at time.Time) error {
	return p.inTx(ctx, func(tx *sqlx.Tx) error {
		var existing TeamMember
		err := txGet(ctx, tx, &existing, `SELECT team, user_id, joined_at FROM team_members WHERE user_id = ?;`, ownerID)
		if err == nil {
			return ErrAlreadyInTeam
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		var count int
		if err := txGet(ctx, tx, &count, `SELECT COUNT(*) FROM teams WHERE name = ?;`, name); err != nil {
			return err
		}
		if count > 0 {
			return ErrTeamExists
		}

		if _, err := txExec(ctx, tx, `INSERT INTO teams (name, owner_id, created_at) VALUES (?, ?, ?);`, name, ownerID, at.UTC()); err != nil {
			return err
		}
		_, err = txExec(ctx, tx, `INSERT INTO team_members (team, user_id, joined_at) VALUES (?, ?, ?);`, name, ownerID, at.UTC())
		return err
	})
}

func (p *SqlDB) GetTeam(ctx context.Context, name string) (*Team, error) {
	var t Team
	if err := p.get(ctx, &t, `SELECT name, owner_id, created_at FROM teams WHERE name = ?;`, name); err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *SqlDB) UserTeam(ctx context.Context, userID string) (*Team, error) {
	var t Team
	err := p.get(ctx, &t, `
		SELECT t.name, t.owner_id, t.created_at
		FROM teams t JOIN team_members m ON m.team = t.name
		WHERE m.user_id = ?;`, userID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *SqlDB) RequestJoin(ctx context.Context, team, userID string, at time.Time) error {
	if _, err := p.GetTeam(ctx, team); err != nil {
		return err
	}
	if _, err := p.UserTeam(ctx, userID); err == nil {
		return ErrAlreadyInTeam
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err := p.exec(ctx, `
		INSERT INTO team_requests (team, user_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (team, user_id) DO NOTHING;`, team, userID, at.UTC())
	return err
}

func (p *SqlDB) AcceptJoin(ctx context.Context, team, ownerID, userID string, at time.Time) error {
	return p.inTx(ctx, func(tx *sqlx.Tx) error {
		var t Team
		if err := txGet(ctx, tx, &t, `SELECT name, owner_id, created_at FROM teams WHERE name = ?;`, team); err != nil {
			return err
		}
		if t.OwnerID != ownerID {
			return ErrNotTeamOwner
		}

		res, err := txExec(ctx, tx, `DELETE FROM team_requests WHERE team = ? AND user_id = ?;`, team, userID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNoJoinRequest
		}

		var count int
		if err := txGet(ctx, tx, &count, `SELECT COUNT(*) FROM team_members WHERE user_id = ?;`, userID); err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyInTeam
		}

		_, err = txExec(ctx, tx, `INSERT INTO team_members (team, user_id, joined_at) VALUES (?, ?, ?);`, team, userID, at.UTC())
		return err
	})
}

// LeaveTeam removes the user from their team. An owner leaving disbands the
// team, and its team-only coords fall back to private.
func (p *SqlDB) LeaveTeam(ctx context.Context, userID string) error {
	return p.inTx(ctx, func(tx *sqlx.Tx) error {
		var t Team
		err := txGet(ctx, tx, &t, `
			SELECT t.name, t.owner_id, t.created_at
			FROM teams t JOIN team_members m ON m.team = t.name
			WHERE m.user_id = ?;`, userID)
		if err != nil {
			return err
		}

		if t.OwnerID != userID {
			_, err = txExec(ctx, tx, `DELETE FROM team_members WHERE user_id = ?;`, userID)
			return err
		}

		stmts := []string{
			`UPDATE cords SET visibility = 'private', team = NULL WHERE team = ?;`,
			`DELETE FROM team_requests WHERE team = ?;`,
			`DELETE FROM team_members WHERE team = ?;`,
			`DELETE FROM teams WHERE name = ?;`,
		}
		for _, stmt := range stmts {
			if _, err := txExec(ctx, tx, stmt, t.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *SqlDB) TeamMembers(ctx context.Context, team string) ([]*TeamMember, error) {
	var members []*TeamMember
	err := p.sel(ctx, &members, `SELECT team, user_id, joined_at FROM team_members WHERE team = ? ORDER BY joined_at, user_id;`, team)
	return members, err
}

//
// players
//

// RecordPlayer stores name the first time it is seen and reports whether it was new.
func (p *SqlDB) RecordPlayer(ctx context.Context, name string, at time.Time) (bool, error) {
	res, err := p.exec(ctx, `
		INSERT INTO joined_players (name, first_seen) VALUES (?, ?)
		ON CONFLICT (name) DO NOTHING;`, name, at.UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *SqlDB) Players(ctx context.Context) ([]*JoinedPlayer, error) {
	var players []*JoinedPlayer
	err := p.sel(ctx, &players, `SELECT id, name, first_seen FROM joined_players ORDER BY first_seen, id;`)
	return players, err
}

//
// warnings
//

func (p *SqlDB) AddWarning(ctx context.Context, w *Warning) error {
	return p.get(ctx, &w.ID, `
		INSERT INTO warnings (guild_id, user_id, moderator_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id;`,
		w.GuildID, w.UserID, w.ModeratorID, w.Reason, w.CreatedAt.UTC())
}

func (p *SqlDB) Warnings(ctx context.Context, guildID, userID string) ([]*Warning, error) {
	var warnings []*Warning
	err := p.sel(ctx, &warnings, `
		SELECT id, guild_id, user_id, moderator_id, reason, created_at
		FROM warnings WHERE guild_id = ? AND user_id = ?
		ORDER BY id;`, guildID, userID)
	return warnings, err
}
