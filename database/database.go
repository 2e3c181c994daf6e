package database

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrTeamExists    = errors.New("team already exists")
	ErrAlreadyInTeam = errors.New("user is already in a team")
	ErrNotTeamOwner  = errors.New("user does not own the team")
	ErrNoJoinRequest = errors.New("no pending join request")
)

type DB interface {
	Close() error
	Migrate(ctx context.Context) error

	AddGrass(ctx context.Context, userID, displayName string, increment int64, at time.Time) (int64, error)
	TopGrass(ctx context.Context, limit int) ([]*GrassAccount, error)
	GrassTotals(ctx context.Context) (*GrassTotals, error)

	CreateCoord(ctx context.Context, c *Coord) error
	PrivateCoords(ctx context.Context, userID string) ([]*Coord, error)
	PublicCoords(ctx context.Context) ([]*Coord, error)
	TeamCoords(ctx context.Context, team string) ([]*Coord, error)
	DeleteCoord(ctx context.Context, userID, name string) error

	CreateTeam(ctx context.Context, name, ownerID string, at time.Time) error
	GetTeam(ctx context.Context, name string) (*Team, error)
	UserTeam(ctx context.Context, userID string) (*Team, error)
	RequestJoin(ctx context.Context, team, userID string, at time.Time) error
	AcceptJoin(ctx context.Context, team, ownerID, userID string, at time.Time) error
	LeaveTeam(ctx context.Context, userID string) error
	TeamMembers(ctx context.Context, team string) ([]*TeamMember, error)

	RecordPlayer(ctx context.Context, name string, at time.Time) (bool, error)
	Players(ctx context.Context) ([]*JoinedPlayer, error)

	AddWarning(ctx context.Context, w *Warning) error
	Warnings(ctx context.Context, guildID, userID string) ([]*Warning, error)
}

type Config struct {
	Log *zap.Logger
	// Driver is postgres or sqlite
	Driver  string
	ConnStr string
}
