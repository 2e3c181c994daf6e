package database

import "time"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
	VisibilityTeam    Visibility = "team"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityTeam:
		return true
	}
	return false
}

// GrassAccount is the accumulated touch-grass score of one user.
type GrassAccount struct {
	UserID      string    `json:"user_id" db:"user_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	TotalScore  int64     `json:"total_score" db:"total_score"`
	LastUpdate  time.Time `json:"last_update" db:"last_update"`
}

type GrassTotals struct {
	Total    int64 `json:"total" db:"total"`
	Accounts int64 `json:"accounts" db:"accounts"`
}

type Coord struct {
	ID          int64      `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Name        string     `json:"name" db:"name"`
	X           int64      `json:"x" db:"x"`
	Y           int64      `json:"y" db:"y"`
	Z           int64      `json:"z" db:"z"`
	Description string     `json:"description" db:"description"`
	Visibility  Visibility `json:"visibility" db:"visibility"`
	Team        *string    `json:"team" db:"team"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type Team struct {
	Name      string    `json:"name" db:"name"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type TeamMember struct {
	Team     string    `json:"team" db:"team"`
	UserID   string    `json:"user_id" db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

type JoinedPlayer struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	FirstSeen time.Time `json:"first_seen" db:"first_seen"`
}

type Warning struct {
	ID          int64     `json:"id" db:"id"`
	GuildID     string    `json:"guild_id" db:"guild_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	ModeratorID string    `json:"moderator_id" db:"moderator_id"`
	Reason      string    `json:"reason" db:"reason"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
