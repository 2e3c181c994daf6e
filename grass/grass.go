// Package grass turns voice-channel presence into a persisted "touch grass"
// score and keeps a summary panel up to date.
//
// Presence and button events are plain values. Tracker.Apply advances the
// per-user session state and returns the effects the event calls for;
// Tracker.Execute performs them against the Store. Keeping the two apart
// lets the state machine be driven without a gateway or a database.
package grass

import (
	"context"
	"time"

	"github.com/intrntsrfr/slxshybot/database"
)

const (
	// MinSession is the shortest voice session that earns anything.
	MinSession = 30 * time.Second

	TouchIncrement  int64 = 1
	LeaderboardSize       = 10

	CustomIDTouch       = "grass:touch"
	CustomIDLeaderboard = "grass:leaderboard"
)

// Store is the persistence the tracker needs. AddGrass must apply the
// increment atomically.
type Store interface {
	AddGrass(ctx context.Context, userID, displayName string, increment int64, at time.Time) (int64, error)
	TopGrass(ctx context.Context, limit int) ([]*database.GrassAccount, error)
	GrassTotals(ctx context.Context) (*database.GrassTotals, error)
}

// VoiceSession is an open voice presence waiting for its leave event.
type VoiceSession struct {
	UserID       string
	DisplayName  string
	JoinedAt     time.Time
	SelfMuted    bool
	SelfDeafened bool
}

// PresenceChanged is one voice-state transition as seen by the gateway.
type PresenceChanged struct {
	UserID       string
	DisplayName  string
	Bot          bool
	WasInChannel bool
	IsInChannel  bool
	SelfMuted    bool
	SelfDeafened bool
	At           time.Time
}

// ManualTouch is a press of the touch-grass button.
type ManualTouch struct {
	UserID      string
	DisplayName string
	At          time.Time
}

type Effect interface {
	isEffect()
}

// Upsert adds Increment to the user's score.
type Upsert struct {
	UserID      string
	DisplayName string
	Increment   int64
	At          time.Time
}

func (Upsert) isEffect() {}

// Increment is the score earned by a session of the given length: whole
// seconds, doubled when the user was neither muted nor deafened on join.
func Increment(elapsed time.Duration, selfMuted, selfDeafened bool) int64 {
	if elapsed < MinSession {
		return 0
	}
	multiplier := int64(1)
	if !selfMuted && !selfDeafened {
		multiplier = 2
	}
	// floor(seconds * m) == floor(nanoseconds * m / 1e9) for integer m
	return int64(elapsed) * multiplier / int64(time.Second)
}

// Summary is the aggregate shown on the panel.
type Summary struct {
	Total     int64
	Accounts  int64
	Connected int
}
