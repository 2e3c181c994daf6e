package grass

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/intrntsrfr/slxshybot/database"
)

type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*VoiceSession

	store Store
	log   *zap.Logger
}

func NewTracker(store Store, log *zap.Logger) *Tracker {
	return &Tracker{
		sessions: make(map[string]*VoiceSession),
		store:    store,
		log:      log,
	}
}

// Apply advances the user's session state and returns what needs doing.
//
// Moves between channels (was and is in a channel) keep the session open. A
// second join without a leave restarts the session. A leave with no open
// session is ignored.
func (t *Tracker) Apply(ev PresenceChanged) []Effect {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case !ev.WasInChannel && ev.IsInChannel:
		if ev.Bot {
			return nil
		}
		if _, ok := t.sessions[ev.UserID]; ok {
			t.log.Debug("session restarted without leave", zap.String("userID", ev.UserID))
		}
		t.sessions[ev.UserID] = &VoiceSession{
			UserID:       ev.UserID,
			DisplayName:  ev.DisplayName,
			JoinedAt:     ev.At,
			SelfMuted:    ev.SelfMuted,
			SelfDeafened: ev.SelfDeafened,
		}
		return nil

	case ev.WasInChannel && !ev.IsInChannel:
		sess, ok := t.sessions[ev.UserID]
		if !ok {
			t.log.Debug("leave without open session", zap.String("userID", ev.UserID))
			return nil
		}
		delete(t.sessions, ev.UserID)

		inc := Increment(ev.At.Sub(sess.JoinedAt), sess.SelfMuted, sess.SelfDeafened)
		if inc <= 0 {
			return nil
		}
		name := ev.DisplayName
		if name == "" {
			name = sess.DisplayName
		}
		return []Effect{Upsert{
			UserID:      ev.UserID,
			DisplayName: name,
			Increment:   inc,
			At:          ev.At,
		}}
	}
	return nil
}

// Execute performs effects. Failures are logged, never returned.
func (t *Tracker) Execute(ctx context.Context, effects []Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case Upsert:
			total, err := t.store.AddGrass(ctx, e.UserID, e.DisplayName, e.Increment, e.At)
			if err != nil {
				t.log.Error("failed to add grass",
					zap.String("userID", e.UserID),
					zap.Int64("increment", e.Increment),
					zap.Error(err))
				continue
			}
			t.log.Info("grass added",
				zap.String("userID", e.UserID),
				zap.Int64("increment", e.Increment),
				zap.Int64("total", total))
		default:
			t.log.Warn("unknown effect", zap.String("type", fmt.Sprintf("%T", e)))
		}
	}
}

func (t *Tracker) OnVoicePresenceChanged(ctx context.Context, ev PresenceChanged) {
	t.Execute(ctx, t.Apply(ev))
}

// OnManualTouch awards the fixed button increment.
func (t *Tracker) OnManualTouch(ctx context.Context, ev ManualTouch) (string, error) {
	total, err := t.store.AddGrass(ctx, ev.UserID, ev.DisplayName, TouchIncrement, ev.At)
	if err != nil {
		return "", fmt.Errorf("touch grass: %w", err)
	}
	return fmt.Sprintf("🌱 You touched grass! You now have **%v** grass.", total), nil
}

func (t *Tracker) Leaderboard(ctx context.Context, limit int) ([]*database.GrassAccount, error) {
	return t.store.TopGrass(ctx, limit)
}

// Summary combines the stored totals with the connected count, which the
// caller gets from the gateway state.
func (t *Tracker) Summary(ctx context.Context, connected int) (*Summary, error) {
	totals, err := t.store.GrassTotals(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Total:     totals.Total,
		Accounts:  totals.Accounts,
		Connected: connected,
	}, nil
}

// Session returns a copy of the user's open session, if any.
func (t *Tracker) Session(userID string) (VoiceSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[userID]
	if !ok {
		return VoiceSession{}, false
	}
	return *s, true
}
