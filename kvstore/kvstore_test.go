package kvstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMessageWindow(t *testing.T) {
	s := newTestStore(t)

	for _, mid := range []string{"1", "2", "3"} {
		require.NoError(t, s.RecordMessage("g", "u1", mid, time.Minute))
	}
	require.NoError(t, s.RecordMessage("g", "u2", "4", time.Minute))
	require.NoError(t, s.RecordMessage("g2", "u1", "5", time.Minute))
	// same message twice only counts once
	require.NoError(t, s.RecordMessage("g", "u1", "3", time.Minute))

	n, err := s.CountMessages("g", "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, s.ClearMessages("g", "u1"))
	n, err = s.CountMessages("g", "u1")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.CountMessages("g", "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMessageExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for ttl")
	}
	s := newTestStore(t)

	require.NoError(t, s.RecordMessage("g", "u1", "1", time.Second))
	time.Sleep(2100 * time.Millisecond)

	n, err := s.CountMessages("g", "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPanel(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPanel("c1")
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now().Truncate(time.Second)
	require.NoError(t, s.SetPanel(&PanelRecord{ChannelID: "c1", MessageID: "m1", UpdatedAt: now}))
	require.NoError(t, s.SetPanel(&PanelRecord{ChannelID: "c1", MessageID: "m2", UpdatedAt: now}))

	rec, err := s.GetPanel("c1")
	require.NoError(t, err)
	assert.Equal(t, "m2", rec.MessageID)
	assert.True(t, now.Equal(rec.UpdatedAt))
}
