package status

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeServer struct {
	mu   sync.Mutex
	body string
	code int
	path string
}

func (f *fakeServer) set(code int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.code, f.body = code, body
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.path = r.URL.Path
	w.WriteHeader(f.code)
	_, _ = w.Write([]byte(f.body))
}

type notifications struct {
	mu   sync.Mutex
	msgs []string
	err  error
}

func (n *notifications) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, text)
	return n.err
}

type players struct {
	seen map[string]bool
}

func (p *players) RecordPlayer(_ context.Context, name string, _ time.Time) (bool, error) {
	if p.seen[name] {
		return false, nil
	}
	p.seen[name] = true
	return true, nil
}

func doc(online bool, count int) string {
	on := "false"
	if online {
		on = "true"
	}
	return `{"online":` + on + `,"host":"play.example.com","port":19132,` +
		`"players":{"online":` + strconv.Itoa(count) + `,"max":20},"edition":"MCPE","motd":{"clean":"hi"}}`
}

func newTestPoller(t *testing.T) (*Poller, *fakeServer, *notifications, *players) {
	t.Helper()
	srv := &fakeServer{code: http.StatusOK, body: doc(true, 0)}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	n := &notifications{}
	pl := &players{seen: map[string]bool{}}
	p := NewPoller(&Config{
		Endpoint: ts.URL + "/v2/status/bedrock/",
		Address:  "play.example.com:19132",
		Players:  pl,
		Notifier: n,
		Log:      zap.NewNop(),
	})
	return p, srv, n, pl
}

func TestFirstPollSeedsBaseline(t *testing.T) {
	p, srv, n, _ := newTestPoller(t)
	srv.set(http.StatusOK, doc(true, 3))

	require.NoError(t, p.Poll(context.Background()))
	assert.Empty(t, n.msgs)
	assert.Equal(t, "/v2/status/bedrock/play.example.com:19132", srv.path)

	b, ok := p.Baseline()
	require.True(t, ok)
	assert.Equal(t, Snapshot{Online: true, Players: 3}, b)
}

func TestPollNotifiesPerChangedField(t *testing.T) {
	p, srv, n, _ := newTestPoller(t)
	ctx := context.Background()

	srv.set(http.StatusOK, doc(true, 2))
	require.NoError(t, p.Poll(ctx))

	srv.set(http.StatusOK, doc(true, 2))
	require.NoError(t, p.Poll(ctx))
	assert.Empty(t, n.msgs)

	srv.set(http.StatusOK, doc(true, 5))
	require.NoError(t, p.Poll(ctx))
	assert.Equal(t, []string{"👥 **Player Count Changed:** 2 → 5"}, n.msgs)

	srv.set(http.StatusOK, doc(false, 0))
	require.NoError(t, p.Poll(ctx))
	assert.Equal(t, []string{
		"👥 **Player Count Changed:** 2 → 5",
		"🔴 **Server is now OFFLINE.**",
		"👥 **Player Count Changed:** 5 → 0",
	}, n.msgs)
}

func TestFetchErrorKeepsBaseline(t *testing.T) {
	p, srv, n, _ := newTestPoller(t)
	ctx := context.Background()

	srv.set(http.StatusOK, doc(false, 0))
	require.NoError(t, p.Poll(ctx))

	srv.set(http.StatusInternalServerError, "oops")
	assert.Error(t, p.Poll(ctx))
	srv.set(http.StatusOK, "{not json")
	assert.Error(t, p.Poll(ctx))

	b, ok := p.Baseline()
	require.True(t, ok)
	assert.Equal(t, Snapshot{Online: false, Players: 0}, b)

	srv.set(http.StatusOK, doc(true, 0))
	require.NoError(t, p.Poll(ctx))
	assert.Equal(t, []string{"🟢 **Server is now ONLINE!**"}, n.msgs)
}

func TestFailedFirstPollDoesNotSeed(t *testing.T) {
	p, srv, _, _ := newTestPoller(t)
	srv.set(http.StatusBadGateway, "")

	assert.Error(t, p.Poll(context.Background()))
	_, ok := p.Baseline()
	assert.False(t, ok)
}

func TestNotifyErrorDoesNotFailPoll(t *testing.T) {
	p, srv, n, _ := newTestPoller(t)
	ctx := context.Background()
	n.err = errors.New("missing access")

	require.NoError(t, p.Poll(ctx))
	srv.set(http.StatusOK, doc(false, 0))
	assert.NoError(t, p.Poll(ctx))
	assert.Len(t, n.msgs, 1)
}

func TestPollRecordsPlayers(t *testing.T) {
	p, srv, _, pl := newTestPoller(t)
	srv.set(http.StatusOK, `{"online":true,"players":{"online":2,"max":10,"list":[`+
		`{"uuid":"1","name_raw":"§aSteve","name_clean":"Steve"},{"uuid":"2","name_raw":"Alex","name_clean":""}]}}`)

	require.NoError(t, p.Poll(context.Background()))
	assert.Equal(t, map[string]bool{"Steve": true, "Alex": true}, pl.seen)
}

func TestDocumentField(t *testing.T) {
	p, srv, _, _ := newTestPoller(t)
	srv.set(http.StatusOK, doc(true, 4))

	d, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "play.example.com", d.Host)
	assert.Equal(t, 19132, d.Port)
	assert.Equal(t, 4, d.Players.Online)

	v, ok := d.Field("players")
	require.True(t, ok)
	assert.Contains(t, v, `"online": 4`)

	v, ok = d.Field("online")
	require.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok = d.Field("software")
	assert.False(t, ok)

	assert.Equal(t, []string{"edition", "host", "motd", "online", "players", "port"}, d.Keys())
}

func TestChanges(t *testing.T) {
	tests := []struct {
		name string
		prev Snapshot
		cur  Snapshot
		want []string
	}{
		{"no change", Snapshot{true, 1}, Snapshot{true, 1}, nil},
		{"online", Snapshot{false, 0}, Snapshot{true, 0}, []string{"🟢 **Server is now ONLINE!**"}},
		{"offline", Snapshot{true, 0}, Snapshot{false, 0}, []string{"🔴 **Server is now OFFLINE.**"}},
		{"players", Snapshot{true, 1}, Snapshot{true, 0}, []string{"👥 **Player Count Changed:** 1 → 0"}},
		{"both", Snapshot{false, 0}, Snapshot{true, 2}, []string{
			"🟢 **Server is now ONLINE!**",
			"👥 **Player Count Changed:** 0 → 2",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Changes(tt.prev, tt.cur))
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	p, _, _, _ := newTestPoller(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		p.Run(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, ok := p.Baseline()
		return ok
	}, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
