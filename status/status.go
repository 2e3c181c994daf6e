// Package status polls the Minecraft server status API and reports changes.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultEndpoint = "https://api.mcstatus.io/v2/status/bedrock/"

// Fields are the top level keys of the status document that can be
// requested one at a time.
var Fields = []string{
	"online", "host", "port", "version", "players", "gamemode",
	"edition", "software", "plugins", "motd", "retrieved_at", "expires_at", "eula_blocked",
}

type Player struct {
	UUID      string `json:"uuid"`
	NameRaw   string `json:"name_raw"`
	NameClean string `json:"name_clean"`
}

type Players struct {
	Online int      `json:"online"`
	Max    int      `json:"max"`
	List   []Player `json:"list"`
}

// Document is a decoded status response. Raw keeps every top level field
// for display.
type Document struct {
	Online  bool    `json:"online"`
	Host    string  `json:"host"`
	Port    int     `json:"port"`
	Players Players `json:"players"`

	Raw map[string]json.RawMessage `json:"-"`
}

// Field returns one top level field of the document, indented.
func (d *Document) Field(name string) (string, bool) {
	raw, ok := d.Raw[name]
	if !ok {
		return "", false
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw), true
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw), true
	}
	return string(out), true
}

// Keys returns the document's top level keys in order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.Raw))
	for k := range d.Raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot is the part of the status that is compared between polls.
type Snapshot struct {
	Online  bool
	Players int
}

// PlayerRecorder stores the names of players seen on the server.
type PlayerRecorder interface {
	RecordPlayer(ctx context.Context, name string, at time.Time) (bool, error)
}

// Notifier delivers change notifications.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type Config struct {
	Endpoint string
	Address  string
	Client   *http.Client
	Players  PlayerRecorder
	Notifier Notifier
	Log      *zap.Logger
}

type Poller struct {
	url      string
	client   *http.Client
	players  PlayerRecorder
	notifier Notifier
	log      *zap.Logger

	mu       sync.Mutex
	baseline *Snapshot
}

func NewPoller(c *Config) *Poller {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Poller{
		url:      strings.TrimSuffix(endpoint, "/") + "/" + c.Address,
		client:   client,
		players:  c.Players,
		notifier: c.Notifier,
		log:      c.Log,
	}
}

// Fetch gets the current status document.
func (p *Poller) Fetch(ctx context.Context) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status api returned %v", res.Status)
	}

	doc := &Document{}
	if err := json.NewDecoder(res.Body).Decode(&doc.Raw); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	// decode the typed fields from the raw map so the body is read once
	b, err := json.Marshal(doc.Raw)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return doc, nil
}

// Baseline returns the last known snapshot, if a poll has succeeded yet.
func (p *Poller) Baseline() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.baseline == nil {
		return Snapshot{}, false
	}
	return *p.baseline, true
}

// Changes compares a snapshot to the previous one and returns one message
// per changed field.
func Changes(prev, cur Snapshot) []string {
	var msgs []string
	if prev.Online != cur.Online {
		if cur.Online {
			msgs = append(msgs, "🟢 **Server is now ONLINE!**")
		} else {
			msgs = append(msgs, "🔴 **Server is now OFFLINE.**")
		}
	}
	if prev.Players != cur.Players {
		msgs = append(msgs, fmt.Sprintf("👥 **Player Count Changed:** %v → %v", prev.Players, cur.Players))
	}
	return msgs
}

// Poll fetches the status once, updates the baseline and sends a
// notification for each change. The first successful poll only sets the
// baseline. A failed fetch leaves the baseline alone.
func (p *Poller) Poll(ctx context.Context) error {
	doc, err := p.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch status: %w", err)
	}
	cur := Snapshot{Online: doc.Online, Players: doc.Players.Online}

	p.mu.Lock()
	prev := p.baseline
	p.baseline = &cur
	p.mu.Unlock()

	p.recordPlayers(ctx, doc)

	if prev == nil {
		p.log.Info("status baseline set", zap.Bool("online", cur.Online), zap.Int("players", cur.Players))
		return nil
	}

	for _, msg := range Changes(*prev, cur) {
		if p.notifier == nil {
			continue
		}
		if err := p.notifier.Notify(ctx, msg); err != nil {
			p.log.Error("failed to send status notification", zap.Error(err))
		}
	}
	return nil
}

func (p *Poller) recordPlayers(ctx context.Context, doc *Document) {
	if p.players == nil {
		return
	}
	now := time.Now()
	for _, pl := range doc.Players.List {
		name := pl.NameClean
		if name == "" {
			name = pl.NameRaw
		}
		if name == "" {
			continue
		}
		first, err := p.players.RecordPlayer(ctx, name, now)
		if err != nil {
			p.log.Error("failed to record player", zap.String("name", name), zap.Error(err))
			continue
		}
		if first {
			p.log.Info("new player seen", zap.String("name", name))
		}
	}
}

// Run polls every interval until ctx is done.
func (p *Poller) Run(ctx context.Context, interval time.Duration) {
	poll := func() {
		if err := p.Poll(ctx); err != nil && ctx.Err() == nil {
			p.log.Warn("status check failed", zap.Error(err))
		}
	}

	poll()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			poll()
		}
	}
}
