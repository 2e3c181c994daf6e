package grass

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/intrntsrfr/slxshybot/database"
	"github.com/intrntsrfr/slxshybot/kvstore"
)

type upsertCall struct {
	userID      string
	displayName string
	increment   int64
}

type fakeStore struct {
	mu       sync.Mutex
	accounts map[string]*database.GrassAccount
	calls    []upsertCall
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*database.GrassAccount)}
}

func (f *fakeStore) AddGrass(_ context.Context, userID, displayName string, increment int64, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, upsertCall{userID, displayName, increment})
	if f.err != nil {
		return 0, f.err
	}
	a, ok := f.accounts[userID]
	if !ok {
		a = &database.GrassAccount{UserID: userID}
		f.accounts[userID] = a
	}
	a.DisplayName = displayName
	a.TotalScore += increment
	a.LastUpdate = at
	return a.TotalScore, nil
}

func (f *fakeStore) TopGrass(_ context.Context, limit int) ([]*database.GrassAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*database.GrassAccount
	for _, a := range f.accounts {
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) GrassTotals(_ context.Context) (*database.GrassTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	t := &database.GrassTotals{}
	for _, a := range f.accounts {
		t.Total += a.TotalScore
		t.Accounts++
	}
	return t, nil
}

func (f *fakeStore) score(userID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.accounts[userID]; ok {
		return a.TotalScore
	}
	return 0
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeMessenger struct {
	sent    []*discordgo.MessageSend
	edits   []*discordgo.MessageEdit
	editErr error
	sendErr error
	nextID  int
}

func (f *fakeMessenger) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, data)
	return &discordgo.Message{ID: fmt.Sprintf("m%d", f.nextID), ChannelID: channelID}, nil
}

func (f *fakeMessenger) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, m)
	if f.editErr != nil {
		return nil, f.editErr
	}
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

type fakePanelStore struct {
	recs map[string]*kvstore.PanelRecord
}

func (f *fakePanelStore) GetPanel(channelID string) (*kvstore.PanelRecord, error) {
	if r, ok := f.recs[channelID]; ok {
		return r, nil
	}
	return nil, kvstore.ErrNotFound
}

func (f *fakePanelStore) SetPanel(rec *kvstore.PanelRecord) error {
	f.recs[rec.ChannelID] = rec
	return nil
}

var errStore = errors.New("store down")
