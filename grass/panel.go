package grass

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/intrntsrfr/meido/pkg/utils/builders"
	"go.uber.org/zap"

	"github.com/intrntsrfr/slxshybot/database"
	"github.com/intrntsrfr/slxshybot/kvstore"
)

// Messenger is the part of a discord session the panel writes through.
type Messenger interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// PanelStore persists the panel message id across restarts.
type PanelStore interface {
	GetPanel(channelID string) (*kvstore.PanelRecord, error)
	SetPanel(rec *kvstore.PanelRecord) error
}

// SendMessage posts a new panel message.
type SendMessage struct {
	ChannelID string
	Data      *discordgo.MessageSend
}

// EditMessage replaces the content of the existing panel message.
type EditMessage struct {
	ChannelID string
	MessageID string
	Embed     *discordgo.MessageEmbed
}

func (SendMessage) isEffect() {}
func (EditMessage) isEffect() {}

// Panel is the periodically refreshed summary message with the touch and
// leaderboard buttons.
type Panel struct {
	mu        sync.Mutex
	channelID string
	messageID string

	tracker *Tracker
	msg     Messenger
	store   PanelStore
	log     *zap.Logger
}

func NewPanel(channelID string, tracker *Tracker, msg Messenger, store PanelStore, log *zap.Logger) *Panel {
	p := &Panel{
		channelID: channelID,
		tracker:   tracker,
		msg:       msg,
		store:     store,
		log:       log,
	}
	if store != nil {
		rec, err := store.GetPanel(channelID)
		if err == nil {
			p.messageID = rec.MessageID
		} else if !errors.Is(err, kvstore.ErrNotFound) {
			log.Error("failed to load panel record", zap.Error(err))
		}
	}
	return p
}

func (p *Panel) MessageID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messageID
}

// Plan decides whether the summary goes into a new message or an edit of
// the last one.
func (p *Panel) Plan(s *Summary, at time.Time) Effect {
	embed := SummaryEmbed(s, at)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.messageID == "" {
		return SendMessage{
			ChannelID: p.channelID,
			Data: &discordgo.MessageSend{
				Embeds:     []*discordgo.MessageEmbed{embed},
				Components: PanelComponents(),
			},
		}
	}
	return EditMessage{
		ChannelID: p.channelID,
		MessageID: p.messageID,
		Embed:     embed,
	}
}

// Refresh renders the current summary. A failed edit, usually because the
// message was deleted, falls back to sending a fresh message.
func (p *Panel) Refresh(ctx context.Context, connected int, at time.Time) error {
	s, err := p.tracker.Summary(ctx, connected)
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}

	switch e := p.Plan(s, at).(type) {
	case EditMessage:
		edit := discordgo.NewMessageEdit(e.ChannelID, e.MessageID).
			SetEmbeds([]*discordgo.MessageEmbed{e.Embed})
		components := PanelComponents()
		edit.Components = &components
		_, editErr := p.msg.ChannelMessageEditComplex(edit)
		if editErr == nil {
			return nil
		}
		p.log.Warn("failed to edit panel, sending new one", zap.String("messageID", e.MessageID), zap.Error(editErr))
		return p.send(SendMessage{
			ChannelID: e.ChannelID,
			Data: &discordgo.MessageSend{
				Embeds:     []*discordgo.MessageEmbed{e.Embed},
				Components: components,
			},
		}, at)
	case SendMessage:
		return p.send(e, at)
	}
	return nil
}

func (p *Panel) send(e SendMessage, at time.Time) error {
	m, err := p.msg.ChannelMessageSendComplex(e.ChannelID, e.Data)
	if err != nil {
		return fmt.Errorf("send panel: %w", err)
	}

	p.mu.Lock()
	p.messageID = m.ID
	p.mu.Unlock()

	if p.store != nil {
		err := p.store.SetPanel(&kvstore.PanelRecord{
			ChannelID: e.ChannelID,
			MessageID: m.ID,
			UpdatedAt: at,
		})
		if err != nil {
			p.log.Error("failed to save panel record", zap.Error(err))
		}
	}
	return nil
}

// Run refreshes the panel right away and then every interval until ctx is done.
func (p *Panel) Run(ctx context.Context, interval time.Duration, connected func() int) {
	refresh := func() {
		if err := p.Refresh(ctx, connected(), time.Now()); err != nil {
			p.log.Error("failed to refresh grass panel", zap.Error(err))
		}
	}

	refresh()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			refresh()
		}
	}
}

func PanelComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "🌱 Touch grass",
					Style:    discordgo.SuccessButton,
					CustomID: CustomIDTouch,
				},
				discordgo.Button{
					Label:    "🏆 Leaderboard",
					Style:    discordgo.SecondaryButton,
					CustomID: CustomIDLeaderboard,
				},
			},
		},
	}
}

func SummaryEmbed(s *Summary, at time.Time) *discordgo.MessageEmbed {
	embed := builders.NewEmbedBuilder().
		WithTitle("🌱 Touch Grass").
		WithOkColor().
		WithDescription("Spend time in voice to grow grass. Unmuted time counts double.").
		AddField("Total grass", fmt.Sprint(s.Total), true).
		AddField("Growers", fmt.Sprint(s.Accounts), true).
		AddField("In voice now", fmt.Sprint(s.Connected), true).
		Build()
	embed.Timestamp = at.Format(time.RFC3339)
	return embed
}

func LeaderboardEmbed(accounts []*database.GrassAccount) *discordgo.MessageEmbed {
	text := strings.Builder{}
	if len(accounts) == 0 {
		text.WriteString("Nobody has touched grass yet.")
	}
	for i, a := range accounts {
		text.WriteString(fmt.Sprintf("`%2d.` **%v** - %v\n", i+1, a.DisplayName, a.TotalScore))
	}

	return builders.NewEmbedBuilder().
		WithTitle("🏆 Grass Leaderboard").
		WithOkColor().
		WithDescription(text.String()).
		Build()
}
