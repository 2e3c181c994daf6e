package bot

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/intrntsrfr/slxshybot/ai"
	"github.com/intrntsrfr/slxshybot/config"
	"github.com/intrntsrfr/slxshybot/database"
	"github.com/intrntsrfr/slxshybot/discord"
	"github.com/intrntsrfr/slxshybot/grass"
	"github.com/intrntsrfr/slxshybot/kvstore"
	"github.com/intrntsrfr/slxshybot/owo"
	"github.com/intrntsrfr/slxshybot/status"
)

const kvGCInterval = 5 * time.Minute

type Bot struct {
	store    *kvstore.Store
	log      *zap.Logger
	db       database.DB
	disc     *discord.Discord
	sess     Session
	state    State
	settings *config.Config

	tracker *grass.Tracker
	panel   *grass.Panel
	status  *status.Poller
	ai      Asker
	owo     Uploader

	commands   map[string]commandHandler
	components map[string]commandHandler
	register   sync.Once
	botID      atomic.Value
	startTime  time.Time
}

type Config struct {
	Settings *config.Config
	Store    *kvstore.Store
	Log      *zap.Logger
	DB       database.DB
	Owo      *owo.Client
	AI       *ai.Relay
}

func NewBot(c *Config) (*Bot, error) {
	disc, err := discord.NewDiscord(c.Settings.Token, c.Log.Named("discord"))
	if err != nil {
		return nil, err
	}

	b := newBot(c, disc.Sess, disc)
	b.disc = disc
	return b, nil
}

// newBot wires everything that does not need a gateway connection.
func newBot(c *Config, sess Session, state State) *Bot {
	b := &Bot{
		store:     c.Store,
		log:       c.Log,
		db:        c.DB,
		sess:      sess,
		state:     state,
		settings:  c.Settings,
		startTime: time.Now(),
	}
	if c.AI != nil {
		b.ai = c.AI
	}
	if c.Owo != nil {
		b.owo = c.Owo
	}

	b.tracker = grass.NewTracker(c.DB, c.Log.Named("grass"))
	if id := c.Settings.Grass.ChannelID; id != "" {
		var panelStore grass.PanelStore
		if c.Store != nil {
			panelStore = c.Store
		}
		b.panel = grass.NewPanel(id, b.tracker, sess, panelStore, c.Log.Named("panel"))
	}

	if c.Settings.Status.Enabled {
		var notifier status.Notifier
		if id := c.Settings.Status.LogChannelID; id != "" {
			notifier = &channelNotifier{sess: sess, channelID: id}
		}
		b.status = status.NewPoller(&status.Config{
			Endpoint: c.Settings.Status.Endpoint,
			Address:  c.Settings.Server.Addr(),
			Players:  c.DB,
			Notifier: notifier,
			Log:      c.Log.Named("status"),
		})
	}

	b.commands = b.commandHandlers()
	b.components = map[string]commandHandler{
		grass.CustomIDTouch:       b.touchGrassButton,
		grass.CustomIDLeaderboard: b.leaderboardButton,
	}
	return b
}

func (b *Bot) Close() {
	if b.disc != nil {
		b.disc.Close()
	}
}

// Run connects to discord and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.listen(ctx, b.disc.Events)
		return nil
	})

	if err := b.disc.Open(); err != nil {
		return err
	}
	b.log.Info("connected to discord")

	if b.panel != nil {
		g.Go(func() error {
			b.panel.Run(ctx, b.settings.Grass.RefreshInterval, b.connected)
			return nil
		})
	}
	if b.status != nil {
		g.Go(func() error {
			b.status.Run(ctx, b.settings.Status.Interval)
			return nil
		})
	}
	if b.store != nil {
		g.Go(func() error {
			b.store.RunGC(ctx, kvGCInterval)
			return nil
		})
	}

	return g.Wait()
}

func (b *Bot) connected() int {
	return b.state.ConnectedCount(b.settings.GuildID)
}

func (b *Bot) listen(ctx context.Context, evtCh <-chan interface{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-evtCh:
			b.handleEvent(ctx, evt)
		}
	}
}

// handleEvent dispatches one gateway event. Voice transitions are applied
// here, in delivery order, and only their effects run concurrently.
func (b *Bot) handleEvent(ctx context.Context, evt interface{}) {
	switch e := evt.(type) {
	case *discordgo.Ready:
		go b.readyHandler(e)
	case *discordgo.Disconnect:
		go b.disconnectHandler(e)
	case *discordgo.GuildCreate:
		b.log.Info("guild available", zap.String("guildID", e.ID), zap.String("name", e.Name))
	case *discordgo.VoiceStateUpdate:
		ev, ok := b.presenceChanged(e, time.Now())
		if !ok {
			return
		}
		if effects := b.tracker.Apply(ev); len(effects) > 0 {
			go b.tracker.Execute(ctx, effects)
		}
	case *discordgo.MessageCreate:
		go b.messageCreateHandler(ctx, e)
	case *discordgo.InteractionCreate:
		go b.interactionCreateHandler(ctx, e)
	}
}

func (b *Bot) inGuild(gid string) bool {
	return b.settings.GuildID == "" || gid == b.settings.GuildID
}

func (b *Bot) BotID() string {
	id, _ := b.botID.Load().(string)
	return id
}
