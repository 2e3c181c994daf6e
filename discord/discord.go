package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Intents are the gateway intents the bot identifies with. Voice states
// drive the grass tracker and message content drives the text triggers.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsGuildMembers |
	discordgo.IntentMessageContent

type Discord struct {
	token    string
	Sess     *discordgo.Session
	sessions []*discordgo.Session
	log      *zap.Logger

	Events    chan interface{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewDiscord takes in a token and creates a Discord object with one session
// per recommended shard.
func NewDiscord(token string, log *zap.Logger) (*Discord, error) {
	d := &Discord{
		token:  token,
		log:    log,
		Events: make(chan interface{}, 256),
		done:   make(chan struct{}),
	}

	shardCount, err := d.recommendedShards()
	if err != nil {
		return nil, err
	}

	for i := 0; i < shardCount; i++ {
		s, err := discordgo.New("Bot " + d.token)
		if err != nil {
			return nil, err
		}

		s.State.TrackVoice = true
		s.State.TrackMembers = true
		s.State.TrackPresences = false
		s.ShardCount = shardCount
		s.ShardID = i
		s.Identify.Intents = Intents
		s.AddHandler(onEvent(d.Events, d.done))

		d.sessions = append(d.sessions, s)
		d.log.Info("created session", zap.Int("shard", i), zap.Int("shards", shardCount))
	}
	d.Sess = d.sessions[0]

	return d, nil
}

// onEvent forwards the events the bot handles to the event channel. Events
// are dropped once done is closed.
func onEvent(e chan interface{}, done <-chan struct{}) func(s *discordgo.Session, i interface{}) {
	return func(s *discordgo.Session, i interface{}) {
		switch i.(type) {
		case *discordgo.Ready,
			*discordgo.Disconnect,
			*discordgo.GuildCreate,
			*discordgo.MessageCreate,
			*discordgo.VoiceStateUpdate,
			*discordgo.InteractionCreate:
			select {
			case e <- i:
			case <-done:
			}
		}
	}
}

// Open opens the Discord sessions.
func (d *Discord) Open() error {
	for _, sess := range d.sessions {
		if err := sess.Open(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the Discord sessions
func (d *Discord) Close() {
	d.closeOnce.Do(func() { close(d.done) })
	for _, sess := range d.sessions {
		if err := sess.Close(); err != nil {
			d.log.Error("failed to close discord session", zap.Int("shard", sess.ShardID), zap.Error(err))
		}
	}
}

// recommendedShards asks discord for the recommended shard count for the
// bot. A single shard is used if discord does not say.
func (d *Discord) recommendedShards() (int, error) {
	s, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return -1, err
	}
	resp, err := s.GatewayBot()
	if err != nil {
		return -1, err
	}
	if resp.Shards < 1 {
		return 1, nil
	}
	return resp.Shards, nil
}
