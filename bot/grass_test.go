package bot

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intrntsrfr/slxshybot/grass"
)

func voiceUpdate(uid, guildID, before, after string, muted bool) *discordgo.VoiceStateUpdate {
	v := &discordgo.VoiceStateUpdate{
		VoiceState: &discordgo.VoiceState{
			GuildID:   guildID,
			UserID:    uid,
			ChannelID: after,
			SelfMute:  muted,
		},
	}
	if before != "" {
		v.BeforeUpdate = &discordgo.VoiceState{GuildID: guildID, UserID: uid, ChannelID: before}
	}
	return v
}

func TestPresenceChanged(t *testing.T) {
	b, _, state := newTestBotWith(t, testSettings())
	state.bots["b1"] = true
	state.names["u1"] = "alice"

	tests := []struct {
		name   string
		update *discordgo.VoiceStateUpdate
		ok     bool
		want   grass.PresenceChanged
	}{
		{
			name:   "join",
			update: voiceUpdate("u1", "g1", "", "vc", true),
			ok:     true,
			want:   grass.PresenceChanged{UserID: "u1", DisplayName: "alice", IsInChannel: true, SelfMuted: true, At: t0},
		},
		{
			name:   "leave",
			update: voiceUpdate("u1", "g1", "vc", "", false),
			ok:     true,
			want:   grass.PresenceChanged{UserID: "u1", DisplayName: "alice", WasInChannel: true, At: t0},
		},
		{
			name:   "move",
			update: voiceUpdate("u1", "g1", "vc", "vc2", false),
			ok:     true,
			want:   grass.PresenceChanged{UserID: "u1", DisplayName: "alice", WasInChannel: true, IsInChannel: true, At: t0},
		},
		{
			name:   "bot from state",
			update: voiceUpdate("b1", "g1", "", "vc", false),
			ok:     true,
			want:   grass.PresenceChanged{UserID: "b1", DisplayName: "b1", Bot: true, IsInChannel: true, At: t0},
		},
		{
			name:   "other guild",
			update: voiceUpdate("u1", "g2", "", "vc", false),
			ok:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.presenceChanged(tt.update, t0)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	t.Run("member on the event", func(t *testing.T) {
		v := voiceUpdate("u5", "g1", "", "vc", false)
		v.Member = &discordgo.Member{Nick: "Eve", User: &discordgo.User{ID: "u5", Bot: true}}
		got, ok := b.presenceChanged(v, t0)
		require.True(t, ok)
		assert.Equal(t, "Eve", got.DisplayName)
		assert.True(t, got.Bot)
	})
}

func TestVoiceEventsAwardGrass(t *testing.T) {
	b := newTestBot(t)
	ctx := context.Background()

	b.handleEvent(ctx, voiceUpdate("u1", "g1", "", "vc", false))
	_, ok := b.tracker.Session("u1")
	require.True(t, ok)

	// pretend the user joined 100s ago
	b.tracker.Apply(grass.PresenceChanged{UserID: "u1", DisplayName: "u1", IsInChannel: true, At: time.Now().Add(-100 * time.Second)})
	b.handleEvent(ctx, voiceUpdate("u1", "g1", "vc", "", false))

	require.Eventually(t, func() bool {
		top, err := b.db.TopGrass(ctx, 10)
		return err == nil && len(top) == 1 && top[0].TotalScore >= 200
	}, 2*time.Second, 10*time.Millisecond)

	_, ok = b.tracker.Session("u1")
	assert.False(t, ok)
}

func TestTouchGrass(t *testing.T) {
	b := newTestBot(t)
	ctx := context.Background()

	r := b.runCommand(ctx, cmd("u1", "touchgrass"))
	assert.Equal(t, "🌱 You touched grass! You now have **1** grass.", r.Content)
	assert.False(t, r.Ephemeral)

	c := cmd("u1", "")
	c.CustomID = grass.CustomIDTouch
	r = b.runComponent(ctx, c)
	assert.Contains(t, r.Content, "**2**")
	assert.True(t, r.Ephemeral)

	b.runCommand(ctx, cmd("u2", "touchgrass"))

	r = b.runCommand(ctx, cmd("u1", "grass"))
	require.NotNil(t, r.Embed)
	assert.Contains(t, r.Embed.Description, "**name-u1** - 2")
	assert.Contains(t, r.Embed.Description, "**name-u2** - 1")

	c = cmd("u1", "")
	c.CustomID = grass.CustomIDLeaderboard
	r = b.runComponent(ctx, c)
	require.NotNil(t, r.Embed)
	assert.True(t, r.Ephemeral)
}

func TestPanelUsesConnectedCount(t *testing.T) {
	settings := testSettings()
	settings.Grass.ChannelID = "grass"
	b, sess, state := newTestBotWith(t, settings)
	state.connected = 3

	require.NoError(t, b.panel.Refresh(context.Background(), b.connected(), t0))
	msgs := sess.messages("grass")
	require.Len(t, msgs, 1)
	require.Len(t, msgs[0].Embeds, 1)
	assert.Equal(t, "3", msgs[0].Embeds[0].Fields[2].Value)
}
