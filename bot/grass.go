package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/intrntsrfr/slxshybot/discord"
	"github.com/intrntsrfr/slxshybot/grass"
)

// presenceChanged turns a voice state update into a tracker event. Updates
// from other guilds are dropped.
func (b *Bot) presenceChanged(v *discordgo.VoiceStateUpdate, at time.Time) (grass.PresenceChanged, bool) {
	if v.VoiceState == nil || !b.inGuild(v.GuildID) {
		return grass.PresenceChanged{}, false
	}

	ev := grass.PresenceChanged{
		UserID:       v.UserID,
		WasInChannel: v.BeforeUpdate != nil && v.BeforeUpdate.ChannelID != "",
		IsInChannel:  v.ChannelID != "",
		SelfMuted:    v.SelfMute,
		SelfDeafened: v.SelfDeaf,
		At:           at,
	}
	if v.Member != nil && v.Member.User != nil {
		ev.Bot = v.Member.User.Bot
		ev.DisplayName = discord.MemberName(v.Member)
	} else {
		ev.Bot = b.state.IsBot(v.GuildID, v.UserID)
		ev.DisplayName = b.state.DisplayName(v.GuildID, v.UserID)
	}
	return ev, true
}

func (b *Bot) grassCommand(ctx context.Context, _ *Context) (*Reply, error) {
	top, err := b.tracker.Leaderboard(ctx, grass.LeaderboardSize)
	if err != nil {
		return nil, err
	}
	return embedReply(grass.LeaderboardEmbed(top)), nil
}

func (b *Bot) touchGrassCommand(ctx context.Context, c *Context) (*Reply, error) {
	text, err := b.tracker.OnManualTouch(ctx, grass.ManualTouch{
		UserID:      c.UserID,
		DisplayName: c.DisplayName,
		At:          c.At,
	})
	if err != nil {
		return nil, err
	}
	return textReply(text), nil
}

func (b *Bot) touchGrassButton(ctx context.Context, c *Context) (*Reply, error) {
	r, err := b.touchGrassCommand(ctx, c)
	if err != nil {
		return nil, err
	}
	r.Ephemeral = true
	return r, nil
}

func (b *Bot) leaderboardButton(ctx context.Context, c *Context) (*Reply, error) {
	r, err := b.grassCommand(ctx, c)
	if err != nil {
		return nil, err
	}
	r.Ephemeral = true
	return r, nil
}
