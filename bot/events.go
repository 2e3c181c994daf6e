package bot

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/intrntsrfr/slxshybot/ai"
)

func (b *Bot) readyHandler(r *discordgo.Ready) {
	b.botID.Store(r.User.ID)
	b.log.Info("logged in", zap.String("user", r.User.String()), zap.Int("guilds", len(r.Guilds)))

	b.register.Do(func() {
		if err := b.registerCommands(r.User.ID); err != nil {
			b.log.Error("failed to register commands", zap.Error(err))
		}
	})

	if err := b.sess.UpdateGameStatus(0, "/help"); err != nil {
		b.log.Warn("failed to set status", zap.Error(err))
	}
}

func (b *Bot) disconnectHandler(_ *discordgo.Disconnect) {
	b.log.Info("disconnected")
}

func (b *Bot) interactionCreateHandler(ctx context.Context, i *discordgo.InteractionCreate) {
	if !b.inGuild(i.GuildID) {
		return
	}

	var r *Reply
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		r = b.runCommand(ctx, newContext(i.Interaction, time.Now()))
	case discordgo.InteractionMessageComponent:
		r = b.runComponent(ctx, newContext(i.Interaction, time.Now()))
	default:
		return
	}

	b.respond(i.Interaction, b.fit(ctx, r, "reply.txt"))
}

func (b *Bot) respond(i *discordgo.Interaction, r *Reply) {
	data := &discordgo.InteractionResponseData{
		Content:    r.Content,
		Components: r.Components,
		Files:      r.Files,
	}
	if r.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{r.Embed}
	}
	if r.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := b.sess.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.log.Error("failed to respond to interaction", zap.String("interactionID", i.ID), zap.Error(err))
	}
}

func (b *Bot) messageCreateHandler(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" || !b.inGuild(m.GuildID) {
		return
	}

	if b.store != nil {
		b.checkSpam(ctx, m.Message)
	}

	r := b.messageReply(ctx, m.Content)
	if r == nil {
		return
	}
	r = b.fit(ctx, r, "answer.txt")

	_, err := b.sess.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:   r.Content,
		Files:     r.Files,
		Reference: m.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	})
	if err != nil {
		b.log.Error("failed to send reply", zap.String("channelID", m.ChannelID), zap.Error(err))
	}
}

// messageReply picks the automatic reply for a message, if any. The !ask
// prefix wins over the join help triggers.
func (b *Bot) messageReply(ctx context.Context, content string) *Reply {
	if prompt, ok := ai.ParseAsk(content); ok {
		if b.ai == nil {
			return nil
		}
		return textReply(b.ai.Reply(ctx, prompt))
	}

	if text := b.joinHelp(strings.ToLower(content)); text != "" {
		return textReply(text)
	}
	return nil
}
