package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/intrntsrfr/slxshybot/database"
)

const spamReason = "Automatic: sending messages too fast"

func (b *Bot) warnCommand(ctx context.Context, c *Context) (*Reply, error) {
	if !c.HasPermission(discordgo.PermissionManageMessages) {
		return ephemeral("❌ You need the Manage Messages permission to warn people."), nil
	}

	userID := TrimUserMention(c.User("user"))
	reason := strings.TrimSpace(c.String("reason"))
	if reason == "" {
		return ephemeral("❌ A warning needs a reason."), nil
	}

	w := &database.Warning{
		GuildID:     c.GuildID,
		UserID:      userID,
		ModeratorID: c.UserID,
		Reason:      reason,
		CreatedAt:   c.At,
	}
	if err := b.db.AddWarning(ctx, w); err != nil {
		return nil, err
	}

	warnings, err := b.db.Warnings(ctx, c.GuildID, userID)
	if err != nil {
		return nil, err
	}
	return textReplyf("⚠️ <@%v> was warned: %v (warning #%v)", userID, reason, len(warnings)), nil
}

func (b *Bot) warningsCommand(ctx context.Context, c *Context) (*Reply, error) {
	if !c.HasPermission(discordgo.PermissionManageMessages) {
		return ephemeral("❌ You need the Manage Messages permission to see warnings."), nil
	}

	userID := TrimUserMention(c.User("user"))
	warnings, err := b.db.Warnings(ctx, c.GuildID, userID)
	if err != nil {
		return nil, err
	}
	if len(warnings) == 0 {
		return ephemeralf("<@%v> has no warnings.", userID), nil
	}

	text := strings.Builder{}
	text.WriteString(fmt.Sprintf("⚠️ **Warnings for <@%v> (%v):**", userID, len(warnings)))
	for i, w := range warnings {
		text.WriteString(fmt.Sprintf("\n%v. %v - by <@%v> <t:%v:R>", i+1, w.Reason, w.ModeratorID, w.CreatedAt.Unix()))
	}
	return &Reply{Content: text.String(), Ephemeral: true}, nil
}

// checkSpam records the message and warns its author when they sent too
// many messages inside the spam window. The window is cleared after a
// warning so one burst gives one warning.
func (b *Bot) checkSpam(ctx context.Context, m *discordgo.Message) bool {
	spam := b.settings.Spam
	if spam.Threshold <= 0 || spam.Window <= 0 {
		return false
	}

	if err := b.store.RecordMessage(m.GuildID, m.Author.ID, m.ID, spam.Window); err != nil {
		b.log.Error("failed to record message", zap.Error(err))
		return false
	}
	n, err := b.store.CountMessages(m.GuildID, m.Author.ID)
	if err != nil {
		b.log.Error("failed to count messages", zap.Error(err))
		return false
	}
	if n < spam.Threshold {
		return false
	}

	if err := b.store.ClearMessages(m.GuildID, m.Author.ID); err != nil {
		b.log.Error("failed to clear messages", zap.Error(err))
	}

	at := m.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	w := &database.Warning{
		GuildID:     m.GuildID,
		UserID:      m.Author.ID,
		ModeratorID: b.BotID(),
		Reason:      spamReason,
		CreatedAt:   at,
	}
	if err := b.db.AddWarning(ctx, w); err != nil {
		b.log.Error("failed to add spam warning", zap.String("userID", m.Author.ID), zap.Error(err))
		return true
	}
	b.log.Info("spam warning", zap.String("userID", m.Author.ID), zap.Int("messages", n))

	_, err = b.sess.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("⚠️ <@%v> slow down, you have been warned for spamming.", m.Author.ID),
	})
	if err != nil {
		b.log.Error("failed to send spam notice", zap.Error(err))
	}
	return true
}
