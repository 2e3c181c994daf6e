package bot

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modCmd(uid, name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *Context {
	c := cmd(uid, name, opts...)
	c.Permissions = discordgo.PermissionManageMessages
	return c
}

func TestWarnings(t *testing.T) {
	b := newTestBot(t)
	ctx := context.Background()

	r := b.runCommand(ctx, cmd("u1", "warn", userOpt("u2"), strOpt("reason", "griefing")))
	assert.Contains(t, r.Content, "Manage Messages")

	r = b.runCommand(ctx, modCmd("mod", "warnings", userOpt("u2")))
	assert.Contains(t, r.Content, "has no warnings")

	r = b.runCommand(ctx, modCmd("mod", "warn", userOpt("u2"), strOpt("reason", " ")))
	assert.Contains(t, r.Content, "needs a reason")

	r = b.runCommand(ctx, modCmd("mod", "warn", userOpt("u2"), strOpt("reason", "griefing")))
	assert.Equal(t, "⚠️ <@u2> was warned: griefing (warning #1)", r.Content)
	r = b.runCommand(ctx, modCmd("mod", "warn", userOpt("u2"), strOpt("reason", "stealing")))
	assert.Contains(t, r.Content, "warning #2")

	r = b.runCommand(ctx, modCmd("mod", "warnings", userOpt("u2")))
	assert.True(t, r.Ephemeral)
	assert.Contains(t, r.Content, "(2)")
	assert.Contains(t, r.Content, "1. griefing - by <@mod>")
	assert.Contains(t, r.Content, "2. stealing")

	admin := cmd("admin", "warnings", userOpt("u2"))
	admin.Permissions = discordgo.PermissionAdministrator
	r = b.runCommand(ctx, admin)
	assert.Contains(t, r.Content, "griefing")
}

func message(id, uid string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		GuildID:   "g1",
		ChannelID: "c1",
		Author:    &discordgo.User{ID: uid},
		Timestamp: t0,
	}
}

func TestCheckSpam(t *testing.T) {
	b, sess, _ := newTestBotWith(t, testSettings())
	b.botID.Store("bot")
	ctx := context.Background()

	// threshold is 3 in the test settings
	assert.False(t, b.checkSpam(ctx, message("1", "u1")))
	assert.False(t, b.checkSpam(ctx, message("2", "u1")))
	assert.False(t, b.checkSpam(ctx, message("3", "u2")))
	assert.True(t, b.checkSpam(ctx, message("4", "u1")))

	warnings, err := b.db.Warnings(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "bot", warnings[0].ModeratorID)
	assert.Equal(t, spamReason, warnings[0].Reason)

	msgs := sess.messages("c1")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "<@u1>")

	// the window restarts after a warning
	assert.False(t, b.checkSpam(ctx, message("5", "u1")))

	for i := 6; i < 12; i++ {
		b.checkSpam(ctx, message(fmt.Sprint(i), "u3"))
	}
	warnings, err = b.db.Warnings(ctx, "g1", "u3")
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
}

func TestCheckSpamDisabled(t *testing.T) {
	settings := testSettings()
	settings.Spam.Threshold = 0
	b, _, _ := newTestBotWith(t, settings)

	for i := 0; i < 10; i++ {
		assert.False(t, b.checkSpam(context.Background(), message(fmt.Sprint(i), "u1")))
	}
}
