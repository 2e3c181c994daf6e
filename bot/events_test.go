package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionCreateResponds(t *testing.T) {
	b, sess, _ := newTestBotWith(t, testSettings())

	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "i1",
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "g1",
		Member:  &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "alice"}},
		Data:    discordgo.ApplicationCommandInteractionData{Name: "nope"},
	}}
	b.interactionCreateHandler(context.Background(), i)

	require.Len(t, sess.responses, 1)
	resp := sess.responses[0]
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	assert.Equal(t, "Unknown command.", resp.Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)

	// other guilds are ignored
	i.GuildID = "g2"
	b.interactionCreateHandler(context.Background(), i)
	assert.Len(t, sess.responses, 1)
}

func TestInteractionButtonResponds(t *testing.T) {
	b, sess, _ := newTestBotWith(t, testSettings())

	b.interactionCreateHandler(context.Background(), &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		GuildID: "g1",
		Member:  &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "alice"}},
		Data:    discordgo.MessageComponentInteractionData{CustomID: "grass:touch"},
	}})

	require.Len(t, sess.responses, 1)
	assert.Contains(t, sess.responses[0].Data.Content, "You now have **1** grass")
	assert.Equal(t, discordgo.MessageFlagsEphemeral, sess.responses[0].Data.Flags)
}

func msgCreate(uid, content string, bot bool) *discordgo.MessageCreate {
	m := message("m1", uid)
	m.Content = content
	m.Author.Bot = bot
	return &discordgo.MessageCreate{Message: m}
}

func TestMessageCreateReplies(t *testing.T) {
	b, sess, _ := newTestBotWith(t, testSettings())
	b.ai = &fakeAsker{answer: strings.Repeat("x", MaxMessageLength+10)}
	ctx := context.Background()

	b.messageCreateHandler(ctx, msgCreate("u1", "how to join", true))
	assert.Empty(t, sess.messages("c1"))

	b.messageCreateHandler(ctx, msgCreate("u1", "how to join", false))
	msgs := sess.messages("c1")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "Server Name")
	require.NotNil(t, msgs[0].Reference)
	assert.Equal(t, "m1", msgs[0].Reference.MessageID)

	b.messageCreateHandler(ctx, msgCreate("u2", "!ask write an essay", false))
	msgs = sess.messages("c1")
	require.Len(t, msgs, 2)
	require.Len(t, msgs[1].Files, 1)
	assert.Equal(t, "answer.txt", msgs[1].Files[0].Name)
}

func TestReadyRegistersOnce(t *testing.T) {
	b, sess, _ := newTestBotWith(t, testSettings())
	r := &discordgo.Ready{User: &discordgo.User{ID: "bot", Username: "slxshy"}}

	b.readyHandler(r)
	assert.Equal(t, "bot", b.BotID())
	assert.Equal(t, "bot", sess.appID)

	sess.appID = ""
	b.readyHandler(r)
	assert.Empty(t, sess.appID)
}

func TestMessageReplyKeepsPercent(t *testing.T) {
	b, sess, _ := newTestBotWith(t, testSettings())
	b.ai = &fakeAsker{answer: "100% sure, use %v and %d"}

	b.messageCreateHandler(context.Background(), msgCreate("u1", "!ask how sure", false))
	msgs := sess.messages("c1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "100% sure, use %v and %d", msgs[0].Content)
}
