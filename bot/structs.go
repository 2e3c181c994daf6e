package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type Color int

const (
	Red   Color = 0xC80000
	Green Color = 0x00C800
)

// MaxMessageLength is the longest content discord accepts in one message.
const MaxMessageLength = 2000

// Session is the part of the discord REST and gateway API the bot uses.
type Session interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	UpdateGameStatus(idle int, name string) error
}

// State answers questions about cached guild members and voice states.
type State interface {
	IsBot(gid, uid string) bool
	DisplayName(gid, uid string) string
	ConnectedCount(gid string) int
}

type Asker interface {
	Reply(ctx context.Context, prompt string) string
}

type Uploader interface {
	Upload(ctx context.Context, filename, text string) (string, error)
}

// Reply is what a command or button handler wants sent back.
type Reply struct {
	Content    string
	Embed      *discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Files      []*discordgo.File
	Ephemeral  bool
}

func textReply(text string) *Reply {
	return &Reply{Content: text}
}

func textReplyf(format string, args ...interface{}) *Reply {
	return textReply(fmt.Sprintf(format, args...))
}

func ephemeral(text string) *Reply {
	return &Reply{Content: text, Ephemeral: true}
}

func ephemeralf(format string, args ...interface{}) *Reply {
	return ephemeral(fmt.Sprintf(format, args...))
}

func embedReply(e *discordgo.MessageEmbed) *Reply {
	return &Reply{Embed: e}
}
