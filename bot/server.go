package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/intrntsrfr/meido/pkg/utils/builders"
	"go.uber.org/zap"
)

// channelNotifier posts status changes to a channel.
type channelNotifier struct {
	sess      Session
	channelID string
}

func (n *channelNotifier) Notify(_ context.Context, text string) error {
	_, err := n.sess.ChannelMessageSendComplex(n.channelID, &discordgo.MessageSend{Content: text})
	return err
}

func (b *Bot) playersJoinedCommand(ctx context.Context, _ *Context) (*Reply, error) {
	players, err := b.db.Players(ctx)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return textReply("Nobody has joined the server yet."), nil
	}

	text := strings.Builder{}
	text.WriteString(fmt.Sprintf("👥 **Players who have joined (%v):**", len(players)))
	for _, p := range players {
		text.WriteString(fmt.Sprintf("\n• %v (<t:%v:d>)", p.Name, p.FirstSeen.Unix()))
	}
	return textReply(text.String()), nil
}

var serverInfoOverview = []string{"online", "host", "port", "version", "players", "gamemode", "edition"}

func (b *Bot) serverInfoCommand(ctx context.Context, c *Context) (*Reply, error) {
	if b.status == nil {
		return ephemeral("Server status is not enabled."), nil
	}

	doc, err := b.status.Fetch(ctx)
	if err != nil {
		b.log.Warn("failed to fetch server status", zap.Error(err))
		return ephemeral("❌ Could not reach the server status service."), nil
	}

	if filter := c.String("filter"); filter != "" {
		v, ok := doc.Field(filter)
		if !ok {
			return ephemeralf("The server status has no `%v` field right now.", filter), nil
		}
		return textReplyf("**%v**\n```json\n%v\n```", filter, v), nil
	}

	color := Red
	if doc.Online {
		color = Green
	}
	embed := builders.NewEmbedBuilder().
		WithTitle(b.settings.Server.Name).
		WithColor(int(color)).
		WithDescription(fmt.Sprintf("`%v`", b.settings.Server.Addr()))
	for _, key := range serverInfoOverview {
		v, ok := doc.Field(key)
		if !ok {
			continue
		}
		embed = embed.AddField(key, "```json\n"+truncate(v, 1000)+"\n```", key == "online" || key == "port")
	}
	return embedReply(embed.Build()), nil
}

// joinHelp returns the canned answer for a lowercased message that asks how
// to play on the server, or an empty string.
func (b *Bot) joinHelp(content string) string {
	srv := b.settings.Server
	switch {
	case ContainsAny(content, "how do i join", "how to join", "join server"):
		return fmt.Sprintf("⬇️ **%v Community Server info!** ⬇️\n**Server Name:** %v\n**IP:** %v\n**Port:** %v",
			srv.Name, srv.Name, srv.Address, srv.Port)
	case ContainsAny(content, "switch", "console", "xbox", "ps4", "ps5", "phone", "mobile"):
		return fmt.Sprintf("📱 **How to Join on Console (Xbox, PlayStation, Switch, Mobile):**\n"+
			"Download the **\"BedrockTogether\"** app on your phone.\n"+
			"Enter this server:\n**IP:** %v\n**Port:** %v\nClick \"Run\".\n"+
			"Then open Minecraft → Friends tab (or Worlds tab in new UI) → Join via LAN.",
			srv.Address, srv.Port)
	case strings.Contains(content, "java"):
		return fmt.Sprintf("💻 **Java Edition Notice**:\n%v is a **Bedrock-only** server.\nJava Edition players can’t join, sorry!", srv.Name)
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
