package bot

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/intrntsrfr/meido/pkg/utils/builders"
	"go.uber.org/zap"

	"github.com/intrntsrfr/slxshybot/database"
	"github.com/intrntsrfr/slxshybot/status"
)

type commandHandler func(ctx context.Context, c *Context) (*Reply, error)

func (b *Bot) commandHandlers() map[string]commandHandler {
	return map[string]commandHandler{
		"help":          b.helpCommand,
		"info":          b.infoCommand,
		"savecords":     b.saveCordsCommand,
		"privatecords":  b.privateCordsCommand,
		"publiccords":   b.publicCordsCommand,
		"teamcords":     b.teamCordsCommand,
		"deletecords":   b.deleteCordsCommand,
		"team":          b.teamCommand,
		"playersjoined": b.playersJoinedCommand,
		"serverinfo":    b.serverInfoCommand,
		"warn":          b.warnCommand,
		"warnings":      b.warningsCommand,
		"grass":         b.grassCommand,
		"touchgrass":    b.touchGrassCommand,
	}
}

// runCommand routes a slash command to its handler. Handler errors are
// logged and the user gets a generic reply.
func (b *Bot) runCommand(ctx context.Context, c *Context) *Reply {
	h, ok := b.commands[c.Command]
	if !ok {
		return ephemeral("Unknown command.")
	}
	return b.run(ctx, c, c.Command, h)
}

func (b *Bot) runComponent(ctx context.Context, c *Context) *Reply {
	h, ok := b.components[c.CustomID]
	if !ok {
		return ephemeral("Unknown command.")
	}
	return b.run(ctx, c, c.CustomID, h)
}

func (b *Bot) run(ctx context.Context, c *Context, name string, h commandHandler) *Reply {
	r, err := h(ctx, c)
	if err != nil {
		b.log.Error("command failed",
			zap.String("command", name),
			zap.String("subcommand", c.Subcommand),
			zap.String("userID", c.UserID),
			zap.Error(err))
		return ephemeral("Something went wrong.")
	}
	return r
}

func (b *Bot) registerCommands(appID string) error {
	if b.settings.ApplicationID != "" {
		appID = b.settings.ApplicationID
	}
	cmds, err := b.sess.ApplicationCommandBulkOverwrite(appID, b.settings.GuildID, applicationCommands())
	if err != nil {
		return err
	}
	b.log.Info("registered commands", zap.Int("count", len(cmds)), zap.String("guildID", b.settings.GuildID))
	return nil
}

func applicationCommands() []*discordgo.ApplicationCommand {
	var manageMessages int64 = discordgo.PermissionManageMessages

	str := func(name, desc string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        name,
			Description: desc,
			Required:    required,
		}
	}
	integer := func(name, desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        name,
			Description: desc,
			Required:    true,
		}
	}
	user := func(desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: desc,
			Required:    true,
		}
	}
	sub := func(name, desc string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: desc,
			Options:     opts,
		}
	}

	visibility := str("visibility", "Who can see the coordinates", true)
	visibility.Choices = []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Public", Value: string(database.VisibilityPublic)},
		{Name: "Private", Value: string(database.VisibilityPrivate)},
		{Name: "Team", Value: string(database.VisibilityTeam)},
	}

	filter := str("filter", "Select specific server info", false)
	for _, f := range status.Fields {
		filter.Choices = append(filter.Choices, &discordgo.ApplicationCommandOptionChoice{Name: f, Value: f})
	}

	return []*discordgo.ApplicationCommand{
		{Name: "help", Description: "Get help with the bot"},
		{Name: "info", Description: "Get information about the bot"},
		{
			Name:        "savecords",
			Description: "Save coordinates",
			Options: []*discordgo.ApplicationCommandOption{
				str("name", "Name", true),
				integer("x", "X"),
				integer("y", "Y"),
				integer("z", "Z"),
				visibility,
				str("description", "Optional description", false),
			},
		},
		{Name: "privatecords", Description: "Show your private coordinates"},
		{Name: "publiccords", Description: "Show all public coordinates"},
		{Name: "teamcords", Description: "Show your team's coordinates"},
		{
			Name:        "deletecords",
			Description: "Delete coordinates you saved",
			Options:     []*discordgo.ApplicationCommandOption{str("name", "Name", true)},
		},
		{
			Name:        "team",
			Description: "Manage your team",
			Options: []*discordgo.ApplicationCommandOption{
				sub("create", "Create a team", str("name", "Team name", true)),
				sub("join", "Ask to join a team", str("name", "Team name", true)),
				sub("accept", "Accept a join request", user("User to accept")),
				sub("leave", "Leave your team"),
				sub("members", "List your team's members"),
			},
		},
		{Name: "playersjoined", Description: "Show all players who ever joined the server"},
		{
			Name:        "serverinfo",
			Description: "Get Minecraft server info",
			Options:     []*discordgo.ApplicationCommandOption{filter},
		},
		{
			Name:                     "warn",
			Description:              "Warn a user",
			DefaultMemberPermissions: &manageMessages,
			Options: []*discordgo.ApplicationCommandOption{
				user("User to warn"),
				str("reason", "Reason", true),
			},
		},
		{
			Name:                     "warnings",
			Description:              "List a user's warnings",
			DefaultMemberPermissions: &manageMessages,
			Options:                  []*discordgo.ApplicationCommandOption{user("User to look up")},
		},
		{Name: "grass", Description: "Show the touch grass leaderboard"},
		{Name: "touchgrass", Description: "Touch some grass"},
	}
}

func (b *Bot) helpCommand(_ context.Context, _ *Context) (*Reply, error) {
	text := strings.Builder{}
	text.WriteString("**Coordinates**\n")
	text.WriteString("`/savecords` - Save coordinates as public, private or team\n")
	text.WriteString("`/privatecords`, `/publiccords`, `/teamcords` - List saved coordinates\n")
	text.WriteString("`/deletecords` - Delete coordinates you saved\n")
	text.WriteString("\n**Teams**\n")
	text.WriteString("`/team create`, `/team join`, `/team accept`, `/team leave`, `/team members`\n")
	text.WriteString("\n**Server**\n")
	text.WriteString("`/serverinfo` - Server status, optionally one field of it\n")
	text.WriteString("`/playersjoined` - Everyone who has played on the server\n")
	text.WriteString("`!ask <question>` - Ask the AI\n")
	text.WriteString("\n**Touch grass**\n")
	text.WriteString("Time in voice earns grass, double if you are not muted or deafened.\n")
	text.WriteString("`/grass` - Leaderboard\n")
	text.WriteString("`/touchgrass` - Touch some grass by hand\n")
	text.WriteString("\n**Moderation**\n")
	text.WriteString("`/warn`, `/warnings`\n")

	return &Reply{Content: text.String(), Ephemeral: true}, nil
}

func (b *Bot) infoCommand(_ context.Context, _ *Context) (*Reply, error) {
	embed := builders.NewEmbedBuilder().
		WithTitle("Info").
		WithOkColor().
		AddField("Golang version", runtime.Version(), false).
		AddField("Running since", fmt.Sprintf("<t:%v:R>", b.startTime.Unix()), false).
		AddField("Minecraft server", fmt.Sprintf("%v (%v)", b.settings.Server.Name, b.settings.Server.Addr()), false)

	return embedReply(embed.Build()), nil
}
