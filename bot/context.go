package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/intrntsrfr/slxshybot/discord"
)

// Context is one slash command or button press, flattened for handlers.
type Context struct {
	GuildID     string
	ChannelID   string
	UserID      string
	DisplayName string
	Permissions int64

	Command    string
	Subcommand string
	CustomID   string
	Options    map[string]*discordgo.ApplicationCommandInteractionDataOption
	At         time.Time
}

func newContext(i *discordgo.Interaction, at time.Time) *Context {
	c := &Context{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Options:   map[string]*discordgo.ApplicationCommandInteractionDataOption{},
		At:        at,
	}

	switch {
	case i.Member != nil && i.Member.User != nil:
		c.UserID = i.Member.User.ID
		c.DisplayName = discord.MemberName(i.Member)
		c.Permissions = i.Member.Permissions
	case i.User != nil:
		c.UserID = i.User.ID
		c.DisplayName = i.User.Username
		if i.User.GlobalName != "" {
			c.DisplayName = i.User.GlobalName
		}
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		c.Command = data.Name
		opts := data.Options
		if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
			c.Subcommand = opts[0].Name
			opts = opts[0].Options
		}
		for _, o := range opts {
			c.Options[o.Name] = o
		}
	case discordgo.InteractionMessageComponent:
		c.CustomID = i.MessageComponentData().CustomID
	}
	return c
}

func (c *Context) String(name string) string {
	o, ok := c.Options[name]
	if !ok {
		return ""
	}
	return o.StringValue()
}

func (c *Context) Int(name string) int64 {
	o, ok := c.Options[name]
	if !ok {
		return 0
	}
	return o.IntValue()
}

// User returns the id given for a user option.
func (c *Context) User(name string) string {
	o, ok := c.Options[name]
	if !ok {
		return ""
	}
	return fmt.Sprint(o.Value)
}

func (c *Context) HasPermission(p int64) bool {
	return c.Permissions&(p|discordgo.PermissionAdministrator) != 0
}
