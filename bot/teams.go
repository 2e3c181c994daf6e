package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/intrntsrfr/slxshybot/database"
)

func (b *Bot) teamCommand(ctx context.Context, c *Context) (*Reply, error) {
	switch c.Subcommand {
	case "create":
		return b.teamCreate(ctx, c)
	case "join":
		return b.teamJoin(ctx, c)
	case "accept":
		return b.teamAccept(ctx, c)
	case "leave":
		return b.teamLeave(ctx, c)
	case "members":
		return b.teamMembers(ctx, c)
	}
	return ephemeral("Unknown command."), nil
}

func (b *Bot) teamCreate(ctx context.Context, c *Context) (*Reply, error) {
	name := strings.TrimSpace(c.String("name"))
	if name == "" {
		return ephemeral("❌ The team needs a name."), nil
	}

	err := b.db.CreateTeam(ctx, name, c.UserID, c.At)
	switch {
	case errors.Is(err, database.ErrAlreadyInTeam):
		return ephemeral("❌ You are already in a team."), nil
	case errors.Is(err, database.ErrTeamExists):
		return ephemeralf("❌ A team named **%v** already exists.", name), nil
	case err != nil:
		return nil, err
	}
	return textReplyf("🛡️ Team **%v** created by <@%v>.", name, c.UserID), nil
}

func (b *Bot) teamJoin(ctx context.Context, c *Context) (*Reply, error) {
	name := strings.TrimSpace(c.String("name"))

	err := b.db.RequestJoin(ctx, name, c.UserID, c.At)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return ephemeralf("❌ There is no team named **%v**.", name), nil
	case errors.Is(err, database.ErrAlreadyInTeam):
		return ephemeral("❌ You are already in a team."), nil
	case err != nil:
		return nil, err
	}

	team, err := b.db.GetTeam(ctx, name)
	if err != nil {
		return nil, err
	}
	return textReplyf("📨 <@%v> asked to join **%v**. <@%v> can accept with `/team accept`.", c.UserID, name, team.OwnerID), nil
}

func (b *Bot) teamAccept(ctx context.Context, c *Context) (*Reply, error) {
	team, err := b.db.UserTeam(ctx, c.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return ephemeral("❌ You are not in a team."), nil
	} else if err != nil {
		return nil, err
	}

	userID := TrimUserMention(c.User("user"))
	err = b.db.AcceptJoin(ctx, team.Name, c.UserID, userID, c.At)
	switch {
	case errors.Is(err, database.ErrNotTeamOwner):
		return ephemeral("❌ Only the team owner can accept members."), nil
	case errors.Is(err, database.ErrNoJoinRequest):
		return ephemeralf("❌ <@%v> has not asked to join **%v**.", userID, team.Name), nil
	case errors.Is(err, database.ErrAlreadyInTeam):
		return ephemeralf("❌ <@%v> is already in a team.", userID), nil
	case err != nil:
		return nil, err
	}
	return textReplyf("✅ <@%v> joined **%v**.", userID, team.Name), nil
}

func (b *Bot) teamLeave(ctx context.Context, c *Context) (*Reply, error) {
	team, err := b.db.UserTeam(ctx, c.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return ephemeral("❌ You are not in a team."), nil
	} else if err != nil {
		return nil, err
	}

	if err := b.db.LeaveTeam(ctx, c.UserID); err != nil {
		return nil, err
	}
	if team.OwnerID == c.UserID {
		return textReplyf("👋 <@%v> left and team **%v** was disbanded.", c.UserID, team.Name), nil
	}
	return textReplyf("👋 <@%v> left **%v**.", c.UserID, team.Name), nil
}

func (b *Bot) teamMembers(ctx context.Context, c *Context) (*Reply, error) {
	team, err := b.db.UserTeam(ctx, c.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return ephemeral("❌ You are not in a team."), nil
	} else if err != nil {
		return nil, err
	}

	members, err := b.db.TeamMembers(ctx, team.Name)
	if err != nil {
		return nil, err
	}

	text := strings.Builder{}
	text.WriteString(fmt.Sprintf("🛡️ **Team %v** (%v members)", team.Name, len(members)))
	for _, m := range members {
		text.WriteString(fmt.Sprintf("\n• <@%v>", m.UserID))
		if m.UserID == team.OwnerID {
			text.WriteString(" 👑")
		}
	}
	return &Reply{Content: text.String(), Ephemeral: true}, nil
}
