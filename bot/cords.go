package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/intrntsrfr/slxshybot/database"
)

func (b *Bot) saveCordsCommand(ctx context.Context, c *Context) (*Reply, error) {
	name := strings.TrimSpace(c.String("name"))
	if name == "" {
		return ephemeral("❌ The coordinates need a name."), nil
	}

	coord := &database.Coord{
		UserID:      c.UserID,
		Name:        name,
		X:           c.Int("x"),
		Y:           c.Int("y"),
		Z:           c.Int("z"),
		Description: strings.TrimSpace(c.String("description")),
		Visibility:  database.Visibility(c.String("visibility")),
		CreatedAt:   c.At,
	}
	if !coord.Visibility.Valid() {
		return ephemeral("❌ Visibility must be public, private or team."), nil
	}

	if coord.Visibility == database.VisibilityTeam {
		team, err := b.db.UserTeam(ctx, c.UserID)
		if errors.Is(err, database.ErrNotFound) {
			return ephemeral("❌ You need to be in a team to save team coordinates."), nil
		} else if err != nil {
			return nil, err
		}
		coord.Team = &team.Name
	}

	if err := b.db.CreateCoord(ctx, coord); err != nil {
		return nil, err
	}

	return &Reply{
		Content:   fmt.Sprintf("✅ Saved %v coordinates **%v** (%v, %v, %v).", coord.Visibility, coord.Name, coord.X, coord.Y, coord.Z),
		Ephemeral: coord.Visibility != database.VisibilityPublic,
	}, nil
}

func (b *Bot) privateCordsCommand(ctx context.Context, c *Context) (*Reply, error) {
	coords, err := b.db.PrivateCoords(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	return &Reply{
		Content:   formatCoords("🔒 **Your private coordinates:**", coords, false),
		Ephemeral: true,
	}, nil
}

func (b *Bot) publicCordsCommand(ctx context.Context, _ *Context) (*Reply, error) {
	coords, err := b.db.PublicCoords(ctx)
	if err != nil {
		return nil, err
	}
	return textReply(formatCoords("🌍 **Public coordinates:**", coords, true)), nil
}

func (b *Bot) teamCordsCommand(ctx context.Context, c *Context) (*Reply, error) {
	team, err := b.db.UserTeam(ctx, c.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return ephemeral("❌ You are not in a team."), nil
	} else if err != nil {
		return nil, err
	}

	coords, err := b.db.TeamCoords(ctx, team.Name)
	if err != nil {
		return nil, err
	}
	return &Reply{
		Content:   formatCoords(fmt.Sprintf("🛡️ **Coordinates of team %v:**", team.Name), coords, true),
		Ephemeral: true,
	}, nil
}

func (b *Bot) deleteCordsCommand(ctx context.Context, c *Context) (*Reply, error) {
	name := strings.TrimSpace(c.String("name"))
	err := b.db.DeleteCoord(ctx, c.UserID, name)
	if errors.Is(err, database.ErrNotFound) {
		return ephemeralf("❌ You have no coordinates named **%v**.", name), nil
	} else if err != nil {
		return nil, err
	}
	return ephemeralf("🗑️ Deleted **%v**.", name), nil
}

func formatCoords(title string, coords []*database.Coord, withOwner bool) string {
	if len(coords) == 0 {
		return title + "\nNothing saved yet."
	}

	text := strings.Builder{}
	text.WriteString(title)
	for _, co := range coords {
		text.WriteString(fmt.Sprintf("\n• **%v**: %v, %v, %v", co.Name, co.X, co.Y, co.Z))
		if co.Description != "" {
			text.WriteString(" - " + co.Description)
		}
		if withOwner {
			text.WriteString(fmt.Sprintf(" (by <@%v>)", co.UserID))
		}
	}
	return text.String()
}
