package discord

import "github.com/bwmarrin/discordgo"

func (d *Discord) Member(gid, uid string) (*discordgo.Member, error) {
	for _, s := range d.sessions {
		if m, err := s.State.Member(gid, uid); err == nil {
			return m, nil
		}
	}
	return nil, discordgo.ErrStateNotFound
}

// IsBot reports whether the user is a bot, as far as the member cache knows.
func (d *Discord) IsBot(gid, uid string) bool {
	m, err := d.Member(gid, uid)
	if err != nil || m.User == nil {
		return false
	}
	return m.User.Bot
}

// DisplayName is the member's nickname, global name or username, in that
// order. The id is returned if the member is not cached.
func (d *Discord) DisplayName(gid, uid string) string {
	m, err := d.Member(gid, uid)
	if err != nil || m.User == nil {
		return uid
	}
	return MemberName(m)
}

// MemberName is the name a member shows up as in the guild.
func MemberName(m *discordgo.Member) string {
	switch {
	case m.Nick != "":
		return m.Nick
	case m.User == nil:
		return ""
	case m.User.GlobalName != "":
		return m.User.GlobalName
	}
	return m.User.Username
}

// ConnectedCount is the number of non-bot users currently in a voice channel
// of the guild.
func (d *Discord) ConnectedCount(gid string) int {
	for _, s := range d.sessions {
		g, err := s.State.Guild(gid)
		if err != nil {
			continue
		}

		s.State.RLock()
		var userIDs []string
		for _, vs := range g.VoiceStates {
			if vs.ChannelID == "" {
				continue
			}
			if vs.Member != nil && vs.Member.User != nil && vs.Member.User.Bot {
				continue
			}
			userIDs = append(userIDs, vs.UserID)
		}
		s.State.RUnlock()

		n := 0
		for _, uid := range userIDs {
			if !d.IsBot(gid, uid) {
				n++
			}
		}
		return n
	}
	return 0
}
