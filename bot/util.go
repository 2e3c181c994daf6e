package bot

import (
	"bytes"
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// TrimUserMention turns <@123> or <@!123> into 123.
func TrimUserMention(s string) string {
	s = strings.TrimPrefix(s, "<@")
	s = strings.TrimPrefix(s, "!")
	s = strings.TrimSuffix(s, ">")
	return s
}

// ContainsAny reports whether s contains any of the substrings.
func ContainsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// TextFile wraps text as a discord attachment.
func TextFile(name, text string) *discordgo.File {
	return &discordgo.File{
		Name:        name,
		ContentType: "text/plain",
		Reader:      bytes.NewBufferString(text),
	}
}

// fit makes sure the reply content fits in a single message. Overlong text
// is uploaded when an uploader is set, and attached as a file otherwise.
func (b *Bot) fit(ctx context.Context, r *Reply, filename string) *Reply {
	if len([]rune(r.Content)) <= MaxMessageLength {
		return r
	}

	text := r.Content
	if b.owo != nil {
		link, err := b.owo.Upload(ctx, filename, text)
		if err == nil {
			r.Content = "The reply was too long, so it is here: " + link
			return r
		}
		b.log.Warn("failed to upload long reply", zap.Error(err))
	}
	r.Content = "The reply was too long, so it is attached."
	r.Files = append(r.Files, TextFile(filename, text))
	return r
}
