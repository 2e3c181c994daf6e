// Package ai relays questions to an OpenAI compatible chat completion API.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	Redacted = "[redacted]"

	ReplyEmptyPrompt = "❌ You must ask a question."
	ReplyNoResponse  = "⚠️ No response."
	ReplyFailed      = "❌ Failed to get a response from the AI."
	ReplyRateLimited = "⏳ Too many questions right now, try again in a minute."
)

var (
	ErrEmptyPrompt = errors.New("empty prompt")
	ErrRateLimited = errors.New("rate limited")
)

type Config struct {
	Token          string
	BaseURL        string
	Model          string
	RequestsPerMin int
	BlockedPhrases []string
	HTTPClient     *http.Client
	Log            *zap.Logger
}

type Relay struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	blocked []*regexp.Regexp
	log     *zap.Logger
}

func NewRelay(c *Config) *Relay {
	clientCfg := openai.DefaultConfig(c.Token)
	if c.BaseURL != "" {
		clientCfg.BaseURL = c.BaseURL
	}
	if c.HTTPClient != nil {
		clientCfg.HTTPClient = c.HTTPClient
	}

	limit := rate.Inf
	burst := 1
	if c.RequestsPerMin > 0 {
		limit = rate.Every(time.Minute / time.Duration(c.RequestsPerMin))
		burst = c.RequestsPerMin
	}

	return &Relay{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   c.Model,
		limiter: rate.NewLimiter(limit, burst),
		blocked: compilePhrases(c.BlockedPhrases),
		log:     c.Log,
	}
}

func compilePhrases(phrases []string) []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, regexp.MustCompile("(?i)"+regexp.QuoteMeta(p)))
	}
	return out
}

// Redact replaces every blocked phrase in text, ignoring case.
func (r *Relay) Redact(text string) string {
	for _, re := range r.blocked {
		text = re.ReplaceAllString(text, Redacted)
	}
	return text
}

// Ask sends the prompt as a single user message and returns the redacted
// answer. An empty answer is returned as is.
func (r *Relay) Ask(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	if !r.limiter.Allow() {
		return "", ErrRateLimited
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return r.Redact(resp.Choices[0].Message.Content), nil
}

// Reply is Ask with every outcome turned into the text to post.
func (r *Relay) Reply(ctx context.Context, prompt string) string {
	answer, err := r.Ask(ctx, prompt)
	switch {
	case errors.Is(err, ErrEmptyPrompt):
		return ReplyEmptyPrompt
	case errors.Is(err, ErrRateLimited):
		return ReplyRateLimited
	case err != nil:
		r.log.Error("failed to get ai response", zap.Error(err))
		return ReplyFailed
	case strings.TrimSpace(answer) == "":
		return ReplyNoResponse
	}
	return answer
}

// ParseAsk returns the prompt of an !ask message.
func ParseAsk(content string) (string, bool) {
	if len(content) < 4 || !strings.EqualFold(content[:4], "!ask") {
		return "", false
	}
	return strings.TrimSpace(content[4:]), true
}
