package summarizer

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Claude summarizes through the Anthropic Messages API.
type Claude struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClaude returns a Claude adapter. The SDK's own retries are disabled so
// the Gateway's retry policy is the only one in effect. Extra request options
// (for example option.WithBaseURL) are appended.
func NewClaude(apiKey string, opts ...option.RequestOption) *Claude {
	all := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &Claude{
		client:    anthropic.NewClient(all...),
		model:     anthropic.ModelClaudeSonnet4_5_20250929,
		maxTokens: 1024,
	}
}

// Name implements Provider.
func (c *Claude) Name() string { return "claude" }

// Generate implements Provider.
func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", wrapStatus(c.Name(), err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	return sb.String(), nil
}
