package summarizer

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// OpenAI summarizes through the chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI returns an adapter using the default OpenAI endpoint.
func NewOpenAI(apiKey string) *OpenAI {
	return NewOpenAIWithConfig(openai.DefaultConfig(apiKey))
}

// NewOpenAIWithConfig allows a custom base URL or HTTP client.
func NewOpenAIWithConfig(cfg openai.ClientConfig) *OpenAI {
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: openai.GPT4oMini}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return "openai" }

// Generate implements Provider.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", wrapStatus(o.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
