package cantrip

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 1024

// AnthropicModel is a SelectionModel backed by Anthropic Claude.
type AnthropicModel struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicModel creates an Anthropic-backed selection model. The
// model name is an Anthropic model identifier such as
// "claude-sonnet-4-20250514".
func NewAnthropicModel(apiKey, model string) *AnthropicModel {
	return &AnthropicModel{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

// Complete sends the prompt and returns the concatenated text output.
// When the response is cut off at the token limit it continues the
// conversation, up to opts.MaxSteps round trips, so a long tool list
// never truncates the selection mid-answer.
func (m *AnthropicModel) Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error) {
	steps := opts.MaxSteps
	if steps <= 0 {
		steps = 1
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}

	var out strings.Builder
	for i := 0; i < steps; i++ {
		resp, err := m.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     m.model,
			Messages:  messages,
			MaxTokens: defaultAnthropicMaxTokens,
		})
		if err != nil {
			return "", err
		}

		for _, block := range resp.Content {
			if text, ok := block.AsAny().(anthropic.TextBlock); ok {
				out.WriteString(text.Text)
			}
		}

		if resp.StopReason != anthropic.StopReasonMaxTokens {
			break
		}
		messages = append(messages, resp.ToParam())
	}
	return out.String(), nil
}
