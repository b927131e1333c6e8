package cantrip

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIMaxTokens = 1024

// OpenAIModel is a SelectionModel backed by the OpenAI chat API.
type OpenAIModel struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAIModel creates an OpenAI-backed selection model.
func NewOpenAIModel(apiKey, model string) *OpenAIModel {
	return &OpenAIModel{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModel(model),
	}
}

// Complete sends the prompt and returns the model's text output,
// continuing across round trips while the response is cut off at the
// token limit, up to opts.MaxSteps requests.
func (m *OpenAIModel) Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error) {
	steps := opts.MaxSteps
	if steps <= 0 {
		steps = 1
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}

	var out strings.Builder
	for i := 0; i < steps; i++ {
		resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:     m.model,
			Messages:  messages,
			MaxTokens: openai.Int(defaultOpenAIMaxTokens),
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("no response choices returned")
		}

		choice := resp.Choices[0]
		out.WriteString(choice.Message.Content)

		if choice.FinishReason != "length" {
			break
		}
		messages = append(messages, choice.Message.ToParam())
	}
	return out.String(), nil
}
