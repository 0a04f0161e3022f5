package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls an OpenAI-compatible Chat Completions API.
type OpenAIClient struct {
	model     openai.ChatModel
	client    *openai.Client
	maxChars  int
	maxTokens int64
}

const (
	defaultChatTimeout     = 60 * time.Second
	defaultChatTemperature = 0.7
	defaultMaxTokens       = 1000
)

// NewOpenAIClient builds a client. baseURL may point at any compatible
// provider; empty means api.openai.com. Inputs longer than maxChars are
// truncated before they are sent.
func NewOpenAIClient(apiKey, baseURL string, model openai.ChatModel, maxChars int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	cli := openai.NewClient(opts...)
	return &OpenAIClient{
		model:     model,
		client:    &cli,
		maxChars:  maxChars,
		maxTokens: defaultMaxTokens,
	}, nil
}

func (c *OpenAIClient) Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error) {
	prompt := BuildSummaryPrompt(Truncate(text, c.maxChars), opts)
	return c.complete(ctx, summarySystemPrompt, prompt)
}

func (c *OpenAIClient) Answer(ctx context.Context, contextText, question string) (string, error) {
	prompt := BuildAnswerPrompt(Truncate(contextText, c.maxChars), question)
	return c.complete(ctx, answerSystemPrompt, prompt)
}

func (c *OpenAIClient) complete(ctx context.Context, system, user string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()
	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(system, user),
		Temperature: openai.Float(defaultChatTemperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
