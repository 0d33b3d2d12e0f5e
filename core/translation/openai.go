package translation

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultOpenAIModel = openai.GPT4oMini

// OpenAI translates with a chat completion model.
type OpenAI struct {
	client *openai.Client
	model  string
}

type OpenAIOption func(*openai.ClientConfig)

func WithOpenAIBaseURL(baseURL string) OpenAIOption {
	return func(c *openai.ClientConfig) {
		if baseURL != "" {
			c.BaseURL = baseURL
		}
	}
}

func NewOpenAI(apiKey, model string, opts ...OpenAIOption) *OpenAI {
	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	for _, opt := range opts {
		opt(&config)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (o *OpenAI) Translate(ctx context.Context, text, from, to string) (string, error) {
	ctx, span := tracer.Start(ctx, "translate openai")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", o.model))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("Translate the user's text from %s (%s) to %s (%s). "+
					"Reply with the translation only.", LanguageName(from), from, LanguageName(to), to),
			},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
	})
	if err != nil {
		err = fmt.Errorf("%w: chat completion request failed: %w", ErrBackend, err)
		span.RecordError(err)
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoTranslation
	}
	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", ErrNoTranslation
	}
	return translated, nil
}
