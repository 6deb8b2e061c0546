package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	apperrors "github.com/mindhaven/companion-server-go/internal/errors"
)

const defaultTemperature = 0.7

// chatAPI is the slice of the OpenAI client this gateway uses. Tests inject
// fakes through it.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// OpenAIGenerator implements Generator over the OpenAI chat completions API.
type OpenAIGenerator struct {
	client  chatAPI
	model   string
	timeout time.Duration
}

func NewOpenAIGenerator(apiKey, baseURL, model string, timeout time.Duration) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

// NewOpenAIGeneratorWithClient injects a custom client (useful for testing).
func NewOpenAIGeneratorWithClient(client chatAPI, model string, timeout time.Duration) *OpenAIGenerator {
	return &OpenAIGenerator{client: client, model: model, timeout: timeout}
}

func (g *OpenAIGenerator) request(systemPrompt, userText string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: defaultTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, g.request(systemPrompt, userText))
	if err != nil {
		return "", apperrors.GenerationFailed(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.GenerationFailed(fmt.Errorf("no choices in response"))
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", apperrors.GenerationFailed(fmt.Errorf("empty completion"))
	}
	return content, nil
}

func (g *OpenAIGenerator) GenerateStream(ctx context.Context, systemPrompt, userText string, onChunk func(string) error) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	stream, err := g.client.CreateChatCompletionStream(ctx, g.request(systemPrompt, userText))
	if err != nil {
		return "", apperrors.GenerationFailed(err)
	}
	defer stream.Close()

	var full strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", apperrors.GenerationFailed(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}

		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		full.WriteString(delta)
		if onChunk != nil {
			if err := onChunk(delta); err != nil {
				// Consumer gone; the partial text is still the reply.
				return full.String(), err
			}
		}
	}

	if strings.TrimSpace(full.String()) == "" {
		return "", apperrors.GenerationFailed(fmt.Errorf("empty completion"))
	}
	return full.String(), nil
}
