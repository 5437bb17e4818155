package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cyoa-server/internal/domain"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultOpenAIModel используется, если модель не задана.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIGenerator работает с любым OpenAI-совместимым API (OpenAI, OpenRouter и т.п.).
type OpenAIGenerator struct {
	logger      *zap.Logger
	client      *openaigo.Client
	model       string
	temperature float32
	maxTokens   int
}

var _ TextGenerator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator создает клиента. Пустой ключ - ошибка конфигурации.
func NewOpenAIGenerator(logger *zap.Logger, cfg Config) (*OpenAIGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: llm api key is not set", domain.ErrConfiguration)
	}

	openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiConfig.BaseURL = cfg.BaseURL
	}
	openaiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIGenerator{
		logger:      logger.Named("OpenAIGenerator"),
		client:      openaigo.NewClientWithConfig(openaiConfig),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (g *OpenAIGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		observeRequest(ProviderOpenAI, g.model, "error", 0)
		return "", emptyPromptError()
	}

	start := time.Now()
	g.logger.Debug("Sending request to LLM", zap.String("model", g.model), zap.Int("prompt_len", len(prompt)))

	resp, err := g.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: g.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	duration := time.Since(start)

	if err != nil {
		observeRequest(ProviderOpenAI, g.model, "error", duration.Seconds())
		g.logger.Error("LLM request failed", zap.Duration("duration", duration), zap.Error(err))
		return "", fmt.Errorf("%w: %v", domain.ErrLLMGeneration, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		observeRequest(ProviderOpenAI, g.model, "error_empty_response", duration.Seconds())
		g.logger.Error("LLM returned empty response", zap.Duration("duration", duration))
		return "", fmt.Errorf("%w: empty response", domain.ErrLLMGeneration)
	}

	observeRequest(ProviderOpenAI, g.model, "success", duration.Seconds())
	observeTokens(ProviderOpenAI, g.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	text := resp.Choices[0].Message.Content
	g.logger.Info("LLM response received",
		zap.Duration("duration", duration),
		zap.Int("response_len", len(text)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return text, nil
}
