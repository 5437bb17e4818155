package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cyoa-server/internal/domain"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// DefaultOllamaBaseURL - адрес локального Ollama.
const DefaultOllamaBaseURL = "http://localhost:11434"

// OllamaGenerator использует нативный API Ollama.
type OllamaGenerator struct {
	logger      *zap.Logger
	client      *api.Client
	model       string
	timeout     time.Duration
	temperature float32
	maxTokens   int
}

var _ TextGenerator = (*OllamaGenerator)(nil)

// NewOllamaGenerator создает клиента Ollama. Ключ не требуется, модель обязательна.
func NewOllamaGenerator(logger *zap.Logger, cfg Config) (*OllamaGenerator, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%w: ollama model is not set", domain.ErrConfiguration)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	// api.NewClient ожидает URL без суффикса /v1
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ollama base url %q: %v", domain.ErrConfiguration, baseURL, err)
	}

	return &OllamaGenerator{
		logger:      logger.Named("OllamaGenerator"),
		client:      api.NewClient(parsedURL, &http.Client{Timeout: cfg.Timeout}),
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (g *OllamaGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		observeRequest(ProviderOllama, g.model, "error", 0)
		return "", emptyPromptError()
	}

	options := map[string]interface{}{}
	if g.temperature > 0 {
		options["temperature"] = g.temperature
	}
	if g.maxTokens > 0 {
		options["num_predict"] = g.maxTokens
	}

	req := &api.ChatRequest{
		Model:    g.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   func(b bool) *bool { return &b }(false),
		Options:  options,
	}

	requestCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	var resp api.ChatResponse
	err := g.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		observeRequest(ProviderOllama, g.model, "error", duration.Seconds())
		if errors.Is(err, context.DeadlineExceeded) {
			g.logger.Error("Ollama request timed out", zap.Duration("timeout", g.timeout), zap.Error(err))
		} else {
			g.logger.Error("Ollama request failed", zap.Duration("duration", duration), zap.Error(err))
		}
		return "", fmt.Errorf("%w: %v", domain.ErrLLMGeneration, err)
	}
	if resp.Message.Content == "" {
		observeRequest(ProviderOllama, g.model, "error_empty_response", duration.Seconds())
		return "", fmt.Errorf("%w: empty response", domain.ErrLLMGeneration)
	}

	observeRequest(ProviderOllama, g.model, "success", duration.Seconds())
	observeTokens(ProviderOllama, g.model, resp.PromptEvalCount, resp.EvalCount)
	g.logger.Info("Ollama response received", zap.Duration("duration", duration), zap.Int("response_len", len(resp.Message.Content)))
	return resp.Message.Content, nil
}
