package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cyoa-server/internal/domain"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultGeminiModel используется, если модель не задана.
const DefaultGeminiModel = "gemini-2.0-flash"

// contentModels - часть genai.Models, используемая генератором.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator использует Gemini API через google.golang.org/genai.
type GeminiGenerator struct {
	logger      *zap.Logger
	models      contentModels
	model       string
	temperature float32
	maxTokens   int
}

var _ TextGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator создает клиента genai один раз на время жизни процесса.
func NewGeminiGenerator(ctx context.Context, logger *zap.Logger, cfg Config) (*GeminiGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: gemini api key is not set", domain.ErrConfiguration)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGeminiGenerator(logger, client.Models, cfg), nil
}

func newGeminiGenerator(logger *zap.Logger, models contentModels, cfg Config) *GeminiGenerator {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{
		logger:      logger.Named("GeminiGenerator"),
		models:      models,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		observeRequest(ProviderGemini, g.model, "error", 0)
		return "", emptyPromptError()
	}

	genConfig := &genai.GenerateContentConfig{}
	if g.temperature > 0 {
		genConfig.Temperature = genai.Ptr(g.temperature)
	}
	if g.maxTokens > 0 {
		genConfig.MaxOutputTokens = int32(g.maxTokens)
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
	duration := time.Since(start)

	if err != nil {
		observeRequest(ProviderGemini, g.model, "error", duration.Seconds())
		g.logger.Error("Gemini request failed", zap.Duration("duration", duration), zap.Error(err))
		return "", fmt.Errorf("%w: %v", domain.ErrLLMGeneration, err)
	}

	text := ""
	if resp != nil {
		text = resp.Text()
	}
	if text == "" {
		observeRequest(ProviderGemini, g.model, "error_empty_response", duration.Seconds())
		return "", fmt.Errorf("%w: empty response", domain.ErrLLMGeneration)
	}

	observeRequest(ProviderGemini, g.model, "success", duration.Seconds())
	if resp.UsageMetadata != nil {
		observeTokens(ProviderGemini, g.model, int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount))
	}
	g.logger.Info("Gemini response received", zap.Duration("duration", duration), zap.Int("response_len", len(text)))
	return text, nil
}
