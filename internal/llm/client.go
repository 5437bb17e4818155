// Package llm содержит клиентов текстовых моделей, используемых для генерации дерева истории.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cyoa-server/internal/domain"

	"go.uber.org/zap"
)

// Провайдеры текстовой модели.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// TextGenerator - единственная возможность, которая нужна от LLM: промпт на входе, текст на выходе.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Config - параметры клиента LLM.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

// New создает клиента для настроенного провайдера. Клиент живет все время работы процесса.
func New(ctx context.Context, logger *zap.Logger, cfg Config) (TextGenerator, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		logger.Info("Using LLM provider", zap.String("provider", ProviderOpenAI), zap.String("model", cfg.Model))
		return NewOpenAIGenerator(logger, cfg)
	case ProviderOllama:
		logger.Info("Using LLM provider", zap.String("provider", ProviderOllama), zap.String("model", cfg.Model))
		return NewOllamaGenerator(logger, cfg)
	case ProviderGemini:
		logger.Info("Using LLM provider", zap.String("provider", ProviderGemini), zap.String("model", cfg.Model))
		return NewGeminiGenerator(ctx, logger, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", domain.ErrConfiguration, cfg.Provider)
	}
}

func emptyPromptError() error {
	return fmt.Errorf("%w: prompt is empty", domain.ErrLLMGeneration)
}
