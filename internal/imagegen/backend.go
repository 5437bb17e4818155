package imagegen

import (
	"context"

	"cyoa-server/internal/domain"
)

// Backend - провайдер изображений. Реализации выбираются конфигурацией при старте.
type Backend interface {
	// Name используется в логах, метриках и ключах кэша.
	Name() string
	// Generate возвращает закодированное изображение по промпту.
	Generate(ctx context.Context, prompt string) (domain.EncodedImage, error)
}
