package story

import (
	"context"

	"cyoa-server/internal/domain"
	"cyoa-server/pkg/database"

	"github.com/jackc/pgx/v5"
)

// Service открывает транзакцию на весь прогон генерации.
// Транзакция держится открытой на время всех сетевых вызовов, включая опрос
// провайдера изображений; при ошибке LLM или разбора всё откатывается.
type Service struct {
	db           database.TxBeginner
	orchestrator *Orchestrator
}

// NewService создает Service.
func NewService(db database.TxBeginner, orchestrator *Orchestrator) *Service {
	return &Service{db: db, orchestrator: orchestrator}
}

// Generate генерирует и сохраняет историю для сессии.
func (s *Service) Generate(ctx context.Context, sessionID, theme string) (*domain.Story, error) {
	var story *domain.Story
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		story, err = s.orchestrator.GenerateStory(ctx, tx, sessionID, theme)
		return err
	})
	if err != nil {
		return nil, err
	}
	return story, nil
}
