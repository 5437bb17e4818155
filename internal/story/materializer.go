package story

import (
	"context"
	"fmt"
	"time"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/imagegen"
	"cyoa-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Materializer сохраняет проверенное дерево истории в БД.
type Materializer struct {
	logger      *zap.Logger
	repo        repository.StoryRepository
	illustrator imagegen.Illustrator
}

// NewMaterializer создает Materializer.
func NewMaterializer(logger *zap.Logger, repo repository.StoryRepository, illustrator imagegen.Illustrator) *Materializer {
	return &Materializer{
		logger:      logger.Named("Materializer"),
		repo:        repo,
		illustrator: illustrator,
	}
}

// Materialize рекурсивно (в глубину) сохраняет узел и его поддерево и возвращает ID узла.
//
// Узел вставляется с пустым списком вариантов до обхода детей, чтобы получить ID.
// Список вариантов родителя записывается после создания всех детей в порядке,
// в котором варианты пришли от LLM. Дети концовок не сохраняются, флаг победы
// у узла, не являющегося концовкой, сбрасывается.
// Отсутствие иллюстрации не прерывает сохранение.
func (m *Materializer) Materialize(ctx context.Context, tx repository.DBTX, storyID uuid.UUID, node *domain.StoryTreeNode, isRoot bool, theme string) (uuid.UUID, error) {
	winning := node.IsWinningEnding
	if winning && !node.IsEnding {
		m.logger.Warn("Dropping winning flag from non-ending node", zap.String("story_id", storyID.String()), zap.Bool("is_root", isRoot))
		winning = false
	}

	row := &domain.StoryNode{
		ID:              uuid.New(),
		StoryID:         storyID,
		Content:         node.Content,
		IsRoot:          isRoot,
		IsEnding:        node.IsEnding,
		IsWinningEnding: winning,
		Options:         []domain.NodeOption{},
		CreatedAt:       time.Now().UTC(),
	}
	if err := m.repo.CreateNode(ctx, tx, row); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create story node: %w", err)
	}
	storyNodesMaterialized.Inc()

	log := m.logger.With(zap.String("story_id", storyID.String()), zap.String("node_id", row.ID.String()))

	image := m.illustrator.DescribeAndIllustrate(ctx, imagegen.NodeRequest(node.Content, theme))
	if image == nil {
		storyNodesWithoutImage.Inc()
		log.Debug("Story node saved without illustration")
	}

	options := []domain.NodeOption{}
	if node.IsEnding {
		if len(node.Options) > 0 {
			log.Debug("Ignoring options on ending node", zap.Int("options", len(node.Options)))
		}
	} else {
		for i := range node.Options {
			opt := &node.Options[i]
			childID, err := m.Materialize(ctx, tx, storyID, &opt.NextNode, false, theme)
			if err != nil {
				return uuid.Nil, err
			}
			options = append(options, domain.NodeOption{Text: opt.Text, NodeID: childID})
		}
	}

	if image == nil && len(options) == 0 {
		return row.ID, nil
	}
	if err := m.repo.FinalizeNode(ctx, tx, row.ID, image, options); err != nil {
		return uuid.Nil, fmt.Errorf("failed to finalize story node %s: %w", row.ID, err)
	}
	return row.ID, nil
}
