package story

import (
	"context"
	"fmt"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reader собирает сохраненную историю вместе со всеми узлами.
type Reader struct {
	logger *zap.Logger
	db     repository.DBTX
	repo   repository.StoryRepository
}

func NewReader(logger *zap.Logger, db repository.DBTX, repo repository.StoryRepository) *Reader {
	return &Reader{
		logger: logger.Named("StoryReader"),
		db:     db,
		repo:   repo,
	}
}

// LoadComplete возвращает историю, ее корневой узел и карту всех узлов по ID.
func (r *Reader) LoadComplete(ctx context.Context, storyID uuid.UUID) (*domain.CompleteStory, error) {
	story, err := r.repo.GetStory(ctx, r.db, storyID)
	if err != nil {
		return nil, err
	}

	nodes, err := r.repo.ListNodes(ctx, r.db, storyID)
	if err != nil {
		return nil, err
	}

	complete := &domain.CompleteStory{
		Story:    *story,
		AllNodes: make(map[uuid.UUID]*domain.StoryNode, len(nodes)),
	}
	for _, node := range nodes {
		complete.AllNodes[node.ID] = node
		if node.IsRoot {
			complete.RootNode = node
		}
	}

	if complete.RootNode == nil {
		r.logger.Warn("Story has no root node", zap.String("story_id", storyID.String()), zap.Int("nodes", len(nodes)))
		return nil, fmt.Errorf("%w: story %s has no root node", domain.ErrNotFound, storyID)
	}
	return complete, nil
}
