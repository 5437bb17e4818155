package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cyoa-server/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	logger *zap.Logger
}

// NewPgStoryRepository создает репозиторий историй поверх PostgreSQL.
func NewPgStoryRepository(logger *zap.Logger) StoryRepository {
	return &pgStoryRepository{logger: logger.Named("PgStoryRepo")}
}

const createStoryQuery = `
INSERT INTO stories (id, title, session_id, main_image, created_at)
VALUES ($1, $2, $3, $4, $5)`

const setStoryMainImageQuery = `
UPDATE stories SET main_image = $2 WHERE id = $1`

const createStoryNodeQuery = `
INSERT INTO story_nodes (id, story_id, content, is_root, is_ending, is_winning_ending, image, options, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const finalizeStoryNodeQuery = `
UPDATE story_nodes SET image = $2, options = $3 WHERE id = $1`

const getStoryQuery = `
SELECT id, title, session_id, main_image, created_at
FROM stories
WHERE id = $1`

const listStoryNodesQuery = `
SELECT id, story_id, content, is_root, is_ending, is_winning_ending, image, options, created_at
FROM story_nodes
WHERE story_id = $1
ORDER BY seq`

func (r *pgStoryRepository) CreateStory(ctx context.Context, querier DBTX, story *domain.Story) error {
	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now().UTC()
	}

	if _, err := querier.Exec(ctx, createStoryQuery, story.ID, story.Title, story.SessionID, story.MainImage, story.CreatedAt); err != nil {
		r.logger.Error("Failed to create story", zap.String("session_id", story.SessionID), zap.Error(err))
		return fmt.Errorf("failed to create story: %w", err)
	}
	r.logger.Debug("Story created", zap.String("story_id", story.ID.String()))
	return nil
}

func (r *pgStoryRepository) SetStoryMainImage(ctx context.Context, querier DBTX, storyID uuid.UUID, image domain.EncodedImage) error {
	tag, err := querier.Exec(ctx, setStoryMainImageQuery, storyID, string(image))
	if err != nil {
		r.logger.Error("Failed to set story main image", zap.String("story_id", storyID.String()), zap.Error(err))
		return fmt.Errorf("failed to set story main image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgStoryRepository) CreateNode(ctx context.Context, querier DBTX, node *domain.StoryNode) error {
	if node.ID == uuid.Nil {
		node.ID = uuid.New()
	}
	if node.CreatedAt.IsZero() {
		node.CreatedAt = time.Now().UTC()
	}
	if node.Options == nil {
		node.Options = []domain.NodeOption{}
	}

	optionsJSON, err := marshalOptions(node.Options)
	if err != nil {
		return err
	}

	_, err = querier.Exec(ctx, createStoryNodeQuery,
		node.ID,
		node.StoryID,
		node.Content,
		node.IsRoot,
		node.IsEnding,
		node.IsWinningEnding,
		node.Image,
		optionsJSON,
		node.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create story node",
			zap.String("story_id", node.StoryID.String()),
			zap.Bool("is_root", node.IsRoot),
			zap.Error(err),
		)
		return fmt.Errorf("failed to create story node: %w", err)
	}
	return nil
}

func (r *pgStoryRepository) FinalizeNode(ctx context.Context, querier DBTX, nodeID uuid.UUID, image *domain.EncodedImage, options []domain.NodeOption) error {
	if options == nil {
		options = []domain.NodeOption{}
	}
	optionsJSON, err := marshalOptions(options)
	if err != nil {
		return err
	}

	tag, err := querier.Exec(ctx, finalizeStoryNodeQuery, nodeID, image, optionsJSON)
	if err != nil {
		r.logger.Error("Failed to finalize story node", zap.String("node_id", nodeID.String()), zap.Error(err))
		return fmt.Errorf("failed to finalize story node: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgStoryRepository) GetStory(ctx context.Context, querier DBTX, storyID uuid.UUID) (*domain.Story, error) {
	var story domain.Story
	if err := pgxscan.Get(ctx, querier, &story, getStoryQuery, storyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgxscan.NotFound(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get story", zap.String("story_id", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get story %s: %w", storyID, err)
	}
	return &story, nil
}

func (r *pgStoryRepository) ListNodes(ctx context.Context, querier DBTX, storyID uuid.UUID) ([]*domain.StoryNode, error) {
	var nodes []*domain.StoryNode
	if err := pgxscan.Select(ctx, querier, &nodes, listStoryNodesQuery, storyID); err != nil {
		r.logger.Error("Failed to list story nodes", zap.String("story_id", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list story nodes: %w", err)
	}
	for _, n := range nodes {
		if n.Options == nil {
			n.Options = []domain.NodeOption{}
		}
	}
	return nodes, nil
}
