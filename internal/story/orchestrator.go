package story

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/imagegen"
	"cyoa-server/internal/llm"
	"cyoa-server/internal/repository"
	"cyoa-server/internal/schema"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Limits ограничивает размер дерева от LLM. Нулевое значение снимает ограничение.
type Limits struct {
	MaxDepth int
	MaxNodes int
}

// Check возвращает ErrTreeTooLarge, если дерево выходит за пределы.
func (l Limits) Check(root *domain.StoryTreeNode) error {
	if l.MaxDepth > 0 {
		if depth := root.Depth(); depth > l.MaxDepth {
			return fmt.Errorf("%w: depth %d exceeds %d", domain.ErrTreeTooLarge, depth, l.MaxDepth)
		}
	}
	if l.MaxNodes > 0 {
		if count := root.Count(); count > l.MaxNodes {
			return fmt.Errorf("%w: %d nodes exceed %d", domain.ErrTreeTooLarge, count, l.MaxNodes)
		}
	}
	return nil
}

// Orchestrator генерирует историю целиком: LLM, разбор, сохранение дерева.
type Orchestrator struct {
	logger       *zap.Logger
	generator    llm.TextGenerator
	parser       *schema.Parser
	repo         repository.StoryRepository
	illustrator  imagegen.Illustrator
	materializer *Materializer
	limits       Limits
}

// NewOrchestrator создает Orchestrator и его Materializer.
func NewOrchestrator(
	logger *zap.Logger,
	generator llm.TextGenerator,
	repo repository.StoryRepository,
	illustrator imagegen.Illustrator,
	limits Limits,
) *Orchestrator {
	return &Orchestrator{
		logger:       logger.Named("Orchestrator"),
		generator:    generator,
		parser:       schema.NewParser(),
		repo:         repo,
		illustrator:  illustrator,
		materializer: NewMaterializer(logger, repo, illustrator),
		limits:       limits,
	}
}

// GenerateStory выполняет один прогон генерации в рамках транзакции tx.
// Ошибки LLM и разбора прерывают прогон; сбои иллюстраций - нет.
func (o *Orchestrator) GenerateStory(ctx context.Context, tx repository.DBTX, sessionID, theme string) (*domain.Story, error) {
	log := o.logger.With(zap.String("session_id", sessionID), zap.String("theme", theme))
	log.Info("Generating story")

	raw, err := o.generator.GenerateText(ctx, BuildStoryPrompt(theme))
	if err != nil {
		storyGenerationsTotal.WithLabelValues("llm_error").Inc()
		log.Error("LLM call failed", zap.Error(err))
		if !errors.Is(err, domain.ErrLLMGeneration) {
			err = fmt.Errorf("%w: %v", domain.ErrLLMGeneration, err)
		}
		return nil, err
	}

	tree, err := o.parser.Parse(raw)
	if err != nil {
		storyGenerationsTotal.WithLabelValues("malformed").Inc()
		log.Error("Failed to parse LLM response", zap.Error(err), zap.Int("response_len", len(raw)))
		return nil, err
	}

	nodeCount := tree.Root.Count()
	storyTreeSize.Observe(float64(nodeCount))
	if err := o.limits.Check(&tree.Root); err != nil {
		storyGenerationsTotal.WithLabelValues("too_large").Inc()
		log.Error("Story tree rejected", zap.Error(err))
		return nil, err
	}

	story := &domain.Story{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(tree.Title),
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.repo.CreateStory(ctx, tx, story); err != nil {
		storyGenerationsTotal.WithLabelValues("persist_error").Inc()
		return nil, fmt.Errorf("failed to create story: %w", err)
	}
	log = log.With(zap.String("story_id", story.ID.String()))

	if image := o.illustrator.DescribeAndIllustrate(ctx, imagegen.StoryRequest(story.Title, tree.Root.Content, theme)); image != nil {
		if err := o.repo.SetStoryMainImage(ctx, tx, story.ID, *image); err != nil {
			storyGenerationsTotal.WithLabelValues("persist_error").Inc()
			return nil, fmt.Errorf("failed to save story image: %w", err)
		}
		story.MainImage = image
	} else {
		log.Warn("Story saved without main image")
	}

	if _, err := o.materializer.Materialize(ctx, tx, story.ID, &tree.Root, true, theme); err != nil {
		storyGenerationsTotal.WithLabelValues("persist_error").Inc()
		log.Error("Failed to materialize story tree", zap.Error(err))
		return nil, err
	}

	storyGenerationsTotal.WithLabelValues("success").Inc()
	log.Info("Story generated", zap.String("title", story.Title), zap.Int("nodes", nodeCount))
	return story, nil
}
