package story

import (
	"context"
	"errors"
	"sync"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/repository"

	"github.com/google/uuid"
)

// memoryRepository - хранилище в памяти для тестов материализации.
type memoryRepository struct {
	mu         sync.Mutex
	stories    map[uuid.UUID]*domain.Story
	nodes      map[uuid.UUID]*domain.StoryNode
	order      []uuid.UUID
	failOnNode int // 1-based номер вставки узла, на котором вернуть ошибку
}

var _ repository.StoryRepository = (*memoryRepository)(nil)

var errInsertFailed = errors.New("insert failed")

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		stories: make(map[uuid.UUID]*domain.Story),
		nodes:   make(map[uuid.UUID]*domain.StoryNode),
	}
}

func (r *memoryRepository) CreateStory(_ context.Context, _ repository.DBTX, story *domain.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *story
	r.stories[story.ID] = &copied
	return nil
}

func (r *memoryRepository) SetStoryMainImage(_ context.Context, _ repository.DBTX, storyID uuid.UUID, image domain.EncodedImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	story, ok := r.stories[storyID]
	if !ok {
		return domain.ErrNotFound
	}
	story.MainImage = &image
	return nil
}

func (r *memoryRepository) CreateNode(_ context.Context, _ repository.DBTX, node *domain.StoryNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOnNode > 0 && len(r.order)+1 == r.failOnNode {
		return errInsertFailed
	}
	if _, ok := r.nodes[node.ID]; ok {
		return errors.New("duplicate node id")
	}
	copied := *node
	copied.Options = append([]domain.NodeOption{}, node.Options...)
	r.nodes[node.ID] = &copied
	r.order = append(r.order, node.ID)
	return nil
}

func (r *memoryRepository) FinalizeNode(_ context.Context, _ repository.DBTX, nodeID uuid.UUID, image *domain.EncodedImage, options []domain.NodeOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	node, ok := r.nodes[nodeID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, opt := range options {
		if _, exists := r.nodes[opt.NodeID]; !exists {
			return errors.New("option references unknown node")
		}
	}
	node.Image = image
	node.Options = append([]domain.NodeOption{}, options...)
	return nil
}

func (r *memoryRepository) GetStory(_ context.Context, _ repository.DBTX, storyID uuid.UUID) (*domain.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	story, ok := r.stories[storyID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return story, nil
}

func (r *memoryRepository) ListNodes(_ context.Context, _ repository.DBTX, storyID uuid.UUID) ([]*domain.StoryNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*domain.StoryNode, 0, len(r.order))
	for _, id := range r.order {
		if n := r.nodes[id]; n.StoryID == storyID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (r *memoryRepository) root() *domain.StoryNode {
	for _, id := range r.order {
		if r.nodes[id].IsRoot {
			return r.nodes[id]
		}
	}
	return nil
}
