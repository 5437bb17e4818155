package repository

import (
	"context"
	"time"

	"cyoa-server/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX - общий интерфейс для pgxpool.Pool и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StoryRepository хранит истории и их узлы.
type StoryRepository interface {
	// CreateStory вставляет историю. ID и CreatedAt заполняются, если пусты.
	CreateStory(ctx context.Context, querier DBTX, story *domain.Story) error
	// SetStoryMainImage сохраняет обложку истории.
	SetStoryMainImage(ctx context.Context, querier DBTX, storyID uuid.UUID, image domain.EncodedImage) error
	// CreateNode вставляет узел с пустым списком вариантов.
	CreateNode(ctx context.Context, querier DBTX, node *domain.StoryNode) error
	// FinalizeNode записывает изображение и денормализованный список вариантов узла.
	FinalizeNode(ctx context.Context, querier DBTX, nodeID uuid.UUID, image *domain.EncodedImage, options []domain.NodeOption) error
	// GetStory возвращает историю по ID.
	GetStory(ctx context.Context, querier DBTX, storyID uuid.UUID) (*domain.Story, error)
	// ListNodes возвращает все узлы истории в порядке создания.
	ListNodes(ctx context.Context, querier DBTX, storyID uuid.UUID) ([]*domain.StoryNode, error)
}

// JobRepository хранит задачи генерации.
type JobRepository interface {
	Create(ctx context.Context, querier DBTX, job *domain.StoryJob) error
	GetByID(ctx context.Context, querier DBTX, jobID uuid.UUID) (*domain.StoryJob, error)
	// MarkProcessing захватывает задачу в статусе pending.
	// Если задачу уже забрал другой исполнитель, возвращает domain.ErrJobAlreadyClaimed.
	MarkProcessing(ctx context.Context, querier DBTX, jobID uuid.UUID) error
	MarkCompleted(ctx context.Context, querier DBTX, jobID uuid.UUID, storyID uuid.UUID) error
	MarkFailed(ctx context.Context, querier DBTX, jobID uuid.UUID, reason string) error
	// FailStale переводит в failed задачи, которые находятся в processing с момента до startedBefore.
	FailStale(ctx context.Context, querier DBTX, startedBefore time.Time, reason string) (int64, error)
}
