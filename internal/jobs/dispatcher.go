package jobs

import (
	"context"
	"fmt"
	"time"

	"cyoa-server/pkg/taskmanager"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher передает созданную задачу исполнителю.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobID uuid.UUID) error
}

// Compile-time check to ensure implementation satisfies the interface.
var _ Dispatcher = (*LocalDispatcher)(nil)

// LocalDispatcher выполняет задачи в том же процессе.
type LocalDispatcher struct {
	logger  *zap.Logger
	tasks   *taskmanager.TaskManager
	handler Handler
}

func NewLocalDispatcher(logger *zap.Logger, tasks *taskmanager.TaskManager, handler Handler) *LocalDispatcher {
	return &LocalDispatcher{
		logger:  logger.Named("LocalDispatcher"),
		tasks:   tasks,
		handler: handler,
	}
}

func (d *LocalDispatcher) Dispatch(ctx context.Context, jobID uuid.UUID) error {
	taskID, err := d.tasks.Submit(ctx, "story_job:"+jobID.String(), func(taskCtx context.Context) error {
		return d.handler.Run(taskCtx, jobID)
	})
	if err != nil {
		return fmt.Errorf("failed to submit job %s: %w", jobID, err)
	}
	d.logger.Debug("Job submitted", zap.String("job_id", jobID.String()), zap.String("task_id", taskID.String()))
	return nil
}

// RunCleanup периодически удаляет завершенные задачи из памяти.
func (d *LocalDispatcher) RunCleanup(ctx context.Context, retention time.Duration) {
	ticker := time.NewTicker(retention)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := d.tasks.Cleanup(retention); removed > 0 {
				d.logger.Debug("Finished tasks cleaned up", zap.Int("removed", removed))
			}
		}
	}
}
