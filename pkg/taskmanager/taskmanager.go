package taskmanager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTooManyTasks = errors.New("too many active tasks")
	ErrTaskNotFound = errors.New("task not found")
	ErrClosed       = errors.New("task manager is shut down")
)

// TaskStatus - статус фоновой задачи.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// TaskFunc выполняется в отдельной горутине.
type TaskFunc func(ctx context.Context) error

// Task - снимок состояния задачи.
type Task struct {
	ID        uuid.UUID
	Name      string
	Status    TaskStatus
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Config struct {
	// MaxTasks ограничивает число одновременно активных задач.
	MaxTasks int
}

// TaskManager запускает задачи в фоне и хранит их статусы в памяти.
type TaskManager struct {
	logger   *zap.Logger
	mu       sync.RWMutex
	tasks    map[uuid.UUID]*Task
	maxTasks int
	closing  bool
	wg       sync.WaitGroup
}

func New(logger *zap.Logger, cfg Config) *TaskManager {
	maxTasks := cfg.MaxTasks
	if maxTasks <= 0 {
		maxTasks = 10
	}
	return &TaskManager{
		logger:   logger.Named("TaskManager"),
		tasks:    make(map[uuid.UUID]*Task),
		maxTasks: maxTasks,
	}
}

// Submit регистрирует и запускает задачу. Контекст задачи не отменяется
// вместе с ctx вызывающего, но сохраняет его значения.
func (tm *TaskManager) Submit(ctx context.Context, name string, fn TaskFunc) (uuid.UUID, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.closing {
		return uuid.Nil, ErrClosed
	}

	active := 0
	for _, task := range tm.tasks {
		if task.Status == TaskStatusPending || task.Status == TaskStatusRunning {
			active++
		}
	}
	if active >= tm.maxTasks {
		return uuid.Nil, fmt.Errorf("%w: limit %d", ErrTooManyTasks, tm.maxTasks)
	}

	now := time.Now()
	task := &Task{
		ID:        uuid.New(),
		Name:      name,
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tm.tasks[task.ID] = task

	taskCtx := context.WithoutCancel(ctx)
	tm.wg.Add(1)
	go func() {
		defer tm.wg.Done()
		tm.run(taskCtx, task.ID, fn)
	}()

	return task.ID, nil
}

func (tm *TaskManager) run(ctx context.Context, id uuid.UUID, fn TaskFunc) {
	log := tm.logger.With(zap.String("task_id", id.String()))
	tm.setStatus(id, TaskStatusRunning, "")

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		return fn(ctx)
	}()

	if err != nil {
		log.Error("Task failed", zap.Error(err))
		tm.setStatus(id, TaskStatusFailed, err.Error())
		return
	}
	log.Debug("Task completed")
	tm.setStatus(id, TaskStatusCompleted, "")
}

func (tm *TaskManager) setStatus(id uuid.UUID, status TaskStatus, message string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	task, ok := tm.tasks[id]
	if !ok {
		return
	}
	task.Status = status
	task.Error = message
	task.UpdatedAt = time.Now()
}

// Get возвращает копию состояния задачи.
func (tm *TaskManager) Get(id uuid.UUID) (Task, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	task, ok := tm.tasks[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return *task, nil
}

// Cleanup удаляет завершенные задачи старше age.
func (tm *TaskManager) Cleanup(age time.Duration) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, task := range tm.tasks {
		finished := task.Status == TaskStatusCompleted || task.Status == TaskStatusFailed
		if finished && now.Sub(task.UpdatedAt) > age {
			delete(tm.tasks, id)
			removed++
		}
	}
	return removed
}

// Shutdown перестает принимать задачи и ждет завершения запущенных.
func (tm *TaskManager) Shutdown(ctx context.Context) error {
	tm.mu.Lock()
	tm.closing = true
	tm.mu.Unlock()

	done := make(chan struct{})
	go func() {
		tm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for tasks: %w", ctx.Err())
	}
}
