package taskmanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitForStatus(t *testing.T, tm *TaskManager, id uuid.UUID, want TaskStatus) Task {
	t.Helper()
	var task Task
	require.Eventually(t, func() bool {
		var err error
		task, err = tm.Get(id)
		return err == nil && task.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return task
}

func TestSubmit_CompletesAndFails(t *testing.T) {
	tm := New(zap.NewNop(), Config{MaxTasks: 4})

	okID, err := tm.Submit(context.Background(), "ok", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	failID, err := tm.Submit(context.Background(), "fail", func(ctx context.Context) error { return errors.New("boom") })
	require.NoError(t, err)
	panicID, err := tm.Submit(context.Background(), "panic", func(ctx context.Context) error { panic("oops") })
	require.NoError(t, err)

	waitForStatus(t, tm, okID, TaskStatusCompleted)
	failed := waitForStatus(t, tm, failID, TaskStatusFailed)
	assert.Equal(t, "boom", failed.Error)
	panicked := waitForStatus(t, tm, panicID, TaskStatusFailed)
	assert.Contains(t, panicked.Error, "oops")

	require.NoError(t, tm.Shutdown(context.Background()))
}

func TestSubmit_DetachedFromCallerCancellation(t *testing.T) {
	tm := New(zap.NewNop(), Config{})
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	id, err := tm.Submit(ctx, "detached", func(taskCtx context.Context) error {
		<-release
		return taskCtx.Err()
	})
	require.NoError(t, err)

	cancel()
	close(release)
	waitForStatus(t, tm, id, TaskStatusCompleted)
}

func TestSubmit_LimitAndShutdown(t *testing.T) {
	tm := New(zap.NewNop(), Config{MaxTasks: 1})

	release := make(chan struct{})
	_, err := tm.Submit(context.Background(), "blocking", func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	_, err = tm.Submit(context.Background(), "second", func(ctx context.Context) error { return nil })
	require.ErrorIs(t, err, ErrTooManyTasks)

	shortCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, tm.Shutdown(shortCtx))

	_, err = tm.Submit(context.Background(), "after", func(ctx context.Context) error { return nil })
	require.ErrorIs(t, err, ErrClosed)

	close(release)
	require.NoError(t, tm.Shutdown(context.Background()))
}

func TestCleanupAndGet(t *testing.T) {
	tm := New(zap.NewNop(), Config{})
	id, err := tm.Submit(context.Background(), "quick", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	waitForStatus(t, tm, id, TaskStatusCompleted)

	assert.Equal(t, 0, tm.Cleanup(time.Hour))
	assert.Equal(t, 1, tm.Cleanup(0))

	_, err = tm.Get(id)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
