package imagegen

import (
	"context"
	"sync"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/longrunning"
)

// fakeBackend считает вызовы и отдает заранее заданный результат.
type fakeBackend struct {
	mu      sync.Mutex
	name    string
	image   domain.EncodedImage
	err     error
	panics  bool
	prompts []string
}

func (b *fakeBackend) Name() string {
	if b.name == "" {
		return "fake"
	}
	return b.name
}

func (b *fakeBackend) Generate(_ context.Context, prompt string) (domain.EncodedImage, error) {
	b.mu.Lock()
	b.prompts = append(b.prompts, prompt)
	b.mu.Unlock()
	if b.panics {
		panic("backend exploded")
	}
	return b.image, b.err
}

func (b *fakeBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.prompts)
}

// fakeTaskClient имитирует клиента долгих задач.
type fakeTaskClient struct {
	submitted []any
	submitErr error
	assets    []longrunning.Asset
	awaitErr  error
	polled    longrunning.PollOptions
}

var _ longrunning.Client = (*fakeTaskClient)(nil)

func (c *fakeTaskClient) Submit(_ context.Context, spec any) (string, error) {
	c.submitted = append(c.submitted, spec)
	if c.submitErr != nil {
		return "", c.submitErr
	}
	return "task-1", nil
}

func (c *fakeTaskClient) Status(_ context.Context, jobID string) (*longrunning.JobStatus, error) {
	return &longrunning.JobStatus{JobID: jobID, State: longrunning.StateCompleted}, nil
}

func (c *fakeTaskClient) AwaitCompletion(_ context.Context, _ string, opts longrunning.PollOptions) ([]longrunning.Asset, error) {
	c.polled = opts
	return c.assets, c.awaitErr
}
