package imagegen

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cyoa-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDescribeAndIllustrate_Success(t *testing.T) {
	backend := &fakeBackend{image: domain.EncodeImage("image/png", []byte("png-bytes"))}
	ill := NewIllustrator(zap.NewNop(), backend, Config{})

	img := ill.DescribeAndIllustrate(context.Background(), StoryRequest("Orbit", "Stars everywhere.", "space"))
	require.NotNil(t, img)
	assert.Equal(t, "image/png", img.MediaType())
	require.Len(t, backend.prompts, 1)
	assert.Contains(t, backend.prompts[0], "titled 'Orbit'")
}

func TestDescribeAndIllustrate_NeverFails(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
	}{
		{name: "timeout", backend: &fakeBackend{err: fmt.Errorf("%w: waited too long", domain.ErrGenerationTimeout)}},
		{name: "rejected", backend: &fakeBackend{err: fmt.Errorf("%w: nsfw", domain.ErrGenerationRejected)}},
		{name: "rate limited", backend: &fakeBackend{err: domain.ErrRateLimited}},
		{name: "transport", backend: &fakeBackend{err: errors.New("connection reset")}},
		{name: "panic", backend: &fakeBackend{panics: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ill := NewIllustrator(zap.NewNop(), tt.backend, Config{})
			assert.NotPanics(t, func() {
				assert.Nil(t, ill.DescribeAndIllustrate(context.Background(), NodeRequest("scene", "space")))
			})
			assert.Equal(t, 1, tt.backend.calls())
		})
	}
}

func TestDescribeAndIllustrate_WaitsScopeDelay(t *testing.T) {
	backend := &fakeBackend{image: "image/png;base64,AA=="}
	ill := NewIllustrator(zap.NewNop(), backend, Config{StoryDelay: 5 * time.Millisecond, NodeDelay: 40 * time.Millisecond})

	start := time.Now()
	require.NotNil(t, ill.DescribeAndIllustrate(context.Background(), NodeRequest("scene", "")))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestDescribeAndIllustrate_CancelledDuringDelay(t *testing.T) {
	backend := &fakeBackend{image: "image/png;base64,AA=="}
	ill := NewIllustrator(zap.NewNop(), backend, Config{NodeDelay: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Nil(t, ill.DescribeAndIllustrate(ctx, NodeRequest("scene", "")))
	assert.Zero(t, backend.calls())
}

func TestFailureStatus(t *testing.T) {
	assert.Equal(t, "timeout", failureStatus(fmt.Errorf("x: %w", domain.ErrGenerationTimeout)))
	assert.Equal(t, "rejected", failureStatus(fmt.Errorf("x: %w", domain.ErrGenerationRejected)))
	assert.Equal(t, "rate_limited", failureStatus(fmt.Errorf("x: %w", domain.ErrRateLimited)))
	assert.Equal(t, "error", failureStatus(errors.New("x")))
}

func TestDisabled(t *testing.T) {
	assert.Nil(t, Disabled().DescribeAndIllustrate(context.Background(), StoryRequest("t", "x", "")))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2*time.Second, cfg.StoryDelay)
	assert.Equal(t, 3*time.Second, cfg.NodeDelay)
}
