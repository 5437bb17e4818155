package imagegen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCachedBackend_BypassesBrokenRedis(t *testing.T) {
	next := &fakeBackend{name: "freepik", image: "image/png;base64,AA=="}
	cached := NewCachedBackend(zap.NewNop(), next, unreachableRedis(t), time.Hour)

	assert.Equal(t, "freepik", cached.Name())
	for i := 0; i < 2; i++ {
		img, err := cached.Generate(context.Background(), "prompt")
		require.NoError(t, err)
		assert.EqualValues(t, "image/png;base64,AA==", img)
	}
	assert.Equal(t, 2, next.calls())
}

func TestCachedBackend_PropagatesBackendError(t *testing.T) {
	boom := errors.New("boom")
	cached := NewCachedBackend(zap.NewNop(), &fakeBackend{err: boom}, unreachableRedis(t), time.Hour)

	_, err := cached.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, boom)
}

func TestCacheKey(t *testing.T) {
	a := cacheKey("freepik", "prompt")
	assert.Equal(t, a, cacheKey("freepik", "prompt"))
	assert.NotEqual(t, a, cacheKey("imagen", "prompt"))
	assert.NotEqual(t, a, cacheKey("freepik", "prompt "))
	assert.Regexp(t, `^cyoa:image:[0-9a-f]{64}$`, a)
}
