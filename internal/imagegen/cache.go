package imagegen

import (
	"context"
	"errors"
	"time"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "cyoa:image:"

// CachedBackend кэширует успешные изображения в Redis по хэшу промпта.
// Ошибки Redis не влияют на генерацию.
type CachedBackend struct {
	logger *zap.Logger
	next   Backend
	rdb    redis.Cmdable
	ttl    time.Duration
}

var _ Backend = (*CachedBackend)(nil)

// NewCachedBackend оборачивает бэкенд кэшем.
func NewCachedBackend(logger *zap.Logger, next Backend, rdb redis.Cmdable, ttl time.Duration) *CachedBackend {
	return &CachedBackend{
		logger: logger.Named("ImageCache"),
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
	}
}

func (c *CachedBackend) Name() string { return c.next.Name() }

func (c *CachedBackend) Generate(ctx context.Context, prompt string) (domain.EncodedImage, error) {
	key := cacheKey(c.next.Name(), prompt)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil && cached != "":
		imageCacheLookups.WithLabelValues("hit").Inc()
		c.logger.Debug("Image cache hit", zap.String("key", key))
		return domain.EncodedImage(cached), nil
	case err == nil, errors.Is(err, redis.Nil):
		imageCacheLookups.WithLabelValues("miss").Inc()
	default:
		imageCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("Image cache lookup failed, bypassing cache", zap.Error(err))
	}

	img, err := c.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := c.rdb.Set(ctx, key, string(img), c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to store image in cache", zap.String("key", key), zap.Error(err))
	}
	return img, nil
}

func cacheKey(backend, prompt string) string {
	return cacheKeyPrefix + utils.HashStrings(backend, prompt)
}
