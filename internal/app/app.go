package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cyoa-server/internal/config"
	"cyoa-server/internal/database"
	"cyoa-server/internal/imagegen"
	"cyoa-server/internal/llm"
	"cyoa-server/internal/longrunning"
	"cyoa-server/internal/repository"
	"cyoa-server/internal/story"
	pkgdb "cyoa-server/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Core - зависимости, общие для сервера и воркера.
type Core struct {
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Stories   repository.StoryRepository
	Jobs      repository.JobRepository
	Generator *story.Service
	Reader    *story.Reader
}

// Close освобождает соединения.
func (c *Core) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// NewCore подключается к БД, применяет миграции и собирает конвейер генерации.
func NewCore(ctx context.Context, logger *zap.Logger, cfg *config.Config) (*Core, error) {
	pool, err := OpenPool(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}
	core := &Core{Pool: pool}

	if err := database.Migrate(ctx, logger, pool); err != nil {
		core.Close()
		return nil, err
	}

	generator, err := llm.New(ctx, logger, llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Timeout:     cfg.LLM.Timeout,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		core.Close()
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		core.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := core.Redis.Ping(ctx).Err(); err != nil {
			// Кэш необязателен: работаем без него.
			logger.Warn("Redis is unreachable, image cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = core.Redis.Close()
			core.Redis = nil
		}
	}

	var cache redis.Cmdable
	if core.Redis != nil {
		cache = core.Redis
	}
	illustrator, err := NewIllustrator(ctx, logger, cfg.Image, cache, cfg.Redis.CacheTTL)
	if err != nil {
		core.Close()
		return nil, err
	}

	core.Stories = repository.NewPgStoryRepository(logger)
	core.Jobs = repository.NewPgJobRepository(logger)

	orchestrator := story.NewOrchestrator(logger, generator, core.Stories, illustrator, story.Limits{
		MaxDepth: cfg.Story.MaxDepth,
		MaxNodes: cfg.Story.MaxNodes,
	})
	core.Generator = story.NewService(pool, orchestrator)
	core.Reader = story.NewReader(logger, pool, core.Stories)

	return core, nil
}

// OpenPool подключается к PostgreSQL по настройкам DB_*.
func OpenPool(ctx context.Context, logger *zap.Logger, cfg *config.Config) (*pgxpool.Pool, error) {
	return pkgdb.Connect(ctx, pkgdb.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: cfg.DB.MaxConns,
	}, logger)
}

// RunMigrateCommand выполняет команду обслуживания схемы без сборки остального приложения.
func RunMigrateCommand(ctx context.Context, logger *zap.Logger, cfg *config.Config, command string) error {
	pool, err := OpenPool(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	return database.RunCommand(ctx, logger, pool, command)
}

// NewIllustrator выбирает бэкенд изображений. rdb == nil отключает кэш.
func NewIllustrator(ctx context.Context, logger *zap.Logger, cfg config.ImageConfig, rdb redis.Cmdable, cacheTTL time.Duration) (imagegen.Illustrator, error) {
	var backend imagegen.Backend

	switch strings.ToLower(cfg.Backend) {
	case config.ImageBackendNone:
		logger.Info("Image generation disabled")
		return imagegen.Disabled(), nil
	case config.ImageBackendFreepik:
		tasks, err := longrunning.NewMysticClient(logger, longrunning.MysticConfig{
			BaseURL:          cfg.FreepikBaseURL,
			APIKey:           cfg.FreepikAPIKey,
			RequestTimeout:   cfg.RequestTimeout,
			RateLimitBackoff: cfg.RateLimitBackoff,
		})
		if err != nil {
			return nil, err
		}
		backend = imagegen.NewFreepikBackend(logger, tasks, longrunning.PollOptions{
			MaxWait:  cfg.MaxWait,
			Interval: cfg.PollInterval,
		}, cfg.DownloadTimeout)
	case config.ImageBackendImagen:
		imagen, err := imagegen.NewImagenBackend(ctx, logger, cfg.GoogleAPIKey, cfg.ImagenModel)
		if err != nil {
			return nil, err
		}
		backend = imagen
	default:
		return nil, fmt.Errorf("unknown image backend %q", cfg.Backend)
	}

	if rdb != nil {
		backend = imagegen.NewCachedBackend(logger, backend, rdb, cacheTTL)
	}

	logger.Info("Image generation enabled", zap.String("backend", backend.Name()))
	return imagegen.NewIllustrator(logger, backend, imagegen.Config{
		StoryDelay: cfg.StoryDelay,
		NodeDelay:  cfg.NodeDelay,
	}), nil
}
