package imagegen

import (
	"context"
	"errors"
	"time"

	"cyoa-server/internal/domain"

	"go.uber.org/zap"
)

// Illustrator - сервис иллюстраций. Никогда не возвращает ошибку:
// любой сбой превращается в nil и запись в лог.
type Illustrator interface {
	DescribeAndIllustrate(ctx context.Context, req Request) *domain.EncodedImage
}

// Config - паузы перед обращением к провайдеру, чтобы не упираться в лимиты.
type Config struct {
	StoryDelay time.Duration
	NodeDelay  time.Duration
}

// DefaultConfig: 2 секунды для обложки, 3 секунды для сцены.
func DefaultConfig() Config {
	return Config{StoryDelay: 2 * time.Second, NodeDelay: 3 * time.Second}
}

type illustratorImpl struct {
	logger  *zap.Logger
	backend Backend
	cfg     Config
}

var _ Illustrator = (*illustratorImpl)(nil)

// NewIllustrator создает сервис поверх выбранного бэкенда.
func NewIllustrator(logger *zap.Logger, backend Backend, cfg Config) Illustrator {
	return &illustratorImpl{
		logger:  logger.Named("Illustrator"),
		backend: backend,
		cfg:     cfg,
	}
}

func (s *illustratorImpl) DescribeAndIllustrate(ctx context.Context, req Request) (result *domain.EncodedImage) {
	log := s.logger.With(
		zap.String("scope", string(req.Scope)),
		zap.String("backend", s.backend.Name()),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic during illustration, continuing without image", zap.Any("panic", r))
			imageRequestsTotal.WithLabelValues(s.backend.Name(), string(req.Scope), "error").Inc()
			result = nil
		}
	}()

	delay := s.cfg.NodeDelay
	if req.Scope == ScopeStory {
		delay = s.cfg.StoryDelay
	}
	if err := wait(ctx, delay); err != nil {
		log.Warn("Illustration skipped, context done before submission", zap.Error(err))
		imageRequestsTotal.WithLabelValues(s.backend.Name(), string(req.Scope), "error").Inc()
		return nil
	}

	prompt := BuildPrompt(req)
	log.Debug("Requesting illustration", zap.String("prompt", prompt))

	start := time.Now()
	img, err := s.backend.Generate(ctx, prompt)
	imageRequestDuration.WithLabelValues(s.backend.Name(), string(req.Scope)).Observe(time.Since(start).Seconds())

	if err != nil {
		status := failureStatus(err)
		imageRequestsTotal.WithLabelValues(s.backend.Name(), string(req.Scope), status).Inc()
		log.Warn("Illustration failed, continuing without image", zap.String("reason", status), zap.Error(err))
		return nil
	}

	imageRequestsTotal.WithLabelValues(s.backend.Name(), string(req.Scope), "success").Inc()
	log.Info("Illustration generated", zap.String("media_type", img.MediaType()), zap.Int("encoded_len", len(img)))
	return &img
}

func failureStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrGenerationTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrGenerationRejected):
		return "rejected"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// disabledIllustrator используется, когда генерация изображений выключена.
type disabledIllustrator struct{}

// Disabled возвращает Illustrator, который всегда возвращает nil.
func Disabled() Illustrator { return disabledIllustrator{} }

func (disabledIllustrator) DescribeAndIllustrate(context.Context, Request) *domain.EncodedImage {
	return nil
}
