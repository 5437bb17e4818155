package longrunning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cyoa-server/internal/domain"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultMysticBaseURL - эндпоинт задач Freepik Mystic.
const DefaultMysticBaseURL = "https://api.freepik.com/v1/ai/mystic"

const apiKeyHeader = "x-freepik-api-key"

// MysticConfig - параметры клиента Freepik Mystic.
type MysticConfig struct {
	BaseURL          string
	APIKey           string
	RequestTimeout   time.Duration
	RateLimitBackoff time.Duration
}

// MysticClient реализует Client поверх REST API Freepik Mystic.
type MysticClient struct {
	logger           *zap.Logger
	httpClient       *http.Client
	baseURL          string
	apiKey           string
	rateLimitBackoff time.Duration
}

var _ Client = (*MysticClient)(nil)

type mysticEnvelope struct {
	Data *JobStatus `json:"data"`
}

// NewMysticClient создает клиент. Отсутствие ключа - ошибка конфигурации.
func NewMysticClient(logger *zap.Logger, cfg MysticConfig) (*MysticClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: freepik api key is not set", domain.ErrConfiguration)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultMysticBaseURL
	}
	rateLimitBackoff := cfg.RateLimitBackoff
	if rateLimitBackoff <= 0 {
		rateLimitBackoff = DefaultRateLimitBackoff
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &MysticClient{
		logger:           logger.Named("MysticClient"),
		httpClient:       &http.Client{Timeout: timeout},
		baseURL:          baseURL,
		apiKey:           cfg.APIKey,
		rateLimitBackoff: rateLimitBackoff,
	}, nil
}

// Submit отправляет задачу. 429 повторяется один раз через rateLimitBackoff,
// любой другой неуспешный ответ возвращается сразу.
func (c *MysticClient) Submit(ctx context.Context, spec any) (string, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job spec: %w", err)
	}

	var jobID string
	operation := func() error {
		id, err := c.createTask(ctx, body)
		if err != nil {
			return err
		}
		jobID = id
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.rateLimitBackoff), 1),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Rate limited by image provider, retrying", zap.Duration("wait", wait), zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return "", err
	}

	c.logger.Info("Image generation task submitted", zap.String("job_id", jobID))
	return jobID, nil
}

// createTask выполняет один POST. Только 429 допускает повтор.
func (c *MysticClient) createTask(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("http request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: status %d", domain.ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", backoff.Permanent(fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(respBody)))
	}
	if readErr != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to read response body: %w", readErr))
	}

	var envelope mysticEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	if envelope.Data == nil || envelope.Data.JobID == "" {
		return "", backoff.Permanent(fmt.Errorf("response has no task id: %s", string(respBody)))
	}
	return envelope.Data.JobID, nil
}

// Status запрашивает текущее состояние задачи.
func (c *MysticClient) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to check status: provider returned %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope mysticEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	if envelope.Data == nil {
		envelope.Data = &JobStatus{}
	}
	if envelope.Data.JobID == "" {
		envelope.Data.JobID = jobID
	}
	return envelope.Data, nil
}

// AwaitCompletion опрашивает задачу с фиксированным интервалом.
// Неожиданное терминальное состояние и флаг NSFW дают ErrGenerationRejected,
// исчерпание MaxWait - ErrGenerationTimeout.
func (c *MysticClient) AwaitCompletion(ctx context.Context, jobID string, opts PollOptions) ([]Asset, error) {
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	log := c.logger.With(zap.String("job_id", jobID))

	start := time.Now()
	for time.Since(start) < opts.MaxWait {
		status, err := c.Status(ctx, jobID)
		if err != nil {
			return nil, err
		}
		log.Debug("Polled image generation status", zap.String("status", string(status.State)))

		switch status.State {
		case StateCompleted:
			if len(status.Assets) == 0 {
				return nil, fmt.Errorf("%w: job %s completed without assets", domain.ErrGenerationRejected, jobID)
			}
			if status.Flagged() {
				return nil, fmt.Errorf("%w: job %s flagged as NSFW", domain.ErrGenerationRejected, jobID)
			}
			assets := make([]Asset, 0, len(status.Assets))
			for _, u := range status.Assets {
				assets = append(assets, Asset{URL: u})
			}
			return assets, nil
		case StateCreated, StateInProgress:
			if err := sleepContext(ctx, opts.Interval); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: job %s ended with status %q", domain.ErrGenerationRejected, jobID, status.State)
		}
	}

	return nil, fmt.Errorf("%w: job %s did not finish within %s", domain.ErrGenerationTimeout, jobID, opts.MaxWait)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
