// Package longrunning реализует протокол "отправить задачу генерации, дождаться
// терминального состояния, получить ссылки на результат" для асинхронных
// провайдеров изображений.
package longrunning

import (
	"context"
	"time"
)

// State - состояние задачи на стороне провайдера.
type State string

const (
	StateCreated    State = "CREATED"
	StateInProgress State = "IN_PROGRESS"
	StateCompleted  State = "COMPLETED"
)

// Значения по умолчанию для ожидания результата.
const (
	DefaultMaxWait          = 600 * time.Second
	DefaultPollInterval     = 10 * time.Second
	DefaultRateLimitBackoff = 30 * time.Second
)

// Asset - ссылка на готовый результат задачи.
type Asset struct {
	URL string
}

// JobStatus - снимок состояния задачи.
type JobStatus struct {
	JobID   string   `json:"task_id"`
	State   State    `json:"status"`
	Assets  []string `json:"generated"`
	HasNSFW []bool   `json:"has_nsfw"`
}

// Flagged сообщает, помечен ли хотя бы один результат фильтром безопасности.
func (s *JobStatus) Flagged() bool {
	for _, flagged := range s.HasNSFW {
		if flagged {
			return true
		}
	}
	return false
}

// PollOptions задает бюджет ожидания и интервал опроса.
type PollOptions struct {
	MaxWait  time.Duration
	Interval time.Duration
}

// DefaultPollOptions возвращает 600 секунд ожидания с опросом раз в 10 секунд.
func DefaultPollOptions() PollOptions {
	return PollOptions{MaxWait: DefaultMaxWait, Interval: DefaultPollInterval}
}

// Client - контракт долгой задачи генерации.
type Client interface {
	// Submit создает задачу и возвращает ее идентификатор.
	// При ответе 429 выполняется ровно один повтор после паузы.
	Submit(ctx context.Context, spec any) (string, error)
	// Status выполняет одиночную проверку состояния задачи.
	Status(ctx context.Context, jobID string) (*JobStatus, error)
	// AwaitCompletion опрашивает задачу до терминального состояния или истечения MaxWait.
	AwaitCompletion(ctx context.Context, jobID string, opts PollOptions) ([]Asset, error)
}
