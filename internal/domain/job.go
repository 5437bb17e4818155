package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus - статус задачи генерации истории.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// StoryJob - задача генерации истории для сессии.
type StoryJob struct {
	ID          uuid.UUID  `db:"id" json:"job_id"`
	SessionID   string     `db:"session_id" json:"-"`
	Theme       string     `db:"theme" json:"theme"`
	Status      JobStatus  `db:"status" json:"status"`
	StoryID     *uuid.UUID `db:"story_id" json:"story_id,omitempty"`
	Error       *string    `db:"error" json:"error,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// IsTerminal сообщает, завершена ли задача.
func (j *StoryJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
