package http

import (
	"context"
	"errors"
	"net/http"

	"cyoa-server/internal/domain"
	"cyoa-server/internal/jobs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoryReader отдает сохраненную историю целиком.
type StoryReader interface {
	LoadComplete(ctx context.Context, storyID uuid.UUID) (*domain.CompleteStory, error)
}

// APIError - тело ответа об ошибке.
type APIError struct {
	Error string `json:"error"`
}

type createStoryRequest struct {
	Theme string `json:"theme" binding:"required"`
}

type createStoryResponse struct {
	JobID  uuid.UUID        `json:"job_id"`
	Status domain.JobStatus `json:"status"`
}

// StoryHandler обслуживает API генерации историй.
type StoryHandler struct {
	logger  *zap.Logger
	jobs    jobs.Service
	stories StoryReader
	session SessionConfig
}

func NewStoryHandler(logger *zap.Logger, jobService jobs.Service, stories StoryReader, session SessionConfig) *StoryHandler {
	return &StoryHandler{
		logger:  logger.Named("StoryHandler"),
		jobs:    jobService,
		stories: stories,
		session: session,
	}
}

// RegisterRoutes регистрирует маршруты под /api.
func (h *StoryHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api")
	{
		api.POST("/stories/create", SessionMiddleware(h.session), h.createStory)
		api.GET("/stories/:id/complete", h.getCompleteStory)
		api.GET("/jobs/:id", h.getJob)
	}
}

func (h *StoryHandler) createStory(c *gin.Context) {
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "theme is required"})
		return
	}

	job, err := h.jobs.Submit(c.Request.Context(), SessionID(c), req.Theme)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, createStoryResponse{JobID: job.ID, Status: job.Status})
}

func (h *StoryHandler) getJob(c *gin.Context) {
	jobID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *StoryHandler) getCompleteStory(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	story, err := h.stories.LoadComplete(c.Request.Context(), storyID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// handleError переводит доменные ошибки в HTTP статусы.
func (h *StoryHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, APIError{Error: "not found"})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, APIError{Error: err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, APIError{Error: "internal server error"})
	}
}
