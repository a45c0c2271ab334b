package handler

import (
	"errors"
	"net/http"

	"github.com/erp/fulfillment/internal/infrastructure/scheduler"
	"github.com/erp/fulfillment/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BackfillTrigger is the reservation backfill scheduler as seen by the API
type BackfillTrigger interface {
	TriggerNow() error
	IsRunning() bool
}

// BackfillHandler lets operators inspect and kick the reservation backfill
type BackfillHandler struct {
	BaseHandler
	job BackfillTrigger
}

// NewBackfillHandler creates a new BackfillHandler
func NewBackfillHandler(job BackfillTrigger) *BackfillHandler {
	return &BackfillHandler{job: job}
}

// BackfillStatusResponse is the body of GET /reservations/backfill
type BackfillStatusResponse struct {
	Running bool `json:"running"`
}

// Status reports whether the scheduler loop is running
func (h *BackfillHandler) Status(c *gin.Context) {
	h.Success(c, BackfillStatusResponse{Running: h.job.IsRunning()})
}

// Trigger queues an immediate backfill run and answers 202 without waiting for it
func (h *BackfillHandler) Trigger(c *gin.Context) {
	err := h.job.TriggerNow()
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, dto.NewSuccessResponse(BackfillStatusResponse{Running: true}))
	case errors.Is(err, scheduler.ErrRunInProgress):
		h.Error(c, dto.ErrCodeJobPending, "A backfill run is already pending")
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.Error(c, dto.ErrCodeJobUnavailable, "The backfill scheduler is not running")
	default:
		h.HandleError(c, err)
	}
}
