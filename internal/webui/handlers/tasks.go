package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskpile/internal/bulk"
	"taskpile/internal/config"
	"taskpile/internal/service"
)

// TasksHandler runs bulk create batches for the web form.
type TasksHandler struct {
	svc service.Service
	cfg *config.Config
	log *logrus.Logger
}

// NewTasksHandler creates a tasks handler.
func NewTasksHandler(svc service.Service, cfg *config.Config, log *logrus.Logger) *TasksHandler {
	return &TasksHandler{svc: svc, cfg: cfg, log: log}
}

// BulkCreateRequest is the POST /api/tasks/bulk body.
type BulkCreateRequest struct {
	ListID               string                   `json:"list_id" binding:"required"`
	Tasks                []service.TaskDefinition `json:"tasks" binding:"required"`
	FieldOverrides       map[string]any           `json:"field_overrides"`
	CreateMissingOptions bool                     `json:"create_missing_options"`
}

// BulkCreate handles POST /api/tasks/bulk.
func (h *TasksHandler) BulkCreate(c *gin.Context) {
	var req BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   fmt.Sprintf("invalid request: %v", err),
		})
		return
	}
	if len(req.Tasks) == 0 {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "tasks must not be empty"})
		return
	}

	creator := &bulk.Creator{
		Svc:                  h.svc,
		Defaults:             h.cfg.DefaultFields,
		Overrides:            req.FieldOverrides,
		CreateMissingOptions: req.CreateMissingOptions,
	}

	result, err := creator.Run(c.Request.Context(), req.ListID, req.Tasks)
	if err != nil {
		c.JSON(http.StatusBadGateway, APIResponse{Success: false, Error: err.Error()})
		return
	}

	h.log.WithFields(logrus.Fields{
		"list_id": req.ListID,
		"created": len(result.Created),
		"failed":  len(result.Failed),
	}).Info("bulk create finished")

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: NewRunSummary(result)})
}
