package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskpile/internal/config"
	"taskpile/internal/fields"
	"taskpile/internal/service"
)

// FieldsHandler serves custom field schema lookups.
type FieldsHandler struct {
	svc service.Service
	cfg *config.Config
}

// NewFieldsHandler creates a fields handler.
func NewFieldsHandler(svc service.Service, cfg *config.Config) *FieldsHandler {
	return &FieldsHandler{svc: svc, cfg: cfg}
}

type optionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type fieldResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Type    string           `json:"type"`
	Options []optionResponse `json:"options,omitempty"`
}

type checkResponse struct {
	Name           string   `json:"name"`
	Ready          bool     `json:"ready"`
	Exists         bool     `json:"exists"`
	MissingOptions []string `json:"missing_options,omitempty"`
	Instructions   []string `json:"instructions,omitempty"`
}

// List handles GET /api/fields. It returns the list's schema and, when the
// config declares required fields, the readiness check results.
func (h *FieldsHandler) List(c *gin.Context) {
	listID := c.Query("list_id")
	if listID == "" {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "list_id is required"})
		return
	}

	schema, err := h.svc.ListCustomFields(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusBadGateway, APIResponse{Success: false, Error: err.Error()})
		return
	}

	resp := make([]fieldResponse, 0, len(schema))
	for _, f := range schema {
		fr := fieldResponse{ID: f.ID, Name: f.Name, Type: f.Type}
		for _, o := range f.Options {
			fr.Options = append(fr.Options, optionResponse{ID: o.ID, Name: o.Name})
		}
		resp = append(resp, fr)
	}

	data := gin.H{"fields": resp}
	if len(h.cfg.RequiredFields) > 0 {
		checks := make([]checkResponse, 0, len(h.cfg.RequiredFields))
		for _, r := range fields.Check(schema, h.cfg.RequiredFields) {
			checks = append(checks, checkResponse{
				Name:           r.Name,
				Ready:          r.Ready(),
				Exists:         r.Exists,
				MissingOptions: r.MissingOptions,
				Instructions:   r.Instructions,
			})
		}
		data["setup_status"] = checks
	}

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}
