package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskpile/internal/workbook"
)

// WorkbookHandler parses uploaded Excel workbooks into task definitions.
type WorkbookHandler struct{}

// NewWorkbookHandler creates a workbook handler.
func NewWorkbookHandler() *WorkbookHandler {
	return &WorkbookHandler{}
}

// Sheets handles POST /api/workbook/sheets: multipart upload under "file",
// returns the workbook's sheet names.
func (h *WorkbookHandler) Sheets(c *gin.Context) {
	f, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer f.Close()

	names, err := workbook.SheetNames(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"sheets": names}})
}

type parsedTask struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Fields      map[string]any `json:"custom_fields,omitempty"`
	Links       []string       `json:"links,omitempty"`
}

// Parse handles POST /api/workbook/parse: multipart upload under "file"
// plus a comma-separated "sheets" form value selecting user-story sheets.
// Stories sharing an epic are chain-linked unless "link_stories" is "false".
func (h *WorkbookHandler) Parse(c *gin.Context) {
	f, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer f.Close()

	var sheets []string
	for _, part := range strings.Split(c.PostForm("sheets"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			sheets = append(sheets, part)
		}
	}
	if len(sheets) == 0 {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "sheets is required"})
		return
	}

	defs, stats, err := workbook.Parse(f, sheets)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: err.Error()})
		return
	}
	if c.DefaultPostForm("link_stories", "true") != "false" {
		workbook.ChainEpicLinks(defs)
	}

	tasks := make([]parsedTask, 0, len(defs))
	for _, d := range defs {
		tasks = append(tasks, parsedTask{
			Name:        d.Name,
			Description: d.Description,
			Fields:      d.Fields,
			Links:       d.Links,
		})
	}

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{
		"tasks": tasks,
		"stats": gin.H{
			"total_tasks":      stats.TotalTasks,
			"with_epic":        stats.WithEpic,
			"total_epics":      stats.TotalEpics,
			"sheets_processed": stats.SheetsProcessed,
		},
	}})
}

func (h *WorkbookHandler) openUpload(c *gin.Context) (multipart.File, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   fmt.Sprintf("file upload required: %v", err),
		})
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   fmt.Sprintf("failed to open upload: %v", err),
		})
		return nil, false
	}
	return file, true
}
