package webui_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"taskpile/internal/config"
	"taskpile/internal/service"
	"taskpile/internal/testutil"
	"taskpile/internal/webui"
)

// apiResponse mirrors the handler envelope for decoding in tests.
type apiResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   string         `json:"error"`
}

func newTestHandler(t *testing.T, svc *testutil.FakeService, cfg *config.Config) http.Handler {
	t.Helper()

	if cfg == nil {
		cfg = &config.Config{}
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	srvCfg := webui.DefaultServerConfig()
	srvCfg.EnableCORS = false
	return webui.NewServer(svc, cfg, srvCfg, log).Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, testutil.NewFakeService(), nil)

	rec := doRequest(t, h, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndexPage(t *testing.T) {
	h := newTestHandler(t, testutil.NewFakeService(), nil)

	rec := doRequest(t, h, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, strings.ToLower(rec.Body.String()), "<html")
}

func TestFields_MissingListID(t *testing.T) {
	h := newTestHandler(t, testutil.NewFakeService(), nil)

	rec := doRequest(t, h, http.MethodGet, "/api/fields", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "list_id")
}

func TestFields(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddField("list1", service.CustomField{
		ID:   "f1",
		Name: "Source",
		Type: service.FieldTypeDropDown,
		Options: []service.Option{
			{ID: "1", Name: "Internal"},
		},
	})
	h := newTestHandler(t, svc, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/fields?list_id=list1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	fieldList, ok := resp.Data["fields"].([]any)
	require.True(t, ok)
	require.Len(t, fieldList, 1)

	field := fieldList[0].(map[string]any)
	assert.Equal(t, "Source", field["name"])
	assert.Equal(t, "drop_down", field["type"])
	assert.Len(t, field["options"], 1)

	_, hasStatus := resp.Data["setup_status"]
	assert.False(t, hasStatus, "no setup status without required fields")
}

func TestFields_SetupStatus(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg := &config.Config{
		RequiredFields: []config.RequiredField{
			{Name: "Source", Type: service.FieldTypeDropDown, RequiredOptions: []string{"Internal"}},
		},
	}
	h := newTestHandler(t, svc, cfg)

	rec := doRequest(t, h, http.MethodGet, "/api/fields?list_id=list1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	checks, ok := resp.Data["setup_status"].([]any)
	require.True(t, ok)
	require.Len(t, checks, 1)

	check := checks[0].(map[string]any)
	assert.Equal(t, "Source", check["name"])
	assert.Equal(t, false, check["ready"])
	assert.Equal(t, false, check["exists"])
}

func TestFields_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListCustomFieldsErr = &service.APIError{StatusCode: 500, Body: "oops"}
	h := newTestHandler(t, svc, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/fields?list_id=list1", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
}

func TestBulkCreate(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddField("list1", service.CustomField{
		ID:   "f1",
		Name: "Source",
		Type: service.FieldTypeDropDown,
		Options: []service.Option{
			{ID: "1", Name: "Internal"},
		},
	})
	h := newTestHandler(t, svc, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/tasks/bulk", map[string]any{
		"list_id": "list1",
		"tasks": []map[string]any{
			{"name": "Task A"},
			{"name": "Task B", "custom_fields": map[string]any{"Source": "Internal"}},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	created, ok := resp.Data["created"].([]any)
	require.True(t, ok)
	assert.Len(t, created, 2)
	assert.Empty(t, resp.Data["failed"])

	sets := svc.FieldValues("task-2")
	require.Len(t, sets, 1)
	assert.Equal(t, "1", sets[0].Value)
}

func TestBulkCreate_PartialFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr["Bad"] = &service.APIError{StatusCode: 500, Body: "oops"}
	h := newTestHandler(t, svc, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/tasks/bulk", map[string]any{
		"list_id": "list1",
		"tasks":   []map[string]any{{"name": "Good"}, {"name": "Bad"}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	assert.Len(t, resp.Data["created"], 1)
	failed, ok := resp.Data["failed"].([]any)
	require.True(t, ok)
	require.Len(t, failed, 1)
	assert.Equal(t, "Bad", failed[0].(map[string]any)["name"])
}

func TestBulkCreate_BadRequest(t *testing.T) {
	h := newTestHandler(t, testutil.NewFakeService(), nil)

	rec := doRequest(t, h, http.MethodPost, "/api/tasks/bulk", map[string]any{
		"tasks": []map[string]any{{"name": "Task A"}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
}

func buildStoriesWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Stories"))
	require.NoError(t, f.SetSheetRow("Stories", "A1",
		&[]any{"User Story ID", "User Story Title", "User Story", "Acceptance Criteria"}))
	require.NoError(t, f.SetSheetRow("Stories", "A2",
		&[]any{"US-VR-1", "Login page", "As a user I can log in", "Page loads"}))
	require.NoError(t, f.SetSheetRow("Stories", "A3",
		&[]any{"US-VR-2", "Logout", "As a user I can log out", ""}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func uploadWorkbook(t *testing.T, h http.Handler, path string, wb []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "stories.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(wb)
	require.NoError(t, err)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWorkbookSheets(t *testing.T) {
	h := newTestHandler(t, testutil.NewFakeService(), nil)

	rec := uploadWorkbook(t, h, "/api/workbook/sheets", buildStoriesWorkbook(t), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	assert.Equal(t, []any{"Stories"}, resp.Data["sheets"])
}

func TestWorkbookSheets_MissingFile(t *testing.T) {
	h := newTestHandler(t, testutil.NewFakeService(), nil)

	rec := doRequest(t, h, http.MethodPost, "/api/workbook/sheets", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "file upload required")
}

func TestWorkbookParse(t *testing.T) {
	h := newTestHandler(t, testutil.NewFakeService(), nil)

	rec := uploadWorkbook(t, h, "/api/workbook/parse", buildStoriesWorkbook(t),
		map[string]string{"sheets": "Stories"})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	tasks, ok := resp.Data["tasks"].([]any)
	require.True(t, ok)
	require.Len(t, tasks, 2)

	first := tasks[0].(map[string]any)
	assert.Equal(t, "US-VR-1: Login page", first["name"])
	assert.Contains(t, first["description"], "## Acceptance Criteria")

	stats := resp.Data["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["total_tasks"])
	assert.Equal(t, float64(0), stats["with_epic"])
}

func TestWorkbookParse_MissingSheets(t *testing.T) {
	h := newTestHandler(t, testutil.NewFakeService(), nil)

	rec := uploadWorkbook(t, h, "/api/workbook/parse", buildStoriesWorkbook(t), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Contains(t, resp.Error, "sheets is required")
}

func buildEpicsWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Epics"))
	require.NoError(t, f.SetSheetRow("Epics", "A1", &[]any{"Epic Title", "Linked User Stories"}))
	require.NoError(t, f.SetSheetRow("Epics", "A2", &[]any{"Checkout", "US-CO-1 -> US-CO-2"}))

	_, err := f.NewSheet("Checkout")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Checkout", "A1", &[]any{"User Story ID", "User Story Title"}))
	require.NoError(t, f.SetSheetRow("Checkout", "A2", &[]any{"US-CO-1", "Cart"}))
	require.NoError(t, f.SetSheetRow("Checkout", "A3", &[]any{"US-CO-2", "Payment"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestWorkbookParse_LinksEpicStories(t *testing.T) {
	h := newTestHandler(t, testutil.NewFakeService(), nil)

	rec := uploadWorkbook(t, h, "/api/workbook/parse", buildEpicsWorkbook(t),
		map[string]string{"sheets": "Checkout"})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	tasks, ok := resp.Data["tasks"].([]any)
	require.True(t, ok)
	require.Len(t, tasks, 2)

	first := tasks[0].(map[string]any)
	_, hasLinks := first["links"]
	assert.False(t, hasLinks, "first story of the epic has nothing to link to")

	second := tasks[1].(map[string]any)
	assert.Equal(t, []any{"US-CO-1: Cart"}, second["links"])
}

func TestWorkbookParse_LinkStoriesDisabled(t *testing.T) {
	h := newTestHandler(t, testutil.NewFakeService(), nil)

	rec := uploadWorkbook(t, h, "/api/workbook/parse", buildEpicsWorkbook(t),
		map[string]string{"sheets": "Checkout", "link_stories": "false"})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	tasks := resp.Data["tasks"].([]any)
	for _, raw := range tasks {
		task := raw.(map[string]any)
		_, hasLinks := task["links"]
		assert.False(t, hasLinks, "no links expected with linking disabled")
	}
}
