package clickup_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskpile/internal/backend/clickup"
	"taskpile/internal/service"
)

const testToken = "pk_test_token"

func TestClient_AuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"fields":[]}`)
	}))
	defer srv.Close()

	c := clickup.NewWithBaseURL(testToken, srv.URL)
	if _, err := c.ListCustomFields(context.Background(), "123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != testToken {
		t.Errorf("expected Authorization %q, got %q", testToken, gotAuth)
	}
}

func TestClient_ListCustomFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list/123/field" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"fields":[
			{"id":"f1","name":"Source","type":"drop_down","type_config":{"options":[
				{"id":"1","name":"Internal","orderindex":0},
				{"id":"2","name":"External","orderindex":1}]}},
			{"id":"f2","name":"Notes","type":"text"}]}`)
	}))
	defer srv.Close()

	c := clickup.NewWithBaseURL(testToken, srv.URL)
	fields, err := c.ListCustomFields(context.Background(), "123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Name != "Source" || len(fields[0].Options) != 2 {
		t.Errorf("unexpected field: %+v", fields[0])
	}
	if fields[0].Options[0].ID != "1" || fields[0].Options[0].Name != "Internal" {
		t.Errorf("unexpected option: %+v", fields[0].Options[0])
	}
	if fields[1].Type != "text" || fields[1].Options != nil {
		t.Errorf("unexpected field: %+v", fields[1])
	}
}

func TestClient_CreateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/list/123/task" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if payload["name"] != "A" || payload["description"] != "x" {
			t.Errorf("unexpected payload: %v", payload)
		}
		fmt.Fprint(w, `{"id":"abc123","name":"A"}`)
	}))
	defer srv.Close()

	c := clickup.NewWithBaseURL(testToken, srv.URL)
	task, err := c.CreateTask(context.Background(), "123", service.TaskDefinition{Name: "A", Description: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "abc123" {
		t.Errorf("expected id abc123, got %q", task.ID)
	}
}

func TestClient_SetCustomField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/task/abc/field/f1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["value"] != "1" {
			t.Errorf("expected value 1, got %v", payload["value"])
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := clickup.NewWithBaseURL(testToken, srv.URL)
	if err := c.SetCustomField(context.Background(), "abc", "f1", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"err":"Token invalid"}`)
	}))
	defer srv.Close()

	c := clickup.NewWithBaseURL(testToken, srv.URL)
	_, err := c.ListCustomFields(context.Background(), "123")

	var apiErr *service.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || !apiErr.IsAuth() {
		t.Errorf("unexpected error detail: %+v", apiErr)
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := clickup.NewWithBaseURL(testToken, srv.URL)
	err := c.DeleteTask(context.Background(), "abc")

	var transportErr *service.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestClient_ListTasksFollowsPagination(t *testing.T) {
	pages := []string{
		`{"tasks":[{"id":"t1","name":"A"},{"id":"t2","name":"B"}],"last_page":false}`,
		`{"tasks":[{"id":"t3","name":"C"}],"last_page":true}`,
	}
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requested = append(requested, page)
		switch page {
		case "0":
			fmt.Fprint(w, pages[0])
		case "1":
			fmt.Fprint(w, pages[1])
		default:
			t.Errorf("unexpected page %q", page)
		}
	}))
	defer srv.Close()

	c := clickup.NewWithBaseURL(testToken, srv.URL)
	tasks, err := c.ListTasks(context.Background(), "123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks across pages, got %d", len(tasks))
	}
	if tasks[2].ID != "t3" {
		t.Errorf("expected accumulation in page order, got %+v", tasks)
	}
	if len(requested) != 2 {
		t.Errorf("expected 2 page requests, got %v", requested)
	}
}

func TestClient_AddDropdownOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/field/f1/option" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id":"opt-9"}`)
	}))
	defer srv.Close()

	c := clickup.NewWithBaseURL(testToken, srv.URL)
	opt, err := c.AddDropdownOption(context.Background(), "f1", "Partner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.ID != "opt-9" || opt.Name != "Partner" {
		t.Errorf("unexpected option: %+v", opt)
	}
}
