// Package clickup implements the service.Service interface against the
// ClickUp v2 REST API.
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"taskpile/internal/config"
	"taskpile/internal/service"
)

const (
	// BaseURL is the fixed API base path.
	BaseURL = "https://api.clickup.com/api/v2"

	// APITimeout is the timeout for a single API call.
	APITimeout = 30 * time.Second
)

// ErrNoToken is returned when the client is constructed without an API token.
var ErrNoToken = errors.New("api token not set")

// Client implements service.Service using the ClickUp v2 API.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	log     *logrus.Logger
}

// New creates a client from config. The token must be present.
func New(cfg *config.Config, log *logrus.Logger) (*Client, error) {
	if !cfg.HasToken() {
		return nil, ErrNoToken
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Client{
		http:    &http.Client{Timeout: APITimeout},
		baseURL: BaseURL,
		token:   cfg.Token,
		log:     log,
	}, nil
}

// NewWithBaseURL creates a client against a custom base URL (for testing).
func NewWithBaseURL(token, baseURL string) *Client {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Client{
		http:    &http.Client{Timeout: APITimeout},
		baseURL: baseURL,
		token:   token,
		log:     log,
	}
}

// do issues one authenticated call and decodes the JSON response into out.
// Non-2xx responses become *service.APIError; failures before a response
// arrives become *service.TransportError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	c.log.WithFields(logrus.Fields{"method": method, "path": path}).Debug("api call")

	resp, err := c.http.Do(req)
	if err != nil {
		return &service.TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &service.TransportError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.WithFields(logrus.Fields{"method": method, "path": path, "status": resp.StatusCode}).Debug("api error")
		return &service.APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Wire shapes. Only the fields this tool reads are declared.

type optionJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OrderIndex int    `json:"orderindex"`
}

type customFieldJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	TypeConfig struct {
		Options []optionJSON `json:"options"`
	} `json:"type_config"`
}

type fieldsResponse struct {
	Fields []customFieldJSON `json:"fields"`
}

type taskJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type tasksResponse struct {
	Tasks    []taskJSON `json:"tasks"`
	LastPage bool       `json:"last_page"`
}

// ListCustomFields returns the custom field schema of a list.
func (c *Client) ListCustomFields(ctx context.Context, listID string) ([]service.CustomField, error) {
	var resp fieldsResponse
	if err := c.do(ctx, http.MethodGet, "/list/"+listID+"/field", nil, &resp); err != nil {
		return nil, err
	}

	fields := make([]service.CustomField, 0, len(resp.Fields))
	for _, f := range resp.Fields {
		field := service.CustomField{ID: f.ID, Name: f.Name, Type: f.Type}
		for _, o := range f.TypeConfig.Options {
			field.Options = append(field.Options, service.Option{
				ID:         o.ID,
				Name:       o.Name,
				OrderIndex: o.OrderIndex,
			})
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// CreateTask creates a task in the given list.
func (c *Client) CreateTask(ctx context.Context, listID string, def service.TaskDefinition) (service.Task, error) {
	payload := map[string]any{
		"name":        def.Name,
		"description": def.Description,
	}

	var resp taskJSON
	if err := c.do(ctx, http.MethodPost, "/list/"+listID+"/task", payload, &resp); err != nil {
		return service.Task{}, err
	}
	return service.Task{ID: resp.ID, Name: resp.Name}, nil
}

// SetCustomField sets one custom field value on a task.
func (c *Client) SetCustomField(ctx context.Context, taskID, fieldID string, value any) error {
	payload := map[string]any{"value": value}
	return c.do(ctx, http.MethodPost, "/task/"+taskID+"/field/"+fieldID, payload, nil)
}

// AddDropdownOption adds an option to a dropdown or labels field.
func (c *Client) AddDropdownOption(ctx context.Context, fieldID, name string) (service.Option, error) {
	payload := map[string]any{"name": name}

	var resp optionJSON
	if err := c.do(ctx, http.MethodPost, "/field/"+fieldID+"/option", payload, &resp); err != nil {
		return service.Option{}, err
	}
	return service.Option{ID: resp.ID, Name: name, OrderIndex: resp.OrderIndex}, nil
}

// LinkTasks links two tasks as related tasks.
func (c *Client) LinkTasks(ctx context.Context, taskID, linksToID string) error {
	return c.do(ctx, http.MethodPost, "/task/"+taskID+"/link/"+linksToID, nil, nil)
}

// ListTasks returns every task in a list. The endpoint pages at a fixed
// server-side size with a 0-based page parameter; pages are followed until
// the server marks the last one or returns an empty page.
func (c *Client) ListTasks(ctx context.Context, listID string) ([]service.Task, error) {
	var all []service.Task
	for page := 0; ; page++ {
		var resp tasksResponse
		path := fmt.Sprintf("/list/%s/task?page=%d", listID, page)
		if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		for _, t := range resp.Tasks {
			all = append(all, service.Task{ID: t.ID, Name: t.Name})
		}
		if resp.LastPage || len(resp.Tasks) == 0 {
			return all, nil
		}
	}
}

// DeleteTask deletes a task by id.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/task/"+taskID, nil, nil)
}
