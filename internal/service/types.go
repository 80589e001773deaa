// Package service defines the backend-agnostic interface for bulk task operations.
package service

import (
	"errors"
	"strings"
)

// Field types that carry an option list. Values for these fields are
// option names that must be resolved to option ids before sending.
const (
	FieldTypeDropDown = "drop_down"
	FieldTypeLabels   = "labels"
)

// ErrNameRequired is returned when a task definition has an empty name.
var ErrNameRequired = errors.New("task name required")

// Task is a task that exists in the remote system.
type Task struct {
	ID   string
	Name string
}

// Option is one selectable value of a dropdown or labels field.
type Option struct {
	ID         string
	Name       string
	OrderIndex int
}

// CustomField describes one custom field on a list.
// Options is populated only for option-typed fields.
type CustomField struct {
	ID      string
	Name    string
	Type    string
	Options []Option
}

// HasOptions reports whether the field type carries an option list.
func (f CustomField) HasOptions() bool {
	return f.Type == FieldTypeDropDown || f.Type == FieldTypeLabels
}

// Option looks up an option by exact name.
func (f CustomField) Option(name string) (Option, bool) {
	for _, opt := range f.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return Option{}, false
}

// TaskDefinition is one task to create, as loaded from a JSON file,
// a parsed workbook, or the web form.
type TaskDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Fields holds per-definition custom field values by field name.
	// They override the configured defaults on name collision.
	Fields map[string]any `json:"custom_fields,omitempty"`

	// Links names tasks earlier in the same batch to link to after creation.
	Links []string `json:"links,omitempty"`
}

// Validate checks the definition before any network call is made.
func (d TaskDefinition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	return nil
}
