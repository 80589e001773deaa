// Package service defines the backend-agnostic interface for bulk task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All ClickUp API calls go through this interface.
// Commands and drivers never import the HTTP backend directly.
type Service interface {
	// ListCustomFields returns the custom field schema of a list in API order.
	ListCustomFields(ctx context.Context, listID string) ([]CustomField, error)

	// CreateTask creates a task in the given list and returns it with
	// the server-assigned id.
	CreateTask(ctx context.Context, listID string, def TaskDefinition) (Task, error)

	// SetCustomField sets one custom field value on a task.
	// The value must already be in wire shape (option ids resolved).
	SetCustomField(ctx context.Context, taskID, fieldID string, value any) error

	// AddDropdownOption adds an option to a dropdown or labels field.
	AddDropdownOption(ctx context.Context, fieldID, name string) (Option, error)

	// LinkTasks links taskID to linksToID as related tasks.
	LinkTasks(ctx context.Context, taskID, linksToID string) error

	// ListTasks returns every task in a list, following pagination
	// until exhausted.
	ListTasks(ctx context.Context, listID string) ([]Task, error)

	// DeleteTask deletes a task by id.
	DeleteTask(ctx context.Context, taskID string) error
}
