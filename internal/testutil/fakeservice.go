// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskpile/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// FieldSet records one SetCustomField call.
type FieldSet struct {
	FieldID string
	Value   any
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu      sync.RWMutex
	fields  map[string][]service.CustomField // listID -> schema
	tasks   map[string][]service.Task        // listID -> tasks
	sets    map[string][]FieldSet            // taskID -> applied values
	links   map[string][]string              // taskID -> linked ids
	nextID  int
	deleted []string

	// Error injection for testing
	ListCustomFieldsErr error
	CreateTaskErr       map[string]error // keyed by definition name
	SetCustomFieldErr   map[string]error // keyed by field id
	AddOptionErr        error
	LinkTasksErr        error
	ListTasksErr        error
	DeleteTaskErr       map[string]error // keyed by task id
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		fields:            make(map[string][]service.CustomField),
		tasks:             make(map[string][]service.Task),
		sets:              make(map[string][]FieldSet),
		links:             make(map[string][]string),
		CreateTaskErr:     make(map[string]error),
		SetCustomFieldErr: make(map[string]error),
		DeleteTaskErr:     make(map[string]error),
	}
}

// AddField adds a custom field to a list's schema.
func (f *FakeService) AddField(listID string, field service.CustomField) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields[listID] = append(f.fields[listID], field)
}

// AddTask adds an existing task to a list.
func (f *FakeService) AddTask(listID, taskID, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[listID] = append(f.tasks[listID], service.Task{ID: taskID, Name: name})
}

// FieldValues returns the SetCustomField calls recorded for a task.
func (f *FakeService) FieldValues(taskID string) []FieldSet {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]FieldSet(nil), f.sets[taskID]...)
}

// Links returns the task ids a task was linked to.
func (f *FakeService) Links(taskID string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.links[taskID]...)
}

// Deleted returns the ids passed to DeleteTask that succeeded, in call order.
func (f *FakeService) Deleted() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.deleted...)
}

// ListCustomFields implements service.Service.
func (f *FakeService) ListCustomFields(ctx context.Context, listID string) ([]service.CustomField, error) {
	if f.ListCustomFieldsErr != nil {
		return nil, f.ListCustomFieldsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.CustomField(nil), f.fields[listID]...), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, listID string, def service.TaskDefinition) (service.Task, error) {
	if err := f.CreateTaskErr[def.Name]; err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	task := service.Task{ID: fmt.Sprintf("task-%d", f.nextID), Name: def.Name}
	f.tasks[listID] = append(f.tasks[listID], task)
	return task, nil
}

// SetCustomField implements service.Service.
func (f *FakeService) SetCustomField(ctx context.Context, taskID, fieldID string, value any) error {
	if err := f.SetCustomFieldErr[fieldID]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets[taskID] = append(f.sets[taskID], FieldSet{FieldID: fieldID, Value: value})
	return nil
}

// AddDropdownOption implements service.Service.
func (f *FakeService) AddDropdownOption(ctx context.Context, fieldID, name string) (service.Option, error) {
	if f.AddOptionErr != nil {
		return service.Option{}, f.AddOptionErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	opt := service.Option{ID: "opt-" + name, Name: name}
	for listID, schema := range f.fields {
		for i, field := range schema {
			if field.ID == fieldID {
				f.fields[listID][i].Options = append(field.Options, opt)
			}
		}
	}
	return opt, nil
}

// LinkTasks implements service.Service.
func (f *FakeService) LinkTasks(ctx context.Context, taskID, linksToID string) error {
	if f.LinkTasksErr != nil {
		return f.LinkTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links[taskID] = append(f.links[taskID], linksToID)
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, listID string) ([]service.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task(nil), f.tasks[listID]...), nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, taskID string) error {
	if err := f.DeleteTaskErr[taskID]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for listID, tasks := range f.tasks {
		for i, t := range tasks {
			if t.ID == taskID {
				f.tasks[listID] = append(tasks[:i], tasks[i+1:]...)
				f.deleted = append(f.deleted, taskID)
				return nil
			}
		}
	}
	return ErrNotFound
}
