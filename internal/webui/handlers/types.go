// Package handlers implements the web form's JSON API.
package handlers

import "taskpile/internal/bulk"

// APIResponse is the envelope for every JSON API response.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TaskSummary is one created or deleted task in a run response.
type TaskSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FailureSummary is one failed item in a run response.
type FailureSummary struct {
	Name   string `json:"name"`
	TaskID string `json:"task_id,omitempty"`
	Error  string `json:"error"`
}

// RunSummary is the JSON shape of a bulk run result.
type RunSummary struct {
	Created []TaskSummary    `json:"created,omitempty"`
	Deleted []TaskSummary    `json:"deleted,omitempty"`
	Failed  []FailureSummary `json:"failed"`
}

// NewRunSummary converts a driver result for the wire.
func NewRunSummary(result bulk.Result) RunSummary {
	summary := RunSummary{Failed: []FailureSummary{}}
	for _, t := range result.Created {
		summary.Created = append(summary.Created, TaskSummary{ID: t.ID, Name: t.Name})
	}
	for _, t := range result.Deleted {
		summary.Deleted = append(summary.Deleted, TaskSummary{ID: t.ID, Name: t.Name})
	}
	for _, f := range result.Failed {
		summary.Failed = append(summary.Failed, FailureSummary{
			Name:   f.Name,
			TaskID: f.TaskID,
			Error:  f.Err.Error(),
		})
	}
	return summary
}
