// Package bulk implements the bulk create and bulk delete drivers.
//
// Both drivers are best-effort with no rollback: a per-item failure is
// recorded and never aborts sibling items, and a later failure never undoes
// an earlier success.
package bulk

import "taskpile/internal/service"

// Failure records one failed item with enough detail to retry it manually.
type Failure struct {
	// Name is the input task name (create) or remote task name (delete).
	Name string

	// TaskID is set when the task exists remotely: always for delete
	// failures, and for create runs where the task was created but a
	// field application or link failed.
	TaskID string

	Err error
}

// Result accumulates the outcome of one driver run.
// Created and Deleted preserve processing order; Failed preserves input order.
type Result struct {
	Created []service.Task
	Deleted []service.Task
	Failed  []Failure
}

// OK reports whether the run finished without any failure.
func (r Result) OK() bool { return len(r.Failed) == 0 }

// CreatedIDs returns the ids of created tasks in creation order.
func (r Result) CreatedIDs() []string {
	ids := make([]string, len(r.Created))
	for i, t := range r.Created {
		ids[i] = t.ID
	}
	return ids
}

// Progress receives one line per processed item. Drivers call it as they go
// so long batches show movement; a nil Progress is ignored.
type Progress func(ok bool, msg string)

func (p Progress) report(ok bool, msg string) {
	if p != nil {
		p(ok, msg)
	}
}
