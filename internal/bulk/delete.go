package bulk

import (
	"context"
	"errors"
	"fmt"

	"taskpile/internal/service"
)

// Confirmation is the literal text a caller must supply before a bulk
// delete issues any network call.
const Confirmation = "DELETE"

// ErrConfirmation is returned when the confirmation text does not match
// exactly. No network call has been made when it is returned.
var ErrConfirmation = errors.New("confirmation text mismatch")

// Deleter runs a bulk delete batch against one list.
type Deleter struct {
	Svc      service.Service
	Progress Progress
}

// Run deletes every task in the list. The confirmation check and the task
// listing happen before any delete; the full task set is accumulated first
// so a paging failure never leaves a half-fetched batch.
func (d *Deleter) Run(ctx context.Context, listID, confirmation string) (Result, error) {
	if confirmation != Confirmation {
		return Result{}, ErrConfirmation
	}

	tasks, err := d.Svc.ListTasks(ctx, listID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list tasks in %s: %w", listID, err)
	}

	var result Result
	for _, task := range tasks {
		if err := d.Svc.DeleteTask(ctx, task.ID); err != nil {
			result.Failed = append(result.Failed, Failure{Name: task.Name, TaskID: task.ID, Err: err})
			d.Progress.report(false, fmt.Sprintf("Failed to delete: %s - %v", task.Name, err))
			continue
		}
		result.Deleted = append(result.Deleted, task)
		d.Progress.report(true, fmt.Sprintf("Deleted: %s", task.Name))
	}
	return result, nil
}
