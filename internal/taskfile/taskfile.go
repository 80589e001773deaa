// Package taskfile loads task definitions from JSON files.
package taskfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"taskpile/internal/service"
)

// Load reads a JSON array of task definitions from a file.
func Load(path string) ([]service.TaskDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open task file: %w", err)
	}
	defer f.Close()

	defs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("invalid task file %s: %w", path, err)
	}
	return defs, nil
}

// Parse decodes a JSON array of task definitions. Per-definition validation
// happens later, at the item boundary, so one bad entry cannot block the
// rest of the batch; only malformed JSON is fatal here.
func Parse(r io.Reader) ([]service.TaskDefinition, error) {
	var defs []service.TaskDefinition
	dec := json.NewDecoder(r)
	if err := dec.Decode(&defs); err != nil {
		return nil, fmt.Errorf("expected a JSON array of tasks: %w", err)
	}
	return defs, nil
}
