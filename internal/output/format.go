// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"taskpile/internal/bulk"
	"taskpile/internal/fields"
	"taskpile/internal/service"
)

const (
	// SummarySeparator is the separator line around the final summary.
	SummarySeparator = "------------------------------------------------------------"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	warnMark = color.New(color.FgYellow).Sprint("!")
)

// Item prints one per-item progress line with a colorized marker.
func Item(w io.Writer, ok bool, msg string) {
	mark := okMark
	if !ok {
		mark = failMark
	}
	fmt.Fprintf(w, "%s %s\n", mark, msg)
}

// CreateSummary prints the final block for a bulk create run.
func CreateSummary(w io.Writer, result bulk.Result) {
	fmt.Fprintln(w, SummarySeparator)
	fmt.Fprintf(w, "Tasks created: %d\n", len(result.Created))
	fmt.Fprintf(w, "Failures: %d\n", len(result.Failed))
	failures(w, result.Failed)
	fmt.Fprintln(w, SummarySeparator)
}

// DeleteSummary prints the final block for a bulk delete run.
func DeleteSummary(w io.Writer, result bulk.Result) {
	fmt.Fprintln(w, SummarySeparator)
	fmt.Fprintf(w, "Tasks deleted: %d\n", len(result.Deleted))
	fmt.Fprintf(w, "Failures: %d\n", len(result.Failed))
	failures(w, result.Failed)
	fmt.Fprintln(w, SummarySeparator)
}

// failures lists each failure with its original input so the caller can
// retry failed items manually.
func failures(w io.Writer, failed []bulk.Failure) {
	for _, f := range failed {
		name := f.Name
		if name == "" {
			name = "(unnamed)"
		}
		if f.TaskID != "" {
			fmt.Fprintf(w, "  %s %s [%s]: %v\n", failMark, name, f.TaskID, f.Err)
			continue
		}
		fmt.Fprintf(w, "  %s %s: %v\n", failMark, name, f.Err)
	}
}

// FieldLine prints one custom field with its options.
func FieldLine(w io.Writer, f service.CustomField) {
	fmt.Fprintf(w, "%s (%s)\n", f.Name, f.Type)
	for _, opt := range f.Options {
		fmt.Fprintf(w, "    - %s\n", opt.Name)
	}
}

// CheckLine prints one required-field readiness line.
func CheckLine(w io.Writer, r fields.CheckResult) {
	switch {
	case r.Ready():
		fmt.Fprintf(w, "%s %s - ready\n", okMark, r.Name)
	case r.Exists:
		fmt.Fprintf(w, "%s %s - missing options:\n", warnMark, r.Name)
		for _, opt := range r.MissingOptions {
			fmt.Fprintf(w, "    - %s\n", opt)
		}
	default:
		fmt.Fprintf(w, "%s %s - not found\n", failMark, r.Name)
		for _, step := range r.Instructions {
			fmt.Fprintf(w, "    %s\n", step)
		}
	}
}
