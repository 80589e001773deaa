package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taskpile/internal/bulk"
	"taskpile/internal/config"
	"taskpile/internal/exitcode"
	"taskpile/internal/output"
	"taskpile/internal/service"
	"taskpile/internal/taskfile"
	"taskpile/internal/workbook"
)

func init() {
	Register(&CreateCmd{fields: fieldFlags{}})
}

// CreateCmd implements the create command: bulk task creation in a list
// from a JSON file or an Excel workbook.
type CreateCmd struct {
	xlsx          string
	sheets        string
	fields        fieldFlags
	createOptions bool
	noLinkStories bool
}

// SetXLSX sets the workbook path (for testing).
func (c *CreateCmd) SetXLSX(path string) { c.xlsx = path }

// SetSheets sets the workbook sheet selection (for testing).
func (c *CreateCmd) SetSheets(sheets string) { c.sheets = sheets }

// SetField adds a field override (for testing).
func (c *CreateCmd) SetField(name string, value any) {
	if c.fields == nil {
		c.fields = fieldFlags{}
	}
	c.fields[name] = value
}

// SetCreateOptions enables dropdown option auto-creation (for testing).
func (c *CreateCmd) SetCreateOptions(v bool) { c.createOptions = v }

// SetNoLinkStories disables same-epic story linking (for testing).
func (c *CreateCmd) SetNoLinkStories(v bool) { c.noLinkStories = v }

func (c *CreateCmd) Name() string      { return "create" }
func (c *CreateCmd) Aliases() []string { return []string{"bulkcreatetasks"} }
func (c *CreateCmd) Synopsis() string  { return "Bulk create tasks in a list" }
func (c *CreateCmd) Usage() string {
	return "taskpile create [common flags] [--field <name>=<value>]... [--create-options] <list-id> <json-file>\n" +
		"  taskpile create [common flags] --xlsx <file> [--sheets <a,b>] [--no-link-stories] <list-id>"
}
func (c *CreateCmd) NeedsToken() bool { return true }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) {
	if c.fields == nil {
		c.fields = fieldFlags{}
	}
	fs.StringVar(&c.xlsx, "xlsx", "", "")
	fs.StringVar(&c.sheets, "sheets", "", "")
	fs.Var(c.fields, "field", "")
	fs.BoolVar(&c.createOptions, "create-options", false, "")
	fs.BoolVar(&c.noLinkStories, "no-link-stories", false, "")
}

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: list id required")
		return exitcode.UserError
	}
	listID := args[0]

	defs, code := c.loadDefinitions(args[1:], out, errOut)
	if code != exitcode.Success {
		return code
	}
	if len(defs) == 0 {
		fmt.Fprintln(errOut, "error: no tasks to create")
		return exitcode.UserError
	}

	creator := &bulk.Creator{
		Svc:                  svc,
		Defaults:             cfg.DefaultFields,
		Overrides:            c.fields,
		CreateMissingOptions: c.createOptions,
	}
	if !cfg.Quiet {
		creator.Progress = func(ok bool, msg string) { output.Item(out, ok, msg) }
	}

	result, err := creator.Run(ctx, listID, defs)
	if err != nil {
		return reportFatal(errOut, err)
	}

	if !cfg.Quiet {
		output.CreateSummary(out, result)
	}
	if !result.OK() {
		return exitcode.PartialFailure
	}
	return exitcode.Success
}

// loadDefinitions reads the batch from the JSON file argument or, with
// --xlsx, from the workbook.
func (c *CreateCmd) loadDefinitions(args []string, out, errOut io.Writer) ([]service.TaskDefinition, int) {
	if c.xlsx == "" {
		if len(args) == 0 {
			fmt.Fprintln(errOut, "error: json file required (or use --xlsx)")
			return nil, exitcode.UserError
		}
		defs, err := taskfile.Load(args[0])
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return nil, exitcode.UserError
		}
		return defs, exitcode.Success
	}

	if len(args) > 0 {
		fmt.Fprintln(errOut, "error: cannot use both --xlsx and a json file")
		return nil, exitcode.UserError
	}

	f, err := os.Open(c.xlsx)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to open workbook: %v\n", err)
		return nil, exitcode.UserError
	}
	defer f.Close()

	sheets := splitSheets(c.sheets)
	if len(sheets) == 0 {
		names, err := workbook.SheetNames(f)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return nil, exitcode.UserError
		}
		for _, name := range names {
			if name != workbook.EpicsSheet {
				sheets = append(sheets, name)
			}
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return nil, exitcode.UserError
		}
	}

	defs, stats, err := workbook.Parse(f, sheets)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.UserError
	}
	if !c.noLinkStories {
		workbook.ChainEpicLinks(defs)
	}
	fmt.Fprintf(out, "Parsed %d tasks from %d sheet(s), %d with an epic\n",
		stats.TotalTasks, stats.SheetsProcessed, stats.WithEpic)
	return defs, exitcode.Success
}

func splitSheets(s string) []string {
	var sheets []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			sheets = append(sheets, part)
		}
	}
	return sheets
}

// reportFatal maps a fatal driver error to an exit code.
func reportFatal(errOut io.Writer, err error) int {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) && apiErr.IsAuth() {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// fieldFlags collects repeated --field <name>=<value> overrides.
type fieldFlags map[string]any

func (f fieldFlags) String() string {
	return fmt.Sprintf("%d field(s)", len(f))
}

func (f fieldFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected <name>=<value>, got %q", s)
	}
	f[name] = value
	return nil
}
