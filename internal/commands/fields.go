package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"taskpile/internal/config"
	"taskpile/internal/exitcode"
	"taskpile/internal/fields"
	"taskpile/internal/output"
	"taskpile/internal/service"
	"taskpile/internal/workbook"
)

func init() {
	Register(&FieldsCmd{})
}

// FieldsCmd implements the fields command: print a list's custom field
// schema and check it against the configured requirements.
type FieldsCmd struct {
	xlsx string
}

// SetXLSX sets a workbook whose epic values are checked against the Epic
// dropdown (for testing).
func (c *FieldsCmd) SetXLSX(path string) { c.xlsx = path }

func (c *FieldsCmd) Name() string      { return "fields" }
func (c *FieldsCmd) Aliases() []string { return nil }
func (c *FieldsCmd) Synopsis() string  { return "Inspect a list's custom fields" }
func (c *FieldsCmd) Usage() string {
	return "taskpile fields [common flags] [--xlsx <file>] <list-id>"
}
func (c *FieldsCmd) NeedsToken() bool { return true }

func (c *FieldsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.xlsx, "xlsx", "", "")
}

func (c *FieldsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: list id required")
		return exitcode.UserError
	}
	listID := args[0]

	schema, err := svc.ListCustomFields(ctx, listID)
	if err != nil {
		return reportFatal(errOut, err)
	}

	for _, f := range schema {
		output.FieldLine(out, f)
	}

	ok := true
	if len(cfg.RequiredFields) > 0 {
		fmt.Fprintln(out, "\nSetup status:")
		for _, r := range fields.Check(schema, cfg.RequiredFields) {
			output.CheckLine(out, r)
			if !r.Ready() {
				ok = false
			}
		}
	}

	if c.xlsx != "" {
		missing, code := c.missingEpics(schema, errOut)
		if code != exitcode.Success {
			return code
		}
		if len(missing) > 0 {
			ok = false
			fmt.Fprintln(out, "\nEpic options missing from the list:")
			for _, label := range missing {
				fmt.Fprintf(out, "  - %s\n", label)
			}
		} else {
			fmt.Fprintln(out, "\nAll workbook epic values exist on the list.")
		}
	}

	if !ok {
		return exitcode.PartialFailure
	}
	return exitcode.Success
}

// missingEpics parses the workbook and returns epic labels with no matching
// option on the list's Epic dropdown.
func (c *FieldsCmd) missingEpics(schema []service.CustomField, errOut io.Writer) ([]string, int) {
	f, err := os.Open(c.xlsx)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to open workbook: %v\n", err)
		return nil, exitcode.UserError
	}
	defer f.Close()

	names, err := workbook.SheetNames(f)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.UserError
	}
	var sheets []string
	for _, name := range names {
		if name != workbook.EpicsSheet {
			sheets = append(sheets, name)
		}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.UserError
	}

	defs, _, err := workbook.Parse(f, sheets)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.UserError
	}

	var epicField *service.CustomField
	for i := range schema {
		if schema[i].Name == workbook.EpicFieldName && schema[i].Type == service.FieldTypeDropDown {
			epicField = &schema[i]
			break
		}
	}

	var missing []string
	for _, label := range workbook.EpicLabels(defs) {
		if epicField == nil {
			missing = append(missing, label)
			continue
		}
		if _, ok := epicField.Option(label); !ok {
			missing = append(missing, label)
		}
	}
	return missing, exitcode.Success
}
