package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"

	"taskpile/internal/bulk"
	"taskpile/internal/config"
	"taskpile/internal/exitcode"
	"taskpile/internal/output"
	"taskpile/internal/service"
)

func init() {
	Register(&DeleteCmd{})
}

// DeleteCmd implements the delete command: delete every task in a list.
type DeleteCmd struct {
	confirm    string
	confirmSet bool
}

// SetConfirm supplies the confirmation text non-interactively (for testing
// and scripting).
func (c *DeleteCmd) SetConfirm(text string) {
	c.confirm = text
	c.confirmSet = true
}

func (c *DeleteCmd) Name() string      { return "delete" }
func (c *DeleteCmd) Aliases() []string { return []string{"bulkdeletetasks"} }
func (c *DeleteCmd) Synopsis() string  { return "Delete ALL tasks in a list" }
func (c *DeleteCmd) Usage() string {
	return "taskpile delete [common flags] [--confirm " + bulk.Confirmation + "] <list-id>"
}
func (c *DeleteCmd) NeedsToken() bool { return true }

func (c *DeleteCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Func("confirm", "", func(s string) error {
		c.SetConfirm(s)
		return nil
	})
}

func (c *DeleteCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: list id required")
		return exitcode.UserError
	}
	listID := args[0]

	confirmation := c.confirm
	if !c.confirmSet {
		fmt.Fprintf(out, "WARNING: this deletes ALL tasks in list %s\n", listID)
		prompt := promptui.Prompt{
			Label: fmt.Sprintf("Type %q to confirm", bulk.Confirmation),
		}
		text, err := prompt.Run()
		if err != nil {
			fmt.Fprintln(errOut, "Deletion cancelled.")
			return exitcode.Aborted
		}
		confirmation = text
	}

	deleter := &bulk.Deleter{Svc: svc}
	if !cfg.Quiet {
		deleter.Progress = func(ok bool, msg string) { output.Item(out, ok, msg) }
	}

	result, err := deleter.Run(ctx, listID, confirmation)
	if err != nil {
		if errors.Is(err, bulk.ErrConfirmation) {
			fmt.Fprintln(errOut, "Deletion cancelled.")
			return exitcode.Aborted
		}
		return reportFatal(errOut, err)
	}

	if !cfg.Quiet {
		output.DeleteSummary(out, result)
	}
	if !result.OK() {
		return exitcode.PartialFailure
	}
	return exitcode.Success
}
