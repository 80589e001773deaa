package bulk

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"taskpile/internal/fields"
	"taskpile/internal/service"
)

// Creator runs a bulk create batch against one list.
type Creator struct {
	Svc service.Service

	// Defaults are the configured field values applied to every task.
	Defaults map[string]any

	// Overrides are caller-supplied field values for the whole run.
	// They win over Defaults on name collision; per-definition values
	// win over both.
	Overrides map[string]any

	// CreateMissingOptions makes the driver add a dropdown option when a
	// value has no match, instead of recording an unresolved-option failure.
	CreateMissingOptions bool

	Progress Progress
}

// fieldValue is one entry of the effective field map. Field names are merged
// case-insensitively; name keeps the last writer's spelling for messages.
type fieldValue struct {
	name  string
	value any
}

// Run creates every definition in input order. The initial schema fetch is
// the only fatal error; everything after that is recorded per item.
func (c *Creator) Run(ctx context.Context, listID string, defs []service.TaskDefinition) (Result, error) {
	schema, err := c.Svc.ListCustomFields(ctx, listID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch custom fields for list %s: %w", listID, err)
	}

	specByName := make(map[string]service.CustomField, len(schema))
	for _, f := range schema {
		specByName[strings.ToLower(f.Name)] = f
	}

	var result Result
	createdByName := make(map[string]string) // definition name -> task id

	for _, def := range defs {
		if err := def.Validate(); err != nil {
			result.Failed = append(result.Failed, Failure{Name: def.Name, Err: err})
			c.Progress.report(false, fmt.Sprintf("Skipped: %s", describe(def.Name, err)))
			continue
		}

		task, err := c.Svc.CreateTask(ctx, listID, def)
		if err != nil {
			result.Failed = append(result.Failed, Failure{Name: def.Name, Err: err})
			c.Progress.report(false, fmt.Sprintf("Failed: %s - %v", def.Name, err))
			continue
		}
		result.Created = append(result.Created, task)
		createdByName[def.Name] = task.ID
		c.Progress.report(true, fmt.Sprintf("Created: %s", def.Name))

		for _, fv := range effectiveFields(c.Defaults, c.Overrides, def.Fields) {
			spec, ok := specByName[strings.ToLower(fv.name)]
			if !ok {
				// Unmatched names never block creation.
				continue
			}
			if err := c.applyField(ctx, task.ID, spec, fv.value); err != nil {
				result.Failed = append(result.Failed, Failure{
					Name:   def.Name,
					TaskID: task.ID,
					Err:    fmt.Errorf("field %q: %w", spec.Name, err),
				})
				c.Progress.report(false, fmt.Sprintf("Field failed: %s (%s) - %v", def.Name, spec.Name, err))
			}
		}

		for _, linkName := range def.Links {
			if err := c.link(ctx, task.ID, linkName, createdByName); err != nil {
				result.Failed = append(result.Failed, Failure{
					Name:   def.Name,
					TaskID: task.ID,
					Err:    fmt.Errorf("link %q: %w", linkName, err),
				})
				c.Progress.report(false, fmt.Sprintf("Link failed: %s -> %s - %v", def.Name, linkName, err))
			}
		}
	}

	return result, nil
}

// applyField resolves and sets one field, optionally creating missing
// dropdown options first. A labels value can miss several options, so
// resolution retries after each add until it succeeds or stops making
// progress.
func (c *Creator) applyField(ctx context.Context, taskID string, spec service.CustomField, raw any) error {
	added := make(map[string]bool)
	for {
		err := fields.Apply(ctx, c.Svc, taskID, spec, raw)

		var unresolved *fields.UnresolvedOptionError
		if err == nil || !c.CreateMissingOptions || !errors.As(err, &unresolved) {
			return err
		}
		if added[unresolved.Value] {
			return err
		}

		opt, addErr := c.Svc.AddDropdownOption(ctx, spec.ID, unresolved.Value)
		if addErr != nil {
			return fmt.Errorf("failed to add option %q: %w", unresolved.Value, addErr)
		}
		added[unresolved.Value] = true
		spec.Options = append(spec.Options, opt)
	}
}

func (c *Creator) link(ctx context.Context, taskID, linkName string, createdByName map[string]string) error {
	target, ok := createdByName[linkName]
	if !ok {
		return errors.New("no task with that name created earlier in this batch")
	}
	return c.Svc.LinkTasks(ctx, taskID, target)
}

// effectiveFields merges the field maps, later maps winning on
// case-insensitive name collision, and returns entries sorted by name so
// application order is deterministic.
func effectiveFields(maps ...map[string]any) []fieldValue {
	merged := make(map[string]fieldValue)
	for _, m := range maps {
		for name, value := range m {
			merged[strings.ToLower(name)] = fieldValue{name: name, value: value}
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]fieldValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, merged[k])
	}
	return out
}

func describe(name string, err error) string {
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("(unnamed) - %v", err)
	}
	return fmt.Sprintf("%s - %v", name, err)
}
