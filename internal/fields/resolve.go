// Package fields resolves human-supplied custom field values into the
// API's wire shape and applies them to tasks.
package fields

import (
	"context"
	"fmt"

	"taskpile/internal/service"
)

// UnresolvedOptionError is returned when a dropdown or labels value has no
// matching option on the field. It is fatal to that one field application
// only, never to the task or the batch.
type UnresolvedOptionError struct {
	Field string
	Value string
}

func (e *UnresolvedOptionError) Error() string {
	return fmt.Sprintf("no option named %q on field %q", e.Value, e.Field)
}

// Resolve encodes a raw value for a field into its wire shape.
// For dropdown fields the value is an option name and resolves to the option
// id; for labels fields a name or list of names resolves to a list of option
// ids. Option name matching is exact. All other field types pass the raw
// value through unchanged.
func Resolve(field service.CustomField, raw any) (any, error) {
	switch field.Type {
	case service.FieldTypeDropDown:
		name := fmt.Sprint(raw)
		opt, ok := field.Option(name)
		if !ok {
			return nil, &UnresolvedOptionError{Field: field.Name, Value: name}
		}
		return opt.ID, nil

	case service.FieldTypeLabels:
		var ids []string
		for _, name := range labelNames(raw) {
			opt, ok := field.Option(name)
			if !ok {
				return nil, &UnresolvedOptionError{Field: field.Name, Value: name}
			}
			ids = append(ids, opt.ID)
		}
		return ids, nil

	default:
		return raw, nil
	}
}

// labelNames normalizes a labels value into a list of option names.
// The web form and JSON files may supply a single name or an array.
func labelNames(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			names = append(names, fmt.Sprint(item))
		}
		return names
	default:
		return []string{fmt.Sprint(raw)}
	}
}

// Apply resolves raw and sets the field on the task with one call.
func Apply(ctx context.Context, svc service.Service, taskID string, field service.CustomField, raw any) error {
	value, err := Resolve(field, raw)
	if err != nil {
		return err
	}
	return svc.SetCustomField(ctx, taskID, field.ID, value)
}
