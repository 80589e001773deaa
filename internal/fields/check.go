package fields

import (
	"taskpile/internal/config"
	"taskpile/internal/service"
)

// CheckResult reports how one required field fares against the list schema.
type CheckResult struct {
	Name string

	// Exists is true when a field with this name and the expected type
	// is present on the list.
	Exists bool

	// MissingOptions lists required option names absent from the field.
	// Only populated for option-typed fields that exist.
	MissingOptions []string

	// Instructions are the configured setup steps for a missing field.
	Instructions []string
}

// Ready reports whether the field needs no setup work.
func (r CheckResult) Ready() bool {
	return r.Exists && len(r.MissingOptions) == 0
}

// Check compares a list's field schema against the configured requirements.
// Results come back in requirement order.
func Check(schema []service.CustomField, reqs []config.RequiredField) []CheckResult {
	byName := make(map[string]service.CustomField, len(schema))
	for _, f := range schema {
		byName[f.Name] = f
	}

	results := make([]CheckResult, 0, len(reqs))
	for _, req := range reqs {
		result := CheckResult{Name: req.Name, Instructions: req.Instructions}

		actual, ok := byName[req.Name]
		if !ok || actual.Type != req.Type {
			results = append(results, result)
			continue
		}

		result.Exists = true
		for _, want := range req.RequiredOptions {
			if _, found := actual.Option(want); !found {
				result.MissingOptions = append(result.MissingOptions, want)
			}
		}
		results = append(results, result)
	}
	return results
}
