// Package workbook parses user-story Excel workbooks into task definitions.
//
// A workbook holds an optional "Epics" sheet mapping epics to their linked
// user stories, plus one or more user-story sheets. Each story row becomes
// one task definition; when its story id appears in the epic mapping, the
// task's Epic field is set to the epic label.
package workbook

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"taskpile/internal/service"
)

const (
	// EpicsSheet is the sheet name holding the epic mapping.
	EpicsSheet = "Epics"

	// EpicFieldName is the custom field name set from the epic mapping.
	EpicFieldName = "Epic"
)

// Epic describes one epic row from the Epics sheet.
type Epic struct {
	ID          string
	Title       string
	Description string
}

// Label is the dropdown value for the epic, e.g. "EPIC-Login-1: Entry Points".
func (e Epic) Label() string {
	if e.ID == "" {
		return e.Title
	}
	return e.ID + ": " + e.Title
}

// Stats summarizes one parse run.
type Stats struct {
	TotalTasks      int
	WithEpic        int
	TotalEpics      int
	SheetsProcessed int
}

// SheetNames returns the workbook's sheet names in workbook order.
func SheetNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// Parse reads the selected user-story sheets into task definitions.
// The Epics sheet, when present, is always parsed first to build the
// story-to-epic mapping.
func Parse(r io.Reader, sheets []string) ([]service.TaskDefinition, Stats, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	epics, err := parseEpicsSheet(f)
	if err != nil {
		return nil, Stats{}, err
	}

	var defs []service.TaskDefinition
	stats := Stats{SheetsProcessed: len(sheets)}

	for _, sheet := range sheets {
		sheetDefs, err := parseStorySheet(f, sheet, epics)
		if err != nil {
			return nil, Stats{}, err
		}
		defs = append(defs, sheetDefs...)
	}

	labels := make(map[string]struct{})
	for _, e := range epics {
		labels[e.Label()] = struct{}{}
	}
	stats.TotalEpics = len(labels)
	stats.TotalTasks = len(defs)
	for _, d := range defs {
		if _, ok := d.Fields[EpicFieldName]; ok {
			stats.WithEpic++
		}
	}
	return defs, stats, nil
}

var (
	storyRangeRe = regexp.MustCompile(`(?i)(US-([A-Za-z]+)-(\d+))\s*(?:->|→|to)\s*(US-([A-Za-z]+)-(\d+))`)
	storyIDRe    = regexp.MustCompile(`(?i)^US-[A-Za-z]+-\d+$`)
)

// ExpandLinkedStories parses a "Linked User Stories" cell into individual
// story ids. Cells hold comma-separated ids and ranges; a range like
// "US-VR-15 -> US-VR-17" expands to each id in the span. Entries that do not
// look like story ids are dropped.
func ExpandLinkedStories(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		m := storyRangeRe.FindStringSubmatch(part)
		if m != nil && strings.EqualFold(m[2], m[5]) {
			start, _ := strconv.Atoi(m[3])
			end, _ := strconv.Atoi(m[6])
			for n := start; n <= end; n++ {
				out = append(out, fmt.Sprintf("US-%s-%d", m[2], n))
			}
			continue
		}
		if m != nil {
			// Mismatched prefixes; keep the raw entry.
			out = append(out, part)
			continue
		}
		if storyIDRe.MatchString(part) {
			out = append(out, part)
		}
	}
	return out
}

// parseEpicsSheet builds the story-id-to-epic mapping. Story ids are keyed
// upper-cased so sheet lookups are case-insensitive.
func parseEpicsSheet(f *excelize.File) (map[string]Epic, error) {
	rows, err := f.GetRows(EpicsSheet)
	if err != nil || len(rows) == 0 {
		// No Epics sheet; every task simply goes without an epic.
		return map[string]Epic{}, nil
	}

	headers := headerIndex(rows[0])
	idCol, hasID := headers["epic id"]
	titleCol, hasTitle := headers["epic title"]
	descCol, hasDesc := headers["epic description"]
	linkedCol, hasLinked := headers["linked user stories"]

	if !hasTitle || !hasLinked {
		return nil, fmt.Errorf("sheet %q missing required columns 'Epic Title' and 'Linked User Stories' (found: %s)",
			EpicsSheet, strings.Join(rows[0], ", "))
	}

	mapping := make(map[string]Epic)
	for _, row := range rows[1:] {
		epic := Epic{Title: cell(row, titleCol)}
		if hasDesc {
			epic.Description = cell(row, descCol)
		}
		if hasID {
			epic.ID = cell(row, idCol)
		}
		if epic.Title == "" {
			continue
		}

		for _, storyID := range ExpandLinkedStories(cell(row, linkedCol)) {
			mapping[strings.ToUpper(storyID)] = epic
		}
	}
	return mapping, nil
}

// parseStorySheet reads one user-story sheet into task definitions.
func parseStorySheet(f *excelize.File, sheet string, epics map[string]Epic) ([]service.TaskDefinition, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := headerIndex(rows[0])
	idCol, hasID := firstHeader(headers, "user story id", "us id", "id")
	titleCol, hasTitle := firstHeader(headers, "user story title", "title")
	storyCol, hasStory := firstHeader(headers, "user story", "story", "description")
	acCol, hasAC := firstHeader(headers, "acceptance criteria", "ac")

	if !hasID || !hasTitle {
		return nil, fmt.Errorf("sheet %q missing required columns 'User Story ID' and 'User Story Title' (found: %s)",
			sheet, strings.Join(rows[0], ", "))
	}

	var defs []service.TaskDefinition
	for _, row := range rows[1:] {
		storyID := cell(row, idCol)
		title := cell(row, titleCol)
		if storyID == "" || title == "" {
			continue
		}

		var desc strings.Builder
		if hasStory {
			desc.WriteString(cell(row, storyCol))
		}
		if hasAC {
			if ac := cell(row, acCol); ac != "" {
				desc.WriteString("\n\n## Acceptance Criteria\n")
				desc.WriteString(ac)
			}
		}

		def := service.TaskDefinition{Name: storyID + ": " + title}
		if epic, ok := epics[strings.ToUpper(storyID)]; ok {
			desc.WriteString("\n\n---\n## Epic Info\n**")
			desc.WriteString(epic.Label())
			desc.WriteString("**")
			if epic.Description != "" {
				desc.WriteString("\n")
				desc.WriteString(epic.Description)
			}
			def.Fields = map[string]any{EpicFieldName: epic.Label()}
		}
		def.Description = strings.TrimPrefix(desc.String(), "\n\n")
		defs = append(defs, def)
	}
	return defs, nil
}

// ChainEpicLinks links each story to the previous story of the same epic,
// preserving the workbook's reading order inside every epic. Stories without
// an epic are left alone. Links name tasks earlier in the batch; the create
// driver resolves them to task ids after creation.
func ChainEpicLinks(defs []service.TaskDefinition) {
	prev := make(map[string]string) // epic label -> previous task name
	for i := range defs {
		raw, ok := defs[i].Fields[EpicFieldName]
		if !ok {
			continue
		}
		label := fmt.Sprint(raw)
		if name, ok := prev[label]; ok {
			defs[i].Links = append(defs[i].Links, name)
		}
		prev[label] = defs[i].Name
	}
}

// EpicLabels returns the distinct epic labels referenced by the definitions,
// in first-seen order. The fields command uses this to verify the Epic
// dropdown covers a workbook before a run.
func EpicLabels(defs []service.TaskDefinition) []string {
	var labels []string
	seen := make(map[string]struct{})
	for _, d := range defs {
		raw, ok := d.Fields[EpicFieldName]
		if !ok {
			continue
		}
		label := fmt.Sprint(raw)
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			idx[h] = i
		}
	}
	return idx
}

func firstHeader(headers map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := headers[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
