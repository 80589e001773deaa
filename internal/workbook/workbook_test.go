package workbook_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"taskpile/internal/service"
	"taskpile/internal/workbook"
)

func TestExpandLinkedStories(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "US-Login-1", []string{"US-Login-1"}},
		{"comma separated", "US-Login-1, US-Login-2", []string{"US-Login-1", "US-Login-2"}},
		{"range", "US-VR-15 -> US-VR-17", []string{"US-VR-15", "US-VR-16", "US-VR-17"}},
		{"range with to", "US-VR-1 to US-VR-2", []string{"US-VR-1", "US-VR-2"}},
		{"range with arrow glyph", "US-VR-1 → US-VR-2", []string{"US-VR-1", "US-VR-2"}},
		{"mixed", "US-Login-1, US-VR-1 -> US-VR-3, US-Auth-5",
			[]string{"US-Login-1", "US-VR-1", "US-VR-2", "US-VR-3", "US-Auth-5"}},
		{"mismatched range prefixes kept raw", "US-VR-1 -> US-AU-3", []string{"US-VR-1 -> US-AU-3"}},
		{"junk dropped", "hello, world", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, workbook.ExpandLinkedStories(tt.in))
		})
	}
}

func buildWorkbook(t *testing.T) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Epics"))

	require.NoError(t, f.SetSheetRow("Epics", "A1",
		&[]any{"Epic ID", "Epic Title", "Epic Description", "Linked User Stories"}))
	require.NoError(t, f.SetSheetRow("Epics", "A2",
		&[]any{"EPIC-Login-1", "Entry Points", "Reach the app", "US-Login-1, US-VR-1 -> US-VR-2"}))

	_, err := f.NewSheet("Login")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Login", "A1",
		&[]any{"User Story ID", "User Story Title", "User Story", "Acceptance Criteria"}))
	require.NoError(t, f.SetSheetRow("Login", "A2",
		&[]any{"US-Login-1", "Landing Page", "As a user I want a landing page", "Page loads"}))
	require.NoError(t, f.SetSheetRow("Login", "A3",
		&[]any{"US-Login-2", "Sign In", "As a user I want to sign in", ""}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestSheetNames(t *testing.T) {
	names, err := workbook.SheetNames(buildWorkbook(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Epics", "Login"}, names)
}

func TestParse(t *testing.T) {
	defs, stats, err := workbook.Parse(buildWorkbook(t), []string{"Login"})
	require.NoError(t, err)

	require.Len(t, defs, 2)
	assert.Equal(t, 2, stats.TotalTasks)
	assert.Equal(t, 1, stats.WithEpic)
	assert.Equal(t, 1, stats.TotalEpics)
	assert.Equal(t, 1, stats.SheetsProcessed)

	first := defs[0]
	assert.Equal(t, "US-Login-1: Landing Page", first.Name)
	assert.Contains(t, first.Description, "As a user I want a landing page")
	assert.Contains(t, first.Description, "## Acceptance Criteria\nPage loads")
	assert.Contains(t, first.Description, "EPIC-Login-1: Entry Points")
	assert.Equal(t, "EPIC-Login-1: Entry Points", first.Fields[workbook.EpicFieldName])

	// US-Login-2 is not linked to any epic
	second := defs[1]
	assert.Equal(t, "US-Login-2: Sign In", second.Name)
	assert.Nil(t, second.Fields)
	assert.NotContains(t, second.Description, "Epic Info")
}

func TestParse_UnknownSheet(t *testing.T) {
	_, _, err := workbook.Parse(buildWorkbook(t), []string{"Nope"})
	assert.Error(t, err)
}

func TestParse_MissingColumns(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Wrong", "Columns"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, _, err = workbook.Parse(bytes.NewReader(buf.Bytes()), []string{"Sheet1"})
	assert.ErrorContains(t, err, "missing required columns")
}

func TestChainEpicLinks(t *testing.T) {
	epicA := map[string]any{workbook.EpicFieldName: "EPIC-1: Login"}
	epicB := map[string]any{workbook.EpicFieldName: "EPIC-2: Search"}
	defs := []service.TaskDefinition{
		{Name: "US-L-1: First", Fields: epicA},
		{Name: "US-S-1: Other epic", Fields: epicB},
		{Name: "US-L-2: Second", Fields: epicA},
		{Name: "US-X-1: No epic"},
		{Name: "US-L-3: Third", Fields: epicA},
	}

	workbook.ChainEpicLinks(defs)

	assert.Nil(t, defs[0].Links, "first story of an epic has nothing to link to")
	assert.Nil(t, defs[1].Links)
	assert.Equal(t, []string{"US-L-1: First"}, defs[2].Links)
	assert.Nil(t, defs[3].Links, "stories without an epic stay unlinked")
	assert.Equal(t, []string{"US-L-2: Second"}, defs[4].Links,
		"chaining skips stories of other epics in between")
}

func TestChainEpicLinks_AfterParse(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Epics"))
	require.NoError(t, f.SetSheetRow("Epics", "A1",
		&[]any{"Epic Title", "Linked User Stories"}))
	require.NoError(t, f.SetSheetRow("Epics", "A2",
		&[]any{"Checkout", "US-CO-1 -> US-CO-2"}))

	_, err := f.NewSheet("Checkout")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Checkout", "A1",
		&[]any{"User Story ID", "User Story Title"}))
	require.NoError(t, f.SetSheetRow("Checkout", "A2", &[]any{"US-CO-1", "Cart"}))
	require.NoError(t, f.SetSheetRow("Checkout", "A3", &[]any{"US-CO-2", "Payment"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	defs, _, err := workbook.Parse(bytes.NewReader(buf.Bytes()), []string{"Checkout"})
	require.NoError(t, err)
	require.Len(t, defs, 2)

	workbook.ChainEpicLinks(defs)

	assert.Nil(t, defs[0].Links)
	assert.Equal(t, []string{"US-CO-1: Cart"}, defs[1].Links)
}

func TestEpicLabels(t *testing.T) {
	defs, _, err := workbook.Parse(buildWorkbook(t), []string{"Login"})
	require.NoError(t, err)

	assert.Equal(t, []string{"EPIC-Login-1: Entry Points"}, workbook.EpicLabels(defs))
}
