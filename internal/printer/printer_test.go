package printer

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"insighthub/internal/models"
	"insighthub/internal/reconcile"
)

func newTestPrinter(format Format) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	color.NoColor = true
	var out, errOut bytes.Buffer
	return &Printer{Out: &out, Err: &errOut, Format: format}, &out, &errOut
}

func sampleRecords() []models.ProjectRecord {
	return reconcile.SampleProjects(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "table": FormatTable, "json": FormatJSON, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		p, _, errOut := newTestPrinter(FormatTable)
		err := p.Error("server unreachable", "Could not reach http://localhost:8080")
		require.Error(t, err)
		assert.Equal(t, "server unreachable", err.Error())
		assert.Contains(t, errOut.String(), "Could not reach")
	})

	t.Run("numbers multiple suggestions", func(t *testing.T) {
		p, _, errOut := newTestPrinter(FormatTable)
		_ = p.Error("bad", "", "first", "second")
		assert.Contains(t, errOut.String(), "Either:")
		assert.Contains(t, errOut.String(), "2. second")
	})
}

func TestProjectsTable(t *testing.T) {
	p, out, _ := newTestPrinter(FormatTable)
	require.NoError(t, p.Projects(sampleRecords()))

	text := out.String()
	assert.Contains(t, text, "Banking App Redesign")
	assert.Contains(t, text, "in-progress")
	assert.Contains(t, text, "local")
	assert.Contains(t, text, "3 projects")

	out.Reset()
	require.NoError(t, p.Projects(nil))
	assert.Equal(t, "No projects found\n", out.String())
}

func TestProjectDetail(t *testing.T) {
	p, out, _ := newTestPrinter(FormatTable)
	rec := sampleRecords()[0]
	rec.Project.Tasks = []models.ClientTask{{ID: "t1", Title: "Wireframes", Status: models.ClientTaskDone, Priority: models.PriorityHigh}}
	require.NoError(t, p.Project(rec))

	text := out.String()
	assert.Contains(t, text, "Sarah Johnson")
	assert.Contains(t, text, "2025-02-15")
	assert.Contains(t, text, "Wireframes")
}

func TestProjectsJSONAndYAML(t *testing.T) {
	p, out, _ := newTestPrinter(FormatJSON)
	require.NoError(t, p.Projects(sampleRecords()))
	var decoded []models.ProjectRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, models.LocalOnly, decoded[0].Durability)

	p, out, _ = newTestPrinter(FormatYAML)
	require.NoError(t, p.Goals([]models.GoalRecord{{Goal: models.Goal{ID: "g1", Title: "Ship", Priority: models.PriorityLow}, Durability: models.Persisted}}))
	var goals []models.GoalRecord
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &goals))
	require.Len(t, goals, 1)
	assert.Equal(t, "Ship", goals[0].Goal.Title)
}

func TestGoalsAndStatsTable(t *testing.T) {
	p, out, _ := newTestPrinter(FormatTable)
	require.NoError(t, p.Goals([]models.GoalRecord{
		{Goal: models.Goal{ID: "g1", Title: "Ship", Completed: true, Priority: models.PriorityLow}},
	}))
	assert.Contains(t, out.String(), "[x]")

	out.Reset()
	require.NoError(t, p.Stats(reconcile.Stats{Total: 3, Completed: 1, CompletionRate: 33}))
	assert.Contains(t, out.String(), "33%")
}
