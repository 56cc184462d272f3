package dataio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"ganttcore/internal/core"
)

func TestCSVExportImportRoundTrip(t *testing.T) {
	tasks := []core.Task{
		{ID: "t1", Text: "Design, Phase 1", Type: core.TaskTypeTask,
			Start: mkDate(2024, time.January, 1), End: mkDate(2024, time.January, 5), Duration: 5, Progress: 0.4},
		{ID: "t2", Text: `Quote "test"`, Type: core.TaskTypeMilestone,
			Start: mkDate(2024, time.January, 6), End: mkDate(2024, time.January, 6), Duration: 1},
	}

	data, err := ExportCSV(tasks, DefaultExportOptions())
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	got, err := ImportCSV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d tasks, want 2", len(got))
	}
	if got[0].Text != "Design, Phase 1" {
		t.Errorf("comma-containing field not round-tripped: %q", got[0].Text)
	}
	if got[1].Text != `Quote "test"` {
		t.Errorf("quote-containing field not round-tripped: %q", got[1].Text)
	}
	if !got[0].Start.Equal(tasks[0].Start) {
		t.Errorf("start date mismatch: got %v, want %v", got[0].Start, tasks[0].Start)
	}
}

func TestCSVImportDropsRowsWithoutID(t *testing.T) {
	csv := "id,text\n,Orphan\nt1,Has ID\n"
	got, err := ImportCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("expected only the row with an id, got %+v", got)
	}
}

func TestCSVImportCaseInsensitiveHeader(t *testing.T) {
	csv := "ID,TEXT,Start,End\nt1,Task One,2024-01-01,2024-01-05\n"
	got, err := ImportCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(got) != 1 || got[0].Text != "Task One" {
		t.Errorf("expected case-insensitive header match, got %+v", got)
	}
}

func TestCSVImportRequiresIDColumn(t *testing.T) {
	csv := "text,start\nTask,2024-01-01\n"
	_, err := ImportCSV(strings.NewReader(csv))
	if err == nil {
		t.Fatal("expected an error when the header has no id column")
	}
}

func TestCSVImportAccumulatesRowErrors(t *testing.T) {
	csv := "id,text,duration,progress\n" +
		"t1,Good Row,5,0.5\n" +
		"t2,Bad Duration,abc,0.5\n" +
		"t3,Bad Progress,5,2.5\n"

	got, err := ImportCSV(strings.NewReader(csv))
	if err == nil {
		t.Fatal("expected an error describing the malformed rows")
	}
	multi, ok := err.(*core.MultiError)
	if !ok {
		t.Fatalf("expected a *core.MultiError, got %T", err)
	}
	if len(multi.Errors) != 2 {
		t.Fatalf("expected 2 accumulated errors, got %d: %v", len(multi.Errors), multi.Errors)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("expected the one valid row to still be imported, got %+v", got)
	}
}
