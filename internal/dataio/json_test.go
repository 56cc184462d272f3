package dataio

import (
	"testing"
	"time"

	"ganttcore/internal/core"
)

func mkDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestJSONExportImportRoundTrip(t *testing.T) {
	// Invariant 6 — JSON export -> import is the identity at day precision.
	tasks := []core.Task{
		{
			ID: "t1", Text: "Design", Type: core.TaskTypeTask,
			Start: mkDate(2024, time.January, 1), End: mkDate(2024, time.January, 5),
			Duration: 5, Progress: 0.4,
		},
		{
			ID: "t2", Text: "Build", Type: core.TaskTypeTask, Parent: "",
			Start: mkDate(2024, time.January, 6), End: mkDate(2024, time.January, 10),
			Duration: 5, Progress: 0.1,
		},
	}
	links := []core.Link{
		{ID: "l1", Source: "t1", Target: "t2", Type: core.LinkFinishToStart, Lag: 0},
	}

	data, err := ExportJSON(tasks, links, mkDate(2024, time.January, 1), DefaultExportOptions())
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	gotTasks, gotLinks, err := ImportJSON(data)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}

	if len(gotTasks) != len(tasks) {
		t.Fatalf("got %d tasks, want %d", len(gotTasks), len(tasks))
	}
	for i, want := range tasks {
		got := gotTasks[i]
		if got.ID != want.ID || got.Text != want.Text {
			t.Errorf("task %d identity mismatch: got %+v, want %+v", i, got, want)
		}
		if !got.Start.Equal(want.Start) || !got.End.Equal(want.End) {
			t.Errorf("task %d dates mismatch: got [%v,%v], want [%v,%v]", i, got.Start, got.End, want.Start, want.End)
		}
	}
	if len(gotLinks) != 1 || gotLinks[0].Type != core.LinkFinishToStart {
		t.Errorf("link round-trip mismatch: %+v", gotLinks)
	}
}

func TestJSONExportPreservesUnknownAttributes(t *testing.T) {
	tasks := []core.Task{
		{ID: "t1", Text: "X", Type: core.TaskTypeTask, Attributes: map[string]any{"assignee": "alice", "weight": 3.0}},
	}

	data, err := ExportJSON(tasks, nil, mkDate(2024, time.January, 1), DefaultExportOptions())
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, _, err := ImportJSON(data)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if got[0].Attributes["assignee"] != "alice" {
		t.Errorf("expected assignee attribute to round-trip, got %+v", got[0].Attributes)
	}
}

func TestImportJSONRejectsMalformedDocument(t *testing.T) {
	_, _, err := ImportJSON([]byte("not json"))
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
