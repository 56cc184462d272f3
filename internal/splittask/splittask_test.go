package splittask

import (
	"testing"
	"time"

	"ganttcore/internal/core"
)

func mkDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func baseTask() core.Task {
	return core.Task{
		ID:    "t1",
		Text:  "Write chapter",
		Start: mkDate(2024, time.January, 1),
		End:   mkDate(2024, time.January, 10),
	}
}

func TestSplitTaskAtRoundTrip(t *testing.T) {
	// S3 — split at Jan 5, then merge back to duration 9.
	task := baseTask()

	split, err := SplitTaskAt(task, mkDate(2024, time.January, 5))
	if err != nil {
		t.Fatalf("SplitTaskAt: %v", err)
	}
	if !split.IsSplit() {
		t.Fatal("expected split task to report IsSplit")
	}
	if len(split.SplitParts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(split.SplitParts))
	}

	merged := MergeSplitTask(split)
	if merged.IsSplit() {
		t.Fatal("merged task should not be split")
	}
	if merged.Duration != 9 {
		t.Errorf("merged duration = %d, want 9", merged.Duration)
	}
	if !merged.Start.Equal(task.Start) || !merged.End.Equal(task.End) {
		t.Errorf("merged span = [%v,%v], want [%v,%v]", merged.Start, merged.End, task.Start, task.End)
	}
}

func TestSplitTaskAtRejectsOutOfRangeDate(t *testing.T) {
	task := baseTask()

	if _, err := SplitTaskAt(task, task.Start); err == nil {
		t.Error("expected error splitting at task.Start")
	}
	if _, err := SplitTaskAt(task, task.End); err == nil {
		t.Error("expected error splitting at task.End")
	}
	if _, err := SplitTaskAt(task, task.Start.AddDate(0, 0, -1)); err == nil {
		t.Error("expected error splitting before task.Start")
	}
}

func TestVisualizeSplitTaskNoGapWhenAdjacent(t *testing.T) {
	task := baseTask()
	split, err := SplitTaskAt(task, mkDate(2024, time.January, 5))
	if err != nil {
		t.Fatalf("SplitTaskAt: %v", err)
	}

	segments := VisualizeSplitTask(split)
	for _, seg := range segments {
		if seg.IsGap {
			t.Errorf("unexpected gap for touching parts: %+v", seg)
		}
	}
	if len(segments) != 2 {
		t.Errorf("expected 2 segments with no gap, got %d", len(segments))
	}
}

func TestVisualizeSplitTaskWithGap(t *testing.T) {
	task := CreateSplitTask(baseTask(), []PartInput{
		{Start: mkDate(2024, time.January, 1), End: mkDate(2024, time.January, 3)},
		{Start: mkDate(2024, time.January, 6), End: mkDate(2024, time.January, 10)},
	})

	segments := VisualizeSplitTask(task)
	if len(segments) != 3 {
		t.Fatalf("expected segment-gap-segment, got %d segments", len(segments))
	}
	if !segments[1].IsGap {
		t.Fatal("expected middle segment to be a gap")
	}
	if !segments[1].Start.Equal(mkDate(2024, time.January, 3)) || !segments[1].End.Equal(mkDate(2024, time.January, 6)) {
		t.Errorf("gap span = [%v,%v], want [Jan 3, Jan 6]", segments[1].Start, segments[1].End)
	}

	gaps := CalculateGapsInSplitTask(task)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
}

func TestCreateSplitTaskAssignsIDsAndSpan(t *testing.T) {
	task := CreateSplitTask(baseTask(), []PartInput{
		{Start: mkDate(2024, time.January, 6), End: mkDate(2024, time.January, 10)},
		{Start: mkDate(2024, time.January, 1), End: mkDate(2024, time.January, 3)},
	})

	// IDs are assigned by input-order index before the sort-by-start pass,
	// so the earliest-starting part (second input) keeps "t1_part_1".
	if task.SplitParts[0].ID != "t1_part_1" {
		t.Errorf("first part id = %s, want t1_part_1", task.SplitParts[0].ID)
	}
	if !task.SplitParts[0].Start.Equal(mkDate(2024, time.January, 1)) {
		t.Errorf("expected sorted parts, first start = %v", task.SplitParts[0].Start)
	}
	if !task.Start.Equal(mkDate(2024, time.January, 1)) {
		t.Errorf("task.Start = %v, want Jan 1", task.Start)
	}
	if !task.End.Equal(mkDate(2024, time.January, 10)) {
		t.Errorf("task.End = %v, want Jan 10", task.End)
	}
}

func TestRemoveSplitPartRevertsWhenOneRemains(t *testing.T) {
	task := CreateSplitTask(baseTask(), []PartInput{
		{Start: mkDate(2024, time.January, 1), End: mkDate(2024, time.January, 5)},
		{Start: mkDate(2024, time.January, 6), End: mkDate(2024, time.January, 10)},
	})

	reverted := RemoveSplitPart(task, task.SplitParts[1].ID)
	if reverted.IsSplit() {
		t.Fatal("expected task to revert to non-split with one part remaining")
	}
	if !reverted.Start.Equal(mkDate(2024, time.January, 1)) || !reverted.End.Equal(mkDate(2024, time.January, 5)) {
		t.Errorf("reverted span = [%v,%v]", reverted.Start, reverted.End)
	}
}

func TestUpdateSplitPart(t *testing.T) {
	task := CreateSplitTask(baseTask(), []PartInput{
		{Start: mkDate(2024, time.January, 1), End: mkDate(2024, time.January, 5)},
		{Start: mkDate(2024, time.January, 6), End: mkDate(2024, time.January, 10)},
	})

	id := task.SplitParts[0].ID
	updated := UpdateSplitPart(task, id, PartInput{
		Start: mkDate(2024, time.January, 1),
		End:   mkDate(2024, time.January, 4),
	})

	if !updated.SplitParts[0].End.Equal(mkDate(2024, time.January, 4)) {
		t.Errorf("updated part end = %v, want Jan 4", updated.SplitParts[0].End)
	}
}
