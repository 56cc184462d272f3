package scheduler

import (
	"testing"
	"time"

	"ganttcore/internal/core"
)

func mkDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScheduleTasksFinishToStartPropagation(t *testing.T) {
	// Invariant 1 — e2s relation holds on the output.
	tasks := []core.Task{
		{ID: "A", Duration: 3, Start: mkDate(2024, time.January, 1)},
		{ID: "B", Duration: 2},
	}
	links := []core.Link{{ID: "l1", Source: "A", Target: "B", Type: core.LinkFinishToStart}}

	result := ScheduleTasks(tasks, links, nil, Config{}, nil)

	a := result.Tasks["A"]
	b := result.Tasks["B"]
	wantBStart := a.End.AddDate(0, 0, 1)
	if !b.Start.Equal(wantBStart) {
		t.Errorf("B.Start = %v, want %v (day after A.End)", b.Start, wantBStart)
	}
}

func TestScheduleTasksRespectsCalendarWorkdays(t *testing.T) {
	// Invariant 2 — with a calendar active, every output start/end is a workday.
	cal := core.DefaultCalendar()
	tasks := []core.Task{
		{ID: "A", Duration: 3, Start: mkDate(2024, time.January, 5)}, // Friday
		{ID: "B", Duration: 2},
	}
	links := []core.Link{{ID: "l1", Source: "A", Target: "B", Type: core.LinkFinishToStart}}

	result := ScheduleTasks(tasks, links, nil, Config{Calendar: &cal}, nil)

	for id, sched := range result.Tasks {
		if sched.Start.Weekday() == time.Saturday || sched.Start.Weekday() == time.Sunday {
			t.Errorf("%s.Start = %v is not a workday", id, sched.Start)
		}
		if sched.End.Weekday() == time.Saturday || sched.End.Weekday() == time.Sunday {
			t.Errorf("%s.End = %v is not a workday", id, sched.End)
		}
	}
}

func TestScheduleTasksConstraintViolationKeepsBestEffortSchedule(t *testing.T) {
	// S4 — finish-no-later-than violated, scheduler still produces a
	// best-effort output and records exactly one conflict.
	tasks := []core.Task{
		{ID: "X", Duration: 1, Start: mkDate(2024, time.January, 7)}, // ends Jan 7, so Y's earliest start is Jan 8
		{ID: "Y", Duration: 5},
	}
	links := []core.Link{{ID: "l1", Source: "X", Target: "Y", Type: core.LinkFinishToStart}}
	constraints := Constraints{
		"Y": {{Type: core.ConstraintFinishNoLaterThan, Date: mkDate(2024, time.January, 10)}},
	}

	result := ScheduleTasks(tasks, links, constraints, Config{}, nil)

	y := result.Tasks["Y"]
	want := mkDate(2024, time.January, 12)
	if !y.End.Equal(want) {
		t.Errorf("Y.End = %v, want %v", y.End, want)
	}

	violations := 0
	for _, c := range result.Conflicts {
		if c.Type == ConflictConstraintViolation && c.TaskID == "Y" {
			violations++
		}
	}
	if violations != 1 {
		t.Errorf("expected exactly 1 constraint_violation conflict for Y, got %d", violations)
	}
}

func TestScheduleTasksCircularDependencyAbortsUnchanged(t *testing.T) {
	tasks := []core.Task{
		{ID: "A", Duration: 1, Start: mkDate(2024, time.January, 1), End: mkDate(2024, time.January, 1)},
		{ID: "B", Duration: 1, Start: mkDate(2024, time.January, 2), End: mkDate(2024, time.January, 2)},
	}
	links := []core.Link{
		{ID: "l1", Source: "A", Target: "B", Type: core.LinkFinishToStart},
		{ID: "l2", Source: "B", Target: "A", Type: core.LinkFinishToStart},
	}

	result := ScheduleTasks(tasks, links, nil, Config{}, nil)

	if len(result.Conflicts) != len(tasks) {
		t.Fatalf("expected one circular_dependency conflict per task, got %d", len(result.Conflicts))
	}
	for _, c := range result.Conflicts {
		if c.Type != ConflictCircularDependency {
			t.Errorf("expected circular_dependency conflicts, got %s", c.Type)
		}
	}
	if !result.Tasks["A"].Start.Equal(tasks[0].Start) || !result.Tasks["B"].Start.Equal(tasks[1].Start) {
		t.Error("expected input dates preserved unchanged on cyclic input")
	}
}

func TestDetectCircularDependencies(t *testing.T) {
	tasks := []core.Task{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	links := []core.Link{
		{ID: "l1", Source: "A", Target: "B"},
		{ID: "l2", Source: "B", Target: "C"},
		{ID: "l3", Source: "C", Target: "A"},
	}

	cycles := DetectCircularDependencies(tasks, links)
	if len(cycles) == 0 {
		t.Fatal("expected at least one cycle detected")
	}
}

func TestDetectCircularDependenciesEmptyWhenAcyclic(t *testing.T) {
	tasks := []core.Task{{ID: "A"}, {ID: "B"}}
	links := []core.Link{{ID: "l1", Source: "A", Target: "B"}}

	cycles := DetectCircularDependencies(tasks, links)
	if len(cycles) != 0 {
		t.Errorf("expected no cycles, got %v", cycles)
	}
}

func TestRemoveInvalidLinksRejectsSelfLinksAndUnknownEndpoints(t *testing.T) {
	tasks := []core.Task{{ID: "A"}, {ID: "B"}}
	links := []core.Link{
		{ID: "valid", Source: "A", Target: "B"},
		{ID: "self", Source: "A", Target: "A"},
		{ID: "unknown", Source: "A", Target: "ghost"},
	}

	valid, removed := RemoveInvalidLinks(tasks, links)
	if len(valid) != 1 || valid[0].ID != "valid" {
		t.Errorf("expected only 'valid' link to survive, got %v", valid)
	}
	if len(removed) != 2 {
		t.Errorf("expected 2 removed links, got %d", len(removed))
	}
}

func TestRemoveInvalidLinksRejectsSummaryToDescendant(t *testing.T) {
	tasks := []core.Task{
		{ID: "P", Type: core.TaskTypeSummary},
		{ID: "C", Parent: "P"},
		{ID: "Other"},
	}
	links := []core.Link{
		{ID: "bad", Source: "P", Target: "C"},
		{ID: "ok", Source: "P", Target: "Other"},
	}

	valid, removed := RemoveInvalidLinks(tasks, links)
	if len(removed) != 1 || removed[0].ID != "bad" {
		t.Errorf("expected only 'bad' link removed, got %v", removed)
	}
	if len(valid) != 1 || valid[0].ID != "ok" {
		t.Errorf("expected 'ok' link to survive, got %v", valid)
	}
}

func TestRescheduleFromTaskOnlyTouchesDownstream(t *testing.T) {
	tasks := []core.Task{
		{ID: "A", Duration: 2, Start: mkDate(2024, time.January, 1)},
		{ID: "B", Duration: 2, Start: mkDate(2024, time.January, 10)}, // will be recomputed
		{ID: "Unrelated", Duration: 1, Start: mkDate(2024, time.January, 20), End: mkDate(2024, time.January, 20)},
	}
	links := []core.Link{{ID: "l1", Source: "A", Target: "B", Type: core.LinkFinishToStart}}

	result := RescheduleFromTask(tasks, links, "A", nil, Config{}, nil)

	unrelated := result.Tasks["Unrelated"]
	if !unrelated.Start.Equal(tasks[2].Start) || unrelated.Changed {
		t.Errorf("expected Unrelated task untouched, got %+v", unrelated)
	}

	b := result.Tasks["B"]
	a := result.Tasks["A"]
	wantBStart := a.End.AddDate(0, 0, 1)
	if !b.Start.Equal(wantBStart) {
		t.Errorf("B.Start = %v, want %v", b.Start, wantBStart)
	}
}
