package criticalpath

import (
	"testing"
	"time"

	"ganttcore/internal/core"
)

func day(n int) time.Time {
	return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func dayIndex(t time.Time) int {
	return diffDays(day(0), t)
}

func diamondTasks() ([]core.Task, []core.Link) {
	tasks := []core.Task{
		{ID: "A", Duration: 3},
		{ID: "B", Duration: 2},
		{ID: "C", Duration: 4},
		{ID: "D", Duration: 1},
	}
	links := []core.Link{
		{ID: "l1", Source: "A", Target: "B", Type: core.LinkFinishToStart},
		{ID: "l2", Source: "A", Target: "C", Type: core.LinkFinishToStart},
		{ID: "l3", Source: "B", Target: "D", Type: core.LinkFinishToStart},
		{ID: "l4", Source: "C", Target: "D", Type: core.LinkFinishToStart},
	}
	return tasks, links
}

func TestCalculateCriticalPathStrictDiamond(t *testing.T) {
	// S1 — three-chain diamond.
	tasks, links := diamondTasks()
	start := day(0)

	result := CalculateCriticalPath(tasks, links, Config{Mode: ModeStrict, ProjectStart: &start})

	wantEarlyStart := map[string]int{"A": 0, "B": 3, "C": 3, "D": 7}
	for id, want := range wantEarlyStart {
		got := dayIndex(result.Tasks[id].EarlyStart)
		if got != want {
			t.Errorf("earlyStart[%s] = %d, want %d", id, got, want)
		}
	}

	if got := dayIndex(result.ProjectEnd); got != 8 {
		t.Errorf("ProjectEnd = day %d, want day 8", got)
	}

	if result.Tasks["B"].Slack != 2 {
		t.Errorf("B.Slack = %d, want 2", result.Tasks["B"].Slack)
	}
	for _, id := range []string{"A", "C", "D"} {
		if !result.Tasks[id].IsCritical {
			t.Errorf("%s should be critical (slack 0)", id)
		}
	}
	if result.Tasks["B"].IsCritical {
		t.Error("B should not be critical")
	}
}

func TestCalculateCriticalPathIsCriticalIffZeroSlack(t *testing.T) {
	// Invariant 9 (strict half).
	tasks, links := diamondTasks()
	start := day(0)
	result := CalculateCriticalPath(tasks, links, Config{Mode: ModeStrict, ProjectStart: &start})

	for id, sched := range result.Tasks {
		want := sched.Slack == 0
		if sched.IsCritical != want {
			t.Errorf("task %s: IsCritical=%v but slack=%d", id, sched.IsCritical, sched.Slack)
		}
	}
}

func TestCalculateCriticalPathFlexibleTracesChain(t *testing.T) {
	tasks, links := diamondTasks()
	start := day(0)
	result := CalculateCriticalPath(tasks, links, Config{Mode: ModeFlexible, ProjectStart: &start})

	// Every task on the traced chain must be marked critical, and the chain
	// must start at A (the only source-less task).
	if len(result.CriticalPath) == 0 {
		t.Fatal("expected a non-empty traced chain")
	}
	if result.CriticalPath[0] != "A" {
		t.Errorf("chain should start at A, got %v", result.CriticalPath)
	}
	for _, id := range result.CriticalPath {
		if !result.Tasks[id].IsCritical {
			t.Errorf("traced task %s not marked critical", id)
		}
	}
}

func TestCalculateCriticalPathDetectsCycle(t *testing.T) {
	tasks := []core.Task{{ID: "A", Duration: 1}, {ID: "B", Duration: 1}}
	links := []core.Link{
		{ID: "l1", Source: "A", Target: "B", Type: core.LinkFinishToStart},
		{ID: "l2", Source: "B", Target: "A", Type: core.LinkFinishToStart},
	}

	result := CalculateCriticalPath(tasks, links, Config{Mode: ModeStrict})
	if result.Tasks != nil {
		t.Error("expected empty result on cyclic input")
	}
}

func TestCalculateCriticalPathDefaultsDurationToOne(t *testing.T) {
	tasks := []core.Task{{ID: "A"}}
	result := CalculateCriticalPath(tasks, nil, Config{Mode: ModeStrict})
	sched := result.Tasks["A"]
	if got := diffDays(sched.EarlyStart, sched.EarlyFinish); got != 1 {
		t.Errorf("default duration span = %d days, want 1", got)
	}
}
