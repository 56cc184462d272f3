// Package summary implements rollup semantics for tasks with children:
// workday-weighted progress averaging, date-range aggregation, and the
// task<->summary type-coercion rules. Results are derived facts, not user
// input, and are meant to be recorded with skipUndo set on the host side.
package summary

import (
	"math"
	"time"

	"ganttcore/internal/core"
)

// Store is the capability object the host wires in so this package never
// touches a process-wide singleton — mirrors spec.md §9's "api as a
// capability object" guidance. GetChildren returns the immediate children
// of id (not recursive; recursion happens by the caller descending into
// nested summaries itself).
type Store interface {
	GetTask(id string) (core.Task, bool)
	GetChildren(id string) []core.Task
}

// Rollup is the computed {progress, start, end} for a summary task.
type Rollup struct {
	Progress float64
	Start    time.Time
	End      time.Time
	HasDates bool
}

// ComputeRollup derives a summary task's progress and date range from its
// immediate children, recursing into nested summaries via store.
func ComputeRollup(store Store, id string) Rollup {
	children := store.GetChildren(id)
	return computeRollup(store, children)
}

func computeRollup(store Store, children []core.Task) Rollup {
	var (
		weightedSum   float64
		totalDuration float64
		haveDates     bool
		start, end    time.Time
	)

	for _, child := range children {
		var progress float64
		var duration float64
		var childStart, childEnd time.Time
		var childHasDates bool

		switch child.Type {
		case core.TaskTypeSummary:
			sub := computeRollup(store, store.GetChildren(child.ID))
			progress = sub.Progress
			childStart, childEnd, childHasDates = sub.Start, sub.End, sub.HasDates
			duration = float64(durationDays(childStart, childEnd))
			if !childHasDates {
				duration = 0
			}
		case core.TaskTypeMilestone:
			progress = child.Progress
			duration = 0
			childStart, childEnd, childHasDates = child.Start, child.Start, true
		default:
			progress = child.Progress
			duration = float64(child.Duration)
			if duration == 0 && !child.Start.IsZero() && !child.End.IsZero() {
				duration = float64(durationDays(child.Start, child.End))
			}
			childStart, childEnd, childHasDates = child.Start, child.End, !child.Start.IsZero()
		}

		weightedSum += duration * progress
		totalDuration += duration

		if childHasDates {
			if !haveDates || childStart.Before(start) {
				start = childStart
			}
			if !haveDates || childEnd.After(end) {
				end = childEnd
			}
			haveDates = true
		}
	}

	progress := 0.0
	if totalDuration > 0 {
		progress = weightedSum / totalDuration
	}
	if math.IsNaN(progress) {
		progress = 0
	}
	progress = math.Round(progress*100) / 100

	return Rollup{Progress: progress, Start: start, End: end, HasDates: haveDates}
}

func durationDays(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	d := int(core.NormalizeDay(end).Sub(core.NormalizeDay(start)).Hours() / 24)
	if d < 0 {
		d = 0
	}
	return d
}

// ShouldConvertToSummary reports whether a plain task with newChildCount
// children (after an add) should auto-convert to type summary.
func ShouldConvertToSummary(task core.Task, newChildCount int) bool {
	return task.Type != core.TaskTypeSummary && newChildCount > 0
}

// ShouldConvertToTask reports whether a summary task with remainingChildCount
// children (after a removal) should revert to type task.
func ShouldConvertToTask(task core.Task, remainingChildCount int) bool {
	return task.Type == core.TaskTypeSummary && remainingChildCount == 0
}

// ApplyRollup returns a copy of summaryTask with its derived progress and
// date range set from rollup. Callers are expected to persist this with
// skipUndo, since these fields are never authoritative user input once a
// task has children.
func ApplyRollup(summaryTask core.Task, rollup Rollup) core.Task {
	out := summaryTask
	out.Progress = rollup.Progress
	if rollup.HasDates {
		out.Start = rollup.Start
		out.End = rollup.End
		out.Duration = durationDays(rollup.Start, rollup.End)
		if out.Duration < 1 {
			out.Duration = 1
		}
	} else {
		out.Start = time.Time{}
		out.End = time.Time{}
	}
	return out
}

// PropagateUp walks the parent chain starting at id, recomputing and
// returning the full set of ancestor summary tasks that need updating (in
// root-ward order). The caller applies each via its own store/exec hook.
func PropagateUp(store Store, id string) []core.Task {
	var updated []core.Task

	current, ok := store.GetTask(id)
	if !ok {
		return nil
	}

	for current.Parent != "" {
		parent, ok := store.GetTask(current.Parent)
		if !ok {
			break
		}
		rollup := ComputeRollup(store, parent.ID)
		updated = append(updated, ApplyRollup(parent, rollup))
		current = parent
	}
	return updated
}
