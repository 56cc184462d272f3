// Package splittask implements non-contiguous task geometry: parts, gaps,
// merge/split/visualize. A task becomes split once it has two or more
// disjoint SplitParts; every function here returns a new core.Task rather
// than mutating its argument.
package splittask

import (
	"fmt"
	"sort"
	"time"

	"ganttcore/internal/core"
)

const msPerDay = 24 * time.Hour

// durationDays returns ceil((end-start)/1 day), floored at 1.
func durationDays(start, end time.Time) int {
	start = core.NormalizeDay(start)
	end = core.NormalizeDay(end)
	d := int(end.Sub(start) / msPerDay)
	if d < 1 {
		d = 1
	}
	return d
}

// PartInput is a caller-supplied segment before IDs are assigned.
type PartInput struct {
	Start time.Time
	End   time.Time
}

// CreateSplitTask returns a copy of task with splitParts derived from
// parts, IDs assigned as "{taskId}_part_{i}" in input order, and the
// task's own start/end widened to span all parts.
func CreateSplitTask(task core.Task, parts []PartInput) core.Task {
	out := task
	out.SplitParts = make([]core.SplitPart, len(parts))
	for i, p := range parts {
		start := core.NormalizeDay(p.Start)
		end := core.NormalizeDay(p.End)
		out.SplitParts[i] = core.SplitPart{
			ID:       fmt.Sprintf("%s_part_%d", task.ID, i),
			Start:    start,
			End:      end,
			Duration: durationDays(start, end),
		}
	}
	sortParts(out.SplitParts)
	if len(out.SplitParts) > 0 {
		out.Start = out.SplitParts[0].Start
		out.End = out.SplitParts[len(out.SplitParts)-1].End
	}
	return out
}

// SplitTaskAt splits a contiguous task into two parts at date, which must
// satisfy task.Start < date < task.End.
func SplitTaskAt(task core.Task, date time.Time) (core.Task, error) {
	date = core.NormalizeDay(date)
	start := core.NormalizeDay(task.Start)
	end := core.NormalizeDay(task.End)
	if !date.After(start) || !date.Before(end) {
		return task, fmt.Errorf("splittask: split date %s not strictly between start %s and end %s",
			date.Format("2006-01-02"), start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	return CreateSplitTask(task, []PartInput{
		{Start: start, End: date},
		{Start: date, End: end},
	}), nil
}

// AddSplitPart returns a copy of task with part appended (and the whole
// set re-sorted/re-spanned).
func AddSplitPart(task core.Task, part PartInput) core.Task {
	parts := make([]PartInput, 0, len(task.SplitParts)+1)
	for _, p := range task.SplitParts {
		parts = append(parts, PartInput{Start: p.Start, End: p.End})
	}
	parts = append(parts, part)
	return CreateSplitTask(task, parts)
}

// RemoveSplitPart returns a copy of task with the part identified by id
// removed. If fewer than two parts remain, the task reverts to a single
// contiguous span (no longer split).
func RemoveSplitPart(task core.Task, id string) core.Task {
	var parts []PartInput
	for _, p := range task.SplitParts {
		if p.ID == id {
			continue
		}
		parts = append(parts, PartInput{Start: p.Start, End: p.End})
	}
	if len(parts) < 2 {
		out := task
		out.SplitParts = nil
		if len(parts) == 1 {
			out.Start = core.NormalizeDay(parts[0].Start)
			out.End = core.NormalizeDay(parts[0].End)
			out.Duration = durationDays(out.Start, out.End)
		}
		return out
	}
	return CreateSplitTask(task, parts)
}

// UpdateSplitPart returns a copy of task with the part identified by id
// replaced by newPart's bounds.
func UpdateSplitPart(task core.Task, id string, newPart PartInput) core.Task {
	var parts []PartInput
	for _, p := range task.SplitParts {
		if p.ID == id {
			parts = append(parts, newPart)
		} else {
			parts = append(parts, PartInput{Start: p.Start, End: p.End})
		}
	}
	return CreateSplitTask(task, parts)
}

// MergeSplitTask collapses a split task into a single contiguous span: the
// new duration is the sum of part durations (gaps removed), start is the
// earliest part start, end is the latest part end.
func MergeSplitTask(task core.Task) core.Task {
	if !task.IsSplit() {
		return task
	}
	out := task
	total := 0
	start := task.SplitParts[0].Start
	end := task.SplitParts[0].End
	for _, p := range task.SplitParts {
		total += p.Duration
		if p.Start.Before(start) {
			start = p.Start
		}
		if p.End.After(end) {
			end = p.End
		}
	}
	out.Start = start
	out.End = end
	out.Duration = total
	out.SplitParts = nil
	return out
}

// Segment is one element of a VisualizeSplitTask sequence: either a
// SplitPart segment or a gap between two adjacent parts.
type Segment struct {
	ID    string
	Start time.Time
	End   time.Time
	IsGap bool
}

// VisualizeSplitTask returns the alternating sequence of segments and gaps
// implied by task's split parts. A gap is emitted only when its width is
// positive (adjacent parts that touch produce no gap).
func VisualizeSplitTask(task core.Task) []Segment {
	if len(task.SplitParts) == 0 {
		return nil
	}
	parts := append([]core.SplitPart(nil), task.SplitParts...)
	sortParts(parts)

	segments := make([]Segment, 0, len(parts)*2-1)
	for i, p := range parts {
		segments = append(segments, Segment{ID: p.ID, Start: p.Start, End: p.End})
		if i == len(parts)-1 {
			continue
		}
		next := parts[i+1]
		if next.Start.After(p.End) {
			segments = append(segments, Segment{
				ID:    fmt.Sprintf("gap_%d", i),
				Start: p.End,
				End:   next.Start,
				IsGap: true,
			})
		}
	}
	return segments
}

// CalculateGapsInSplitTask returns only the gap spans from
// VisualizeSplitTask.
func CalculateGapsInSplitTask(task core.Task) []Segment {
	var gaps []Segment
	for _, seg := range VisualizeSplitTask(task) {
		if seg.IsGap {
			gaps = append(gaps, seg)
		}
	}
	return gaps
}

func sortParts(parts []core.SplitPart) {
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].Start.Before(parts[j].Start)
	})
}
