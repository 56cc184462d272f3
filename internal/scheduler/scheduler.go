// Package scheduler propagates start/end dates across a task dependency
// graph, honouring typed links with lag, per-task constraints, a project
// window, and an optional working-time calendar. It never mutates its
// inputs; every call returns a fresh result value.
package scheduler

import (
	"time"

	"ganttcore/internal/calendar"
	"ganttcore/internal/core"
)

// ConflictType enumerates the conflict kinds the scheduler can emit.
type ConflictType string

const (
	ConflictCircularDependency ConflictType = "circular_dependency"
	ConflictConstraintViolation ConflictType = "constraint_violation"
)

// Conflict reports a scheduling issue for a specific task.
type Conflict struct {
	Type    ConflictType
	TaskID  string
	Message string
}

// TaskResult is the new (start, end) computed for one task.
type TaskResult struct {
	Start   time.Time
	End     time.Time
	Changed bool
}

// Config controls ScheduleTasks.
type Config struct {
	ProjectStart *time.Time
	ProjectEnd   *time.Time
	// RespectCalendar defaults to true; set false to ignore Calendar when
	// snapping anchors to workdays (the duration/date math still runs).
	RespectCalendar *bool
	Calendar        *core.Calendar
	// Now defaults to time.Now; override in tests for determinism.
	Now func() time.Time
}

func (c Config) respectCalendar() bool {
	return c.RespectCalendar == nil || *c.RespectCalendar
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Result is the full output of ScheduleTasks.
type Result struct {
	Tasks           map[string]TaskResult
	Conflicts       []Conflict
	AffectedTaskIDs []string
}

// OnScheduleTask is invoked once per task whose schedule changed.
type OnScheduleTask func(taskID string, start, end time.Time)

// Constraints maps a task ID to the constraints that apply to it.
type Constraints map[string][]core.Constraint

// ScheduleTasks computes new dates for every task in tasks, given links,
// an optional calendar, optional per-task constraints, and cfg.
func ScheduleTasks(tasks []core.Task, links []core.Link, constraints Constraints, cfg Config, onScheduleTask OnScheduleTask) Result {
	g := buildGraph(tasks, links)
	order, ok := g.topologicalSort()
	if !ok {
		result := Result{Tasks: make(map[string]TaskResult, len(tasks))}
		for _, t := range tasks {
			result.Tasks[t.ID] = TaskResult{Start: t.Start, End: t.End, Changed: false}
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:    ConflictCircularDependency,
				TaskID:  t.ID,
				Message: "task participates in a circular dependency; scheduling aborted",
			})
		}
		return result
	}

	result := Result{Tasks: make(map[string]TaskResult, len(tasks))}

	for _, id := range order {
		task := g.tasks[id]
		earliestStart := computeEarliestStart(g, id, task, cfg, &result)
		earliestStart = applyStartConstraints(earliestStart, task.ID, constraints[task.ID], &result)

		duration := taskDuration(task, cfg.Calendar, earliestStart)
		scheduledEnd := addDuration(earliestStart, cfg.Calendar, duration-1)
		scheduledEnd = applyFinishConstraints(scheduledEnd, task.ID, constraints[task.ID], &result)

		changed := !earliestStart.Equal(core.NormalizeDay(task.Start)) || !scheduledEnd.Equal(core.NormalizeDay(task.End))
		result.Tasks[id] = TaskResult{Start: earliestStart, End: scheduledEnd, Changed: changed}
		g.tasks[id] = core.Task{ // feed forward for downstream predecessor lookups
			ID: id, Start: earliestStart, End: scheduledEnd, Duration: duration,
			Type: task.Type, Parent: task.Parent,
		}

		if changed {
			result.AffectedTaskIDs = append(result.AffectedTaskIDs, id)
			if onScheduleTask != nil {
				onScheduleTask(id, earliestStart, scheduledEnd)
			}
		}
	}

	return result
}

func computeEarliestStart(g *graph, id string, task core.Task, cfg Config, result *Result) time.Time {
	preds := g.revAdjList[id]

	var anchor time.Time
	haveAnchor := false
	for _, p := range preds {
		pred := g.tasks[p.taskID]
		var candidate time.Time
		switch p.typ {
		case core.LinkFinishToStart:
			candidate = addDuration(pred.End, cfg.Calendar, 1+p.lag)
		case core.LinkStartToStart:
			candidate = addDuration(pred.Start, cfg.Calendar, p.lag)
		default: // e2e, s2e do not constrain start at this step
			continue
		}
		if !haveAnchor || candidate.After(anchor) {
			anchor = candidate
			haveAnchor = true
		}
	}

	var earliestStart time.Time
	if haveAnchor {
		earliestStart = anchor
	} else if cfg.ProjectStart != nil {
		earliestStart = core.NormalizeDay(*cfg.ProjectStart)
	} else if !task.Start.IsZero() {
		earliestStart = core.NormalizeDay(task.Start)
	} else {
		earliestStart = core.NormalizeDay(cfg.now())
	}

	if cfg.ProjectStart != nil && earliestStart.Before(core.NormalizeDay(*cfg.ProjectStart)) {
		earliestStart = core.NormalizeDay(*cfg.ProjectStart)
	}

	if cfg.Calendar != nil && cfg.respectCalendar() {
		earliestStart = calendar.AddWorkdays(earliestStart, 0, *cfg.Calendar)
	}

	return earliestStart
}

func applyStartConstraints(start time.Time, taskID string, cs []core.Constraint, result *Result) time.Time {
	for _, c := range cs {
		switch c.Type {
		case core.ConstraintStartNoEarlierThan:
			if c.Date.After(start) {
				start = core.NormalizeDay(c.Date)
			}
		case core.ConstraintMustStartOn:
			start = core.NormalizeDay(c.Date)
		case core.ConstraintStartNoLaterThan:
			if start.After(core.NormalizeDay(c.Date)) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:    ConflictConstraintViolation,
					TaskID:  taskID,
					Message: "computed start violates start-no-later-than constraint",
				})
			}
		}
	}
	return start
}

func applyFinishConstraints(end time.Time, taskID string, cs []core.Constraint, result *Result) time.Time {
	for _, c := range cs {
		switch c.Type {
		case core.ConstraintFinishNoEarlierThan:
			if c.Date.After(end) {
				end = core.NormalizeDay(c.Date)
			}
		case core.ConstraintMustFinishOn:
			end = core.NormalizeDay(c.Date)
		case core.ConstraintFinishNoLaterThan:
			if end.After(core.NormalizeDay(c.Date)) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:    ConflictConstraintViolation,
					TaskID:  taskID,
					Message: "computed finish violates finish-no-later-than constraint",
				})
			}
		}
	}
	return end
}

// taskDuration prefers task.Duration; else workday/day count between
// task.Start/End; else 1.
func taskDuration(task core.Task, cal *core.Calendar, earliestStart time.Time) int {
	if task.Duration > 0 {
		return task.Duration
	}
	if !task.Start.IsZero() && !task.End.IsZero() {
		if cal != nil {
			d := calendar.CountWorkdays(task.Start, task.End, *cal)
			if d > 0 {
				return d
			}
		}
		d := int(core.NormalizeDay(task.End).Sub(core.NormalizeDay(task.Start)).Hours()/24) + 1
		if d > 0 {
			return d
		}
	}
	return 1
}

func addDuration(t time.Time, cal *core.Calendar, n int) time.Time {
	if cal != nil {
		return calendar.AddWorkdays(t, n, *cal)
	}
	return core.NormalizeDay(t).AddDate(0, 0, n)
}

// RescheduleFromTask recomputes the transitive successor closure of id
// (id included), leaving every other task's dates untouched.
func RescheduleFromTask(tasks []core.Task, links []core.Link, id string, constraints Constraints, cfg Config, onScheduleTask OnScheduleTask) Result {
	g := buildGraph(tasks, links)
	closure := g.downstreamClosure(id)
	result := Result{Tasks: make(map[string]TaskResult, len(tasks))}
	if closure == nil {
		for _, t := range tasks {
			result.Tasks[t.ID] = TaskResult{Start: t.Start, End: t.End, Changed: false}
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:    ConflictCircularDependency,
				TaskID:  t.ID,
				Message: "task participates in a circular dependency; scheduling aborted",
			})
		}
		return result
	}

	closureSet := make(map[string]bool, len(closure))
	for _, cid := range closure {
		closureSet[cid] = true
	}

	for _, t := range tasks {
		if !closureSet[t.ID] {
			result.Tasks[t.ID] = TaskResult{Start: t.Start, End: t.End, Changed: false}
		}
	}

	for _, cid := range closure {
		task := g.tasks[cid]
		earliestStart := computeEarliestStart(g, cid, task, cfg, &result)
		earliestStart = applyStartConstraints(earliestStart, task.ID, constraints[task.ID], &result)

		duration := taskDuration(task, cfg.Calendar, earliestStart)
		scheduledEnd := addDuration(earliestStart, cfg.Calendar, duration-1)
		scheduledEnd = applyFinishConstraints(scheduledEnd, task.ID, constraints[task.ID], &result)

		changed := !earliestStart.Equal(core.NormalizeDay(task.Start)) || !scheduledEnd.Equal(core.NormalizeDay(task.End))
		result.Tasks[cid] = TaskResult{Start: earliestStart, End: scheduledEnd, Changed: changed}
		g.tasks[cid] = core.Task{ID: cid, Start: earliestStart, End: scheduledEnd, Duration: duration, Type: task.Type, Parent: task.Parent}

		if changed {
			result.AffectedTaskIDs = append(result.AffectedTaskIDs, cid)
			if onScheduleTask != nil {
				onScheduleTask(cid, earliestStart, scheduledEnd)
			}
		}
	}

	return result
}

// DetectCircularDependencies returns every cycle found in the link graph,
// each expressed as the ordered ID path from the cycle's entry point back
// to itself, via DFS with path tracking from each node.
func DetectCircularDependencies(tasks []core.Task, links []core.Link) [][]string {
	g := buildGraph(tasks, links)

	var cycles [][]string
	state := make(map[string]int) // 0=unvisited, 1=on stack, 2=done
	var path []string

	var dfs func(id string)
	dfs = func(id string) {
		state[id] = 1
		path = append(path, id)

		for _, e := range g.adjList[id] {
			switch state[e.taskID] {
			case 0:
				dfs(e.taskID)
			case 1:
				// found a cycle: slice path from e.taskID's position onward
				for i, pid := range path {
					if pid == e.taskID {
						cycle := append([]string(nil), path[i:]...)
						cycle = append(cycle, e.taskID)
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}

		path = path[:len(path)-1]
		state[id] = 2
	}

	for _, id := range g.order {
		if state[id] == 0 {
			dfs(id)
		}
	}
	return cycles
}

// RemoveInvalidLinks partitions links into valid and removed, rejecting
// links with an unknown source/target, self-links, and links from a
// summary task to any of its own descendants.
func RemoveInvalidLinks(tasks []core.Task, links []core.Link) (valid, removed []core.Link) {
	taskByID := make(map[string]core.Task, len(tasks))
	for _, t := range tasks {
		taskByID[t.ID] = t
	}

	isDescendant := func(ancestorID, candidateID string) bool {
		seen := map[string]bool{}
		current := taskByID[candidateID]
		for current.Parent != "" && !seen[current.Parent] {
			if current.Parent == ancestorID {
				return true
			}
			seen[current.Parent] = true
			current = taskByID[current.Parent]
		}
		return false
	}

	for _, l := range links {
		src, srcOK := taskByID[l.Source]
		_, dstOK := taskByID[l.Target]

		switch {
		case !srcOK || !dstOK:
			removed = append(removed, l)
		case l.Source == l.Target:
			removed = append(removed, l)
		case src.Type == core.TaskTypeSummary && isDescendant(l.Source, l.Target):
			removed = append(removed, l)
		default:
			valid = append(valid, l)
		}
	}
	return valid, removed
}
