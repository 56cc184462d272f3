package criticalpath

import (
	"time"

	"ganttcore/internal/calendar"
	"ganttcore/internal/core"
)

// Mode selects between the two CPM variants spec.md §4.5 describes.
type Mode string

const (
	ModeStrict   Mode = "strict"
	ModeFlexible Mode = "flexible"
)

// Config controls CalculateCriticalPath.
type Config struct {
	Mode         Mode
	ProjectStart *time.Time
	ProjectEnd   *time.Time
	Calendar     *core.Calendar // nil means raw calendar-day arithmetic
}

// TaskSchedule is one task's computed CPM dates.
type TaskSchedule struct {
	TaskID      string
	EarlyStart  time.Time
	EarlyFinish time.Time
	LateStart   time.Time
	LateFinish  time.Time
	Slack       int
	IsCritical  bool
}

// Result is the full output of CalculateCriticalPath. Empty (Tasks == nil)
// signals a cyclic input (spec.md §4.5: "abort and return empty").
type Result struct {
	Tasks        map[string]TaskSchedule
	Order        []string // topological order the passes ran in
	CriticalPath []string // strict: every critical task id; flexible: the traced chain(s), in trace order
	ProjectEnd   time.Time
}

// taskDuration returns a task's CPM duration span. Unlike core.Task's
// inclusive [Start,End] convention, the forward/backward passes treat
// earlyFinish as earlyStart advanced by the full duration (spec.md §4.5),
// not duration-1.
func taskDuration(t core.Task) int {
	if t.Duration > 0 {
		return t.Duration
	}
	if !t.Start.IsZero() && !t.End.IsZero() {
		d := diffDays(t.Start, t.End) + 1
		if d > 0 {
			return d
		}
	}
	return 1
}

func diffDays(a, b time.Time) int {
	return int(core.NormalizeDay(b).Sub(core.NormalizeDay(a)).Hours() / 24)
}

func addDays(t time.Time, cal *core.Calendar, n int) time.Time {
	if cal != nil {
		return calendar.AddWorkdays(t, n, *cal)
	}
	return core.NormalizeDay(t).AddDate(0, 0, n)
}

// CalculateCriticalPath runs the forward/backward CPM passes over tasks and
// links per cfg.Mode. It never mutates tasks or links.
func CalculateCriticalPath(tasks []core.Task, links []core.Link, cfg Config) Result {
	g := buildGraph(tasks, links)
	order, ok := g.topologicalSort()
	if !ok {
		return Result{}
	}

	schedules := make(map[string]TaskSchedule, len(order))

	// Forward pass.
	for _, id := range order {
		t := g.tasks[id]
		duration := taskDuration(t)
		preds := g.revAdjList[id]

		var earlyStart time.Time
		if len(preds) == 0 {
			earlyStart = sourcelessStart(t, cfg.ProjectStart)
		} else {
			for _, p := range preds {
				ps := schedules[p.taskID]
				var candidate time.Time
				switch p.typ {
				case core.LinkFinishToStart, core.LinkFinishToFinish:
					candidate = addDays(ps.EarlyFinish, cfg.Calendar, p.lag)
				default: // s2s, s2e
					candidate = addDays(ps.EarlyStart, cfg.Calendar, p.lag)
				}
				if earlyStart.IsZero() || candidate.After(earlyStart) {
					earlyStart = candidate
				}
			}
		}

		earlyFinish := addDays(earlyStart, cfg.Calendar, duration)
		schedules[id] = TaskSchedule{TaskID: id, EarlyStart: earlyStart, EarlyFinish: earlyFinish}
	}

	projectEnd := time.Time{}
	for _, id := range order {
		ef := schedules[id].EarlyFinish
		if projectEnd.IsZero() || ef.After(projectEnd) {
			projectEnd = ef
		}
	}
	if cfg.ProjectEnd != nil && cfg.ProjectEnd.After(projectEnd) {
		projectEnd = *cfg.ProjectEnd
	}

	// Backward pass, reverse topo order.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		t := g.tasks[id]
		duration := taskDuration(t)
		succs := g.adjList[id]
		sched := schedules[id]

		var lateFinish time.Time
		if len(succs) == 0 {
			lateFinish = projectEnd
		} else {
			for _, s := range succs {
				ss := schedules[s.taskID]
				var candidate time.Time
				switch s.typ {
				case core.LinkFinishToStart, core.LinkStartToStart:
					candidate = addDays(ss.LateStart, cfg.Calendar, -s.lag)
				default: // e2e, s2e
					candidate = addDays(ss.LateFinish, cfg.Calendar, -s.lag)
				}
				if lateFinish.IsZero() || candidate.Before(lateFinish) {
					lateFinish = candidate
				}
			}
		}

		lateStart := addDays(lateFinish, cfg.Calendar, -duration)
		slack := diffDays(sched.EarlyStart, lateStart)

		sched.LateStart = lateStart
		sched.LateFinish = lateFinish
		sched.Slack = slack
		sched.IsCritical = slack == 0
		schedules[id] = sched
	}

	var criticalPath []string
	switch cfg.Mode {
	case ModeFlexible:
		criticalPath = traceFlexibleChains(g, order, schedules)
		critical := make(map[string]bool, len(criticalPath))
		for _, id := range criticalPath {
			critical[id] = true
		}
		for id, sched := range schedules {
			sched.IsCritical = critical[id]
			schedules[id] = sched
		}
	default: // strict
		for _, id := range order {
			if schedules[id].IsCritical {
				criticalPath = append(criticalPath, id)
			}
		}
	}

	return Result{Tasks: schedules, Order: order, CriticalPath: criticalPath, ProjectEnd: projectEnd}
}

func sourcelessStart(t core.Task, projectStart *time.Time) time.Time {
	switch {
	case projectStart != nil && !t.Start.IsZero():
		if t.Start.After(*projectStart) {
			return core.NormalizeDay(t.Start)
		}
		return core.NormalizeDay(*projectStart)
	case projectStart != nil:
		return core.NormalizeDay(*projectStart)
	case !t.Start.IsZero():
		return core.NormalizeDay(t.Start)
	default:
		return time.Time{}
	}
}

// traceFlexibleChains walks a single greedy min-slack chain from each
// source-less task: at each step it descends to the successor with the
// smallest slack, ties broken by the successor's position in the graph's
// original declaration order (spec.md §4.5, §9's tie-break resolution).
// Only tasks visited this way are considered critical.
func traceFlexibleChains(g *graph, order []string, schedules map[string]TaskSchedule) []string {
	indexOf := make(map[string]int, len(g.order))
	for i, id := range g.order {
		indexOf[id] = i
	}

	visited := make(map[string]bool)
	var chain []string

	for _, id := range order {
		if len(g.revAdjList[id]) != 0 {
			continue // only source-less tasks start a trace
		}
		current := id
		for !visited[current] {
			visited[current] = true
			chain = append(chain, current)

			succs := g.adjList[current]
			if len(succs) == 0 {
				break
			}
			best := ""
			bestSlack := 0
			for _, s := range succs {
				if visited[s.taskID] {
					continue
				}
				slack := schedules[s.taskID].Slack
				if best == "" || slack < bestSlack ||
					(slack == bestSlack && indexOf[s.taskID] < indexOf[best]) {
					best = s.taskID
					bestSlack = slack
				}
			}
			if best == "" {
				break
			}
			current = best
		}
	}
	return chain
}
