// Package core holds the domain model shared by every scheduling component:
// Task, Link, Calendar and Constraint, plus the structured logger and typed
// errors the rest of the module builds on.
package core

import "time"

// TaskType is a closed tagged variant. Every component that branches on it
// must switch exhaustively rather than model it via subclassing, because a
// task's type can change at runtime when children are added or removed
// (see ShouldConvertToSummary / ShouldConvertToTask in package summary).
type TaskType string

const (
	TaskTypeTask      TaskType = "task"
	TaskTypeMilestone TaskType = "milestone"
	TaskTypeSummary   TaskType = "summary"
)

// SplitPart is one contiguous segment of a non-contiguous (split) task.
type SplitPart struct {
	ID       string
	Start    time.Time
	End      time.Time
	Duration int
}

// Task is a single work item. Either Duration or (Start, End) is the
// authoritative pair; the other is derived (see invariant 4 in spec.md §3).
// End is inclusive.
type Task struct {
	ID       string
	Text     string
	Start    time.Time
	End      time.Time
	Duration int
	Progress float64
	Type     TaskType
	Parent   string

	BaseStart    time.Time
	BaseEnd      time.Time
	BaseDuration int

	SplitParts []SplitPart

	Color      string
	Attributes map[string]any
}

// IsSplit reports whether the task has been partitioned into two or more
// non-contiguous parts.
func (t Task) IsSplit() bool {
	return len(t.SplitParts) >= 2
}

// LinkType is the typed directed-dependency kind between two tasks.
type LinkType string

const (
	LinkFinishToStart  LinkType = "e2s"
	LinkStartToStart   LinkType = "s2s"
	LinkFinishToFinish LinkType = "e2e"
	LinkStartToFinish  LinkType = "s2e"
)

// Link is a typed, lagged dependency edge from Source to Target.
type Link struct {
	ID     string
	Source string
	Target string
	Type   LinkType
	Lag    int
}

// EffectiveType defaults an empty/unknown link type to finish-to-start,
// the most common dependency and the scheduler's fallback per spec.md §4.6.
func (l Link) EffectiveType() LinkType {
	switch l.Type {
	case LinkFinishToStart, LinkStartToStart, LinkFinishToFinish, LinkStartToFinish:
		return l.Type
	default:
		return LinkFinishToStart
	}
}

// Calendar is the shared, read-only working-time predicate. Holidays
// override weekends; ExtraWorkdays override the default weekend rule too
// (see package calendar's IsWorkday for precedence order).
type Calendar struct {
	Workdays      map[time.Weekday]bool
	Holidays      map[string]bool // normalized "2006-01-02" keys
	ExtraWorkdays map[string]bool
	WorkHours     *WorkHours
}

// WorkHours is informational only for the core; it is carried through for
// host renderers and is not consulted by any calendar/scheduler arithmetic.
type WorkHours struct {
	Start string
	End   string
}

// DefaultCalendar returns a Monday-Friday calendar with no holidays.
func DefaultCalendar() Calendar {
	return Calendar{
		Workdays: map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
			time.Saturday:  false,
			time.Sunday:    false,
		},
		Holidays:      map[string]bool{},
		ExtraWorkdays: map[string]bool{},
	}
}

// ConstraintType enumerates the six MS-Project-style date constraints a
// task may carry.
type ConstraintType string

const (
	ConstraintStartNoEarlierThan  ConstraintType = "start-no-earlier-than"
	ConstraintStartNoLaterThan    ConstraintType = "start-no-later-than"
	ConstraintFinishNoEarlierThan ConstraintType = "finish-no-earlier-than"
	ConstraintFinishNoLaterThan   ConstraintType = "finish-no-later-than"
	ConstraintMustStartOn         ConstraintType = "must-start-on"
	ConstraintMustFinishOn        ConstraintType = "must-finish-on"
)

// Constraint pins a task's start or finish relative to a fixed date.
type Constraint struct {
	Type ConstraintType
	Date time.Time
}

// NormalizeDay zeroes the time-of-day component so calendar/date
// comparisons are unaffected by hour/minute/second noise, per spec.md §4.1
// and §9's date-precision note.
func NormalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DisplayEnd returns End set to 23:59:59.999 so the interval reads as
// visually inclusive when rendered, per spec.md §9. Scheduler arithmetic
// must never use this value; it is for display/export only.
func DisplayEnd(end time.Time) time.Time {
	return time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999000000, end.Location())
}
