// Package calendar implements the working-time predicate and workday
// arithmetic that every other scheduling component (split tasks, summary
// rollups, critical path, scheduler) builds on.
package calendar

import (
	"time"

	"ganttcore/internal/core"
)

const dayKeyLayout = "2006-01-02"

func dayKey(t time.Time) string {
	return core.NormalizeDay(t).Format(dayKeyLayout)
}

// IsWorkday reports whether date is a working day under cal: not a holiday,
// and either its weekday is a configured workday or the date is listed as
// an extra workday. Holidays always override; extra workdays override the
// weekend rule (spec.md §4.1).
func IsWorkday(date time.Time, cal core.Calendar) bool {
	key := dayKey(date)
	if cal.Holidays[key] {
		return false
	}
	if cal.ExtraWorkdays[key] {
		return true
	}
	return cal.Workdays[core.NormalizeDay(date).Weekday()]
}

// GetWorkdaysInRange returns every workday in [start, end] inclusive, in
// ascending order.
func GetWorkdaysInRange(start, end time.Time, cal core.Calendar) []time.Time {
	start = core.NormalizeDay(start)
	end = core.NormalizeDay(end)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWorkday(d, cal) {
			days = append(days, d)
		}
	}
	return days
}

// CountWorkdays returns the number of workdays in [start, end] inclusive.
func CountWorkdays(start, end time.Time, cal core.Calendar) int {
	return len(GetWorkdaysInRange(start, end, cal))
}

// AddWorkdays advances date by |n| workdays in the sign of n, stepping
// day-by-day via AddDate (never by adding n*24h, per spec.md §9's
// DST-safety resolution). n == 0 snaps date forward to the next workday
// (or returns date itself if it is already one) — this is what the
// scheduler relies on to "snap an anchor onto a workday".
func AddWorkdays(date time.Time, n int, cal core.Calendar) time.Time {
	d := core.NormalizeDay(date)

	if n == 0 {
		for !IsWorkday(d, cal) {
			d = d.AddDate(0, 0, 1)
		}
		return d
	}

	step := 1
	if n < 0 {
		step = -1
		n = -n
	}

	for n > 0 {
		d = d.AddDate(0, 0, step)
		if IsWorkday(d, cal) {
			n--
		}
	}
	return d
}

// GetNextWorkday returns the first workday strictly after date.
func GetNextWorkday(date time.Time, cal core.Calendar) time.Time {
	d := core.NormalizeDay(date).AddDate(0, 0, 1)
	for !IsWorkday(d, cal) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// GetPreviousWorkday returns the first workday strictly before date.
func GetPreviousWorkday(date time.Time, cal core.Calendar) time.Time {
	d := core.NormalizeDay(date).AddDate(0, 0, -1)
	for !IsWorkday(d, cal) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// AdjustTaskDatesToWorkdays shifts start forward to the next workday if
// needed, then derives end from duration.
func AdjustTaskDatesToWorkdays(start time.Time, duration int, cal core.Calendar) (adjStart, adjEnd time.Time) {
	adjStart = AddWorkdays(start, 0, cal)
	if duration < 1 {
		duration = 1
	}
	adjEnd = AddWorkdays(adjStart, duration-1, cal)
	return adjStart, adjEnd
}

// AddHoliday returns a copy of cal with date added to the holiday set.
func AddHoliday(cal core.Calendar, date time.Time) core.Calendar {
	out := cloneCalendar(cal)
	out.Holidays[dayKey(date)] = true
	return out
}

// RemoveHoliday returns a copy of cal with date removed from the holiday set.
func RemoveHoliday(cal core.Calendar, date time.Time) core.Calendar {
	out := cloneCalendar(cal)
	delete(out.Holidays, dayKey(date))
	return out
}

func cloneCalendar(cal core.Calendar) core.Calendar {
	out := core.Calendar{
		Workdays:      make(map[time.Weekday]bool, len(cal.Workdays)),
		Holidays:      make(map[string]bool, len(cal.Holidays)),
		ExtraWorkdays: make(map[string]bool, len(cal.ExtraWorkdays)),
		WorkHours:     cal.WorkHours,
	}
	for k, v := range cal.Workdays {
		out.Workdays[k] = v
	}
	for k, v := range cal.Holidays {
		out.Holidays[k] = v
	}
	for k, v := range cal.ExtraWorkdays {
		out.ExtraWorkdays[k] = v
	}
	return out
}
