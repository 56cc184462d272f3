package dataio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ganttcore/internal/core"
)

var csvBaseColumns = []string{"id", "text", "start", "end", "duration", "progress", "type", "parent"}
var csvBaselineColumns = []string{"base_start", "base_end", "base_duration"}

// ExportCSV writes the header row plus one row per task. Fields containing
// a comma, quote, or newline are RFC-4180 quoted (doubled embedded quotes)
// — encoding/csv.Writer handles this automatically.
func ExportCSV(tasks []core.Task, opts ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string(nil), csvBaseColumns...)
	if opts.IncludeBaselines {
		header = append(header, csvBaselineColumns...)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	layout := opts.dateFormat()
	for _, t := range tasks {
		row := []string{
			t.ID, t.Text,
			formatCSVDate(t.Start, layout), formatCSVDate(t.End, layout),
			strconv.Itoa(t.Duration), strconv.FormatFloat(t.Progress, 'f', -1, 64),
			string(t.Type), t.Parent,
		}
		if opts.IncludeBaselines {
			row = append(row,
				formatCSVDate(t.BaseStart, layout), formatCSVDate(t.BaseEnd, layout),
				strconv.Itoa(t.BaseDuration),
			)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCSVDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// ImportCSV parses a CSV document whose first row is a header (matched
// case-insensitively). Rows without an id column are dropped. A malformed
// field does not abort the whole import: the offending row is skipped and
// its error is accumulated into the returned MultiError, so one bad row
// doesn't cost every other row in a large import.
func ImportCSV(r io.Reader) ([]core.Task, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &core.ParseError{Message: "malformed CSV document", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	colIndex := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	idIdx, hasID := colIndex["id"]
	if !hasID {
		return nil, &core.ParseError{Message: "CSV header is missing an id column"}
	}

	var tasks []core.Task
	errs := core.NewMultiError()
	for rowNum, row := range rows[1:] {
		id := ""
		if idIdx < len(row) {
			id = row[idIdx]
		}
		if id == "" {
			continue
		}

		task, err := parseCSVRow(id, row, colIndex, rowNum+2)
		if err != nil {
			errs.Add(err)
			continue
		}
		if err := core.ValidateTask(task); err != nil {
			errs.Add(core.WrapError(err, fmt.Sprintf("row %d", rowNum+2)))
			continue
		}
		tasks = append(tasks, task)
	}

	return tasks, errs.AsError()
}

func parseCSVRow(id string, row []string, colIndex map[string]int, rowNum int) (core.Task, error) {
	get := func(col string) (string, bool) {
		idx, ok := colIndex[col]
		if !ok || idx >= len(row) {
			return "", false
		}
		return row[idx], true
	}

	task := core.Task{ID: id, Type: core.TaskTypeTask}
	if v, ok := get("text"); ok {
		task.Text = v
	}
	if v, ok := get("parent"); ok {
		task.Parent = v
	}
	if v, ok := get("type"); ok && v != "" {
		task.Type = core.TaskType(v)
	}
	if v, ok := get("duration"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return task, &core.ParseError{Row: rowNum, Column: "duration", Value: v, Message: "expected an integer", Err: err}
		}
		task.Duration = n
	}
	if v, ok := get("progress"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return task, &core.ParseError{Row: rowNum, Column: "progress", Value: v, Message: "expected a float", Err: err}
		}
		task.Progress = f
	}

	var err error
	if v, ok := get("start"); ok && v != "" {
		if task.Start, err = parseCSVDate(v); err != nil {
			return task, &core.ParseError{Row: rowNum, Column: "start", Value: v, Message: "unrecognised date format", Err: err}
		}
	}
	if v, ok := get("end"); ok && v != "" {
		if task.End, err = parseCSVDate(v); err != nil {
			return task, &core.ParseError{Row: rowNum, Column: "end", Value: v, Message: "unrecognised date format", Err: err}
		}
	}
	if v, ok := get("base_start"); ok && v != "" {
		if task.BaseStart, err = parseCSVDate(v); err != nil {
			return task, &core.ParseError{Row: rowNum, Column: "base_start", Value: v, Message: "unrecognised date format", Err: err}
		}
	}
	if v, ok := get("base_end"); ok && v != "" {
		if task.BaseEnd, err = parseCSVDate(v); err != nil {
			return task, &core.ParseError{Row: rowNum, Column: "base_end", Value: v, Message: "unrecognised date format", Err: err}
		}
	}
	if v, ok := get("base_duration"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return task, &core.ParseError{Row: rowNum, Column: "base_duration", Value: v, Message: "expected an integer", Err: err}
		}
		task.BaseDuration = n
	}

	return task, nil
}

// csvDateLayouts mirrors the teacher CSV reader's tolerance for several
// common spreadsheet date formats (ISO, US, EU, slash, dot, space).
var csvDateLayouts = []string{
	"2006-01-02", "01/02/2006", "02/01/2006", "2006/01/02",
	"02.01.2006", "2006.01.02", "Jan 2 2006", "2 Jan 2006",
}

func parseCSVDate(v string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no matching date layout for %q", v)
}
