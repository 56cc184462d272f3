// Package dataio implements the import/export wire contracts: JSON, CSV,
// and MS-Project XML, each round-trippable to the degree spec.md §4.7
// describes. PNG/PDF rendering is out of scope (rendering is an explicit
// Non-goal); RenderTarget (render.go) only describes the shape a host renderer
// would consume.
package dataio

import (
	"encoding/json"
	"fmt"
	"time"

	"ganttcore/internal/core"
)

const isoDayLayout = "2006-01-02"

// ExportOptions controls JSON/CSV export.
type ExportOptions struct {
	DateFormat       string // default isoDayLayout
	IncludeLinks     bool
	IncludeBaselines bool
	IncludeProgress  bool
}

// DefaultExportOptions mirrors spec.md §4.7's defaults: includeLinks=true,
// includeBaselines=false, includeProgress=true.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{DateFormat: isoDayLayout, IncludeLinks: true, IncludeProgress: true}
}

func (o ExportOptions) dateFormat() string {
	if o.DateFormat == "" {
		return isoDayLayout
	}
	return o.DateFormat
}

type jsonDoc struct {
	Version    string           `json:"version"`
	ExportedAt string           `json:"exportedAt"`
	Tasks      []json.RawMessage `json:"tasks"`
	Links      []jsonLink        `json:"links,omitempty"`
}

type jsonLink struct {
	ID     string        `json:"id"`
	Source string        `json:"source"`
	Target string        `json:"target"`
	Type   core.LinkType `json:"type"`
	Lag    int           `json:"lag,omitempty"`
}

// ExportJSON serialises tasks/links to the {version, exportedAt, tasks,
// links} wire shape. exportedAt is supplied by the caller (the core stays
// deterministic and never calls time.Now itself).
func ExportJSON(tasks []core.Task, links []core.Link, exportedAt time.Time, opts ExportOptions) ([]byte, error) {
	doc := jsonDoc{Version: "1.0", ExportedAt: exportedAt.UTC().Format(time.RFC3339)}

	for _, t := range tasks {
		raw, err := marshalTaskJSON(t, opts)
		if err != nil {
			return nil, fmt.Errorf("dataio: marshal task %q: %w", t.ID, err)
		}
		doc.Tasks = append(doc.Tasks, raw)
	}

	if opts.IncludeLinks {
		for _, l := range links {
			doc.Links = append(doc.Links, jsonLink{ID: l.ID, Source: l.Source, Target: l.Target, Type: l.EffectiveType(), Lag: l.Lag})
		}
	}

	return json.MarshalIndent(doc, "", "  ")
}

func marshalTaskJSON(t core.Task, opts ExportOptions) (json.RawMessage, error) {
	layout := opts.dateFormat()
	fields := map[string]any{
		"id":     t.ID,
		"text":   t.Text,
		"type":   t.Type,
		"parent": t.Parent,
	}
	if !t.Start.IsZero() {
		fields["start"] = t.Start.Format(layout)
	}
	if !t.End.IsZero() {
		fields["end"] = t.End.Format(layout)
	}
	if t.Duration > 0 {
		fields["duration"] = t.Duration
	}
	if opts.IncludeProgress {
		fields["progress"] = t.Progress
	}
	if t.Color != "" {
		fields["color"] = t.Color
	}
	if opts.IncludeBaselines {
		if !t.BaseStart.IsZero() {
			fields["baseStart"] = t.BaseStart.Format(layout)
		}
		if !t.BaseEnd.IsZero() {
			fields["baseEnd"] = t.BaseEnd.Format(layout)
		}
		if t.BaseDuration > 0 {
			fields["baseDuration"] = t.BaseDuration
		}
	}
	if len(t.SplitParts) > 0 {
		parts := make([]map[string]any, len(t.SplitParts))
		for i, p := range t.SplitParts {
			parts[i] = map[string]any{
				"id": p.ID, "start": p.Start.Format(layout), "end": p.End.Format(layout), "duration": p.Duration,
			}
		}
		fields["splitParts"] = parts
	}
	for k, v := range t.Attributes {
		if _, reserved := fields[k]; !reserved {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}

// ImportJSON parses the wire shape ExportJSON produces (and tolerates
// hand-authored JSON in the same shape). Unknown task attributes are
// preserved in Task.Attributes.
func ImportJSON(data []byte) ([]core.Task, []core.Link, error) {
	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, &core.ParseError{Message: "malformed JSON document", Err: err}
	}

	knownFields := map[string]bool{
		"id": true, "text": true, "type": true, "parent": true, "start": true,
		"end": true, "duration": true, "progress": true, "color": true,
		"baseStart": true, "baseEnd": true, "baseDuration": true, "splitParts": true,
	}

	tasks := make([]core.Task, 0, len(doc.Tasks))
	for _, raw := range doc.Tasks {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, nil, &core.ParseError{Message: "malformed task entry", Err: err}
		}
		task, err := taskFromFields(fields, knownFields)
		if err != nil {
			return nil, nil, err
		}
		tasks = append(tasks, task)
	}

	links := make([]core.Link, 0, len(doc.Links))
	for _, l := range doc.Links {
		links = append(links, core.Link{ID: l.ID, Source: l.Source, Target: l.Target, Type: normalizeLinkType(string(l.Type)), Lag: l.Lag})
	}

	return tasks, links, nil
}

func taskFromFields(fields map[string]any, known map[string]bool) (core.Task, error) {
	t := core.Task{Attributes: map[string]any{}}

	if v, ok := fields["id"].(string); ok {
		t.ID = v
	}
	if t.ID == "" {
		t.ID = core.NewID()
	}
	if v, ok := fields["text"].(string); ok {
		t.Text = v
	}
	if v, ok := fields["parent"].(string); ok {
		t.Parent = v
	}
	if v, ok := fields["type"].(string); ok {
		t.Type = core.TaskType(v)
	} else {
		t.Type = core.TaskTypeTask
	}
	if v, ok := fields["color"].(string); ok {
		t.Color = v
	}
	if v, ok := fields["progress"].(float64); ok {
		t.Progress = v
	}
	if v, ok := fields["duration"].(float64); ok {
		t.Duration = int(v)
	}
	if v, ok := fields["baseDuration"].(float64); ok {
		t.BaseDuration = int(v)
	}

	var err error
	if t.Start, err = parseJSONDate(fields["start"]); err != nil {
		return t, err
	}
	if t.End, err = parseJSONDate(fields["end"]); err != nil {
		return t, err
	}
	if t.BaseStart, err = parseJSONDate(fields["baseStart"]); err != nil {
		return t, err
	}
	if t.BaseEnd, err = parseJSONDate(fields["baseEnd"]); err != nil {
		return t, err
	}

	if rawParts, ok := fields["splitParts"].([]any); ok {
		for _, rp := range rawParts {
			pm, ok := rp.(map[string]any)
			if !ok {
				continue
			}
			part := core.SplitPart{}
			if v, ok := pm["id"].(string); ok {
				part.ID = v
			}
			if v, ok := pm["duration"].(float64); ok {
				part.Duration = int(v)
			}
			if part.Start, err = parseJSONDate(pm["start"]); err != nil {
				return t, err
			}
			if part.End, err = parseJSONDate(pm["end"]); err != nil {
				return t, err
			}
			t.SplitParts = append(t.SplitParts, part)
		}
	}

	for k, v := range fields {
		if !known[k] {
			t.Attributes[k] = v
		}
	}
	if len(t.Attributes) == 0 {
		t.Attributes = nil
	}

	if err := core.ValidateTask(t); err != nil {
		return t, core.WrapError(err, "invalid task entry")
	}

	return t, nil
}

func parseJSONDate(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, isoDayLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &core.ParseError{Value: s, Message: "unrecognised date format"}
}

func normalizeLinkType(raw string) core.LinkType {
	switch core.LinkType(raw) {
	case core.LinkFinishToStart, core.LinkStartToStart, core.LinkFinishToFinish, core.LinkStartToFinish:
		return core.LinkType(raw)
	default:
		return core.LinkFinishToStart
	}
}
