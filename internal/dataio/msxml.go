package dataio

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ganttcore/internal/core"
)

const msXMLDateLayout = "2006-01-02T15:04:05"
const msXMLHour = "08:00:00"

// msLinkCode maps a Link.Type to the MS-Project numeric code (spec.md §4.7).
var msLinkCode = map[core.LinkType]int{
	core.LinkFinishToStart:  0,
	core.LinkStartToStart:   1,
	core.LinkFinishToFinish: 2,
	core.LinkStartToFinish:  3,
}

var msLinkFromCode = map[int]core.LinkType{
	0: core.LinkFinishToStart,
	1: core.LinkStartToStart,
	2: core.LinkFinishToFinish,
	3: core.LinkStartToFinish,
}

type msProject struct {
	XMLName xml.Name `xml:"Project"`
	XMLNS   string   `xml:"xmlns,attr"`
	Tasks   msTasks  `xml:"Tasks"`
	Links   msLinks  `xml:"Links"`
}

type msTasks struct {
	Task []msTask `xml:"Task"`
}

type msTask struct {
	UID             int         `xml:"UID"`
	ID              int         `xml:"ID"`
	Name            string      `xml:"Name"`
	Start           string      `xml:"Start"`
	Finish          string      `xml:"Finish"`
	Duration        string      `xml:"Duration"`
	PercentComplete int         `xml:"PercentComplete"`
	OutlineLevel    int         `xml:"OutlineLevel"`
	Baseline        *msBaseline `xml:"Baseline,omitempty"`
}

type msBaseline struct {
	Start    string `xml:"Start,omitempty"`
	Finish   string `xml:"Finish,omitempty"`
	Duration string `xml:"Duration,omitempty"`
}

type msLinks struct {
	PredecessorLink []msLink `xml:"PredecessorLink"`
}

type msLink struct {
	PredecessorUID int `xml:"PredecessorUID"`
	UID            int `xml:"UID"`
	Type           int `xml:"Type"`
	LinkLag        int `xml:"LinkLag,omitempty"`
}

// ExportMSProjectXML emits a <Project> document per spec.md §4.7: each task
// gets a 1-based UID/ID, fixed-hour Start/Finish timestamps, an ISO-8601
// "PnD" Duration, rounded PercentComplete, and OutlineLevel (1 for root
// tasks, 2 otherwise). Links map via the e2s=0/s2s=1/e2e=2/s2e=3 code table.
func ExportMSProjectXML(tasks []core.Task, links []core.Link, opts ExportOptions) ([]byte, error) {
	uidOf := make(map[string]int, len(tasks))
	for i, t := range tasks {
		uidOf[t.ID] = i + 1
	}

	doc := msProject{XMLNS: "http://schemas.microsoft.com/project"}
	for i, t := range tasks {
		uid := i + 1
		outline := 2
		if t.Parent == "" {
			outline = 1
		}
		mt := msTask{
			UID:             uid,
			ID:              uid,
			Name:            t.Text,
			PercentComplete: int(t.Progress*100 + 0.5),
			OutlineLevel:    outline,
		}
		if !t.Start.IsZero() {
			mt.Start = t.Start.Format("2006-01-02") + "T" + msXMLHour
		}
		if !t.End.IsZero() {
			mt.Finish = t.End.Format("2006-01-02") + "T" + msXMLHour
		}
		duration := t.Duration
		if duration == 0 {
			duration = 1
		}
		mt.Duration = fmt.Sprintf("P%dD", duration)

		if opts.IncludeBaselines && (!t.BaseStart.IsZero() || !t.BaseEnd.IsZero() || t.BaseDuration > 0) {
			bl := &msBaseline{}
			if !t.BaseStart.IsZero() {
				bl.Start = t.BaseStart.Format("2006-01-02") + "T" + msXMLHour
			}
			if !t.BaseEnd.IsZero() {
				bl.Finish = t.BaseEnd.Format("2006-01-02") + "T" + msXMLHour
			}
			if t.BaseDuration > 0 {
				bl.Duration = fmt.Sprintf("P%dD", t.BaseDuration)
			}
			mt.Baseline = bl
		}

		doc.Tasks.Task = append(doc.Tasks.Task, mt)
	}

	if opts.IncludeLinks {
		for _, l := range links {
			predUID, okP := uidOf[l.Source]
			succUID, okS := uidOf[l.Target]
			if !okP || !okS {
				continue
			}
			doc.Links.PredecessorLink = append(doc.Links.PredecessorLink, msLink{
				PredecessorUID: predUID,
				UID:            succUID,
				Type:           msLinkCode[l.EffectiveType()],
				LinkLag:        l.Lag,
			})
		}
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

var durationDaysPattern = regexp.MustCompile(`(\d+)\s*days?`)
var durationHoursPattern = regexp.MustCompile(`(\d+)\s*hrs?`)
var isoDurationPattern = regexp.MustCompile(`^P(\d+)D$`)

func parseMSDuration(s string) int {
	if m := isoDurationPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := durationDaysPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := durationHoursPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n / 8
	}
	return 1
}

func parseMSDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(msXMLDateLayout, s); err == nil {
		return core.NormalizeDay(t)
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}

// ImportMSProjectXML parses an MS-Project XML document, assigning task IDs
// as "ms-{UID}" and reconstructing parent/child hierarchy from
// OutlineLevel via a stack over source order (spec.md §4.7, §9's
// preserved-import-behaviour note: every imported task's type is "task"
// regardless of OutlineLevel).
func ImportMSProjectXML(data []byte) ([]core.Task, []core.Link, error) {
	var doc msProject
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, &core.ParseError{Message: "malformed MS-Project XML document", Err: err}
	}

	idByUID := make(map[int]string, len(doc.Tasks.Task))
	for _, mt := range doc.Tasks.Task {
		idByUID[mt.UID] = fmt.Sprintf("ms-%d", mt.UID)
	}

	var tasks []core.Task
	type stackEntry struct {
		level int
		id    string
	}
	var stack []stackEntry

	for _, mt := range doc.Tasks.Task {
		id := idByUID[mt.UID]
		task := core.Task{
			ID:       id,
			Text:     mt.Name,
			Type:     core.TaskTypeTask,
			Start:    parseMSDate(mt.Start),
			End:      parseMSDate(mt.Finish),
			Duration: parseMSDuration(mt.Duration),
			Progress: float64(mt.PercentComplete) / 100,
		}
		if mt.Baseline != nil {
			task.BaseStart = parseMSDate(mt.Baseline.Start)
			task.BaseEnd = parseMSDate(mt.Baseline.Finish)
			if mt.Baseline.Duration != "" {
				task.BaseDuration = parseMSDuration(mt.Baseline.Duration)
			}
		}

		for len(stack) > 0 && stack[len(stack)-1].level >= mt.OutlineLevel {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			task.Parent = stack[len(stack)-1].id
		}
		stack = append(stack, stackEntry{level: mt.OutlineLevel, id: id})

		tasks = append(tasks, task)
	}

	var links []core.Link
	for i, ml := range doc.Links.PredecessorLink {
		src, okP := idByUID[ml.PredecessorUID]
		dst, okS := idByUID[ml.UID]
		if !okP || !okS {
			continue
		}
		typ, ok := msLinkFromCode[ml.Type]
		if !ok {
			typ = core.LinkFinishToStart
		}
		links = append(links, core.Link{
			ID:     fmt.Sprintf("ms-link-%d", i+1),
			Source: src,
			Target: dst,
			Type:   typ,
			Lag:    ml.LinkLag,
		})
	}

	return tasks, links, nil
}
