// Package tui provides a read-only, scrollable terminal viewer over a
// computed Gantt schedule: one row per task, a proportional bar spanning
// its start/end dates, and critical-path tasks highlighted.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ganttcore/internal/core"
	"ganttcore/internal/criticalpath"
	"ganttcore/internal/scheduler"
)

var (
	barStyle         = lipgloss.NewStyle().Background(lipgloss.Color("#3b82f6")).Foreground(lipgloss.Color("#ffffff"))
	criticalBarStyle = lipgloss.NewStyle().Background(lipgloss.Color("#ef4444")).Foreground(lipgloss.Color("#ffffff")).Bold(true)
	milestoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true)
	headerStyle      = lipgloss.NewStyle().Bold(true).Underline(true)
	labelWidth       = 24
	barAreaWidth     = 60
)

// Row is one task's rendered schedule, precomputed from a scheduler.Result
// and an optional criticalpath.Result so View stays a pure string builder.
type Row struct {
	Task       core.Task
	Start      time.Time
	End        time.Time
	IsCritical bool
}

// Model is the bubbletea model for the Gantt viewer.
type Model struct {
	rows      []Row
	rangeFrom time.Time
	rangeTo   time.Time

	viewport viewport.Model
	ready    bool
	cursor   int
}

// BuildRows merges a scheduler.Result (for dates) with an optional
// criticalpath.Result (for highlighting) into render-ready Rows, sorted by
// start date.
func BuildRows(tasks []core.Task, schedule scheduler.Result, cp criticalpath.Result) []Row {
	critical := make(map[string]bool, len(cp.CriticalPath))
	for _, id := range cp.CriticalPath {
		critical[id] = true
	}

	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		start, end := t.Start, t.End
		if r, ok := schedule.Tasks[t.ID]; ok {
			start, end = r.Start, r.End
		}
		rows = append(rows, Row{Task: t, Start: start, End: end, IsCritical: critical[t.ID]})
	}

	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].Start.Before(rows[j-1].Start); j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
	return rows
}

// New builds a Model ready to pass to tea.NewProgram.
func New(rows []Row) Model {
	from, to := projectWindow(rows)
	return Model{rows: rows, rangeFrom: from, rangeTo: to}
}

func projectWindow(rows []Row) (time.Time, time.Time) {
	if len(rows) == 0 {
		now := time.Now()
		return now, now.AddDate(0, 1, 0)
	}
	from, to := rows[0].Start, rows[0].End
	for _, r := range rows[1:] {
		if r.Start.Before(from) {
			from = r.Start
		}
		if r.End.After(to) {
			to = r.End
		}
	}
	return from, to
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-2)
			m.viewport.SetContent(m.renderRows())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 2
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "loading…"
	}
	header := headerStyle.Render(fmt.Sprintf("%-*s %s", labelWidth, "Task", "Schedule"))
	footer := "↑/↓ or j/k to scroll · q to quit"
	return header + "\n" + m.viewport.View() + "\n" + footer
}

func (m Model) renderRows() string {
	var b strings.Builder
	span := m.rangeTo.Sub(m.rangeFrom)
	if span <= 0 {
		span = 24 * time.Hour
	}

	for _, row := range m.rows {
		label := row.Task.Text
		if len(label) > labelWidth {
			label = label[:labelWidth-1] + "…"
		}
		if row.Task.Type == core.TaskTypeMilestone {
			label = milestoneStyle.Render("◆ " + label)
		}

		bar := renderBar(row, m.rangeFrom, span)
		fmt.Fprintf(&b, "%-*s %s\n", labelWidth, label, bar)
	}
	return b.String()
}

func renderBar(row Row, rangeFrom time.Time, span time.Duration) string {
	offset := int(float64(barAreaWidth) * row.Start.Sub(rangeFrom).Seconds() / span.Seconds())
	width := int(float64(barAreaWidth)*row.End.Sub(row.Start).Seconds()/span.Seconds()) + 1
	if offset < 0 {
		offset = 0
	}
	if offset > barAreaWidth {
		offset = barAreaWidth
	}
	if offset+width > barAreaWidth {
		width = barAreaWidth - offset
	}
	if width < 1 {
		width = 1
	}

	style := barStyle
	if row.IsCritical {
		style = criticalBarStyle
	}

	return strings.Repeat(" ", offset) + style.Render(strings.Repeat(" ", width))
}

// Run starts the interactive viewer over rows.
func Run(rows []Row) error {
	p := tea.NewProgram(New(rows), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
