// Command ganttcli loads a project data file, schedules its tasks, and
// reports the computed dates and any conflicts.
//
// Usage:
//
//	ganttcli --file project.json
//	ganttcli --file project.csv --critical
//	ganttcli --file project.json --watch
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"ganttcore/internal/config"
	"ganttcore/internal/core"
	"ganttcore/internal/criticalpath"
	"ganttcore/internal/dataio"
	"ganttcore/internal/scheduler"
	"ganttcore/internal/tui"
	"ganttcore/internal/watch"
)

const (
	fConfig   = "config"
	fFile     = "file"
	fCritical = "critical"
	fMode     = "mode"
	fWatch    = "watch"
	fTUI      = "tui"
)

var logger = core.NewDefaultLogger()

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ganttcli",
		Usage: "schedule a Gantt project and report conflicts",

		Writer:    os.Stdout,
		ErrWriter: os.Stderr,

		Flags: []cli.Flag{
			&cli.PathFlag{Name: fConfig, Required: false, Value: "gantt.yaml", Usage: "config file(s), comma-separated"},
			&cli.PathFlag{Name: fFile, Required: false, Usage: "project data file (.json, .csv, .xml) — overrides config"},
			&cli.BoolFlag{Name: fCritical, Required: false, Usage: "print the critical path"},
			&cli.StringFlag{Name: fMode, Required: false, Value: "", Usage: "critical path mode: strict or flexible"},
			&cli.BoolFlag{Name: fWatch, Required: false, Usage: "reschedule on every change to the data file"},
			&cli.BoolFlag{Name: fTUI, Required: false, Usage: "open the interactive Gantt-bar viewer instead of printing a report"},
		},

		Action: action,
	}
}

func action(c *cli.Context) error {
	cfg, err := config.New(strings.Split(c.Path(fConfig), ",")...)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	dataFile := c.Path(fFile)
	if dataFile == "" {
		dataFile = cfg.DataFile
	}
	if dataFile == "" {
		return fmt.Errorf("no project file given: pass --file or set dataFile in config")
	}

	if !c.Bool(fWatch) {
		return runOnce(cfg, dataFile, c)
	}

	fmt.Printf("watching %s for changes (ctrl-c to stop)\n", dataFile)
	stop, err := watch.Watch(dataFile, func() {
		if err := runOnce(cfg, dataFile, c); err != nil {
			logger.Error("reschedule failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("starting watch: %w", err)
	}
	defer stop()

	if err := runOnce(cfg, dataFile, c); err != nil {
		return err
	}
	select {}
}

func runOnce(cfg config.Config, dataFile string, c *cli.Context) error {
	tasks, links, err := loadProject(dataFile)
	if err != nil {
		return fmt.Errorf("loading %s: %w", dataFile, err)
	}

	cal, err := cfg.Calendar()
	if err != nil {
		return fmt.Errorf("building calendar: %w", err)
	}

	projectStart, err := cfg.ProjectStart()
	if err != nil {
		return err
	}
	projectEnd, err := cfg.ProjectEnd()
	if err != nil {
		return err
	}

	schedCfg := scheduler.Config{Calendar: &cal}
	if !projectStart.IsZero() {
		schedCfg.ProjectStart = &projectStart
	}
	if !projectEnd.IsZero() {
		schedCfg.ProjectEnd = &projectEnd
	}

	result := scheduler.ScheduleTasks(tasks, links, nil, schedCfg, nil)

	mode := c.String(fMode)
	if mode == "" {
		mode = cfg.CriticalMode
	}
	scheduledTasks := applySchedule(tasks, result)
	cpResult := criticalpath.CalculateCriticalPath(scheduledTasks, links, criticalpath.Config{
		Mode:     criticalpath.Mode(mode),
		Calendar: &cal,
	})

	if c.Bool(fTUI) {
		return tui.Run(tui.BuildRows(tasks, result, cpResult))
	}

	printScheduleReport(result)
	if c.Bool(fCritical) {
		printCriticalPathReport(cpResult)
	}

	return nil
}

func applySchedule(tasks []core.Task, result scheduler.Result) []core.Task {
	out := make([]core.Task, len(tasks))
	for i, t := range tasks {
		if r, ok := result.Tasks[t.ID]; ok {
			t.Start, t.End = r.Start, r.End
		}
		out[i] = t
	}
	return out
}

func loadProject(path string) ([]core.Task, []core.Link, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return dataio.ImportJSON(data)
	case ".csv":
		tasks, err := dataio.ImportCSV(strings.NewReader(string(data)))
		return tasks, nil, err
	case ".xml":
		return dataio.ImportMSProjectXML(data)
	default:
		return nil, nil, fmt.Errorf("unrecognized project file extension %q", filepath.Ext(path))
	}
}

func printScheduleReport(result scheduler.Result) {
	p := termenv.ColorProfile()

	fmt.Println("Schedule")
	fmt.Println(strings.Repeat("-", 40))
	for _, id := range result.AffectedTaskIDs {
		t := result.Tasks[id]
		fmt.Printf("  %s: %s -> %s\n", id, t.Start.Format("2006-01-02"), t.End.Format("2006-01-02"))
	}

	if len(result.Conflicts) == 0 {
		fmt.Println(termenv.String("no conflicts").Foreground(p.Color("#4caf50")))
		return
	}

	fmt.Println(termenv.String(fmt.Sprintf("%d conflict(s):", len(result.Conflicts))).Foreground(p.Color("#ff9800")))
	for _, conflict := range result.Conflicts {
		fmt.Printf("  [%s] task %s: %s\n", conflict.Type, conflict.TaskID, conflict.Message)
	}
}

func printCriticalPathReport(result criticalpath.Result) {
	p := termenv.ColorProfile()

	fmt.Println()
	fmt.Println("Critical Path")
	fmt.Println(strings.Repeat("-", 40))
	if result.Tasks == nil {
		fmt.Println(termenv.String("cyclic dependency graph — critical path undefined").Foreground(p.Color("#f44336")).Bold())
		return
	}
	for _, id := range result.CriticalPath {
		fmt.Println(termenv.String("  " + id).Foreground(p.Color("#f44336")).Bold())
	}
	fmt.Printf("project end: %s\n", result.ProjectEnd.Format("2006-01-02"))
}
