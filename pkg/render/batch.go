package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/alde/glassmap/internal/worker"
	"github.com/alde/glassmap/pkg/glassmap"
	"github.com/alde/glassmap/pkg/preset"
	"github.com/alde/glassmap/pkg/progress"
)

// Task names one map pair to render
type Task struct {
	Name     string
	Geometry glassmap.Geometry
}

// PlanTasks crosses presets with sizes. With no sizes each preset renders
// at its own size under its plain name; otherwise tasks are named
// <preset>-<size>.
func PlanTasks(presets []preset.Preset, sizes []int) []Task {
	var tasks []Task
	for _, p := range presets {
		if len(sizes) == 0 {
			tasks = append(tasks, Task{Name: p.Name, Geometry: p.Geometry()})
			continue
		}
		for _, size := range sizes {
			geom := p.Geometry()
			geom.Size = size
			tasks = append(tasks, Task{Name: p.Name + "-" + strconv.Itoa(size), Geometry: geom})
		}
	}
	return tasks
}

// RenderJob adapts a Task to the worker pool. The stats of a successful
// render are delivered through the collect callback.
type RenderJob struct {
	Renderer *Renderer
	Task     Task
	collect  func(Stats)
}

// NewRenderJob creates a job that passes its stats to collect when done
func NewRenderJob(r *Renderer, task Task, collect func(Stats)) *RenderJob {
	return &RenderJob{Renderer: r, Task: task, collect: collect}
}

// ID identifies the job in results and progress output
func (j *RenderJob) ID() string {
	return j.Task.Name
}

// Process renders the task
func (j *RenderJob) Process(ctx context.Context) error {
	stats, err := j.Renderer.Render(ctx, j.Task.Name, j.Task.Geometry)
	if err != nil {
		return err
	}
	if j.collect != nil {
		j.collect(stats)
	}
	return nil
}

// ErrNotRun marks a task the worker pool never reported on
var ErrNotRun = errors.New("render task did not run")

// Failure records a task that could not be rendered
type Failure struct {
	Name  string
	Error error
}

// Report summarizes a batch run
type Report struct {
	Rendered   []Stats
	Failed     []Failure
	TotalBytes uint64
	Workers    int
	Duration   time.Duration
}

// BatchOptions configure a batch run
type BatchOptions struct {
	Workers int
	Tracker *progress.Tracker
}

// Batch renders every task on a worker pool. It returns an error when every
// task failed or when ctx was cancelled before all tasks rendered; other
// partial failures are listed in the report. Every task ends up in exactly
// one of Rendered or Failed.
func (r *Renderer) Batch(ctx context.Context, tasks []Task, opts BatchOptions) (Report, error) {
	start := time.Now()

	var mu sync.Mutex
	var report Report
	collect := func(s Stats) {
		mu.Lock()
		defer mu.Unlock()
		report.Rendered = append(report.Rendered, s)
		report.TotalBytes += s.BytesWritten
	}

	var poolOpts []worker.Option
	if opts.Tracker != nil {
		poolOpts = append(poolOpts, worker.WithTracker(opts.Tracker))
	}
	pool := worker.NewPool(ctx, opts.Workers, poolOpts...)
	report.Workers = pool.WorkerCount()

	jobs := make([]worker.Job, len(tasks))
	for i, task := range tasks {
		jobs[i] = NewRenderJob(r, task, collect)
	}

	r.Logger.Info("starting batch",
		"tasks", len(tasks),
		"workers", pool.WorkerCount(),
		"format", string(r.Format),
		"output", r.OutputDir,
	)

	reported := make(map[string]int, len(tasks))
	for _, res := range pool.Run(jobs) {
		reported[res.JobID]++
		if res.Error != nil {
			r.Logger.Warn("render failed", "task", res.JobID, "error", res.Error)
			report.Failed = append(report.Failed, Failure{Name: res.JobID, Error: res.Error})
		}
	}

	// tasks the pool never reported on did not run
	for _, task := range tasks {
		if reported[task.Name] > 0 {
			reported[task.Name]--
			continue
		}
		report.Failed = append(report.Failed, Failure{Name: task.Name, Error: notRun(ctx)})
	}

	sort.Slice(report.Rendered, func(i, j int) bool { return report.Rendered[i].Name < report.Rendered[j].Name })
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Name < report.Failed[j].Name })
	report.Duration = time.Since(start)

	if err := ctx.Err(); err != nil && len(report.Failed) > 0 {
		return report, fmt.Errorf("batch interrupted with %d of %d tasks rendered: %w", len(report.Rendered), len(tasks), err)
	}
	if len(report.Rendered) == 0 && len(report.Failed) > 0 {
		return report, fmt.Errorf("all %d render tasks failed: %w", len(tasks), report.Failed[0].Error)
	}
	return report, nil
}

func notRun(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrNotRun
}

// PrintSummary writes the human readable batch summary
func PrintSummary(w io.Writer, report Report) {
	fmt.Fprintf(w, "\nBatch completed\n")
	fmt.Fprintf(w, "================================================================\n")
	fmt.Fprintf(w, "Render Summary\n")
	fmt.Fprintf(w, "================================================================\n")

	for _, s := range report.Rendered {
		fmt.Fprintf(w, "%-20s %5dpx  max displacement %6.2f  %s\n",
			s.Name, s.Geometry.Size, s.MaxDisplacement, humanize.Bytes(s.BytesWritten))
	}
	for _, f := range report.Failed {
		fmt.Fprintf(w, "%-20s FAILED: %v\n", f.Name, f.Error)
	}

	fmt.Fprintf(w, "----------------------------------------------------------------\n")
	fmt.Fprintf(w, "Map pairs:     %s rendered, %d failed\n", humanize.Comma(int64(len(report.Rendered))), len(report.Failed))
	fmt.Fprintf(w, "Written:       %s\n", humanize.Bytes(report.TotalBytes))
	fmt.Fprintf(w, "Workers:       %d\n", report.Workers)
	fmt.Fprintf(w, "Processing:    %v\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "================================================================\n")
}
