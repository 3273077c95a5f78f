package progress

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// WorkerState tracks what a single worker is rendering
type WorkerState struct {
	WorkerID   int
	Completed  int
	Failed     int
	CurrentJob string
	LastUpdate time.Time
}

// Tracker reports batch progress across pool workers. Output goes to the
// writer it was created with; a nil writer keeps the counters silent.
type Tracker struct {
	mu          sync.RWMutex
	out         io.Writer
	workers     map[int]*WorkerState
	totalJobs   int
	completed   int
	failed      int
	startTime   time.Time
	lastDisplay time.Time
	displayRate time.Duration
	detailed    bool
	linesDrawn  int
}

// NewTracker creates a tracker for totalJobs spread over workerCount workers.
// When detailed is set every active worker gets its own status line.
func NewTracker(out io.Writer, workerCount, totalJobs int, detailed bool) *Tracker {
	t := &Tracker{
		out:         out,
		workers:     make(map[int]*WorkerState, workerCount),
		totalJobs:   totalJobs,
		startTime:   time.Now(),
		displayRate: 250 * time.Millisecond,
		detailed:    detailed,
	}
	for i := 0; i < workerCount; i++ {
		t.workers[i] = &WorkerState{WorkerID: i, LastUpdate: t.startTime}
	}
	return t
}

// Begin records that workerID picked up job.
func (t *Tracker) Begin(workerID int, job string) {
	t.update(workerID, job, false, nil)
}

// Done records that workerID finished job, failing if err is non-nil.
func (t *Tracker) Done(workerID int, job string, err error) {
	t.update(workerID, job, true, err)
}

func (t *Tracker) update(workerID int, job string, finished bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.workers[workerID]
	if w == nil {
		return
	}
	w.LastUpdate = time.Now()
	w.CurrentJob = job

	if finished {
		w.CurrentJob = ""
		if err != nil {
			w.Failed++
			t.failed++
		} else {
			w.Completed++
			t.completed++
		}
	}

	if t.out != nil && (time.Since(t.lastDisplay) >= t.displayRate || t.done() == t.totalJobs) {
		t.draw()
		t.lastDisplay = time.Now()
	}
}

func (t *Tracker) done() int {
	return t.completed + t.failed
}

// draw repaints the progress block in place
func (t *Tracker) draw() {
	if t.linesDrawn > 0 {
		fmt.Fprintf(t.out, "\033[%dA", t.linesDrawn)
	}

	elapsed := time.Since(t.startTime)
	var eta time.Duration
	if done := t.done(); done > 0 {
		eta = elapsed / time.Duration(done) * time.Duration(t.totalJobs-done)
	}

	fmt.Fprintf(t.out, "\033[2K\r%s %d/%d (%.1f%%) | Elapsed: %v | ETA: %v\n",
		bar(t.done(), t.totalJobs, 30), t.done(), t.totalJobs, t.percentage(),
		elapsed.Round(time.Second), eta.Round(time.Second))
	t.linesDrawn = 1

	if !t.detailed {
		return
	}

	for _, w := range t.sortedWorkers() {
		if w.CurrentJob == "" {
			continue
		}
		status := "ACTIVE"
		if time.Since(w.LastUpdate) > 2*time.Second {
			status = "STALLED"
		}
		job := w.CurrentJob
		if len(job) > 40 {
			job = job[:37] + "..."
		}
		fmt.Fprintf(t.out, "\033[2K  Worker %d [%s] %s (done: %d)\n", w.WorkerID, status, job, w.Completed)
		t.linesDrawn++
	}
}

// Finish prints the final summary
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.out == nil {
		return
	}

	t.draw()
	elapsed := time.Since(t.startTime)
	fmt.Fprintf(t.out, "Rendered %d of %d map sets in %v", t.completed, t.totalJobs, elapsed.Round(time.Millisecond))
	if t.failed > 0 {
		fmt.Fprintf(t.out, " (%d failed)", t.failed)
	}
	fmt.Fprintln(t.out)

	if t.detailed && elapsed > 0 {
		for _, w := range t.sortedWorkers() {
			fmt.Fprintf(t.out, "  Worker %d: %d jobs (%.1f jobs/sec)\n",
				w.WorkerID, w.Completed, float64(w.Completed)/elapsed.Seconds())
		}
	}
	t.linesDrawn = 0
}

func (t *Tracker) sortedWorkers() []*WorkerState {
	out := make([]*WorkerState, 0, len(t.workers))
	for _, w := range t.workers {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkerID < out[j].WorkerID })
	return out
}

func (t *Tracker) percentage() float64 {
	if t.totalJobs == 0 {
		return 100
	}
	return float64(t.done()) / float64(t.totalJobs) * 100
}

// Stats returns a snapshot of the counters
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	elapsed := time.Since(t.startTime)
	rate := 0.0
	if elapsed.Seconds() > 0 {
		rate = float64(t.done()) / elapsed.Seconds()
	}

	return Stats{
		TotalJobs:     t.totalJobs,
		CompletedJobs: t.completed,
		FailedJobs:    t.failed,
		WorkerCount:   len(t.workers),
		Elapsed:       elapsed,
		Rate:          rate,
		Percentage:    t.percentage(),
	}
}

// Stats contains progress statistics
type Stats struct {
	TotalJobs     int
	CompletedJobs int
	FailedJobs    int
	WorkerCount   int
	Elapsed       time.Duration
	Rate          float64 // jobs per second
	Percentage    float64
}

func bar(current, total, width int) string {
	filled := width
	if total > 0 {
		filled = width * current / total
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
