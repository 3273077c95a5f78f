package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alde/glassmap/pkg/progress"
)

type fakeJob struct {
	id    string
	err   error
	delay time.Duration
	runs  *int32
}

func (j fakeJob) ID() string { return j.id }

func (j fakeJob) Process(ctx context.Context) error {
	if j.runs != nil {
		atomic.AddInt32(j.runs, 1)
	}
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return j.err
}

func TestPoolRunsAllJobs(t *testing.T) {
	var runs int32
	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = fakeJob{id: fmt.Sprintf("job-%02d", i), runs: &runs}
	}

	pool := NewPool(context.Background(), 4)
	results := pool.Run(jobs)

	if len(results) != len(jobs) {
		t.Fatalf("Expected %d results, got %d", len(jobs), len(results))
	}
	if runs != int32(len(jobs)) {
		t.Errorf("Expected %d runs, got %d", len(jobs), runs)
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("Unexpected error for %s: %v", r.JobID, r.Error)
		}
		ids = append(ids, r.JobID)
	}
	sort.Strings(ids)
	if ids[0] != "job-00" || ids[19] != "job-19" {
		t.Errorf("Unexpected job ids: %v", ids)
	}
}

func TestPoolReportsErrors(t *testing.T) {
	boom := errors.New("boom")
	jobs := []Job{
		fakeJob{id: "ok"},
		fakeJob{id: "bad", err: boom},
	}

	results := NewPool(context.Background(), 2).Run(jobs)

	failed := 0
	for _, r := range results {
		if r.JobID == "bad" {
			if !errors.Is(r.Error, boom) {
				t.Errorf("Expected boom, got %v", r.Error)
			}
			failed++
		} else if r.Error != nil {
			t.Errorf("Unexpected error for %s: %v", r.JobID, r.Error)
		}
	}
	if failed != 1 {
		t.Errorf("Expected 1 failure, got %d", failed)
	}
}

func TestPoolDefaultsWorkerCount(t *testing.T) {
	pool := NewPool(context.Background(), 0)
	if pool.WorkerCount() < 1 {
		t.Errorf("Expected at least one worker, got %d", pool.WorkerCount())
	}
	pool.Start()
	pool.Stop()
}

func TestPoolWithTracker(t *testing.T) {
	tracker := progress.NewTracker(nil, 2, 3, false)
	pool := NewPool(context.Background(), 2, WithTracker(tracker))

	results := pool.Run([]Job{
		fakeJob{id: "a"},
		fakeJob{id: "b"},
		fakeJob{id: "c", err: errors.New("nope")},
	})
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	stats := tracker.Stats()
	if stats.CompletedJobs != 2 || stats.FailedJobs != 1 {
		t.Errorf("Expected 2 completed and 1 failed, got %d and %d", stats.CompletedJobs, stats.FailedJobs)
	}
}

func TestPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 100; i++ {
		var runs int32
		jobs := []Job{
			fakeJob{id: "first", delay: time.Second, runs: &runs},
			fakeJob{id: "second", runs: &runs},
			fakeJob{id: "third", runs: &runs},
		}

		results := NewPool(ctx, 2).Run(jobs)

		if len(results) != len(jobs) {
			t.Fatalf("Run %d: expected %d results, got %d", i, len(jobs), len(results))
		}
		for _, r := range results {
			if !errors.Is(r.Error, context.Canceled) {
				t.Errorf("Expected context.Canceled for %s, got %v", r.JobID, r.Error)
			}
		}
		if runs != 0 {
			t.Errorf("Run %d: expected no job to be processed, got %d", i, runs)
		}
	}
}

func TestPoolForceStopReportsQueuedJobs(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()

	var results []Result
	collected := make(chan struct{})
	go func() {
		for r := range pool.Results() {
			results = append(results, r)
		}
		close(collected)
	}()

	pool.Submit(fakeJob{id: "slow", delay: 10 * time.Second})
	pool.Submit(fakeJob{id: "queued-1"})
	pool.Submit(fakeJob{id: "queued-2"})
	pool.ForceStop()
	<-collected

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
}

func TestPoolForceStop(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()

	go func() {
		for range pool.Results() {
		}
	}()

	pool.Submit(fakeJob{id: "slow", delay: 10 * time.Second})

	done := make(chan struct{})
	go func() {
		pool.ForceStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ForceStop did not cancel the running job")
	}

	// second stop is a no-op
	pool.Stop()
}
