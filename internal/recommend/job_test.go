package recommend

import (
	"context"
	"testing"
	"time"
)

func TestRebuildJobLifecycle(t *testing.T) {
	job := NewRebuildJob(RebuildJobConfig{Interval: time.Hour}, testService(t))

	if job.IsRunning() {
		t.Error("job should not run before Start")
	}

	job.Start(context.Background())
	if !job.IsRunning() {
		t.Error("job should report running after Start")
	}

	// Second Start is a no-op, not a second goroutine.
	job.Start(context.Background())

	job.Stop()
	if job.IsRunning() {
		t.Error("job should stop after Stop")
	}

	// Stop on a stopped job must not block or panic.
	job.Stop()
}

func TestRebuildJobTicks(t *testing.T) {
	s := testService(t)
	job := NewRebuildJob(RebuildJobConfig{Interval: 10 * time.Millisecond}, s)

	job.Start(context.Background())
	defer job.Stop()

	deadline := time.After(2 * time.Second)
	for !s.Ready() {
		select {
		case <-deadline:
			t.Fatal("job never published a snapshot")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRebuildJobDefaults(t *testing.T) {
	job := NewRebuildJob(RebuildJobConfig{}, testService(t))
	if job.config.Interval != DefaultRebuildInterval {
		t.Errorf("interval %v, want %v", job.config.Interval, DefaultRebuildInterval)
	}
	if job.config.Timeout != DefaultRebuildTimeout {
		t.Errorf("timeout %v, want %v", job.config.Timeout, DefaultRebuildTimeout)
	}
	if job.config.Logger == nil {
		t.Error("logger not defaulted")
	}
}

func TestRebuildJobStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	job := NewRebuildJob(RebuildJobConfig{Interval: time.Hour}, testService(t))

	job.Start(ctx)
	cancel()

	// The run loop exits on context cancellation; Stop must still return
	// promptly afterwards.
	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked after context cancellation")
	}
}
