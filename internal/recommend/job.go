package recommend

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultRebuildInterval is the default period between snapshot rebuilds.
const DefaultRebuildInterval = 15 * time.Minute

// DefaultRebuildTimeout bounds a single rebuild cycle.
const DefaultRebuildTimeout = 5 * time.Minute

// RebuildJobConfig configures the periodic rebuild job.
type RebuildJobConfig struct {
	// Interval is the duration between rebuild cycles.
	Interval time.Duration
	// Timeout for each rebuild cycle.
	Timeout time.Duration
	// Logger for job activity.
	Logger *slog.Logger
}

// RebuildJob periodically rebuilds the engine snapshot so scores and
// similarity results track corpus changes. A failed cycle leaves the
// previous snapshot serving and retries on the next tick.
type RebuildJob struct {
	config  RebuildJobConfig
	service *Service

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRebuildJob creates a rebuild job for the given engine.
func NewRebuildJob(config RebuildJobConfig, service *Service) *RebuildJob {
	if config.Interval == 0 {
		config.Interval = DefaultRebuildInterval
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultRebuildTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &RebuildJob{
		config:  config,
		service: service,
	}
}

// Start begins the periodic rebuild job. Returns immediately; the job
// runs in a background goroutine.
func (j *RebuildJob) Start(ctx context.Context) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.stopCh = make(chan struct{})
	j.doneCh = make(chan struct{})
	j.mu.Unlock()

	go j.run(ctx)
}

// Stop signals the job to stop and waits for it to finish. A rebuild in
// progress runs to completion; there is no mid-build cancellation.
func (j *RebuildJob) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	stopCh := j.stopCh
	doneCh := j.doneCh
	j.mu.Unlock()

	close(stopCh)
	<-doneCh

	j.mu.Lock()
	j.running = false
	j.mu.Unlock()
}

// IsRunning returns whether the job is currently running.
func (j *RebuildJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *RebuildJob) run(ctx context.Context) {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.stopCh:
			return
		case <-ticker.C:
			j.cycle(ctx)
		}
	}
}

func (j *RebuildJob) cycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if err := j.service.Rebuild(cycleCtx); err != nil {
		j.config.Logger.Error("scheduled rebuild failed, previous snapshot still serving",
			"error", err)
		return
	}
	j.config.Logger.Debug("scheduled rebuild completed")
}
