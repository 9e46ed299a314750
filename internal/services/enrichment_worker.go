package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/envutil"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
)

type WorkerStatus struct {
	IsActive        bool       `json:"is_active"`
	Enabled         bool       `json:"enabled"`
	PollIntervalMS  int64      `json:"poll_interval_ms"`
	MaxJobsPerCycle int        `json:"max_jobs_per_cycle"`
	LastProcessedAt *time.Time `json:"last_processed_at,omitempty"`
}

// EnrichmentWorker is a cooperative poller: one immediate drain on start, then
// a fixed-interval tick that drains up to maxJobsPerCycle jobs. The running
// flag is checked at the top of every tick and before every job so Stop takes
// effect promptly; a job already begun finishes normally.
type EnrichmentWorker struct {
	log       *logger.Logger
	processor EnrichmentProcessor

	pollInterval    time.Duration
	maxJobsPerCycle int
	enabled         bool

	running atomic.Bool
	cancel  context.CancelFunc

	mu              sync.Mutex
	lastProcessedAt *time.Time
}

func NewEnrichmentWorker(processor EnrichmentProcessor, baseLog *logger.Logger) *EnrichmentWorker {
	maxJobs := envutil.Int("ENRICHMENT_MAX_JOBS_PER_CYCLE", 10)
	if maxJobs < 1 {
		maxJobs = 1
	}
	return &EnrichmentWorker{
		log:             baseLog.With("component", "EnrichmentWorker"),
		processor:       processor,
		pollInterval:    envutil.DurationMS("ENRICHMENT_POLL_INTERVAL_MS", 5*time.Second),
		maxJobsPerCycle: maxJobs,
		enabled:         envutil.Bool("ENRICHMENT_WORKER_ENABLED", true),
	}
}

func (w *EnrichmentWorker) Start(ctx context.Context) {
	if !w.enabled {
		w.log.Info("Enrichment worker is disabled via config")
		return
	}
	if !w.running.CompareAndSwap(false, true) {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.log.Info("Starting enrichment worker",
		"poll_interval_ms", w.pollInterval.Milliseconds(),
		"max_jobs_per_cycle", w.maxJobsPerCycle,
	)
	go w.runLoop(runCtx)
}

func (w *EnrichmentWorker) Stop() {
	if !w.running.CompareAndSwap(true, false) {
		return
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.log.Info("Enrichment worker stopped")
}

func (w *EnrichmentWorker) runLoop(ctx context.Context) {
	w.processQueue(ctx)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !w.running.Load() {
				return
			}
			w.processQueue(ctx)
		}
	}
}

func (w *EnrichmentWorker) processQueue(ctx context.Context) {
	jobsProcessed := 0
	for jobsProcessed < w.maxJobsPerCycle && w.running.Load() && ctx.Err() == nil {
		if !w.processor.ProcessNextJob(ctx) {
			break
		}
		jobsProcessed++
	}

	if jobsProcessed > 0 {
		now := time.Now().UTC()
		w.mu.Lock()
		w.lastProcessedAt = &now
		w.mu.Unlock()
		w.log.Info("Enrichment worker processed jobs this cycle", "jobs_processed", jobsProcessed)
	}
}

// TriggerProcessing drains the queue out of band, e.g. from an admin endpoint.
func (w *EnrichmentWorker) TriggerProcessing(ctx context.Context) error {
	if !w.running.Load() {
		return fmt.Errorf("worker is not running")
	}
	w.processQueue(ctx)
	return nil
}

func (w *EnrichmentWorker) Status() WorkerStatus {
	w.mu.Lock()
	last := w.lastProcessedAt
	w.mu.Unlock()
	return WorkerStatus{
		IsActive:        w.running.Load(),
		Enabled:         w.enabled,
		PollIntervalMS:  w.pollInterval.Milliseconds(),
		MaxJobsPerCycle: w.maxJobsPerCycle,
		LastProcessedAt: last,
	}
}
