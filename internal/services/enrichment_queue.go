package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/mikesamcali-dev/memoryconnector-backend/internal/clients/redis"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/repos"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

const (
	queueKey         = "enrichment:queue"
	deferredQueueKey = "enrichment:queue:deferred"

	JobPriorityNormal   = "normal"
	JobPriorityDeferred = "deferred"
)

type EnrichmentJob struct {
	MemoryID uuid.UUID `json:"memory_id"`
	UserID   uuid.UUID `json:"user_id"`
	QueuedAt int64     `json:"queued_at"`
	Priority string    `json:"priority"`
}

type EnqueueResult struct {
	Queued bool   `json:"queued"`
	Reason string `json:"reason,omitempty"`
}

// EnrichFunc runs the enrichment pipeline for one memory.
type EnrichFunc func(ctx context.Context, memoryID uuid.UUID, userID uuid.UUID) error

// EnrichmentQueueService is the two-tier FIFO job queue. Normal jobs always
// drain before deferred jobs; within a tier insertion order is preserved.
type EnrichmentQueueService interface {
	// EnqueueEnrichment appends exactly one job. Duplicate calls for the same
	// memory produce duplicate jobs; dedup is deliberately not performed here.
	EnqueueEnrichment(ctx context.Context, memoryID uuid.UUID, userID uuid.UUID) (EnqueueResult, error)
	// GetNextJob pops the oldest normal job, falling back to the oldest deferred
	// job. A popped job has no in-flight record: a crash before completion loses it.
	GetNextJob(ctx context.Context) (*EnrichmentJob, error)
	// ProcessEnrichmentJob re-checks admission for a dequeued job. A disallowed
	// normal job is demoted to the deferred tier rather than dropped; any job is
	// pushed back deferred while the circuit is open.
	ProcessEnrichmentJob(ctx context.Context, job *EnrichmentJob, enrich EnrichFunc) error
}

type enrichmentQueueService struct {
	log            *logger.Logger
	store          redisclient.StateStore
	circuitBreaker CircuitBreakerService
	memoryRepo     repos.MemoryRepo
	now            func() time.Time
}

func NewEnrichmentQueueService(store redisclient.StateStore, circuitBreaker CircuitBreakerService, memoryRepo repos.MemoryRepo, baseLog *logger.Logger) EnrichmentQueueService {
	return &enrichmentQueueService{
		log:            baseLog.With("service", "EnrichmentQueueService"),
		store:          store,
		circuitBreaker: circuitBreaker,
		memoryRepo:     memoryRepo,
		now:            time.Now,
	}
}

func (s *enrichmentQueueService) EnqueueEnrichment(ctx context.Context, memoryID uuid.UUID, userID uuid.UUID) (EnqueueResult, error) {
	decision, err := s.circuitBreaker.CanProcessAI(ctx, userID)
	if err != nil {
		return EnqueueResult{}, err
	}

	if !decision.Allowed || decision.CircuitState == CircuitOpen {
		job := EnrichmentJob{
			MemoryID: memoryID,
			UserID:   userID,
			QueuedAt: s.now().UnixMilli(),
			Priority: JobPriorityDeferred,
		}
		if err := s.push(ctx, deferredQueueKey, job); err != nil {
			return EnqueueResult{}, err
		}

		queuedAt := s.now().UTC()
		if err := s.memoryRepo.UpdateFields(ctx, nil, memoryID, map[string]any{
			"enrichment_status":    types.EnrichmentStatusQueuedBudget,
			"enrichment_queued_at": queuedAt,
		}); err != nil {
			s.log.Warn("Failed to mark memory queued_budget", "error", err, "memory_id", memoryID)
		}

		s.log.Info("Enrichment queued due to limits",
			"memory_id", memoryID,
			"user_id", userID,
			"reason", decision.Reason,
		)
		return EnqueueResult{Queued: true, Reason: decision.Reason}, nil
	}

	job := EnrichmentJob{
		MemoryID: memoryID,
		UserID:   userID,
		QueuedAt: s.now().UnixMilli(),
		Priority: JobPriorityNormal,
	}
	if err := s.push(ctx, queueKey, job); err != nil {
		return EnqueueResult{}, err
	}
	return EnqueueResult{Queued: false}, nil
}

func (s *enrichmentQueueService) GetNextJob(ctx context.Context) (*EnrichmentJob, error) {
	for _, key := range []string{queueKey, deferredQueueKey} {
		raw, ok, err := s.store.RPop(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var job EnrichmentJob
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			s.log.Warn("Dropping malformed queue entry", "error", err, "queue", key)
			continue
		}
		return &job, nil
	}
	return nil, nil
}

func (s *enrichmentQueueService) ProcessEnrichmentJob(ctx context.Context, job *EnrichmentJob, enrich EnrichFunc) error {
	decision, err := s.circuitBreaker.CanProcessAI(ctx, job.UserID)
	if err != nil {
		return err
	}

	if !decision.Allowed && job.Priority == JobPriorityNormal {
		s.log.Info("Re-queueing job as deferred",
			"memory_id", job.MemoryID,
			"user_id", job.UserID,
			"reason", decision.Reason,
		)
		deferred := *job
		deferred.Priority = JobPriorityDeferred
		return s.push(ctx, deferredQueueKey, deferred)
	}

	if decision.CircuitState == CircuitOpen {
		return s.push(ctx, deferredQueueKey, *job)
	}

	return enrich(ctx, job.MemoryID, job.UserID)
}

func (s *enrichmentQueueService) push(ctx context.Context, key string, job EnrichmentJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal enrichment job: %w", err)
	}
	return s.store.LPush(ctx, key, string(raw))
}
