package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

func newTestQueue(breaker *stubCircuitBreaker) (*enrichmentQueueService, *memStateStore, *fakeMemoryRepo) {
	clk := newFakeClock(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	store := newMemStateStore(clk.Now)
	memoryRepo := newFakeMemoryRepo()
	svc := NewEnrichmentQueueService(store, breaker, memoryRepo, logger.NewNop()).(*enrichmentQueueService)
	svc.now = clk.Now
	return svc, store, memoryRepo
}

func TestEnqueueAllowedGoesToNormalQueue(t *testing.T) {
	ctx := context.Background()
	breaker := &stubCircuitBreaker{decision: AIDecision{Allowed: true, CircuitState: CircuitClosed}}
	queue, store, _ := newTestQueue(breaker)
	memoryID := uuid.New()
	userID := uuid.New()

	result, err := queue.EnqueueEnrichment(ctx, memoryID, userID)
	if err != nil {
		t.Fatalf("EnqueueEnrichment: %v", err)
	}
	if result.Queued {
		t.Errorf("Queued = true, want false for immediate path")
	}
	if store.listLen(queueKey) != 1 || store.listLen(deferredQueueKey) != 0 {
		t.Fatalf("queue lengths = %d/%d, want 1/0", store.listLen(queueKey), store.listLen(deferredQueueKey))
	}

	job, err := queue.GetNextJob(ctx)
	if err != nil {
		t.Fatalf("GetNextJob: %v", err)
	}
	if job == nil {
		t.Fatal("GetNextJob returned nil, want job")
	}
	if job.MemoryID != memoryID || job.UserID != userID {
		t.Errorf("job = %+v, want memory %s user %s", job, memoryID, userID)
	}
	if job.Priority != JobPriorityNormal {
		t.Errorf("Priority = %q, want normal", job.Priority)
	}
	if job.QueuedAt == 0 {
		t.Errorf("QueuedAt not set")
	}
}

func TestEnqueueDeniedGoesToDeferredQueue(t *testing.T) {
	ctx := context.Background()
	breaker := &stubCircuitBreaker{decision: AIDecision{
		Allowed:      false,
		Reason:       "Circuit breaker open - daily budget exceeded",
		CircuitState: CircuitOpen,
	}}
	queue, store, memoryRepo := newTestQueue(breaker)
	memoryID := uuid.New()

	result, err := queue.EnqueueEnrichment(ctx, memoryID, uuid.New())
	if err != nil {
		t.Fatalf("EnqueueEnrichment: %v", err)
	}
	if !result.Queued {
		t.Errorf("Queued = false, want true for deferred path")
	}
	if result.Reason != "Circuit breaker open - daily budget exceeded" {
		t.Errorf("Reason = %q", result.Reason)
	}
	if store.listLen(deferredQueueKey) != 1 || store.listLen(queueKey) != 0 {
		t.Fatalf("queue lengths = %d/%d, want deferred 1", store.listLen(queueKey), store.listLen(deferredQueueKey))
	}

	status, ok := memoryRepo.lastField(memoryID, "enrichment_status")
	if !ok || status != types.EnrichmentStatusQueuedBudget {
		t.Errorf("enrichment_status = %v, want queued_budget", status)
	}
	if _, ok := memoryRepo.lastField(memoryID, "enrichment_queued_at"); !ok {
		t.Errorf("enrichment_queued_at not set")
	}

	job, err := queue.GetNextJob(ctx)
	if err != nil {
		t.Fatalf("GetNextJob: %v", err)
	}
	if job == nil || job.Priority != JobPriorityDeferred {
		t.Errorf("job = %+v, want deferred priority", job)
	}
}

func TestGetNextJobFIFOAndTierOrder(t *testing.T) {
	ctx := context.Background()
	breaker := &stubCircuitBreaker{decision: AIDecision{Allowed: true, CircuitState: CircuitClosed}}
	queue, _, _ := newTestQueue(breaker)
	userID := uuid.New()

	// Deferred job enqueued first, then two normal jobs.
	deferredMemory := uuid.New()
	breaker.decision = AIDecision{Allowed: false, Reason: "Per-user daily embedding limit reached", CircuitState: CircuitClosed}
	if _, err := queue.EnqueueEnrichment(ctx, deferredMemory, userID); err != nil {
		t.Fatalf("EnqueueEnrichment deferred: %v", err)
	}

	breaker.decision = AIDecision{Allowed: true, CircuitState: CircuitClosed}
	first := uuid.New()
	second := uuid.New()
	for _, id := range []uuid.UUID{first, second} {
		if _, err := queue.EnqueueEnrichment(ctx, id, userID); err != nil {
			t.Fatalf("EnqueueEnrichment: %v", err)
		}
	}

	want := []uuid.UUID{first, second, deferredMemory}
	for i, expected := range want {
		job, err := queue.GetNextJob(ctx)
		if err != nil {
			t.Fatalf("GetNextJob %d: %v", i, err)
		}
		if job == nil || job.MemoryID != expected {
			t.Fatalf("job %d = %+v, want memory %s", i, job, expected)
		}
	}

	job, err := queue.GetNextJob(ctx)
	if err != nil {
		t.Fatalf("GetNextJob on empty: %v", err)
	}
	if job != nil {
		t.Errorf("job = %+v on empty queues, want nil", job)
	}
}

func TestGetNextJobDropsMalformedEntry(t *testing.T) {
	ctx := context.Background()
	breaker := &stubCircuitBreaker{decision: AIDecision{Allowed: true, CircuitState: CircuitClosed}}
	queue, store, _ := newTestQueue(breaker)

	if err := store.LPush(ctx, queueKey, "not json"); err != nil {
		t.Fatal(err)
	}
	memoryID := uuid.New()
	if _, err := queue.EnqueueEnrichment(ctx, memoryID, uuid.New()); err != nil {
		t.Fatal(err)
	}

	// The malformed entry is consumed and dropped; the valid job surfaces on
	// the following poll.
	job, err := queue.GetNextJob(ctx)
	if err != nil {
		t.Fatalf("GetNextJob: %v", err)
	}
	if job != nil {
		t.Fatalf("job = %+v, want nil while malformed entry is discarded", job)
	}
	job, err = queue.GetNextJob(ctx)
	if err != nil {
		t.Fatalf("GetNextJob: %v", err)
	}
	if job == nil || job.MemoryID != memoryID {
		t.Errorf("job = %+v, want memory %s", job, memoryID)
	}
}

func TestProcessEnrichmentJobRunsWhenAllowed(t *testing.T) {
	ctx := context.Background()
	breaker := &stubCircuitBreaker{decision: AIDecision{Allowed: true, CircuitState: CircuitClosed}}
	queue, _, _ := newTestQueue(breaker)

	var enriched []uuid.UUID
	job := &EnrichmentJob{MemoryID: uuid.New(), UserID: uuid.New(), Priority: JobPriorityNormal}
	err := queue.ProcessEnrichmentJob(ctx, job, func(_ context.Context, memoryID uuid.UUID, _ uuid.UUID) error {
		enriched = append(enriched, memoryID)
		return nil
	})
	if err != nil {
		t.Fatalf("ProcessEnrichmentJob: %v", err)
	}
	if len(enriched) != 1 || enriched[0] != job.MemoryID {
		t.Errorf("enriched = %v, want [%s]", enriched, job.MemoryID)
	}
}

func TestProcessEnrichmentJobDemotesDisallowedNormalJob(t *testing.T) {
	ctx := context.Background()
	breaker := &stubCircuitBreaker{decision: AIDecision{
		Allowed:      false,
		Reason:       "Per-user daily classification limit reached",
		CircuitState: CircuitClosed,
	}}
	queue, store, _ := newTestQueue(breaker)

	job := &EnrichmentJob{MemoryID: uuid.New(), UserID: uuid.New(), Priority: JobPriorityNormal}
	called := false
	err := queue.ProcessEnrichmentJob(ctx, job, func(context.Context, uuid.UUID, uuid.UUID) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("ProcessEnrichmentJob: %v", err)
	}
	if called {
		t.Errorf("enrich ran for disallowed job")
	}
	if store.listLen(deferredQueueKey) != 1 {
		t.Fatalf("deferred length = %d, want 1", store.listLen(deferredQueueKey))
	}

	requeued, err := queue.GetNextJob(ctx)
	if err != nil {
		t.Fatalf("GetNextJob: %v", err)
	}
	if requeued == nil || requeued.Priority != JobPriorityDeferred || requeued.MemoryID != job.MemoryID {
		t.Errorf("requeued = %+v, want demoted copy of %s", requeued, job.MemoryID)
	}
}

func TestProcessEnrichmentJobPushesBackWhileCircuitOpen(t *testing.T) {
	ctx := context.Background()
	breaker := &stubCircuitBreaker{decision: AIDecision{
		Allowed:      false,
		Reason:       "Circuit breaker open - daily budget exceeded",
		CircuitState: CircuitOpen,
	}}
	queue, store, _ := newTestQueue(breaker)

	job := &EnrichmentJob{MemoryID: uuid.New(), UserID: uuid.New(), QueuedAt: 1700000000000, Priority: JobPriorityDeferred}
	called := false
	err := queue.ProcessEnrichmentJob(ctx, job, func(context.Context, uuid.UUID, uuid.UUID) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("ProcessEnrichmentJob: %v", err)
	}
	if called {
		t.Errorf("enrich ran with open circuit")
	}
	if store.listLen(deferredQueueKey) != 1 {
		t.Fatalf("deferred length = %d, want 1", store.listLen(deferredQueueKey))
	}

	requeued, err := queue.GetNextJob(ctx)
	if err != nil {
		t.Fatalf("GetNextJob: %v", err)
	}
	if requeued == nil || *requeued != *job {
		t.Errorf("requeued = %+v, want unchanged %+v", requeued, job)
	}
}
