package services

import (
	"context"
	"time"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
)

// EnrichmentProcessor pulls jobs off the queue one at a time. Job failures are
// logged and swallowed so the polling worker can never crash on a bad job.
type EnrichmentProcessor interface {
	ProcessJob(ctx context.Context, job *EnrichmentJob)
	// ProcessNextJob returns false when the queue is empty.
	ProcessNextJob(ctx context.Context) bool
}

type enrichmentProcessor struct {
	log        *logger.Logger
	queue      EnrichmentQueueService
	enrichment EnrichmentService
}

func NewEnrichmentProcessor(queue EnrichmentQueueService, enrichment EnrichmentService, baseLog *logger.Logger) EnrichmentProcessor {
	return &enrichmentProcessor{
		log:        baseLog.With("service", "EnrichmentProcessor"),
		queue:      queue,
		enrichment: enrichment,
	}
}

func (p *enrichmentProcessor) ProcessJob(ctx context.Context, job *EnrichmentJob) {
	p.log.Info("Processing enrichment job",
		"memory_id", job.MemoryID,
		"user_id", job.UserID,
		"priority", job.Priority,
		"queued_at", time.UnixMilli(job.QueuedAt).UTC().Format(time.RFC3339),
	)

	if err := p.queue.ProcessEnrichmentJob(ctx, job, p.enrichment.PerformEnrichment); err != nil {
		// Pipeline failures already mark the memory failed; nothing propagates.
		p.log.Error("Enrichment job failed",
			"error", err,
			"memory_id", job.MemoryID,
			"user_id", job.UserID,
			"priority", job.Priority,
		)
		return
	}

	p.log.Info("Enrichment job completed",
		"memory_id", job.MemoryID,
		"user_id", job.UserID,
	)
}

func (p *enrichmentProcessor) ProcessNextJob(ctx context.Context) bool {
	job, err := p.queue.GetNextJob(ctx)
	if err != nil {
		p.log.Warn("Failed to dequeue enrichment job", "error", err)
		return false
	}
	if job == nil {
		return false
	}
	p.ProcessJob(ctx, job)
	return true
}
