package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/openai"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/repos"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

var validMemoryTypes = map[string]struct{}{
	"note":   {},
	"person": {},
	"event":  {},
	"place":  {},
	"task":   {},
}

// EnrichmentService runs the full pipeline for one memory: classification,
// entity extraction, entity resolution and embedding, with every priced call
// recorded against the cost ledger. The memory's enrichment_status is the only
// externally visible failure signal.
type EnrichmentService interface {
	PerformEnrichment(ctx context.Context, memoryID uuid.UUID, userID uuid.UUID) error
}

type enrichmentService struct {
	log             *logger.Logger
	client          openai.Client
	memoryRepo      repos.MemoryRepo
	circuitBreaker  CircuitBreakerService
	queue           EnrichmentQueueService
	extraction      LLMExtractionService
	entityProcessor EntityProcessorService
	cfg             AICostConfig
}

func NewEnrichmentService(client openai.Client, memoryRepo repos.MemoryRepo, circuitBreaker CircuitBreakerService, queue EnrichmentQueueService, extraction LLMExtractionService, entityProcessor EntityProcessorService, cfg AICostConfig, baseLog *logger.Logger) EnrichmentService {
	return &enrichmentService{
		log:             baseLog.With("service", "EnrichmentService"),
		client:          client,
		memoryRepo:      memoryRepo,
		circuitBreaker:  circuitBreaker,
		queue:           queue,
		extraction:      extraction,
		entityProcessor: entityProcessor,
		cfg:             cfg,
	}
}

func (s *enrichmentService) PerformEnrichment(ctx context.Context, memoryID uuid.UUID, userID uuid.UUID) error {
	memory, err := s.memoryRepo.GetByID(ctx, nil, memoryID)
	if err != nil {
		return fmt.Errorf("load memory: %w", err)
	}
	if memory == nil || strings.TrimSpace(memory.TextContent) == "" {
		return nil
	}

	decision, err := s.circuitBreaker.CanProcessAI(ctx, userID)
	if err != nil {
		return err
	}
	if !decision.Allowed || decision.CircuitState == CircuitOpen {
		_, err := s.queue.EnqueueEnrichment(ctx, memoryID, userID)
		return err
	}

	if err := s.memoryRepo.UpdateFields(ctx, nil, memoryID, map[string]any{
		"enrichment_status": types.EnrichmentStatusProcessing,
	}); err != nil {
		return fmt.Errorf("mark memory processing: %w", err)
	}

	if err := s.enrich(ctx, memory, userID); err != nil {
		s.log.Error("Enrichment failed", "error", err, "memory_id", memoryID)
		if statusErr := s.memoryRepo.UpdateFields(ctx, nil, memoryID, map[string]any{
			"enrichment_status": types.EnrichmentStatusFailed,
		}); statusErr != nil {
			s.log.Error("Failed to mark memory failed", "error", statusErr, "memory_id", memoryID)
		}
		return err
	}

	return nil
}

func (s *enrichmentService) enrich(ctx context.Context, memory *types.Memory, userID uuid.UUID) error {
	memoryType := s.classifyMemory(ctx, memory.TextContent, userID, memory.ID)

	extraction, usage := s.extraction.ExtractEntities(ctx, memory.TextContent)
	if usage.TotalTokens > 0 {
		if err := s.circuitBreaker.RecordAICost(ctx, userID, types.AIOperationClassification,
			usage.TotalTokens, s.cfg.ClassificationCostCents, s.extraction.Model(), &memory.ID); err != nil {
			s.log.Warn("Failed to record extraction cost", "error", err, "memory_id", memory.ID)
		}
	}

	if err := s.entityProcessor.ProcessExtractionResult(ctx, memory.ID, userID, extraction); err != nil {
		return err
	}

	if err := s.generateEmbedding(ctx, memory, userID); err != nil {
		return err
	}

	return s.memoryRepo.UpdateFields(ctx, nil, memory.ID, map[string]any{
		"type":              memoryType,
		"enrichment_status": types.EnrichmentStatusCompleted,
	})
}

// classifyMemory asks the provider for a one-word memory type. Defaults to
// "note" when the provider is unconfigured or the answer is not a known type.
func (s *enrichmentService) classifyMemory(ctx context.Context, text string, userID uuid.UUID, memoryID uuid.UUID) string {
	if s.client == nil {
		return "note"
	}

	input := text
	if len(input) > 1000 {
		input = input[:1000]
	}
	content, usage, err := s.client.GenerateText(ctx,
		"Classify this memory as one of: note, person, event, place, task. Return only the type.",
		input)
	if err != nil {
		s.log.Warn("Memory classification failed", "error", err, "memory_id", memoryID)
		return "note"
	}

	if err := s.circuitBreaker.RecordAICost(ctx, userID, types.AIOperationClassification,
		usage.TotalTokens, s.cfg.ClassificationCostCents, s.client.Model(), &memoryID); err != nil {
		s.log.Warn("Failed to record classification cost", "error", err, "memory_id", memoryID)
	}

	memoryType := strings.ToLower(strings.TrimSpace(content))
	if _, ok := validMemoryTypes[memoryType]; !ok {
		return "note"
	}
	return memoryType
}

func (s *enrichmentService) generateEmbedding(ctx context.Context, memory *types.Memory, userID uuid.UUID) error {
	if s.client == nil {
		return nil
	}

	input := memory.TextContent
	if len(input) > 8000 {
		input = input[:8000]
	}
	_, usage, err := s.client.Embed(ctx, input)
	if err != nil {
		return fmt.Errorf("generate embedding: %w", err)
	}

	if err := s.circuitBreaker.RecordAICost(ctx, userID, types.AIOperationEmbedding,
		usage.TotalTokens, s.cfg.EmbeddingCostCents, s.client.EmbedModel(), &memory.ID); err != nil {
		s.log.Warn("Failed to record embedding cost", "error", err, "memory_id", memory.ID)
	}
	return nil
}
