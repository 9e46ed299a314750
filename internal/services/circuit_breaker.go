package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/mikesamcali-dev/memoryconnector-backend/internal/clients/redis"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/repos"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

type CircuitState string

const (
	// CircuitClosed is normal operation. An absent stored value reads as closed.
	CircuitClosed CircuitState = "closed"
	// CircuitOpen blocks AI processing until the stored TTL expires at UTC midnight.
	CircuitOpen CircuitState = "open"
	// CircuitQueueOnly accepts work but queues it for later. It is only ever set
	// manually via SetCircuitState; recording costs never enters it.
	CircuitQueueOnly CircuitState = "queue"
)

const (
	circuitKey    = "ai:circuit:status"
	dailySpendKey = "ai:daily:spend"
)

// AIDecision is the admission-control result. Budget exhaustion is a value,
// not an error.
type AIDecision struct {
	Allowed      bool         `json:"allowed"`
	Reason       string       `json:"reason,omitempty"`
	CircuitState CircuitState `json:"circuit_state"`
}

type DailySpendSummary struct {
	TotalCents     float64      `json:"total_cents"`
	PercentUsed    float64      `json:"percent_used"`
	OperationCount int64        `json:"operation_count"`
	CircuitState   CircuitState `json:"circuit_state"`
}

// CircuitBreakerService is the cost ledger plus the derived circuit state.
type CircuitBreakerService interface {
	// RecordAICost appends a ledger row, bumps the daily spend counter and runs
	// the threshold sweep. The ledger write is the durable fact: alert or
	// circuit-state failures after it are logged, never propagated.
	RecordAICost(ctx context.Context, userID uuid.UUID, operation string, tokens int, costCents float64, model string, memoryID *uuid.UUID) error
	CanProcessAI(ctx context.Context, userID uuid.UUID) (AIDecision, error)
	GetCircuitState(ctx context.Context) (CircuitState, error)
	SetCircuitState(ctx context.Context, state CircuitState, ttl time.Duration) error
	GetDailySpendSummary(ctx context.Context) (DailySpendSummary, error)
}

type circuitBreakerService struct {
	log      *logger.Logger
	store    redisclient.StateStore
	costRepo repos.CostRecordRepo
	alerting AlertingService
	cfg      AICostConfig
	now      func() time.Time
}

func NewCircuitBreakerService(store redisclient.StateStore, costRepo repos.CostRecordRepo, alerting AlertingService, cfg AICostConfig, baseLog *logger.Logger) CircuitBreakerService {
	return &circuitBreakerService{
		log:      baseLog.With("service", "CircuitBreakerService"),
		store:    store,
		costRepo: costRepo,
		alerting: alerting,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *circuitBreakerService) GetCircuitState(ctx context.Context) (CircuitState, error) {
	v, ok, err := s.store.Get(ctx, circuitKey)
	if err != nil {
		return CircuitClosed, err
	}
	if !ok || v == "" {
		return CircuitClosed, nil
	}
	return CircuitState(v), nil
}

func (s *circuitBreakerService) SetCircuitState(ctx context.Context, state CircuitState, ttl time.Duration) error {
	if err := s.store.Set(ctx, circuitKey, string(state), ttl); err != nil {
		return err
	}
	s.log.Info("Circuit breaker state changed", "state", string(state), "ttl_seconds", int(ttl.Seconds()))
	return nil
}

func (s *circuitBreakerService) RecordAICost(ctx context.Context, userID uuid.UUID, operation string, tokens int, costCents float64, model string, memoryID *uuid.UUID) error {
	now := s.now().UTC()

	rec := &types.CostRecord{
		UserID:     userID,
		Operation:  operation,
		TokensUsed: tokens,
		CostCents:  costCents,
		Model:      model,
		MemoryID:   memoryID,
		Date:       now,
	}
	if _, err := s.costRepo.Create(ctx, nil, rec); err != nil {
		return fmt.Errorf("record ai cost: %w", err)
	}

	newTotal, err := s.store.IncrByFloat(ctx, dailySpendKey, costCents)
	if err != nil {
		return fmt.Errorf("increment daily spend: %w", err)
	}
	if err := s.store.ExpireAt(ctx, dailySpendKey, nextUTCMidnight(now)); err != nil {
		s.log.Warn("Failed to set daily spend expiry", "error", err)
	}

	percentUsed := newTotal / s.cfg.GlobalDailyBudgetCents * 100
	today := now.Format("2006-01-02")

	for _, threshold := range s.cfg.AlertThresholds {
		if percentUsed < float64(threshold) {
			continue
		}

		alertKey := fmt.Sprintf("ai:alert:%d:%s", threshold, today)
		alreadyAlerted, err := s.store.Exists(ctx, alertKey)
		if err != nil {
			s.log.Warn("Alert marker check failed", "error", err, "threshold", threshold)
			continue
		}
		if alreadyAlerted {
			continue
		}

		if err := s.store.Set(ctx, alertKey, "1", 24*time.Hour); err != nil {
			s.log.Warn("Failed to set alert marker", "error", err, "threshold", threshold)
		}

		severity := AlertSeverityWarning
		if threshold >= 100 {
			severity = AlertSeverityCritical
		}
		s.alerting.Alert(ctx, s.cfg.AlertChannel, severity,
			fmt.Sprintf("AI spend at %d%% of daily budget ($%.2f/$%.2f)",
				threshold, newTotal/100, s.cfg.GlobalDailyBudgetCents/100),
			nil)

		if threshold >= 100 && s.cfg.CircuitBreakerEnabled {
			untilMidnight := nextUTCMidnight(now).Sub(now)
			if err := s.SetCircuitState(ctx, CircuitOpen, untilMidnight); err != nil {
				s.log.Error("Failed to trip circuit breaker", "error", err)
			}
			s.alerting.Alert(ctx, s.cfg.AlertChannel, AlertSeverityCritical,
				"AI circuit breaker tripped - enrichment disabled until midnight", nil)
		}
	}

	return nil
}

func (s *circuitBreakerService) CanProcessAI(ctx context.Context, userID uuid.UUID) (AIDecision, error) {
	circuitState, err := s.GetCircuitState(ctx)
	if err != nil {
		return AIDecision{}, err
	}

	if circuitState == CircuitOpen {
		return AIDecision{
			Allowed:      false,
			Reason:       "Circuit breaker open - daily budget exceeded",
			CircuitState: circuitState,
		}, nil
	}

	startOfDay := startOfUTCDay(s.now().UTC())
	counts, err := s.costRepo.GroupCountByOperationSince(ctx, nil, userID, startOfDay)
	if err != nil {
		return AIDecision{}, fmt.Errorf("count user ai usage: %w", err)
	}

	if counts[types.AIOperationClassification] >= int64(s.cfg.PerUserDailyClassifications) {
		return AIDecision{
			Allowed:      false,
			Reason:       "Per-user daily classification limit reached",
			CircuitState: circuitState,
		}, nil
	}
	if counts[types.AIOperationEmbedding] >= int64(s.cfg.PerUserDailyEmbeddings) {
		return AIDecision{
			Allowed:      false,
			Reason:       "Per-user daily embedding limit reached",
			CircuitState: circuitState,
		}, nil
	}

	return AIDecision{Allowed: true, CircuitState: circuitState}, nil
}

func (s *circuitBreakerService) GetDailySpendSummary(ctx context.Context) (DailySpendSummary, error) {
	totalCents := 0.0
	if v, ok, err := s.store.Get(ctx, dailySpendKey); err != nil {
		return DailySpendSummary{}, err
	} else if ok {
		parsed, parseErr := strconv.ParseFloat(v, 64)
		if parseErr == nil {
			totalCents = parsed
		}
	}

	circuitState, err := s.GetCircuitState(ctx)
	if err != nil {
		return DailySpendSummary{}, err
	}

	operationCount, err := s.costRepo.CountSince(ctx, nil, startOfUTCDay(s.now().UTC()))
	if err != nil {
		return DailySpendSummary{}, err
	}

	return DailySpendSummary{
		TotalCents:     totalCents,
		PercentUsed:    totalCents / s.cfg.GlobalDailyBudgetCents * 100,
		OperationCount: operationCount,
		CircuitState:   circuitState,
	}, nil
}

func startOfUTCDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func nextUTCMidnight(now time.Time) time.Time {
	return startOfUTCDay(now).Add(24 * time.Hour)
}
