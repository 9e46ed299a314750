package services

import (
	"sort"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/envutil"
)

type FallbackMode string

const (
	// FallbackModeQueue accepts saves and queues enrichment for later.
	FallbackModeQueue FallbackMode = "queue"
	// FallbackModeSkip saves without enrichment.
	FallbackModeSkip FallbackMode = "skip"
	// FallbackModeLocalOnly uses on-device classification only.
	FallbackModeLocalOnly FallbackMode = "local-only"
)

// AICostConfig is the budget-control configuration surface. Defaults cap global
// spend at $100/day with alerts at 50/80/100 percent.
type AICostConfig struct {
	PerUserDailyEmbeddings      int
	PerUserDailyClassifications int
	GlobalDailyBudgetCents      float64

	// AlertThresholds are percentages of the daily budget, kept ascending.
	AlertThresholds       []int
	CircuitBreakerEnabled bool
	FallbackMode          FallbackMode

	EmbeddingCostCents      float64
	ClassificationCostCents float64
	SearchQueryCostCents    float64

	AlertChannel string
}

func LoadAICostConfig() AICostConfig {
	thresholds := envutil.Ints("AI_ALERT_THRESHOLDS", []int{50, 80, 100})
	sort.Ints(thresholds)

	mode := FallbackMode(envutil.String("AI_FALLBACK_MODE", string(FallbackModeQueue)))
	switch mode {
	case FallbackModeQueue, FallbackModeSkip, FallbackModeLocalOnly:
	default:
		mode = FallbackModeQueue
	}

	return AICostConfig{
		PerUserDailyEmbeddings:      envutil.Int("PER_USER_DAILY_EMBEDDINGS", 100),
		PerUserDailyClassifications: envutil.Int("PER_USER_DAILY_CLASSIFICATIONS", 50),
		GlobalDailyBudgetCents:      envutil.Float("GLOBAL_DAILY_BUDGET_CENTS", 10000),
		AlertThresholds:             thresholds,
		CircuitBreakerEnabled:       envutil.Bool("AI_CIRCUIT_BREAKER_ENABLED", true),
		FallbackMode:                mode,
		EmbeddingCostCents:          envutil.Float("AI_COST_EMBEDDING_CENTS", 0.002),
		ClassificationCostCents:     envutil.Float("AI_COST_CLASSIFICATION_CENTS", 0.75),
		SearchQueryCostCents:        envutil.Float("AI_COST_SEARCH_QUERY_CENTS", 0.0005),
		AlertChannel:                envutil.String("SLACK_CHANNEL_AI_COSTS", "#ai-costs"),
	}
}
