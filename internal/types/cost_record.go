package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	AIOperationEmbedding      = "embedding"
	AIOperationClassification = "classification"
	AIOperationSearchQuery    = "search_query"
)

// CostRecord is an append-only ledger row for one priced AI call.
type CostRecord struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Operation  string     `gorm:"column:operation;not null;index" json:"operation"`
	TokensUsed int        `gorm:"column:tokens_used;not null" json:"tokens_used"`
	CostCents  float64    `gorm:"column:cost_cents;not null" json:"cost_cents"`
	Model      string     `gorm:"column:model;not null" json:"model"`
	MemoryID   *uuid.UUID `gorm:"type:uuid;index" json:"memory_id,omitempty"`
	Date       time.Time  `gorm:"column:date;not null;index" json:"date"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (CostRecord) TableName() string { return "ai_cost_tracking" }
