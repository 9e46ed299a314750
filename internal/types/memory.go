package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EnrichmentStatusProcessing   = "processing"
	EnrichmentStatusCompleted    = "completed"
	EnrichmentStatusFailed       = "failed"
	EnrichmentStatusQueuedBudget = "queued_budget"
)

type Memory struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title              string         `gorm:"column:title" json:"title"`
	Body               string         `gorm:"column:body" json:"body"`
	TextContent        string         `gorm:"column:text_content;type:text" json:"text_content"`
	Type               string         `gorm:"column:type" json:"type"`
	EnrichmentStatus   string         `gorm:"column:enrichment_status;index" json:"enrichment_status"`
	EnrichmentQueuedAt *time.Time     `gorm:"column:enrichment_queued_at" json:"enrichment_queued_at,omitempty"`
	PersonID           *uuid.UUID     `gorm:"type:uuid;index" json:"person_id,omitempty"`
	LocationID         *uuid.UUID     `gorm:"type:uuid;index" json:"location_id,omitempty"`
	StartAt            *time.Time     `gorm:"column:start_at" json:"start_at,omitempty"`
	EndAt              *time.Time     `gorm:"column:end_at" json:"end_at,omitempty"`
	Data               datatypes.JSON `gorm:"type:jsonb;column:data" json:"data,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Memory) TableName() string { return "memory" }
