package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Event struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MemoryID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"memory_id"`
	StartAt     *time.Time     `gorm:"column:start_at" json:"start_at,omitempty"`
	EndAt       *time.Time     `gorm:"column:end_at" json:"end_at,omitempty"`
	Description *string        `gorm:"column:description" json:"description,omitempty"`
	Tags        datatypes.JSON `gorm:"type:jsonb;column:tags" json:"tags,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Event) TableName() string { return "event" }
