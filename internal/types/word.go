package types

import (
	"time"

	"github.com/google/uuid"
)

type Word struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Text      string    `gorm:"column:text;not null;uniqueIndex" json:"text"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Word) TableName() string { return "word" }

type MemoryWordLink struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MemoryID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memory_word" json:"memory_id"`
	WordID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memory_word" json:"word_id"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (MemoryWordLink) TableName() string { return "memory_word_link" }
