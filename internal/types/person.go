package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Person struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DisplayName string         `gorm:"column:display_name;not null;index" json:"display_name"`
	Email       *string        `gorm:"column:email" json:"email,omitempty"`
	Phone       *string        `gorm:"column:phone" json:"phone,omitempty"`
	Bio         *string        `gorm:"column:bio" json:"bio,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Person) TableName() string { return "person" }
