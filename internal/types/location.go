package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Location struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name           string         `gorm:"column:name;not null;index" json:"name"`
	Address        *string        `gorm:"column:address" json:"address,omitempty"`
	City           *string        `gorm:"column:city" json:"city,omitempty"`
	State          *string        `gorm:"column:state" json:"state,omitempty"`
	Country        *string        `gorm:"column:country" json:"country,omitempty"`
	Latitude       *float64       `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude      *float64       `gorm:"column:longitude" json:"longitude,omitempty"`
	PlaceType      string         `gorm:"column:place_type" json:"place_type"`
	LastEnrichedAt *time.Time     `gorm:"column:last_enriched_at" json:"last_enriched_at,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Location) TableName() string { return "location" }
