package domain

import (
	"time"

	"github.com/google/uuid"
)

type Shop struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug      string    `gorm:"uniqueIndex;size:140" json:"slug"`
	Name      string    `gorm:"size:180" json:"name"`
	City      string    `gorm:"size:100" json:"city"`
	Email     string    `gorm:"size:140" json:"email"`
	Active    bool      `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
