package domain

import (
	"time"

	"github.com/google/uuid"
)

// PricingType selects how an option contributes to a price.
type PricingType string

const (
	PricingEnum    PricingType = "enum"
	PricingBoolean PricingType = "boolean"
	PricingNumber  PricingType = "number"
	PricingPerPage PricingType = "per_page"
	PricingRange   PricingType = "range"
)

func (t PricingType) Valid() bool {
	switch t {
	case PricingEnum, PricingBoolean, PricingNumber, PricingPerPage, PricingRange:
		return true
	}
	return false
}

// CustomerSupplied reports whether the value comes from the customer rather
// than from the uploaded document.
func (t PricingType) CustomerSupplied() bool {
	return t != PricingPerPage && t != PricingRange
}

type OptionSchema struct {
	PricingType PricingType `json:"pricingType"`
	Label       string      `json:"label,omitempty"`
	Values      []string    `json:"values,omitempty"`
	Min         *float64    `json:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"`
}

// ProductTemplate is a print product type (poster, flyer, thesis binding...).
type ProductTemplate struct {
	ID             uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	Slug           string                  `gorm:"uniqueIndex;size:140" json:"slug"`
	Name           string                  `gorm:"size:180" json:"name"`
	Description    string                  `gorm:"type:text" json:"description"`
	AllowedOptions map[string]OptionSchema `gorm:"type:jsonb;serializer:json" json:"allowedOptions"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}
