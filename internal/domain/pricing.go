package domain

import (
	"time"

	"github.com/google/uuid"
)

type RangeBracket struct {
	From  int     `json:"from"`
	To    int     `json:"to"`
	Price float64 `json:"price"`
}

// PricingRule is the stored shape of one option rule. Exactly one of the
// fields is expected to be set; which one depends on the template schema.
type PricingRule struct {
	Values       map[string]float64 `json:"values,omitempty"`
	PricePerUnit *float64           `json:"pricePerUnit,omitempty"`
	PricePerPage *float64           `json:"pricePerPage,omitempty"`
	Ranges       []RangeBracket     `json:"ranges,omitempty"`
}

// PricingConfig holds a shop's price rules for one template.
type PricingConfig struct {
	ID         uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID     uuid.UUID              `gorm:"type:uuid;uniqueIndex:idx_pricing_shop_template" json:"shop_id"`
	TemplateID uuid.UUID              `gorm:"type:uuid;uniqueIndex:idx_pricing_shop_template" json:"template_id"`
	BasePrice  float64                `gorm:"type:decimal(12,2);default:0" json:"base_price"`
	Version    int                    `gorm:"not null;default:1" json:"version"`
	Rules      map[string]PricingRule `gorm:"type:jsonb;serializer:json" json:"rules"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

type DocumentMeta struct {
	Pages int `json:"pages"`
}

type CalculateInput struct {
	ShopID   uuid.UUID
	Template *ProductTemplate
	Pricing  *PricingConfig
	Document DocumentMeta
	Options  map[string]any
}
