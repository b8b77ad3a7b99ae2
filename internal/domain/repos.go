package domain

import (
	"context"

	"github.com/google/uuid"
)

type ShopRepo interface {
	Save(ctx context.Context, s *Shop) error
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)
	List(ctx context.Context, activeOnly bool) ([]Shop, error)
}

type TemplateRepo interface {
	Save(ctx context.Context, t *ProductTemplate) error
	FindByID(ctx context.Context, id uuid.UUID) (*ProductTemplate, error)
	List(ctx context.Context) ([]ProductTemplate, error)
}

type PricingRepo interface {
	Save(ctx context.Context, c *PricingConfig) error
	Find(ctx context.Context, shopID, templateID uuid.UUID) (*PricingConfig, error)
	ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]PricingConfig, error)
}

type OrderFilter struct {
	ShopID uuid.UUID
	Status OrderStatus
	Limit  int
}

type OrderRepo interface {
	Create(ctx context.Context, o *Order) error
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, f OrderFilter) ([]Order, error)
	// RemoveItem deletes the item row and saves o, which no longer holds
	// the item, as one unit.
	RemoveItem(ctx context.Context, o *Order, itemID uuid.UUID) error
}
