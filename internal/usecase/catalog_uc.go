package usecase

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/printmarket/internal/domain"
	"github.com/phenrril/printmarket/internal/pricing"
)

type CatalogUC struct {
	Shops     domain.ShopRepo
	Templates domain.TemplateRepo
}

func slugify(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "-"))
}

func (uc *CatalogUC) SaveShop(ctx context.Context, s *domain.Shop) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: shop name is empty", domain.ErrInvalidInput)
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Slug == "" {
		s.Slug = slugify(s.Name)
	}
	return uc.Shops.Save(ctx, s)
}

func (uc *CatalogUC) ListShops(ctx context.Context, activeOnly bool) ([]domain.Shop, error) {
	return uc.Shops.List(ctx, activeOnly)
}

func (uc *CatalogUC) GetShop(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	return uc.Shops.FindByID(ctx, id)
}

func (uc *CatalogUC) SaveTemplate(ctx context.Context, t *domain.ProductTemplate) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: template name is empty", domain.ErrInvalidInput)
	}
	if err := pricing.ValidateTemplate(t); err != nil {
		return err
	}
	// Customers pick enum values from the list, so a catalog template needs one.
	for _, key := range slices.Sorted(maps.Keys(t.AllowedOptions)) {
		opt := t.AllowedOptions[key]
		if opt.PricingType == domain.PricingEnum && len(opt.Values) == 0 {
			return fmt.Errorf("option %q: %w: enum without values", key, pricing.ErrInvalidSchema)
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Slug == "" {
		t.Slug = slugify(t.Name)
	}
	return uc.Templates.Save(ctx, t)
}

func (uc *CatalogUC) ListTemplates(ctx context.Context) ([]domain.ProductTemplate, error) {
	return uc.Templates.List(ctx)
}

func (uc *CatalogUC) GetTemplate(ctx context.Context, id uuid.UUID) (*domain.ProductTemplate, error) {
	return uc.Templates.FindByID(ctx, id)
}
