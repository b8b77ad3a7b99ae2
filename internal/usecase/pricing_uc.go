package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/printmarket/internal/domain"
	"github.com/phenrril/printmarket/internal/pricing"
)

type PricingUC struct {
	Shops     domain.ShopRepo
	Templates domain.TemplateRepo
	Pricing   domain.PricingRepo
}

type QuoteRequest struct {
	ShopID     uuid.UUID
	TemplateID uuid.UUID
	Document   domain.DocumentMeta
	Options    map[string]any
	Quantity   int
}

type Quote struct {
	ShopID       uuid.UUID      `json:"shop_id"`
	TemplateID   uuid.UUID      `json:"template_id"`
	TemplateName string         `json:"template_name"`
	BasePrice    float64        `json:"base_price"`
	OptionsPrice float64        `json:"options_price"`
	UnitPrice    float64        `json:"unit_price"`
	Quantity     int            `json:"quantity"`
	Total        float64        `json:"total"`
	Version      int            `json:"pricing_version"`
	Lines        []pricing.Line `json:"lines"`
}

// Schedule loads and compiles the pricing of one shop for one template.
func (uc *PricingUC) Schedule(ctx context.Context, shopID, templateID uuid.UUID) (*domain.ProductTemplate, *pricing.Schedule, error) {
	tpl, err := uc.Templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := uc.Pricing.Find(ctx, shopID, templateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrPricingNotConfigured
		}
		return nil, nil, err
	}
	s, err := pricing.Compile(tpl, cfg)
	if err != nil {
		log.Error().Err(err).Str("shop_id", shopID.String()).Str("template_id", templateID.String()).Msg("stored pricing config is invalid")
		return nil, nil, err
	}
	return tpl, s, nil
}

func (uc *PricingUC) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.Document.Pages < 0 {
		return nil, fmt.Errorf("%w: negative page count", domain.ErrInvalidOrder)
	}
	tpl, s, err := uc.Schedule(ctx, req.ShopID, req.TemplateID)
	if err != nil {
		return nil, err
	}
	lines := s.Breakdown(req.Document, req.Options)
	optionsPrice := 0.0
	for _, l := range lines {
		optionsPrice += l.Amount
	}
	return &Quote{
		ShopID:       req.ShopID,
		TemplateID:   tpl.ID,
		TemplateName: tpl.Name,
		BasePrice:    s.BasePrice(),
		OptionsPrice: optionsPrice,
		UnitPrice:    s.BasePrice() + optionsPrice,
		Quantity:     req.Quantity,
		Total:        pricing.Listing(s.BasePrice(), optionsPrice, req.Quantity),
		Version:      s.Version(),
		Lines:        lines,
	}, nil
}

func (uc *PricingUC) GetConfig(ctx context.Context, shopID, templateID uuid.UUID) (*domain.PricingConfig, error) {
	cfg, err := uc.Pricing.Find(ctx, shopID, templateID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrPricingNotConfigured
	}
	return cfg, err
}

// SaveConfig validates cfg against its template before storing it. The
// repository assigns the next version.
func (uc *PricingUC) SaveConfig(ctx context.Context, cfg *domain.PricingConfig) error {
	if cfg == nil {
		return pricing.ErrMissingConfig
	}
	if _, err := uc.Shops.FindByID(ctx, cfg.ShopID); err != nil {
		return err
	}
	tpl, err := uc.Templates.FindByID(ctx, cfg.TemplateID)
	if err != nil {
		return err
	}
	if _, err := pricing.Compile(tpl, cfg); err != nil {
		return err
	}
	if err := uc.Pricing.Save(ctx, cfg); err != nil {
		return err
	}
	log.Info().
		Str("shop_id", cfg.ShopID.String()).
		Str("template_id", cfg.TemplateID.String()).
		Int("version", cfg.Version).
		Msg("pricing saved")
	return nil
}
