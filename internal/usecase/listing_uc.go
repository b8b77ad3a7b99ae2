package usecase

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/phenrril/printmarket/internal/domain"
	"github.com/phenrril/printmarket/internal/pricing"
)

type ListingUC struct {
	Shops       domain.ShopRepo
	Templates   domain.TemplateRepo
	Pricing     domain.PricingRepo
	Concurrency int
}

type ListingRequest struct {
	TemplateID uuid.UUID
	Document   domain.DocumentMeta
	Options    map[string]any
	Quantity   int
}

type Offer struct {
	Shop         domain.Shop `json:"shop"`
	BasePrice    float64     `json:"base_price"`
	OptionsPrice float64     `json:"options_price"`
	UnitPrice    float64     `json:"unit_price"`
	Quantity     int         `json:"quantity"`
	Total        float64     `json:"total"`
	Version      int         `json:"pricing_version"`
}

// List prices the request at every active shop that configured the template
// and returns the offers cheapest first. Shops without a config, or with one
// that no longer compiles against the template, are left out.
func (uc *ListingUC) List(ctx context.Context, req ListingRequest) ([]Offer, error) {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	tpl, err := uc.Templates.FindByID(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	shops, err := uc.Shops.List(ctx, true)
	if err != nil {
		return nil, err
	}
	configs, err := uc.Pricing.ListByTemplate(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}
	byShop := make(map[uuid.UUID]*domain.PricingConfig, len(configs))
	for i := range configs {
		byShop[configs[i].ShopID] = &configs[i]
	}

	limit := uc.Concurrency
	if limit <= 0 {
		limit = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	offers := make([]*Offer, len(shops))
	for i, shop := range shops {
		cfg, ok := byShop[shop.ID]
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := pricing.Compile(tpl, cfg)
			if err != nil {
				log.Warn().Err(err).Str("shop_id", shop.ID.String()).Str("template_id", tpl.ID.String()).Msg("skipping shop with invalid pricing")
				return nil
			}
			optionsPrice := s.Price(req.Document, req.Options)
			offers[i] = &Offer{
				Shop:         shop,
				BasePrice:    s.BasePrice(),
				OptionsPrice: optionsPrice,
				UnitPrice:    s.BasePrice() + optionsPrice,
				Quantity:     req.Quantity,
				Total:        pricing.Listing(s.BasePrice(), optionsPrice, req.Quantity),
				Version:      s.Version(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := make([]Offer, 0, len(offers))
	for _, o := range offers {
		if o != nil {
			res = append(res, *o)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Total != res[j].Total {
			return res[i].Total < res[j].Total
		}
		return res[i].Shop.Name < res[j].Shop.Name
	})
	return res, nil
}
