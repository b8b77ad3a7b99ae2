package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/phenrril/printmarket/internal/adapters/httpserver"
	"github.com/phenrril/printmarket/internal/adapters/payments/mercadopago"
	"github.com/phenrril/printmarket/internal/adapters/repo/postgres"
	"github.com/phenrril/printmarket/internal/config"
	"github.com/phenrril/printmarket/internal/domain"
	"github.com/phenrril/printmarket/internal/usecase"
)

type App struct {
	DB  *gorm.DB
	Cfg *config.Config

	CatalogUC *usecase.CatalogUC
	PricingUC *usecase.PricingUC
	ListingUC *usecase.ListingUC
	OrderUC   *usecase.OrderUC
	PaymentUC *usecase.PaymentUC
}

func NewApp(db *gorm.DB, cfg *config.Config) (*App, error) {
	if db == nil || cfg == nil {
		return nil, errors.New("app: db and config are required")
	}
	shopRepo := postgres.NewShopRepo(db)
	tplRepo := postgres.NewTemplateRepo(db)
	pricingRepo := postgres.NewPricingRepo(db)
	orderRepo := postgres.NewOrderRepo(db)

	if cfg.MPAccessToken == "" {
		log.Warn().Msg("MP_ACCESS_TOKEN not set, checkout will fail")
	}
	payment := mercadopago.NewGateway(mercadopago.Options{
		Token:         cfg.MPAccessToken,
		Secret:        cfg.SecretKey,
		APIURL:        cfg.MPBaseURL,
		PublicBaseURL: cfg.PublicBaseURL,
		Production:    cfg.IsProduction(),
	})

	app := &App{DB: db, Cfg: cfg}
	app.CatalogUC = &usecase.CatalogUC{Shops: shopRepo, Templates: tplRepo}
	app.PricingUC = &usecase.PricingUC{Shops: shopRepo, Templates: tplRepo, Pricing: pricingRepo}
	app.ListingUC = &usecase.ListingUC{Shops: shopRepo, Templates: tplRepo, Pricing: pricingRepo, Concurrency: cfg.ListingConcurrency}
	app.OrderUC = &usecase.OrderUC{Orders: orderRepo, Shops: shopRepo, Pricing: app.PricingUC}
	app.PaymentUC = &usecase.PaymentUC{Orders: app.OrderUC, Gateway: payment}
	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.CatalogUC, a.PricingUC, a.ListingUC, a.OrderUC, a.PaymentUC)
}

func (a *App) MigrateAndSeed(ctx context.Context) error {
	if err := a.DB.WithContext(ctx).AutoMigrate(
		&domain.Shop{}, &domain.ProductTemplate{}, &domain.PricingConfig{}, &domain.Order{}, &domain.OrderItem{},
	); err != nil {
		return err
	}

	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_orders_shop_status ON orders(shop_id, status)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_product_templates_options_gin ON product_templates USING gin (allowed_options)").Error

	if !a.Cfg.SeedDemo {
		return nil
	}
	return a.seedDemo(ctx)
}

// seedDemo installs a poster template priced by two shops when the catalog
// is empty.
func (a *App) seedDemo(ctx context.Context) error {
	var count int64
	if err := a.DB.WithContext(ctx).Model(&domain.ProductTemplate{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tpl := &domain.ProductTemplate{
		ID:          uuid.New(),
		Name:        "Poster",
		Description: "Single sheet poster print",
		AllowedOptions: map[string]domain.OptionSchema{
			"color":    {PricingType: domain.PricingEnum, Label: "Color", Values: []string{"red", "blue", "black"}},
			"rush":     {PricingType: domain.PricingBoolean, Label: "Rush delivery"},
			"printing": {PricingType: domain.PricingPerPage, Label: "Printing"},
		},
	}
	if err := a.CatalogUC.SaveTemplate(ctx, tpl); err != nil {
		return err
	}

	shops := []struct {
		shop    domain.Shop
		base    float64
		perPage float64
	}{
		{shop: domain.Shop{Name: "Copy Corner", City: "Rosario", Active: true}, base: 0, perPage: 5},
		{shop: domain.Shop{Name: "Premium Print", City: "Rosario", Active: true}, base: 150, perPage: 8},
	}
	for _, s := range shops {
		shop := s.shop
		if err := a.CatalogUC.SaveShop(ctx, &shop); err != nil {
			return err
		}
		perPage := s.perPage
		cfg := &domain.PricingConfig{
			ID:         uuid.New(),
			ShopID:     shop.ID,
			TemplateID: tpl.ID,
			BasePrice:  s.base,
			Rules: map[string]domain.PricingRule{
				"color":    {Values: map[string]float64{"red": 50, "blue": 50, "black": 0}},
				"rush":     {Values: map[string]float64{"true": 100, "false": 0}},
				"printing": {PricePerPage: &perPage},
			},
		}
		if err := a.PricingUC.SaveConfig(ctx, cfg); err != nil {
			return err
		}
	}
	log.Info().Str("template_id", tpl.ID.String()).Int("shops", len(shops)).Msg("demo catalog seeded")
	return nil
}
