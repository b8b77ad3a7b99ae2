package httpserver

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/phenrril/printmarket/internal/domain"
	"github.com/phenrril/printmarket/internal/usecase"
)

// store backs every repository interface with maps so handlers can be
// exercised end to end without a database.
type store struct {
	mu        sync.Mutex
	shops     map[uuid.UUID]domain.Shop
	templates map[uuid.UUID]domain.ProductTemplate
	configs   map[[2]uuid.UUID]domain.PricingConfig
	orders    map[uuid.UUID]domain.Order
}

func newStore() *store {
	return &store{
		shops:     map[uuid.UUID]domain.Shop{},
		templates: map[uuid.UUID]domain.ProductTemplate{},
		configs:   map[[2]uuid.UUID]domain.PricingConfig{},
		orders:    map[uuid.UUID]domain.Order{},
	}
}

type shopStore struct{ *store }

func (s shopStore) Save(_ context.Context, sh *domain.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops[sh.ID] = *sh
	return nil
}

func (s shopStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shops[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sh, nil
}

func (s shopStore) List(_ context.Context, activeOnly bool) ([]domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []domain.Shop{}
	for _, sh := range s.shops {
		if !activeOnly || sh.Active {
			list = append(list, sh)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

type templateStore struct{ *store }

func (s templateStore) Save(_ context.Context, t *domain.ProductTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.ID] = *t
	return nil
}

func (s templateStore) FindByID(_ context.Context, id uuid.UUID) (*domain.ProductTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s templateStore) List(_ context.Context) ([]domain.ProductTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []domain.ProductTemplate{}
	for _, t := range s.templates {
		list = append(list, t)
	}
	return list, nil
}

type pricingStore struct{ *store }

func (s pricingStore) Save(_ context.Context, c *domain.PricingConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := [2]uuid.UUID{c.ShopID, c.TemplateID}
	c.Version = 1
	if prev, ok := s.configs[k]; ok {
		c.ID = prev.ID
		c.Version = prev.Version + 1
	}
	s.configs[k] = *c
	return nil
}

func (s pricingStore) Find(_ context.Context, shopID, templateID uuid.UUID) (*domain.PricingConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.configs[[2]uuid.UUID{shopID, templateID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s pricingStore) ListByTemplate(_ context.Context, templateID uuid.UUID) ([]domain.PricingConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []domain.PricingConfig{}
	for k, c := range s.configs {
		if k[1] == templateID {
			list = append(list, c)
		}
	}
	return list, nil
}

type orderStore struct{ *store }

func (s orderStore) Create(ctx context.Context, o *domain.Order) error { return s.Save(ctx, o) }

func (s orderStore) Save(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	s.orders[o.ID] = cp
	return nil
}

func (s orderStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return &o, nil
}

func (s orderStore) List(_ context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []domain.Order{}
	for _, o := range s.orders {
		if o.ShopID == f.ShopID && (f.Status == "" || o.Status == f.Status) {
			list = append(list, o)
		}
	}
	return list, nil
}

func (s orderStore) RemoveItem(ctx context.Context, o *domain.Order, itemID uuid.UUID) error {
	s.mu.Lock()
	stored, ok := s.orders[o.ID]
	s.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	for _, it := range stored.Items {
		if it.ID == itemID {
			return s.Save(ctx, o)
		}
	}
	return domain.ErrNotFound
}

type stubGateway struct {
	status string
}

func (g *stubGateway) CreatePreference(_ context.Context, o *domain.Order) (string, error) {
	return "https://pay.example/" + o.ID.String(), nil
}

func (g *stubGateway) PaymentInfo(_ context.Context, paymentID string) (string, string, error) {
	// payment ids in tests are the order ids they pay for
	return g.status, paymentID + "|ok", nil
}

func (g *stubGateway) VerifyExternalRef(ext string) (string, bool) {
	return strings.CutSuffix(ext, "|ok")
}

func newTestHandler(st *store, gw usecase.PaymentGateway) http.Handler {
	pricingUC := &usecase.PricingUC{Shops: shopStore{st}, Templates: templateStore{st}, Pricing: pricingStore{st}}
	ordersUC := &usecase.OrderUC{Orders: orderStore{st}, Shops: shopStore{st}, Pricing: pricingUC}
	return New(
		&usecase.CatalogUC{Shops: shopStore{st}, Templates: templateStore{st}},
		pricingUC,
		&usecase.ListingUC{Shops: shopStore{st}, Templates: templateStore{st}, Pricing: pricingStore{st}, Concurrency: 2},
		ordersUC,
		&usecase.PaymentUC{Orders: ordersUC, Gateway: gw},
	)
}
