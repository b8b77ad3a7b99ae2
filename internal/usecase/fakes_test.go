package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/phenrril/printmarket/internal/domain"
)

type memShops struct {
	mu    sync.Mutex
	shops map[uuid.UUID]domain.Shop
}

func newMemShops(shops ...domain.Shop) *memShops {
	m := &memShops{shops: map[uuid.UUID]domain.Shop{}}
	for _, s := range shops {
		m.shops[s.ID] = s
	}
	return m
}

func (m *memShops) Save(_ context.Context, s *domain.Shop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.shops[s.ID] = *s
	return nil
}

func (m *memShops) FindByID(_ context.Context, id uuid.UUID) (*domain.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shops[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *memShops) List(_ context.Context, activeOnly bool) ([]domain.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []domain.Shop{}
	for _, s := range m.shops {
		if activeOnly && !s.Active {
			continue
		}
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

type memTemplates struct {
	mu   sync.Mutex
	tpls map[uuid.UUID]domain.ProductTemplate
}

func newMemTemplates(tpls ...domain.ProductTemplate) *memTemplates {
	m := &memTemplates{tpls: map[uuid.UUID]domain.ProductTemplate{}}
	for _, t := range tpls {
		m.tpls[t.ID] = t
	}
	return m
}

func (m *memTemplates) Save(_ context.Context, t *domain.ProductTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tpls[t.ID] = *t
	return nil
}

func (m *memTemplates) FindByID(_ context.Context, id uuid.UUID) (*domain.ProductTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tpls[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memTemplates) List(_ context.Context) ([]domain.ProductTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []domain.ProductTemplate{}
	for _, t := range m.tpls {
		list = append(list, t)
	}
	return list, nil
}

type pricingKey struct{ shop, tpl uuid.UUID }

type memPricing struct {
	mu      sync.Mutex
	configs map[pricingKey]domain.PricingConfig
}

func newMemPricing(cfgs ...domain.PricingConfig) *memPricing {
	m := &memPricing{configs: map[pricingKey]domain.PricingConfig{}}
	for _, c := range cfgs {
		m.configs[pricingKey{c.ShopID, c.TemplateID}] = c
	}
	return m
}

func (m *memPricing) Save(_ context.Context, c *domain.PricingConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pricingKey{c.ShopID, c.TemplateID}
	if prev, ok := m.configs[k]; ok {
		c.ID = prev.ID
		if c.Version <= prev.Version {
			c.Version = prev.Version + 1
		}
	} else {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.Version < 1 {
			c.Version = 1
		}
	}
	m.configs[k] = *c
	return nil
}

func (m *memPricing) Find(_ context.Context, shopID, templateID uuid.UUID) (*domain.PricingConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.configs[pricingKey{shopID, templateID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *memPricing) ListByTemplate(_ context.Context, templateID uuid.UUID) ([]domain.PricingConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []domain.PricingConfig{}
	for k, c := range m.configs {
		if k.tpl == templateID {
			list = append(list, c)
		}
	}
	return list, nil
}

type memOrders struct {
	mu     sync.Mutex
	orders map[uuid.UUID]domain.Order
	// failWrites makes Save and RemoveItem fail without touching the store.
	failWrites error
}

func newMemOrders() *memOrders { return &memOrders{orders: map[uuid.UUID]domain.Order{}} }

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}

func (m *memOrders) Create(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	m.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (m *memOrders) Save(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	m.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (m *memOrders) List(_ context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []domain.Order{}
	for _, o := range m.orders {
		if f.ShopID != uuid.Nil && o.ShopID != f.ShopID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		list = append(list, cloneOrder(o))
	}
	return list, nil
}

func (m *memOrders) RemoveItem(_ context.Context, o *domain.Order, itemID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	stored, ok := m.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	found := false
	for _, it := range stored.Items {
		if it.ID == itemID {
			found = true
		}
	}
	if !found {
		return domain.ErrNotFound
	}
	m.orders[o.ID] = cloneOrder(*o)
	return nil
}

func ptr(v float64) *float64 { return &v }

// fixture is the marketplace used across use case tests: a poster template
// priced by two active shops, plus an inactive shop and a shop without
// pricing.
type fixture struct {
	tpl                          domain.ProductTemplate
	cheap, pricey, idle, dormant domain.Shop
	shops                        *memShops
	templates                    *memTemplates
	pricing                      *memPricing
	orders                       *memOrders
}

func newFixture() *fixture {
	f := &fixture{
		tpl: domain.ProductTemplate{
			ID:   uuid.New(),
			Name: "Poster",
			AllowedOptions: map[string]domain.OptionSchema{
				"color":    {PricingType: domain.PricingEnum, Values: []string{"red", "blue"}},
				"rush":     {PricingType: domain.PricingBoolean},
				"printing": {PricingType: domain.PricingPerPage},
			},
		},
		cheap:   domain.Shop{ID: uuid.New(), Name: "Copy Corner", Active: true},
		pricey:  domain.Shop{ID: uuid.New(), Name: "Premium Print", Active: true},
		idle:    domain.Shop{ID: uuid.New(), Name: "No Pricing Yet", Active: true},
		dormant: domain.Shop{ID: uuid.New(), Name: "Closed Shop", Active: false},
	}
	f.shops = newMemShops(f.cheap, f.pricey, f.idle, f.dormant)
	f.templates = newMemTemplates(f.tpl)
	f.pricing = newMemPricing(
		f.config(f.cheap.ID, 50, 2),
		f.config(f.pricey.ID, 100, 5),
		f.config(f.dormant.ID, 1, 1),
	)
	f.orders = newMemOrders()
	return f
}

func (f *fixture) config(shopID uuid.UUID, base, perPage float64) domain.PricingConfig {
	return domain.PricingConfig{
		ID:         uuid.New(),
		ShopID:     shopID,
		TemplateID: f.tpl.ID,
		BasePrice:  base,
		Version:    1,
		Rules: map[string]domain.PricingRule{
			"color":    {Values: map[string]float64{"red": 50}},
			"rush":     {Values: map[string]float64{"true": 100, "false": 0}},
			"printing": {PricePerPage: ptr(perPage)},
		},
	}
}

func (f *fixture) pricingUC() *PricingUC {
	return &PricingUC{Shops: f.shops, Templates: f.templates, Pricing: f.pricing}
}

func (f *fixture) orderUC() *OrderUC {
	return &OrderUC{Orders: f.orders, Shops: f.shops, Pricing: f.pricingUC()}
}
