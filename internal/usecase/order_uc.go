package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/printmarket/internal/domain"
)

type OrderUC struct {
	Orders  domain.OrderRepo
	Shops   domain.ShopRepo
	Pricing *PricingUC
}

type ItemRequest struct {
	TemplateID  uuid.UUID
	DocumentURL string
	Pages       int
	Options     map[string]any
	Quantity    int
}

type CartRequest struct {
	ShopID uuid.UUID
	Email  string
	Name   string
	Phone  string
	Notes  string
	Items  []ItemRequest
}

func (uc *OrderUC) priceItem(ctx context.Context, shopID uuid.UUID, it ItemRequest) (domain.OrderItem, error) {
	if it.Quantity < 1 {
		return domain.OrderItem{}, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidOrder)
	}
	q, err := uc.Pricing.Quote(ctx, QuoteRequest{
		ShopID:     shopID,
		TemplateID: it.TemplateID,
		Document:   domain.DocumentMeta{Pages: it.Pages},
		Options:    it.Options,
		Quantity:   it.Quantity,
	})
	if err != nil {
		return domain.OrderItem{}, err
	}
	return domain.OrderItem{
		ID:             uuid.New(),
		TemplateID:     it.TemplateID,
		Title:          q.TemplateName,
		DocumentURL:    strings.TrimSpace(it.DocumentURL),
		Pages:          it.Pages,
		Options:        it.Options,
		Quantity:       it.Quantity,
		OptionsPrice:   q.OptionsPrice,
		UnitPrice:      q.UnitPrice,
		Subtotal:       q.Total,
		PricingVersion: q.Version,
	}, nil
}

// CreateCart assembles a pending order for one shop, pricing every item with
// the shop's current configuration.
func (uc *OrderUC) CreateCart(ctx context.Context, req CartRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrInvalidOrder)
	}
	shop, err := uc.Shops.FindByID(ctx, req.ShopID)
	if err != nil {
		return nil, err
	}
	if !shop.Active {
		return nil, fmt.Errorf("%w: shop is not accepting orders", domain.ErrInvalidOrder)
	}

	o := &domain.Order{
		ID:     uuid.New(),
		ShopID: shop.ID,
		Status: domain.OrderStatusPending,
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Name:   strings.TrimSpace(req.Name),
		Phone:  strings.TrimSpace(req.Phone),
		Notes:  req.Notes,
	}
	for _, it := range req.Items {
		item, err := uc.priceItem(ctx, shop.ID, it)
		if err != nil {
			return nil, err
		}
		item.OrderID = o.ID
		o.Items = append(o.Items, item)
	}
	o.Recalculate()

	if err := uc.Orders.Create(ctx, o); err != nil {
		return nil, err
	}
	log.Info().Str("order_id", o.ID.String()).Str("shop_id", shop.ID.String()).Int("items", len(o.Items)).Float64("total", o.Total).Msg("order created")
	return o, nil
}

func (uc *OrderUC) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.Orders.FindByID(ctx, id)
}

func (uc *OrderUC) editable(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Editable() {
		return nil, fmt.Errorf("%w: status %s", domain.ErrOrderLocked, o.Status)
	}
	return o, nil
}

func (uc *OrderUC) AddItem(ctx context.Context, orderID uuid.UUID, it ItemRequest) (*domain.Order, error) {
	o, err := uc.editable(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item, err := uc.priceItem(ctx, o.ShopID, it)
	if err != nil {
		return nil, err
	}
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
	o.Recalculate()
	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func itemIndex(o *domain.Order, itemID uuid.UUID) int {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func (uc *OrderUC) UpdateItemQuantity(ctx context.Context, orderID, itemID uuid.UUID, qty int) (*domain.Order, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidOrder)
	}
	o, err := uc.editable(ctx, orderID)
	if err != nil {
		return nil, err
	}
	i := itemIndex(o, itemID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	o.Items[i].Quantity = qty
	o.Recalculate()
	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *OrderUC) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*domain.Order, error) {
	o, err := uc.editable(ctx, orderID)
	if err != nil {
		return nil, err
	}
	i := itemIndex(o, itemID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	o.Items = append(o.Items[:i], o.Items[i+1:]...)
	o.Recalculate()
	if err := uc.Orders.RemoveItem(ctx, o, itemID); err != nil {
		return nil, err
	}
	return o, nil
}

// Reprice recomputes every item of a pending order against the shop's
// current pricing.
func (uc *OrderUC) Reprice(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	o, err := uc.editable(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := uc.reprice(ctx, o); err != nil {
		return nil, err
	}
	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *OrderUC) reprice(ctx context.Context, o *domain.Order) error {
	for i := range o.Items {
		it := o.Items[i]
		priced, err := uc.priceItem(ctx, o.ShopID, ItemRequest{
			TemplateID: it.TemplateID,
			Pages:      it.Pages,
			Options:    it.Options,
			Quantity:   it.Quantity,
		})
		if err != nil {
			return err
		}
		o.Items[i].OptionsPrice = priced.OptionsPrice
		o.Items[i].UnitPrice = priced.UnitPrice
		o.Items[i].PricingVersion = priced.PricingVersion
	}
	o.Recalculate()
	return nil
}

func (uc *OrderUC) ListForShop(ctx context.Context, shopID uuid.UUID, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	if _, err := uc.Shops.FindByID(ctx, shopID); err != nil {
		return nil, err
	}
	return uc.Orders.List(ctx, domain.OrderFilter{ShopID: shopID, Status: status})
}

func (uc *OrderUC) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidStatusTransition, status)
	}
	o, err := uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, o.Status, status)
	}
	prev := o.Status
	o.Status = status
	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	log.Info().Str("order_id", o.ID.String()).Str("from", string(prev)).Str("to", string(status)).Msg("order status changed")
	return o, nil
}
