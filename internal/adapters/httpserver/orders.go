package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/printmarket/internal/domain"
	"github.com/phenrril/printmarket/internal/usecase"
)

type itemRequest struct {
	TemplateID  string         `json:"template_id" validate:"required,uuid"`
	DocumentURL string         `json:"document_url" validate:"omitempty,url"`
	Pages       int            `json:"pages" validate:"gte=0"`
	Options     map[string]any `json:"options"`
	Quantity    int            `json:"quantity" validate:"gte=1"`
}

func (it itemRequest) toUsecase() usecase.ItemRequest {
	return usecase.ItemRequest{
		TemplateID:  uuid.MustParse(it.TemplateID),
		DocumentURL: it.DocumentURL,
		Pages:       it.Pages,
		Options:     it.Options,
		Quantity:    it.Quantity,
	}
}

type cartRequest struct {
	ShopID string        `json:"shop_id" validate:"required,uuid"`
	Email  string        `json:"email" validate:"required,email"`
	Name   string        `json:"name" validate:"max=140"`
	Phone  string        `json:"phone" validate:"max=50"`
	Notes  string        `json:"notes" validate:"max=2000"`
	Items  []itemRequest `json:"items" validate:"required,min=1,dive"`
}

func (s *Server) apiCreateCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if !decode(w, r, &req) {
		return
	}
	cart := usecase.CartRequest{
		ShopID: uuid.MustParse(req.ShopID),
		Email:  req.Email,
		Name:   req.Name,
		Phone:  req.Phone,
		Notes:  req.Notes,
	}
	for _, it := range req.Items {
		cart.Items = append(cart.Items, it.toUsecase())
	}
	o, err := s.orders.CreateCart(r.Context(), cart)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 201, o)
}

func (s *Server) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := s.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, o)
}

func (s *Server) apiShopOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	list, err := s.orders.ListForShop(r.Context(), id, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list, "total": len(list)})
}

func (s *Server) apiAddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req itemRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := s.orders.AddItem(r.Context(), id, req.toUsecase())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, o)
}

type quantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

func (s *Server) apiUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	var req quantityRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := s.orders.UpdateItemQuantity(r.Context(), id, itemID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, o)
}

func (s *Server) apiRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	o, err := s.orders.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, o)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (s *Server) apiUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := s.orders.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, o)
}

func (s *Server) apiCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	payURL, o, err := s.payments.Checkout(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, map[string]any{"init_point": payURL, "order_id": o.ID, "total": o.Total})
}

// webhookMP always answers 200 so MercadoPago does not retry events that
// cannot be applied.
func (s *Server) webhookMP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(io.LimitReader(r.Body, 65536))
	var evt struct {
		Type   string `json:"type"`
		Action string `json:"action"`
		Data   struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &evt)
	if evt.Type == "" {
		evt.Type = r.URL.Query().Get("topic")
	}
	if evt.Type != "" && evt.Type != "payment" {
		w.WriteHeader(200)
		return
	}
	payID := evt.Data.ID
	if payID == "" {
		payID = r.URL.Query().Get("id")
	}
	if payID == "" {
		payID = r.URL.Query().Get("data.id")
	}
	if payID == "" {
		log.Warn().Msg("webhook without payment id")
		w.WriteHeader(200)
		return
	}
	o, err := s.payments.HandleNotification(r.Context(), payID)
	if err != nil {
		log.Error().Err(err).Str("payment_id", payID).Msg("webhook")
		w.WriteHeader(200)
		return
	}
	log.Info().Str("payment_id", payID).Str("order_id", o.ID.String()).Str("status", string(o.Status)).Msg("webhook applied")
	w.WriteHeader(200)
}
