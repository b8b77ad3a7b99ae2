package httpserver

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/phenrril/printmarket/internal/domain"
	"github.com/phenrril/printmarket/internal/usecase"
)

type pricingRequest struct {
	BasePrice float64                       `json:"base_price" validate:"gte=0"`
	Rules     map[string]domain.PricingRule `json:"rules"`
}

func (s *Server) apiGetPricing(w http.ResponseWriter, r *http.Request) {
	shopID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tplID, ok := pathID(w, r, "templateID")
	if !ok {
		return
	}
	cfg, err := s.pricing.GetConfig(r.Context(), shopID, tplID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, cfg)
}

func (s *Server) apiPutPricing(w http.ResponseWriter, r *http.Request) {
	shopID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tplID, ok := pathID(w, r, "templateID")
	if !ok {
		return
	}
	var req pricingRequest
	if !decode(w, r, &req) {
		return
	}
	cfg := &domain.PricingConfig{
		ID:         uuid.New(),
		ShopID:     shopID,
		TemplateID: tplID,
		BasePrice:  req.BasePrice,
		Rules:      req.Rules,
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]domain.PricingRule{}
	}
	if err := s.pricing.SaveConfig(r.Context(), cfg); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, cfg)
}

type calculateRequest struct {
	ShopID     string              `json:"shop_id" validate:"required,uuid"`
	TemplateID string              `json:"template_id" validate:"required,uuid"`
	Document   domain.DocumentMeta `json:"document"`
	Options    map[string]any      `json:"options"`
	Quantity   int                 `json:"quantity" validate:"gte=0"`
}

func (s *Server) apiCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if !decode(w, r, &req) {
		return
	}
	q, err := s.pricing.Quote(r.Context(), usecase.QuoteRequest{
		ShopID:     uuid.MustParse(req.ShopID),
		TemplateID: uuid.MustParse(req.TemplateID),
		Document:   req.Document,
		Options:    req.Options,
		Quantity:   req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, q)
}

type listingRequest struct {
	TemplateID string              `json:"template_id" validate:"required,uuid"`
	Document   domain.DocumentMeta `json:"document"`
	Options    map[string]any      `json:"options"`
	Quantity   int                 `json:"quantity" validate:"gte=0"`
}

func (s *Server) apiListing(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Document.Pages < 0 {
		writeMessage(w, 400, "pages must not be negative")
		return
	}
	offers, err := s.listing.List(r.Context(), usecase.ListingRequest{
		TemplateID: uuid.MustParse(req.TemplateID),
		Document:   req.Document,
		Options:    req.Options,
		Quantity:   req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, map[string]any{"offers": offers, "total": len(offers)})
}
