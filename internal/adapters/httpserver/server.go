package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/printmarket/internal/domain"
	"github.com/phenrril/printmarket/internal/pricing"
	"github.com/phenrril/printmarket/internal/usecase"
)

type Server struct {
	mux      *http.ServeMux
	catalog  *usecase.CatalogUC
	pricing  *usecase.PricingUC
	listing  *usecase.ListingUC
	orders   *usecase.OrderUC
	payments *usecase.PaymentUC
}

var validate = validator.New()

func New(c *usecase.CatalogUC, p *usecase.PricingUC, l *usecase.ListingUC, o *usecase.OrderUC, pay *usecase.PaymentUC) http.Handler {
	s := &Server{catalog: c, pricing: p, listing: l, orders: o, payments: pay, mux: http.NewServeMux()}
	s.routes()
	return Chain(s.mux,
		RequestID,
		Recovery,
		Logging,
		NoStore,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/shops", s.apiListShops)
	s.mux.HandleFunc("POST /api/shops", s.apiCreateShop)
	s.mux.HandleFunc("GET /api/shops/{id}", s.apiGetShop)
	s.mux.HandleFunc("GET /api/shops/{id}/orders", s.apiShopOrders)

	s.mux.HandleFunc("GET /api/templates", s.apiListTemplates)
	s.mux.HandleFunc("POST /api/templates", s.apiCreateTemplate)
	s.mux.HandleFunc("GET /api/templates/{id}", s.apiGetTemplate)

	// Pricing
	s.mux.HandleFunc("GET /api/shops/{id}/pricing/{templateID}", s.apiGetPricing)
	s.mux.HandleFunc("PUT /api/shops/{id}/pricing/{templateID}", s.apiPutPricing)
	s.mux.HandleFunc("POST /api/pricing/calculate", s.apiCalculate)
	s.mux.HandleFunc("POST /api/listing", s.apiListing)

	// Orders
	s.mux.HandleFunc("POST /api/cart", s.apiCreateCart)
	s.mux.HandleFunc("GET /api/orders/{id}", s.apiGetOrder)
	s.mux.HandleFunc("POST /api/orders/{id}/items", s.apiAddItem)
	s.mux.HandleFunc("PATCH /api/orders/{id}/items/{itemID}", s.apiUpdateItem)
	s.mux.HandleFunc("DELETE /api/orders/{id}/items/{itemID}", s.apiRemoveItem)
	s.mux.HandleFunc("PATCH /api/orders/{id}/status", s.apiUpdateStatus)
	s.mux.HandleFunc("POST /api/orders/{id}/checkout", s.apiCheckout)

	s.mux.HandleFunc("POST /webhooks/mp", s.webhookMP)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"status": "error", "message": msg})
}

// statusFor maps use case errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPricingNotConfigured):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidOrder), errors.Is(err, usecase.ErrInvalidExternalRef):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOrderLocked), errors.Is(err, domain.ErrInvalidStatusTransition), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, pricing.ErrRuleMismatch), errors.Is(err, pricing.ErrInvalidRange),
		errors.Is(err, pricing.ErrUnknownPricingType), errors.Is(err, pricing.ErrInvalidSchema),
		errors.Is(err, pricing.ErrMissingConfig), errors.Is(err, pricing.ErrMissingTemplate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", RequestIDFrom(r.Context())).Msg("request failed")
		writeMessage(w, code, "internal error")
		return
	}
	writeMessage(w, code, err.Error())
}

const maxBody = 1 << 20

// decode reads a JSON body into v and runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		writeMessage(w, 400, "invalid json")
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			writeMessage(w, 400, fmt.Sprintf("field %s failed %s", fe.Field(), fe.Tag()))
			return false
		}
		writeMessage(w, 400, err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeMessage(w, 400, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
