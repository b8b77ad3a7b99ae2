package httpserver

import (
	"net/http"
	"strings"

	"github.com/phenrril/printmarket/internal/domain"
)

type shopRequest struct {
	Name   string `json:"name" validate:"required,max=180"`
	Slug   string `json:"slug" validate:"omitempty,max=140"`
	City   string `json:"city" validate:"max=100"`
	Email  string `json:"email" validate:"omitempty,email"`
	Active *bool  `json:"active"`
}

func (s *Server) apiListShops(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	list, err := s.catalog.ListShops(r.Context(), activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list, "total": len(list)})
}

func (s *Server) apiCreateShop(w http.ResponseWriter, r *http.Request) {
	var req shopRequest
	if !decode(w, r, &req) {
		return
	}
	shop := &domain.Shop{
		Name:   strings.TrimSpace(req.Name),
		Slug:   strings.TrimSpace(req.Slug),
		City:   strings.TrimSpace(req.City),
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Active: req.Active == nil || *req.Active,
	}
	if err := s.catalog.SaveShop(r.Context(), shop); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 201, shop)
}

func (s *Server) apiGetShop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	shop, err := s.catalog.GetShop(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, shop)
}

type templateRequest struct {
	Name           string                         `json:"name" validate:"required,max=180"`
	Slug           string                         `json:"slug" validate:"omitempty,max=140"`
	Description    string                         `json:"description"`
	AllowedOptions map[string]domain.OptionSchema `json:"allowedOptions"`
}

func (s *Server) apiListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.ListTemplates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list, "total": len(list)})
}

func (s *Server) apiCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !decode(w, r, &req) {
		return
	}
	tpl := &domain.ProductTemplate{
		Name:           strings.TrimSpace(req.Name),
		Slug:           strings.TrimSpace(req.Slug),
		Description:    req.Description,
		AllowedOptions: req.AllowedOptions,
	}
	if tpl.AllowedOptions == nil {
		tpl.AllowedOptions = map[string]domain.OptionSchema{}
	}
	if err := s.catalog.SaveTemplate(r.Context(), tpl); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 201, tpl)
}

func (s *Server) apiGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tpl, err := s.catalog.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, tpl)
}
