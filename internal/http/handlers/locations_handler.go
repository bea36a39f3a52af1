package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/http/response"
	"github.com/sapphiretrails/backoffice/internal/service"
)

type LocationHandler struct {
	Locations service.LocationService
	Admin     func(http.Handler) http.Handler
}

func NewLocationHandler(locations service.LocationService, admin func(http.Handler) http.Handler) *LocationHandler {
	return &LocationHandler{Locations: locations, Admin: admin}
}

func (h *LocationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{slug}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.Admin)
		r.Post("/", h.create)
		r.Put("/{slug}", h.update)
		r.Delete("/{slug}", h.delete)
	})
	return r
}

func (h *LocationHandler) list(w http.ResponseWriter, r *http.Request) {
	locs, err := h.Locations.List(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, locs)
}

func (h *LocationHandler) get(w http.ResponseWriter, r *http.Request) {
	l, err := h.Locations.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, l)
}

func (h *LocationHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.LocationReq
	if !decodeJSON(w, r, &in) {
		return
	}
	l, err := h.Locations.Create(r.Context(), &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, l)
}

func (h *LocationHandler) update(w http.ResponseWriter, r *http.Request) {
	var in domain.LocationReq
	if !decodeJSON(w, r, &in) {
		return
	}
	l, err := h.Locations.Update(r.Context(), chi.URLParam(r, "slug"), &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, l)
}

func (h *LocationHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Locations.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
		response.FromError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
