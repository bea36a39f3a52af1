package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/http/response"
	"github.com/sapphiretrails/backoffice/internal/service"
)

// BookingHandler serves the public booking form.
type BookingHandler struct {
	Bookings service.BookingService
	Limit    func(http.Handler) http.Handler
}

func NewBookingHandler(bookings service.BookingService, limit func(http.Handler) http.Handler) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Limit: limit}
}

func (h *BookingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	if h.Limit != nil {
		r.Use(h.Limit)
	}
	r.Post("/", h.create)
	return r
}

type createBookingRes struct {
	ID     int64                `json:"id"`
	Status domain.BookingStatus `json:"status"`
	Date   string               `json:"date"`
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.BookingReq
	if !decodeJSON(w, r, &in) {
		return
	}
	b, err := h.Bookings.Create(r.Context(), &in, r.Header.Get("Idempotency-Key"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, createBookingRes{
		ID:     b.ID,
		Status: b.Status,
		Date:   b.TourDate.Format(domain.DateLayout),
	})
}

// AdminBookingHandler serves the triage list and the booking edit page.
type AdminBookingHandler struct {
	Bookings service.BookingService
}

func NewAdminBookingHandler(bookings service.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{Bookings: bookings}
}

func (h *AdminBookingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.page)
	r.Get("/stats", h.stats)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Patch("/{id}/status", h.setStatus)
	return r
}

func (h *AdminBookingHandler) page(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "invalid page")
			return
		}
		page = n
	}
	p, err := h.Bookings.Page(r.Context(), page)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, p)
}

func (h *AdminBookingHandler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Bookings.Stats(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, st)
}

func (h *AdminBookingHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b, err := h.Bookings.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, b.DTO())
}

func (h *AdminBookingHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in domain.BookingReq
	if !decodeJSON(w, r, &in) {
		return
	}
	b, err := h.Bookings.Update(r.Context(), id, &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, b.DTO())
}

func (h *AdminBookingHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in domain.BookingStatusReq
	if !decodeJSON(w, r, &in) {
		return
	}
	b, err := h.Bookings.SetStatus(r.Context(), id, in.Status)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, b.DTO())
}
