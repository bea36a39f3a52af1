package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/http/response"
	"github.com/sapphiretrails/backoffice/internal/service"
	"github.com/sapphiretrails/backoffice/pkg/logger"
)

type AuthHandler struct {
	Users service.UserService
	// Limit guards login and register; nil disables it.
	Limit func(http.Handler) http.Handler
}

func NewAuthHandler(users service.UserService, limit func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{Users: users, Limit: limit}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	if h.Limit != nil {
		r.Use(h.Limit)
	}
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	return r
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterReq
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.Users.Register(r.Context(), &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginReq
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.Users.Login(r.Context(), &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	logger.InfoContext(r.Context(), "User logged in", "user_id", res.User.ID, "type", res.User.Type)
	response.WriteJSON(w, http.StatusOK, res)
}
