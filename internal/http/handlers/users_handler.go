package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/http/middleware"
	"github.com/sapphiretrails/backoffice/internal/http/response"
	"github.com/sapphiretrails/backoffice/internal/service"
)

type UserHandler struct {
	Users service.UserService
}

func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

// Routes serves /users. Trailing slashes are stripped by the router, so
// DELETE /users/{id}/ reaches delete.
func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

// AdminRoutes serves /admins, which only superadmins reach.
func (h *UserHandler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listAdmins)
	r.Post("/", h.createAdmin)
	return r
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, users)
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, u)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in domain.UpdateUserReq
	if !decodeJSON(w, r, &in) {
		return
	}
	// only superadmins hand out staff roles
	if in.Type != nil && *in.Type != string(domain.UserClient) && !isSuperadmin(r) {
		response.FromError(w, r, domain.ErrForbidden)
		return
	}
	if !h.mayManage(w, r, id) {
		return
	}
	u, err := h.Users.Update(r.Context(), id, &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, u)
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if c := middleware.Claims(r); c != nil && c.Sub == id {
		response.BadRequest(w, "you cannot delete your own account")
		return
	}
	if !h.mayManage(w, r, id) {
		return
	}
	if err := h.Users.Delete(r.Context(), id); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// mayManage reports whether the caller may change the account id. Staff
// accounts other than the caller's own are reserved to superadmins.
func (h *UserHandler) mayManage(w http.ResponseWriter, r *http.Request, id int64) bool {
	if isSuperadmin(r) {
		return true
	}
	target, err := h.Users.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return false
	}
	c := middleware.Claims(r)
	if target.Type.IsStaff() && (c == nil || c.Sub != id) {
		response.FromError(w, r, domain.ErrForbidden)
		return false
	}
	return true
}

func isSuperadmin(r *http.Request) bool {
	c := middleware.Claims(r)
	return c != nil && c.Role == string(domain.UserSuperadmin)
}

func (h *UserHandler) listAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.Users.List(r.Context(), string(domain.UserAdmin))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	supers, err := h.Users.List(r.Context(), string(domain.UserSuperadmin))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, append(supers, admins...))
}

func (h *UserHandler) createAdmin(w http.ResponseWriter, r *http.Request) {
	var in domain.CreateAdminReq
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.Users.CreateAdmin(r.Context(), &in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Admin created successfully",
		"user":    u,
	})
}
