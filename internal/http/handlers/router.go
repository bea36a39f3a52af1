package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sapphiretrails/backoffice/internal/domain"
	authmw "github.com/sapphiretrails/backoffice/internal/http/middleware"
	"github.com/sapphiretrails/backoffice/internal/http/response"
	"github.com/sapphiretrails/backoffice/internal/service"
	"github.com/sapphiretrails/backoffice/pkg/metrics"
	mw "github.com/sapphiretrails/backoffice/pkg/middleware"
)

// RouterDeps is everything the API router serves.
type RouterDeps struct {
	Tours     service.TourService
	Users     service.UserService
	Bookings  service.BookingService
	Locations service.LocationService
	Media     service.MediaService
	Metrics   *metrics.Metrics

	JWTSecret      string
	AllowedOrigins []string
	MediaDir       string
	MediaPrefix    string
	MaxUpload      int64

	// BookingLimit and LoginLimit are optional per-IP limiters.
	BookingLimit *mw.RateLimiter
	LoginLimit   *mw.RateLimiter
	// Health reports dependency health for /healthz; nil means always ok.
	Health func(ctx context.Context) error
}

func limiter(rl *mw.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return nil
	}
	return rl.Middleware
}

// RateLimited is the rejection handler for the per-IP limiters.
func RateLimited(w http.ResponseWriter, r *http.Request) {
	response.RateLimit(w, "too many requests, try again later")
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.StripSlashes)
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("backoffice"))
	r.Use(mw.Logging)
	r.Use(chimw.Recoverer)
	r.Use(mw.CORS(d.AllowedOrigins))
	r.Use(mw.Health(d.Health))
	if d.Metrics != nil {
		r.Use(mw.Metrics(d.Metrics))
	}

	staff := authmw.RequireRole(d.JWTSecret, string(domain.UserAdmin), string(domain.UserSuperadmin))
	superadmin := authmw.RequireRole(d.JWTSecret, string(domain.UserSuperadmin))

	r.Mount("/auth", NewAuthHandler(d.Users, limiter(d.LoginLimit)).Routes())
	r.Mount("/tours", NewTourHandler(d.Tours, d.Media, staff, d.MaxUpload).Routes())
	r.Mount("/locations", NewLocationHandler(d.Locations, staff).Routes())
	r.Mount("/bookings", NewBookingHandler(d.Bookings, limiter(d.BookingLimit)).Routes())

	users := NewUserHandler(d.Users)
	r.Group(func(r chi.Router) {
		r.Use(staff)
		r.Mount("/users", users.Routes())
		r.Mount("/admin/bookings", NewAdminBookingHandler(d.Bookings).Routes())
	})
	r.Group(func(r chi.Router) {
		r.Use(superadmin)
		r.Mount("/admins", users.AdminRoutes())
	})

	if d.MediaDir != "" {
		prefix := "/" + strings.Trim(d.MediaPrefix, "/")
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(d.MediaDir)))
		r.Get(prefix+"/*", fs.ServeHTTP)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", response.CodeInvalidInput)
	})
	return r
}
