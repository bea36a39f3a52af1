package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/sapphiretrails/backoffice/pkg/logger"
	"github.com/sapphiretrails/backoffice/pkg/metrics"
)

// RequestID tags the request with an id taken from X-Request-ID, or a new
// uuid when the header is missing or implausibly long.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), logger.RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logging writes one structured line per request through chi's RequestLogger.
func Logging(next http.Handler) http.Handler {
	return middleware.RequestLogger(requestLogFormatter{})(next)
}

type requestLogFormatter struct{}

func (requestLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{r: r}
}

type requestLogEntry struct {
	r *http.Request
}

func (e *requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	args := []any{
		"method", e.r.Method,
		"path", e.r.URL.Path,
		"route", routePattern(e.r),
		"status", status,
		"bytes", bytes,
		"elapsed_ms", elapsed.Milliseconds(),
		"remote_addr", e.r.RemoteAddr,
	}
	ctx := e.r.Context()
	switch {
	case status >= 500:
		logger.ErrorContext(ctx, "request failed", args...)
	case status >= 400:
		logger.WarnContext(ctx, "request rejected", args...)
	default:
		logger.InfoContext(ctx, "request served", args...)
	}
}

func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	logger.ErrorContext(e.r.Context(), "request panicked",
		"panic", v,
		"stack", string(stack),
		"method", e.r.Method,
		"path", e.r.URL.Path,
	)
}

// CORS allows the marketing site and the admin UI origins.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// ServiceName adds service name to context for logging
func ServiceName(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), logger.ServiceKey, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Metrics records request counts and latency per chi route pattern and
// serves the registry on /metrics.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	exposition := m.Handler()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				exposition.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
			m.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}

// routePattern is the matched chi pattern, which keeps label cardinality
// bounded by the route table.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// Health serves /healthz. The check, when set, reports dependency health.
func Health(check func(ctx context.Context) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/healthz" {
				next.ServeHTTP(w, r)
				return
			}
			status, code := "ok", http.StatusOK
			if check != nil {
				ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
				defer cancel()
				if err := check(ctx); err != nil {
					logger.WarnContext(ctx, "Health check failed", "error", err)
					status, code = "degraded", http.StatusServiceUnavailable
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":    status,
				"timestamp": time.Now().Format(time.RFC3339),
			})
		})
	}
}
