package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sapphiretrails/backoffice/internal/http/handlers"
	"github.com/sapphiretrails/backoffice/internal/repo/postgres"
	"github.com/sapphiretrails/backoffice/internal/service"
	"github.com/sapphiretrails/backoffice/pkg/cache"
	"github.com/sapphiretrails/backoffice/pkg/config"
	"github.com/sapphiretrails/backoffice/pkg/database"
	"github.com/sapphiretrails/backoffice/pkg/events"
	"github.com/sapphiretrails/backoffice/pkg/logger"
	"github.com/sapphiretrails/backoffice/pkg/mailer"
	"github.com/sapphiretrails/backoffice/pkg/metrics"
	mw "github.com/sapphiretrails/backoffice/pkg/middleware"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}

	var tourCache cache.Cache = cache.Nop{}
	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, tour cache disabled", "error", err)
		} else {
			defer rc.Close()
			tourCache = rc
		}
	}

	var bus events.EventBus = events.NewLocalBus()
	if cfg.NATS.URL != "" {
		nb, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Warn("NATS unavailable, using in-process events", "error", err)
		} else {
			bus = nb
		}
	}
	defer bus.Close()

	var mail mailer.Service
	switch {
	case cfg.Email.DevMode:
		mail = mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		mail = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	case cfg.Email.SMTPHost != "":
		mail = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.FromEmail,
			cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPTLS)
	default:
		mail = mailer.NewDevMailer()
	}

	m := metrics.NewMetrics("sapphire_trails", nil)

	// Repositories
	itineraryRepo := postgres.NewItineraryRepo(pool)
	galleryRepo := postgres.NewGalleryRepo(pool)
	tourRepo := postgres.NewTourRepo(pool, itineraryRepo, galleryRepo)
	usersRepo := postgres.NewUsersRepo(pool)
	bookingRepo := postgres.NewBookingRepo(pool)
	idempotencyRepo := postgres.NewIdempotencyRepo(pool)
	locationRepo := postgres.NewLocationRepo(pool)

	// Services
	tourService := service.NewTourService(tourRepo, galleryRepo, tourCache, cfg.Redis.TourTTL, bus, m)
	userService := service.NewUserService(usersRepo, bus, m, cfg.Auth)
	bookingService := service.NewBookingService(bookingRepo, idempotencyRepo, userService, bus, m)
	locationService := service.NewLocationService(locationRepo, bus)
	mediaService, err := service.NewMediaService(cfg.Media)
	if err != nil {
		logger.Error("Failed to prepare media directory", "error", err, "dir", cfg.Media.Dir)
		os.Exit(1)
	}

	if err := service.NewStatusNotifier(mail, tourService).Start(bus); err != nil {
		logger.Error("Failed to subscribe booking notifier", "error", err)
		os.Exit(1)
	}

	if err := userService.BootstrapSuperadmin(ctx, cfg.Seed.SuperadminUsername, cfg.Seed.SuperadminPassword); err != nil {
		logger.Error("Failed to bootstrap superadmin", "error", err)
		os.Exit(1)
	}
	if cfg.Seed.DemoData {
		n, err := bookingService.SeedDemo(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to seed demo bookings", "error", err)
		} else if n > 0 {
			logger.Info("Seeded demo bookings", "count", n)
		}
	}

	done := make(chan struct{})
	bookingLimit := mw.NewRateLimiter(cfg.RateLimit.BookingsPerMinute, handlers.RateLimited)
	loginLimit := mw.NewRateLimiter(cfg.RateLimit.LoginPerMinute, handlers.RateLimited)
	go bookingLimit.Sweep(5*time.Minute, done)
	go loginLimit.Sweep(5*time.Minute, done)
	go cleanupIdempotency(idempotencyRepo, time.Hour, done)

	router := handlers.NewRouter(handlers.RouterDeps{
		Tours:          tourService,
		Users:          userService,
		Bookings:       bookingService,
		Locations:      locationService,
		Media:          mediaService,
		Metrics:        m,
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MediaDir:       cfg.Media.Dir,
		MediaPrefix:    cfg.Media.URLPrefix,
		MaxUpload:      cfg.Media.MaxUploadSize,
		BookingLimit:   bookingLimit,
		LoginLimit:     loginLimit,
		Health:         pool.Ping,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down back office API...")
		close(done)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting back office API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func cleanupIdempotency(repo postgres.IdempotencyRepo, every time.Duration, done <-chan struct{}) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			n, err := repo.CleanupExpired(ctx)
			cancel()
			if err != nil {
				logger.Error("Idempotency cleanup failed", "error", err)
			} else if n > 0 {
				logger.Info("Removed expired idempotency keys", "count", n)
			}
		}
	}
}
