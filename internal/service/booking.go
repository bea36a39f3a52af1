package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sapphiretrails/backoffice/internal/catalog"
	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/pagination"
	"github.com/sapphiretrails/backoffice/internal/repo/postgres"
	"github.com/sapphiretrails/backoffice/internal/utils"
	"github.com/sapphiretrails/backoffice/pkg/events"
	"github.com/sapphiretrails/backoffice/pkg/logger"
	"github.com/sapphiretrails/backoffice/pkg/metrics"
)

// IdempotencyTTL is how long a replayed Idempotency-Key returns the
// original booking.
const IdempotencyTTL = 24 * time.Hour

type BookingService interface {
	Create(ctx context.Context, req *domain.BookingReq, idempotencyKey string) (*domain.Booking, error)
	Page(ctx context.Context, page int) (*domain.BookingPage, error)
	Stats(ctx context.Context) (domain.BookingStats, error)
	Get(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, id int64, req *domain.BookingReq) (*domain.Booking, error)
	SetStatus(ctx context.Context, id int64, status string) (*domain.Booking, error)
	// SeedDemo inserts the demo bookings when the table is empty and
	// reports how many rows were written.
	SeedDemo(ctx context.Context, now time.Time) (int, error)
}

type bookingService struct {
	bookingRepo     postgres.BookingRepo
	idempotencyRepo postgres.IdempotencyRepo
	users           UserService
	eventBus        events.Publisher
	metrics         *metrics.Metrics
}

func NewBookingService(
	bookingRepo postgres.BookingRepo,
	idempotencyRepo postgres.IdempotencyRepo,
	users UserService,
	eventBus events.Publisher,
	m *metrics.Metrics,
) BookingService {
	return &bookingService{
		bookingRepo:     bookingRepo,
		idempotencyRepo: idempotencyRepo,
		users:           users,
		eventBus:        eventBus,
		metrics:         m,
	}
}

func normalizeBookingReq(req *domain.BookingReq) {
	req.Name = utils.NormalizeString(req.Name)
	req.Email = utils.NormalizeEmail(req.Email)
	req.Phone = utils.NormalizeString(req.Phone)
	req.TourType = utils.NormalizeString(req.TourType)
	req.Date = utils.NormalizeString(req.Date)
	req.Message = utils.NormalizeText(req.Message)
}

func (s *bookingService) Create(ctx context.Context, req *domain.BookingReq, idempotencyKey string) (*domain.Booking, error) {
	normalizeBookingReq(req)
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	date, err := time.Parse(domain.DateLayout, req.Date)
	if err != nil {
		return nil, domain.NewValidationError("date", "must be a date in the form "+domain.DateLayout)
	}

	if idempotencyKey != "" {
		existingID, err := s.idempotencyRepo.Lookup(ctx, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if existingID > 0 {
			logger.InfoContext(ctx, "Replayed booking request", "booking_id", existingID)
			return s.bookingRepo.GetByID(ctx, existingID)
		}
	}

	userID, err := s.users.ResolveGuest(ctx, req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve guest: %w", err)
	}

	booking, err := s.bookingRepo.Create(ctx, &domain.Booking{
		UserID:   &userID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		TourType: req.TourType,
		TourDate: date,
		Guests:   req.Guests,
		Message:  req.Message,
		Status:   domain.BookingPending,
	})
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("booking_create").Inc()
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if idempotencyKey != "" {
		if err := s.idempotencyRepo.Remember(ctx, idempotencyKey, booking.ID, IdempotencyTTL); err != nil {
			logger.ErrorContext(ctx, "Failed to store idempotency record", "error", err, "booking_id", booking.ID)
		}
	}

	s.metrics.BookingsCreated.Inc()
	event := events.BookingCreatedEvent{
		BookingID: booking.ID,
		UserID:    userID,
		Name:      booking.Name,
		Email:     booking.Email,
		TourType:  booking.TourType,
		TourDate:  booking.TourDate.Format(domain.DateLayout),
		Guests:    booking.Guests,
		CreatedAt: booking.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.BookingCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}
	return booking, nil
}

// Page loads every booking and returns the requested page of the triage
// list. Out of range pages are clamped.
func (s *bookingService) Page(ctx context.Context, page int) (*domain.BookingPage, error) {
	all, err := s.bookingRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	p := pagination.New(len(all), pagination.DefaultPageSize, page)
	items := pagination.Page(p, all)
	dtos := make([]domain.BookingDTO, len(items))
	for i, b := range items {
		dtos[i] = b.DTO()
	}
	return &domain.BookingPage{
		Items:      dtos,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(),
		Stats:      countByStatus(all),
	}, nil
}

func (s *bookingService) Stats(ctx context.Context) (domain.BookingStats, error) {
	all, err := s.bookingRepo.ListAll(ctx)
	if err != nil {
		return domain.BookingStats{}, fmt.Errorf("failed to list bookings: %w", err)
	}
	return countByStatus(all), nil
}

func countByStatus(bs []domain.Booking) domain.BookingStats {
	st := domain.BookingStats{Total: len(bs)}
	for _, b := range bs {
		switch b.Status {
		case domain.BookingPending:
			st.Pending++
		case domain.BookingAccepted:
			st.Accepted++
		case domain.BookingRejected:
			st.Rejected++
		}
	}
	return st
}

func (s *bookingService) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *bookingService) Update(ctx context.Context, id int64, req *domain.BookingReq) (*domain.Booking, error) {
	normalizeBookingReq(req)
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	date, err := time.Parse(domain.DateLayout, req.Date)
	if err != nil {
		return nil, domain.NewValidationError("date", "must be a date in the form "+domain.DateLayout)
	}

	b, err := s.bookingRepo.Update(ctx, &domain.Booking{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		TourType: req.TourType,
		TourDate: date,
		Guests:   req.Guests,
		Message:  req.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update booking %d: %w", id, err)
	}
	if err := s.eventBus.Publish(ctx, events.BookingUpdated, events.BookingCreatedEvent{
		BookingID: b.ID,
		Name:      b.Name,
		Email:     b.Email,
		TourType:  b.TourType,
		TourDate:  b.TourDate.Format(domain.DateLayout),
		Guests:    b.Guests,
		CreatedAt: b.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking updated event", "error", err, "booking_id", b.ID)
	}
	return b, nil
}

func (s *bookingService) SetStatus(ctx context.Context, id int64, status string) (*domain.Booking, error) {
	to, ok := domain.ParseBookingStatus(status)
	if !ok {
		return nil, domain.NewValidationError("status", "must be one of: pending, accepted, rejected")
	}
	before, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if before.Status == to {
		return before, nil
	}

	b, err := s.bookingRepo.SetStatus(ctx, id, to)
	if err != nil {
		return nil, fmt.Errorf("failed to set status of booking %d: %w", id, err)
	}
	s.metrics.BookingTriage.WithLabelValues(string(to)).Inc()
	logger.InfoContext(ctx, "Booking status changed", "booking_id", id, "from", before.Status, "to", to)

	event := events.BookingStatusChangedEvent{
		BookingID: b.ID,
		Name:      b.Name,
		Email:     b.Email,
		TourType:  b.TourType,
		TourDate:  b.TourDate.Format(domain.DateLayout),
		From:      string(before.Status),
		To:        string(to),
		ChangedAt: b.UpdatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.BookingStatusChanged, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking status event", "error", err, "booking_id", id)
	}
	return b, nil
}

func (s *bookingService) SeedDemo(ctx context.Context, now time.Time) (int, error) {
	n, err := s.bookingRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	seeded := 0
	for _, b := range catalog.MockBookings(now) {
		userID, err := s.users.ResolveGuest(ctx, b.Name, b.Email, b.Phone)
		if err != nil {
			return seeded, err
		}
		b.UserID = &userID
		if _, err := s.bookingRepo.Create(ctx, &b); err != nil {
			return seeded, fmt.Errorf("failed to seed booking for %s: %w", b.Email, err)
		}
		seeded++
	}
	logger.InfoContext(ctx, "Seeded demo bookings", "count", seeded)
	return seeded, nil
}
