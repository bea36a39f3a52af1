package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/repo/postgres"
	"github.com/sapphiretrails/backoffice/internal/slug"
	"github.com/sapphiretrails/backoffice/pkg/events"
	"github.com/sapphiretrails/backoffice/pkg/logger"
)

type LocationService interface {
	List(ctx context.Context) ([]domain.Location, error)
	Get(ctx context.Context, slug string) (*domain.Location, error)
	Create(ctx context.Context, req *domain.LocationReq) (*domain.Location, error)
	Update(ctx context.Context, slug string, req *domain.LocationReq) (*domain.Location, error)
	Delete(ctx context.Context, slug string) error
}

type locationService struct {
	locations postgres.LocationRepo
	eventBus  events.Publisher
}

func NewLocationService(locations postgres.LocationRepo, eventBus events.Publisher) LocationService {
	return &locationService{locations: locations, eventBus: eventBus}
}

func (s *locationService) List(ctx context.Context) ([]domain.Location, error) {
	return s.locations.List(ctx)
}

func (s *locationService) Get(ctx context.Context, slug string) (*domain.Location, error) {
	return s.locations.GetBySlug(ctx, slug)
}

// Create stores a location under the requested slug, or under a unique slug
// derived from the title when none is given.
func (s *locationService) Create(ctx context.Context, req *domain.LocationReq) (*domain.Location, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	var key string
	if req.Slug != "" {
		key = slug.Make(req.Slug)
		if key == "" {
			return nil, domain.NewValidationError("slug", "must contain letters or digits")
		}
	} else {
		base := slug.Make(req.Title)
		if base == "" {
			base = "location"
		}
		var err error
		key, err = slug.Unique(ctx, base, s.locations.SlugExists)
		if err != nil {
			return nil, fmt.Errorf("failed to generate location slug: %w", err)
		}
	}

	loc, err := s.locations.Create(ctx, key, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	s.publish(ctx, loc.Slug, "created")
	return loc, nil
}

func (s *locationService) Update(ctx context.Context, key string, req *domain.LocationReq) (*domain.Location, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	loc, err := s.locations.Update(ctx, key, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update location %q: %w", key, err)
	}
	s.publish(ctx, loc.Slug, "updated")
	return loc, nil
}

func (s *locationService) Delete(ctx context.Context, key string) error {
	if err := s.locations.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete location %q: %w", key, err)
	}
	s.publish(ctx, key, "deleted")
	return nil
}

func (s *locationService) publish(ctx context.Context, key, action string) {
	ev := events.LocationEvent{Slug: key, Action: action, At: time.Now().UTC()}
	if err := s.eventBus.Publish(ctx, events.LocationChanged, ev); err != nil {
		logger.ErrorContext(ctx, "Failed to publish location event", "error", err, "slug", key)
	}
}
