package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/repo/postgres"
	"github.com/sapphiretrails/backoffice/pkg/cache"
	"github.com/sapphiretrails/backoffice/pkg/events"
	"github.com/sapphiretrails/backoffice/pkg/logger"
	"github.com/sapphiretrails/backoffice/pkg/metrics"
)

const tourListCacheKey = "tours:list"

type TourService interface {
	List(ctx context.Context) ([]domain.TourPackage, error)
	// Get resolves ref as a numeric id first and as a slug otherwise.
	Get(ctx context.Context, ref string) (*domain.TourPackage, error)
	Create(ctx context.Context, req *domain.TourPackageReq) (*domain.TourPackage, error)
	Update(ctx context.Context, id int64, req *domain.TourPackageReq) (*domain.TourPackage, error)
	Delete(ctx context.Context, id int64) error
	UpdateImages(ctx context.Context, id int64, paths domain.ImagePaths) (*domain.TourPackage, error)
	ListGallery(ctx context.Context, id int64) ([]domain.GalleryImage, error)
	AddGalleryImage(ctx context.Context, id int64, img domain.GalleryImage) (*domain.GalleryImage, error)
	RemoveGalleryImage(ctx context.Context, id, imageID int64) error
}

type tourService struct {
	tours    postgres.TourRepo
	gallery  postgres.GalleryRepo
	cache    cache.Cache
	cacheTTL time.Duration
	eventBus events.Publisher
	metrics  *metrics.Metrics
}

func NewTourService(
	tours postgres.TourRepo,
	gallery postgres.GalleryRepo,
	c cache.Cache,
	cacheTTL time.Duration,
	eventBus events.Publisher,
	m *metrics.Metrics,
) TourService {
	if c == nil {
		c = cache.Nop{}
	}
	return &tourService{
		tours:    tours,
		gallery:  gallery,
		cache:    c,
		cacheTTL: cacheTTL,
		eventBus: eventBus,
		metrics:  m,
	}
}

func (s *tourService) List(ctx context.Context) ([]domain.TourPackage, error) {
	var cached []domain.TourPackage
	err := s.cache.Get(ctx, tourListCacheKey, &cached)
	switch {
	case err == nil:
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, cache.ErrMiss):
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		s.metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.WarnContext(ctx, "Tour cache read failed", "error", err)
	}

	tours, err := s.tours.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	if err := s.cache.Set(ctx, tourListCacheKey, tours, s.cacheTTL); err != nil {
		logger.WarnContext(ctx, "Tour cache write failed", "error", err)
	}
	return tours, nil
}

func (s *tourService) Get(ctx context.Context, ref string) (*domain.TourPackage, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		t, err := s.tours.GetByID(ctx, id)
		if err == nil || !errors.Is(err, domain.ErrNotFound) {
			return t, err
		}
		// a purely numeric slug is still reachable
	}
	return s.tours.GetBySlug(ctx, ref)
}

func (s *tourService) Create(ctx context.Context, req *domain.TourPackageReq) (*domain.TourPackage, error) {
	req.Normalize()
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	id, slug, err := s.tours.Create(ctx, req)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("tour_create").Inc()
		return nil, fmt.Errorf("failed to create tour package: %w", err)
	}
	s.metrics.ToursWritten.WithLabelValues("create").Inc()
	s.afterWrite(ctx, events.TourCreated, id, slug)

	return s.tours.GetByID(ctx, id)
}

func (s *tourService) Update(ctx context.Context, id int64, req *domain.TourPackageReq) (*domain.TourPackage, error) {
	req.Normalize()
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	if err := s.tours.Update(ctx, id, req); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("tour_update").Inc()
		return nil, fmt.Errorf("failed to update tour package %d: %w", id, err)
	}
	t, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.metrics.ToursWritten.WithLabelValues("update").Inc()
	s.afterWrite(ctx, events.TourUpdated, id, t.Slug)
	return t, nil
}

func (s *tourService) Delete(ctx context.Context, id int64) error {
	if err := s.tours.Delete(ctx, id); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("tour_delete").Inc()
		return fmt.Errorf("failed to delete tour package %d: %w", id, err)
	}
	s.metrics.ToursWritten.WithLabelValues("delete").Inc()
	s.afterWrite(ctx, events.TourDeleted, id, "")
	return nil
}

func (s *tourService) UpdateImages(ctx context.Context, id int64, paths domain.ImagePaths) (*domain.TourPackage, error) {
	if paths.HomepageImageURL == "" && paths.HeroImageURL == "" {
		return nil, domain.NewValidationError("images", "at least one image is required")
	}
	if err := s.tours.UpdateImagePaths(ctx, id, paths.HomepageImageURL, paths.HeroImageURL); err != nil {
		return nil, fmt.Errorf("failed to update images of tour package %d: %w", id, err)
	}
	t, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, events.TourUpdated, id, t.Slug)
	return t, nil
}

func (s *tourService) ListGallery(ctx context.Context, id int64) ([]domain.GalleryImage, error) {
	if _, err := s.tours.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.gallery.ListByPackage(ctx, id)
}

// AddGalleryImage appends img to the package gallery. A zero sort order
// places it after the existing images.
func (s *tourService) AddGalleryImage(ctx context.Context, id int64, img domain.GalleryImage) (*domain.GalleryImage, error) {
	if err := domain.Validate(&img); err != nil {
		return nil, err
	}
	t, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if img.SortOrder == 0 {
		img.SortOrder = len(t.ExperienceGallery)
	}
	created, err := s.gallery.Create(ctx, id, img)
	if err != nil {
		return nil, fmt.Errorf("failed to add gallery image: %w", err)
	}
	s.afterWrite(ctx, events.TourUpdated, id, t.Slug)
	return created, nil
}

func (s *tourService) RemoveGalleryImage(ctx context.Context, id, imageID int64) error {
	if err := s.gallery.Delete(ctx, id, imageID); err != nil {
		return fmt.Errorf("failed to remove gallery image %d: %w", imageID, err)
	}
	s.afterWrite(ctx, events.TourUpdated, id, "")
	return nil
}

// afterWrite drops the cached listing and announces the change. Neither
// failure is returned: the write itself has committed.
func (s *tourService) afterWrite(ctx context.Context, subject string, id int64, slug string) {
	if err := s.cache.Delete(ctx, tourListCacheKey); err != nil {
		logger.ErrorContext(ctx, "Failed to invalidate tour cache", "error", err, "tour_id", id)
	}
	event := events.TourEvent{TourID: id, Slug: slug, At: time.Now().UTC()}
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish tour event", "error", err, "subject", subject, "tour_id", id)
	}
}
