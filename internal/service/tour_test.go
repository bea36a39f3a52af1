package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/service"
	"github.com/sapphiretrails/backoffice/pkg/events"
	"github.com/sapphiretrails/backoffice/pkg/metrics"
)

func validTourReq(title string) *domain.TourPackageReq {
	return &domain.TourPackageReq{
		HomepageTitle:       title,
		HomepageDescription: "Dive deep into the world of gem mining.",
		HomepageImageURL:    "/media/card.jpg",
		HomepageImageAlt:    "tourists mining gems",
		TourPageTitle:       title,
		Duration:            "8 Hours",
		Price:               "$135",
		HeroImageURL:        "/media/hero.jpg",
		TourPageDescription: "An unforgettable underground adventure.",
		Highlights: []domain.Highlight{
			{Icon: "Gem", Title: "Gem Discovery"},
			{Icon: "Users", Title: "Expert Guides"},
		},
		Inclusions: []domain.Inclusion{{Text: "Guided mine tour"}},
		Itinerary: []domain.ItineraryItem{
			{Time: "9:00 a.m", Title: "Meet & Greet"},
			{Time: "10:00 a.m", Title: "Mine Entry"},
		},
	}
}

type tourFixture struct {
	svc     service.TourService
	tours   *mockTourRepo
	gallery *mockGalleryRepo
	cache   *mockCache
	bus     *mockPublisher
	metrics *metrics.Metrics
}

func newTourFixture() *tourFixture {
	f := &tourFixture{
		gallery: newMockGalleryRepo(),
		cache:   newMockCache(),
		bus:     &mockPublisher{},
		metrics: metrics.NewMetrics("test", nil),
	}
	f.tours = newMockTourRepo(f.gallery)
	f.svc = service.NewTourService(f.tours, f.gallery, f.cache, time.Minute, f.bus, f.metrics)
	return f
}

func TestTourCreate(t *testing.T) {
	f := newTourFixture()
	ctx := context.Background()

	req := validTourReq("Gem Explorer")
	req.BookingLink = ""
	tour, err := f.svc.Create(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, int64(1), tour.ID)
	assert.Equal(t, "per person", tour.PriceSuffix)
	assert.Equal(t, "/booking", tour.BookingLink)
	assert.Equal(t, []int{0, 1}, []int{tour.Highlights[0].SortOrder, tour.Highlights[1].SortOrder})
	assert.Equal(t, []string{events.TourCreated}, f.bus.subjects())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ToursWritten.WithLabelValues("create")))
}

func TestTourCreateRejectsInvalidPayload(t *testing.T) {
	f := newTourFixture()

	req := validTourReq("Gem Explorer")
	req.HomepageTitle = ""
	req.Itinerary[1].Title = ""
	_, err := f.svc.Create(context.Background(), req)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "homepage_title")
	assert.Contains(t, verr.Fields, "itinerary[1].title")
	assert.Empty(t, f.tours.tours)
	assert.Empty(t, f.bus.subjects())
}

func TestTourCreateDuplicateID(t *testing.T) {
	f := newTourFixture()
	ctx := context.Background()

	req := validTourReq("Gem Explorer")
	req.ID = "gem-explorer"
	_, err := f.svc.Create(ctx, req)
	require.NoError(t, err)

	req = validTourReq("Gem Explorer")
	req.ID = "gem-explorer"
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ErrorsCount.WithLabelValues("tour_create")))
}

func TestTourListIsCachedUntilWrite(t *testing.T) {
	f := newTourFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validTourReq("First"))
	require.NoError(t, err)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// served from cache even when the store fails
	f.tours.err = errors.New("db down")
	list, err = f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("hit")))
	f.tours.err = nil

	_, err = f.svc.Create(ctx, validTourReq("Second"))
	require.NoError(t, err)
	list, err = f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("miss")))
}

func TestTourGetByIDOrSlug(t *testing.T) {
	f := newTourFixture()
	ctx := context.Background()

	req := validTourReq("Gem Explorer")
	req.ID = "gem-explorer"
	created, err := f.svc.Create(ctx, req)
	require.NoError(t, err)

	byID, err := f.svc.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, created.Slug, byID.Slug)

	bySlug, err := f.svc.Get(ctx, "gem-explorer")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	_, err = f.svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTourUpdateAndDelete(t *testing.T) {
	f := newTourFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validTourReq("Gem Explorer"))
	require.NoError(t, err)

	req := validTourReq("Gem Explorer Deluxe")
	req.Itinerary = req.Itinerary[:1]
	updated, err := f.svc.Update(ctx, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, created.Slug, updated.Slug)
	assert.Len(t, updated.Itinerary, 1)

	_, err = f.svc.Update(ctx, 99, validTourReq("x"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, created.ID), domain.ErrNotFound)
	assert.Equal(t, []string{events.TourCreated, events.TourUpdated, events.TourDeleted}, f.bus.subjects())
}

func TestTourUpdateImages(t *testing.T) {
	f := newTourFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validTourReq("Gem Explorer"))
	require.NoError(t, err)

	_, err = f.svc.UpdateImages(ctx, created.ID, domain.ImagePaths{})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	got, err := f.svc.UpdateImages(ctx, created.ID, domain.ImagePaths{HeroImageURL: "/media/new-hero.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "/media/new-hero.jpg", got.HeroImageURL)
	assert.Equal(t, "/media/card.jpg", got.HomepageImageURL)
}

func TestTourGallery(t *testing.T) {
	f := newTourFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validTourReq("Gem Explorer"))
	require.NoError(t, err)

	first, err := f.svc.AddGalleryImage(ctx, created.ID, domain.GalleryImage{ImageURL: "/media/a.jpg", Alt: "a"})
	require.NoError(t, err)
	second, err := f.svc.AddGalleryImage(ctx, created.ID, domain.GalleryImage{ImageURL: "/media/b.jpg", Alt: "b"})
	require.NoError(t, err)
	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 1, second.SortOrder)

	_, err = f.svc.AddGalleryImage(ctx, created.ID, domain.GalleryImage{})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.AddGalleryImage(ctx, 42, domain.GalleryImage{ImageURL: "/media/c.jpg"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// a package update leaves the gallery alone
	_, err = f.svc.Update(ctx, created.ID, validTourReq("Renamed"))
	require.NoError(t, err)
	imgs, err := f.svc.ListGallery(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, imgs, 2)

	require.NoError(t, f.svc.RemoveGalleryImage(ctx, created.ID, first.ID))
	assert.ErrorIs(t, f.svc.RemoveGalleryImage(ctx, created.ID, first.ID), domain.ErrNotFound)
	imgs, err = f.svc.ListGallery(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, imgs, 1)
	assert.Equal(t, "/media/b.jpg", imgs[0].ImageURL)
}
