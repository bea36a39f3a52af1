package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/service"
	"github.com/sapphiretrails/backoffice/pkg/events"
)

func TestLocationCreateGeneratesSlug(t *testing.T) {
	repo := newMockLocationRepo()
	bus := &mockPublisher{}
	svc := service.NewLocationService(repo, bus)
	ctx := context.Background()

	a, err := svc.Create(ctx, &domain.LocationReq{Title: "Galle Fort"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, &domain.LocationReq{Title: "Galle Fort"})
	require.NoError(t, err)
	assert.Equal(t, "galle-fort", a.Slug)
	assert.Equal(t, "galle-fort-1", b.Slug)

	c, err := svc.Create(ctx, &domain.LocationReq{Slug: "Ella Rock", Title: "Ella"})
	require.NoError(t, err)
	assert.Equal(t, "ella-rock", c.Slug)

	_, err = svc.Create(ctx, &domain.LocationReq{Slug: "ella-rock", Title: "Ella again"})
	assert.ErrorIs(t, err, domain.ErrDuplicateLocation)

	_, err = svc.Create(ctx, &domain.LocationReq{Slug: "!!!", Title: "Nothing"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "slug")

	_, err = svc.Create(ctx, &domain.LocationReq{})
	assert.ErrorAs(t, err, &verr)
}

func TestLocationUpdateDelete(t *testing.T) {
	repo := newMockLocationRepo()
	bus := &mockPublisher{}
	svc := service.NewLocationService(repo, bus)
	ctx := context.Background()

	_, err := svc.Create(ctx, &domain.LocationReq{Title: "Kandy"})
	require.NoError(t, err)

	l, err := svc.Update(ctx, "kandy", &domain.LocationReq{Title: "Kandy", Subtitle: "Hill capital"})
	require.NoError(t, err)
	assert.Equal(t, "Hill capital", l.Subtitle)

	_, err = svc.Update(ctx, "nowhere", &domain.LocationReq{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "kandy"))
	_, err = svc.Get(ctx, "kandy")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "kandy"), domain.ErrNotFound)

	assert.Equal(t, []string{events.LocationChanged, events.LocationChanged, events.LocationChanged}, bus.subjects())
}
