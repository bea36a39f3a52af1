package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapphiretrails/backoffice/internal/domain"
)

func TestValidateUsesJSONNames(t *testing.T) {
	req := domain.TourPackageReq{
		HomepageTitle: "Gem Explorer",
		Highlights:    []domain.Highlight{{Icon: "Star"}},
	}
	err := domain.Validate(&req)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Fields["homepage_description"])
	assert.Equal(t, "is required", verr.Fields["highlights[0].title"])
	assert.NotContains(t, verr.Fields, "homepage_title")
}

func TestBookingReqValidation(t *testing.T) {
	req := domain.BookingReq{
		Name: "Ann", Email: "not-an-email", Phone: "+94771234567",
		TourType: "gem-explorer-day-tour", Date: "02/11/2026", Guests: 0,
	}
	err := domain.Validate(&req)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "date")
	assert.Contains(t, verr.Fields, "guests")
	assert.Contains(t, verr.Error(), "validation failed: ")
}

func TestCreateAdminRole(t *testing.T) {
	ok := domain.CreateAdminReq{Username: "ops", Password: "longenough", Role: "admin"}
	assert.NoError(t, domain.Validate(&ok))

	bad := ok
	bad.Role = "client"
	err := domain.Validate(&bad)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must be one of: admin, superadmin", verr.Fields["role"])
}

func TestNormalizeAssignsDefaults(t *testing.T) {
	req := domain.TourPackageReq{
		Highlights: []domain.Highlight{{Title: "a"}, {Title: "b"}},
		Itinerary:  []domain.ItineraryItem{{Title: "x", SortOrder: 5}, {Title: "y", SortOrder: 2}},
	}
	req.Normalize()
	assert.Equal(t, "per person", req.PriceSuffix)
	assert.Equal(t, "/booking", req.BookingLink)
	assert.Equal(t, 1, req.Highlights[1].SortOrder)
	assert.Equal(t, 2, req.Itinerary[1].SortOrder, "explicit orders are kept")
}

func TestParseBookingStatus(t *testing.T) {
	s, ok := domain.ParseBookingStatus("accepted")
	assert.True(t, ok)
	assert.Equal(t, domain.BookingAccepted, s)
	_, ok = domain.ParseBookingStatus("canceled")
	assert.False(t, ok)
}
