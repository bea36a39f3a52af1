package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sapphiretrails/backoffice/internal/catalog"
	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/pkg/logger"
)

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, login, password string) (*domain.LoginRes, error) {
	var res domain.LoginRes
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, domain.LoginReq{Login: login, Password: password}, &res); err != nil {
		return nil, err
	}
	c.token = res.AccessToken
	return &res, nil
}

// TourList is the tour listing. Fallback is set when the server answered
// with something other than a JSON array and the static catalog was used.
type TourList struct {
	Tours    []domain.TourPackage
	Fallback bool
}

func (c *Client) ListTours(ctx context.Context) (*TourList, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/tours", nil, nil)
	if err != nil {
		return nil, err
	}
	data, err := c.send(req)
	if err != nil {
		return nil, err
	}
	var tours []domain.TourPackage
	if err := json.Unmarshal(data, &tours); err != nil || tours == nil {
		logger.WarnContext(ctx, "tour listing was not an array, using static catalog", "error", err)
		return &TourList{Tours: catalog.InitialPackages(), Fallback: true}, nil
	}
	return &TourList{Tours: tours}, nil
}

// Showcase is the public listing: the static catalog overlaid with server
// packages by slug. Any failure leaves the static catalog.
func (c *Client) Showcase(ctx context.Context) []domain.TourPackage {
	out := catalog.InitialPackages()
	list, err := c.ListTours(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to fetch tour packages, using static catalog", "error", err)
		return out
	}
	if list.Fallback {
		return out
	}
	index := make(map[string]int, len(out))
	for i, t := range out {
		index[t.Slug] = i
	}
	for _, t := range list.Tours {
		if i, ok := index[t.Slug]; ok {
			out[i] = t
			continue
		}
		index[t.Slug] = len(out)
		out = append(out, t)
	}
	return out
}

// GetTour fetches a package by numeric id or slug.
func (c *Client) GetTour(ctx context.Context, ref string) (*domain.TourPackage, error) {
	var t domain.TourPackage
	if err := c.do(ctx, http.MethodGet, "/tours/"+url.PathEscape(ref), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

type createTourRes struct {
	Message string              `json:"message"`
	ID      int64               `json:"id"`
	Slug    string              `json:"slug"`
	Tour    *domain.TourPackage `json:"tour"`
}

func (c *Client) CreateTour(ctx context.Context, req *domain.TourPackageReq) (*domain.TourPackage, error) {
	var res createTourRes
	if err := c.do(ctx, http.MethodPost, "/tours", nil, req, &res); err != nil {
		return nil, err
	}
	if res.Tour == nil {
		return &domain.TourPackage{ID: res.ID, Slug: res.Slug}, nil
	}
	return res.Tour, nil
}

func (c *Client) UpdateTour(ctx context.Context, id int64, req *domain.TourPackageReq) (*domain.TourPackage, error) {
	var t domain.TourPackage
	if err := c.do(ctx, http.MethodPut, "/tours/"+strconv.FormatInt(id, 10), nil, req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTour(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/tours/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

type BookingPageOptions struct {
	Page int `url:"page,omitempty"`
}

func (c *Client) BookingPage(ctx context.Context, page int) (*domain.BookingPage, error) {
	var p domain.BookingPage
	if err := c.do(ctx, http.MethodGet, "/admin/bookings", BookingPageOptions{Page: page}, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetBooking(ctx context.Context, id int64) (*domain.BookingDTO, error) {
	var b domain.BookingDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/admin/bookings/%d", id), nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) SetBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.BookingDTO, error) {
	var b domain.BookingDTO
	body := domain.BookingStatusReq{Status: string(status)}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/admin/bookings/%d/status", id), nil, body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

type UserListOptions struct {
	Type string `url:"type,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context, opts UserListOptions) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/users", opts, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser uses the trailing slash form the admin pages always sent.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/", id), nil, nil, nil)
}

type createAdminRes struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

func (c *Client) CreateAdmin(ctx context.Context, req *domain.CreateAdminReq) (*domain.User, error) {
	var res createAdminRes
	if err := c.do(ctx, http.MethodPost, "/admins", nil, req, &res); err != nil {
		return nil, err
	}
	return res.User, nil
}

func (c *Client) ListLocations(ctx context.Context) ([]domain.Location, error) {
	var locs []domain.Location
	if err := c.do(ctx, http.MethodGet, "/locations", nil, nil, &locs); err != nil {
		return nil, err
	}
	return locs, nil
}

func (c *Client) DeleteLocation(ctx context.Context, slug string) error {
	return c.do(ctx, http.MethodDelete, "/locations/"+url.PathEscape(slug), nil, nil, nil)
}
