package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapphiretrails/backoffice/internal/domain"
)

type fakeAPI struct {
	mu      sync.Mutex
	created []domain.TourPackageReq
	status  map[int64]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
		json.NewEncoder(w).Encode(domain.LoginRes{
			AccessToken: "tok",
			ExpiresIn:   3600,
			User:        &domain.UserInfo{ID: 1, Name: "Root", Type: domain.UserSuperadmin},
		})
	case r.Header.Get("Authorization") != "Bearer tok" && r.Method != http.MethodGet:
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"missing token","code":"UNAUTHORIZED"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/tours":
		var in domain.TourPackageReq
		json.NewDecoder(r.Body).Decode(&in)
		f.created = append(f.created, in)
		if len(f.created) == 1 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"a package with this id already exists","code":"DUPLICATE","fields":{"id":"already exists"}}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"message": "ok", "id": 3, "slug": in.ID, "tour": domain.TourPackage{ID: 3, Slug: in.ID}})
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/admin/bookings/"):
		var in domain.BookingStatusReq
		json.NewDecoder(r.Body).Decode(&in)
		f.status[7] = in.Status
		json.NewEncoder(w).Encode(domain.BookingDTO{Booking: domain.Booking{ID: 7, Status: domain.BookingStatus(in.Status)}})
	case r.Method == http.MethodGet && r.URL.Path == "/tours":
		w.Write([]byte(`{"error":"db down"}`))
	default:
		http.NotFound(w, r)
	}
}

func newCLI(t *testing.T, input string) (*cli, *fakeAPI, *bytes.Buffer) {
	t.Helper()
	api := &fakeAPI{status: map[int64]string{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	out := &bytes.Buffer{}
	return &cli{
		baseURL:     srv.URL,
		sessionFile: filepath.Join(t.TempDir(), "session.json"),
		in:          bufio.NewReader(strings.NewReader(input)),
		out:         out,
		errOut:      out,
	}, api, out
}

func TestAdminCommandsNeedSession(t *testing.T) {
	c, _, _ := newCLI(t, "")
	err := c.run(context.Background(), []string{"bookings", "accept", "7"})
	assert.ErrorIs(t, err, errNoSession)
	err = c.run(context.Background(), []string{"tours", "add"})
	assert.ErrorIs(t, err, errNoSession)
}

func TestLoginThenAccept(t *testing.T) {
	c, api, out := newCLI(t, "")
	ctx := context.Background()

	require.NoError(t, c.run(ctx, []string{"login", "-user", "root", "-password", "secret-pass"}))
	s, err := loadSession(c.sessionFile)
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)

	require.NoError(t, c.run(ctx, []string{"bookings", "accept", "7"}))
	assert.Equal(t, "accepted", api.status[7])
	assert.Contains(t, out.String(), "Booking 7 is now accepted")

	require.NoError(t, c.run(ctx, []string{"logout"}))
	_, err = loadSession(c.sessionFile)
	assert.ErrorIs(t, err, errNoSession)
}

func TestToursListFallsBackToCatalog(t *testing.T) {
	c, _, out := newCLI(t, "")
	require.NoError(t, c.run(context.Background(), []string{"tours", "list"}))
	assert.Contains(t, out.String(), "static catalog")
	assert.Contains(t, out.String(), "gem-explorer-day-tour")
}

func lines(ls ...string) string { return strings.Join(ls, "\n") + "\n" }

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestToursAddRetriesDuplicateID(t *testing.T) {
	var in []string
	// first pass
	in = append(in, "river-safari", "River Safari", "Boat ride", "/media/river.jpg", "Boat on the river", "")
	in = append(in, "River Safari Half Day", "4 Hours", "$60", "", "A relaxed half day", "/media/hero.jpg", "")
	for i := 1; i <= 3; i++ {
		in = append(in, "", "Highlight "+string(rune('0'+i)), "")
	}
	in = append(in, "", "Life jackets")
	in = append(in, "1", "08:00", "Pickup", "", "")
	// second pass after the duplicate id
	in = append(in, "river-safari-2")
	in = append(in, repeat("", 5)...)
	in = append(in, repeat("", 7)...)
	in = append(in, repeat("", 11)...)
	in = append(in, repeat("", 5)...)

	c, api, out := newCLI(t, lines(in...))
	ctx := context.Background()
	require.NoError(t, c.run(ctx, []string{"login", "-user", "root", "-password", "secret-pass"}))
	require.NoError(t, c.run(ctx, []string{"tours", "add"}))

	require.Len(t, api.created, 2)
	assert.Equal(t, "river-safari", api.created[0].ID)
	assert.Equal(t, "river-safari-2", api.created[1].ID)
	assert.Len(t, api.created[1].Itinerary, 1)
	assert.Equal(t, "per person", api.created[1].PriceSuffix)
	assert.Equal(t, "/booking", api.created[1].BookingLink)
	assert.Contains(t, out.String(), "This ID already exists")
	assert.Contains(t, out.String(), `Package "River Safari" has been saved`)
}

func TestToursAddStopsWhenInputEnds(t *testing.T) {
	c, api, _ := newCLI(t, lines("", "", "", "", "", ""))
	ctx := context.Background()
	require.NoError(t, c.run(ctx, []string{"login", "-user", "root", "-password", "secret-pass"}))

	err := c.run(ctx, []string{"tours", "add"})
	require.Error(t, err)
	assert.Empty(t, api.created)
}

func TestArgID(t *testing.T) {
	_, err := argID(nil)
	assert.Error(t, err)
	_, err = argID([]string{"abc"})
	assert.Error(t, err)
	id, err := argID([]string{"42"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}
