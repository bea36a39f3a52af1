package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/service"
	"github.com/sapphiretrails/backoffice/pkg/auth"
	"github.com/sapphiretrails/backoffice/pkg/config"
	"github.com/sapphiretrails/backoffice/pkg/events"
	"github.com/sapphiretrails/backoffice/pkg/metrics"
)

const testSecret = "test-secret"

func newUserFixture() (service.UserService, *mockUsersRepo, *mockPublisher, *metrics.Metrics) {
	repo := newMockUsersRepo()
	bus := &mockPublisher{}
	m := metrics.NewMetrics("test", nil)
	svc := service.NewUserService(repo, bus, m, config.AuthConfig{JWTSecret: testSecret, AccessTokenTTL: time.Hour})
	return svc, repo, bus, m
}

func TestResolveGuestIsIdempotentByEmail(t *testing.T) {
	svc, repo, bus, m := newUserFixture()
	ctx := context.Background()

	id1, err := svc.ResolveGuest(ctx, "Nimal Perera", "Nimal@Example.com ", "+94 77 123 4567")
	require.NoError(t, err)
	id2, err := svc.ResolveGuest(ctx, "Someone Else", "nimal@example.com", "")
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	require.Len(t, repo.users, 1)
	u := repo.users[id1]
	assert.Equal(t, "nimal@example.com", u.Email)
	assert.Equal(t, "Nimal Perera", u.Name)
	assert.Equal(t, "+94771234567", u.Phone)
	assert.Equal(t, domain.UserClient, u.Type)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))
	assert.Equal(t, []string{events.UserCreated}, bus.subjects())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuestsResolved.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuestsResolved.WithLabelValues("existing")))
}

func TestResolveGuestLosesRace(t *testing.T) {
	svc, repo, _, _ := newUserFixture()
	repo.raceEmail = "race@example.com"

	id, err := svc.ResolveGuest(context.Background(), "Late", "race@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "racer", repo.users[id].Name)
	assert.Len(t, repo.users, 1)
}

func TestResolveGuestRequiresEmail(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	_, err := svc.ResolveGuest(context.Background(), "No Mail", "  ", "")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCreateAdmin(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	ctx := context.Background()

	u, err := svc.CreateAdmin(ctx, &domain.CreateAdminReq{Username: "kasun", Password: "s3cret-pass", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, domain.UserAdmin, u.Type)
	assert.Equal(t, "kasun", u.Username)
	assert.Empty(t, u.Email)

	_, err = svc.CreateAdmin(ctx, &domain.CreateAdminReq{Username: "kasun", Password: "another-pass", Role: "superadmin"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	assert.Contains(t, err.Error(), "username")

	_, err = svc.CreateAdmin(ctx, &domain.CreateAdminReq{Username: "ruwan", Password: "s3cret-pass", Role: "client"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "role")
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, &domain.CreateAdminReq{Username: "kasun", Password: "s3cret-pass", Role: "superadmin"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, &domain.RegisterReq{Name: "Sarah", Email: "Sarah@Example.com", Password: "client-pass"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, &domain.LoginReq{Login: "kasun", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	claims, err := auth.Parse(res.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "superadmin", claims.Role)
	assert.Equal(t, res.User.ID, claims.Sub)

	res, err = svc.Login(ctx, &domain.LoginReq{Login: "sarah@example.com", Password: "client-pass"})
	require.NoError(t, err)
	assert.Equal(t, domain.UserClient, res.User.Type)

	_, err = svc.Login(ctx, &domain.LoginReq{Login: "kasun", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, &domain.LoginReq{Login: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUpgradesLegacyHash(t *testing.T) {
	svc, repo, _, _ := newUserFixture()
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := repo.Create(ctx, domain.NewUser{Name: "old", Username: "old", PasswordHash: string(legacy), Type: domain.UserAdmin})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &domain.LoginReq{Login: "old", Password: "legacy-pass"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(repo.users[u.ID].PasswordHash, "$argon2id$"))

	_, err = svc.Login(ctx, &domain.LoginReq{Login: "old", Password: "legacy-pass"})
	assert.NoError(t, err)
}

func TestUserListUpdateDelete(t *testing.T) {
	svc, _, bus, _ := newUserFixture()
	ctx := context.Background()

	guestID, err := svc.ResolveGuest(ctx, "Guest", "guest@example.com", "")
	require.NoError(t, err)
	_, err = svc.CreateAdmin(ctx, &domain.CreateAdminReq{Username: "kasun", Password: "s3cret-pass", Role: "admin"})
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	admins, err := svc.List(ctx, "admin")
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "kasun", admins[0].Username)
	_, err = svc.List(ctx, "driver")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	name := "Guest Renamed"
	typ := "admin"
	phone := " +94 77 123-4567 "
	u, err := svc.Update(ctx, guestID, &domain.UpdateUserReq{Name: &name, Type: &typ, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Guest Renamed", u.Name)
	assert.Equal(t, "+94771234567", u.Phone)
	assert.Equal(t, domain.UserAdmin, u.Type)
	assert.Equal(t, "guest@example.com", u.Email)

	bad := "nope"
	_, err = svc.Update(ctx, guestID, &domain.UpdateUserReq{Type: &bad})
	assert.ErrorAs(t, err, &verr)

	require.NoError(t, svc.Delete(ctx, guestID))
	_, err = svc.Get(ctx, guestID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, guestID), domain.ErrNotFound)
	assert.Contains(t, bus.subjects(), events.UserDeleted)
}

func TestBootstrapSuperadmin(t *testing.T) {
	svc, repo, _, _ := newUserFixture()
	ctx := context.Background()

	require.NoError(t, svc.BootstrapSuperadmin(ctx, "", ""))
	assert.Empty(t, repo.users)

	require.NoError(t, svc.BootstrapSuperadmin(ctx, "root", "root-password"))
	require.NoError(t, svc.BootstrapSuperadmin(ctx, "root", "root-password"))
	supers, err := svc.List(ctx, "superadmin")
	require.NoError(t, err)
	assert.Len(t, supers, 1)
}
