package service_test

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/repo/postgres"
	"github.com/sapphiretrails/backoffice/pkg/cache"
	"github.com/sapphiretrails/backoffice/pkg/events"
	"github.com/sapphiretrails/backoffice/pkg/logger"
	"github.com/sapphiretrails/backoffice/pkg/mailer"
)

func init() {
	logger.SetOutput(io.Discard, "error")
}

// ---------- Mocks ----------

type mockTourRepo struct {
	nextID  int64
	tours   map[int64]*domain.TourPackage
	gallery *mockGalleryRepo
	err     error
}

func newMockTourRepo(gallery *mockGalleryRepo) *mockTourRepo {
	return &mockTourRepo{nextID: 1, tours: make(map[int64]*domain.TourPackage), gallery: gallery}
}

func (m *mockTourRepo) List(ctx context.Context) ([]domain.TourPackage, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.TourPackage, 0, len(m.tours))
	for id := int64(1); id < m.nextID; id++ {
		if t, ok := m.tours[id]; ok {
			out = append(out, m.compose(t))
		}
	}
	return out, nil
}

func (m *mockTourRepo) compose(t *domain.TourPackage) domain.TourPackage {
	c := *t
	c.ExperienceGallery, _ = m.gallery.ListByPackage(context.Background(), t.ID)
	return c
}

func (m *mockTourRepo) GetByID(_ context.Context, id int64) (*domain.TourPackage, error) {
	t, ok := m.tours[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := m.compose(t)
	return &c, nil
}

func (m *mockTourRepo) GetBySlug(ctx context.Context, s string) (*domain.TourPackage, error) {
	for id, t := range m.tours {
		if t.Slug == s {
			return m.GetByID(ctx, id)
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTourRepo) SlugExists(ctx context.Context, s string) (bool, error) {
	_, err := m.GetBySlug(ctx, s)
	return err == nil, nil
}

func (m *mockTourRepo) Create(_ context.Context, req *domain.TourPackageReq) (int64, string, error) {
	if m.err != nil {
		return 0, "", m.err
	}
	s := req.ID
	if s == "" {
		s = "tour-" + req.HomepageTitle
	}
	for _, t := range m.tours {
		if t.Slug == s {
			return 0, "", domain.ErrDuplicateSlug
		}
	}
	id := m.nextID
	m.nextID++
	m.tours[id] = fromReq(id, s, req)
	return id, s, nil
}

func fromReq(id int64, s string, req *domain.TourPackageReq) *domain.TourPackage {
	return &domain.TourPackage{
		ID:               id,
		Slug:             s,
		HomepageTitle:    req.HomepageTitle,
		HomepageImageURL: req.HomepageImageURL,
		TourPageTitle:    req.TourPageTitle,
		HeroImageURL:     req.HeroImageURL,
		PriceSuffix:      req.PriceSuffix,
		BookingLink:      req.BookingLink,
		Highlights:       req.Highlights,
		Inclusions:       req.Inclusions,
		Itinerary:        req.Itinerary,
	}
}

func (m *mockTourRepo) Update(_ context.Context, id int64, req *domain.TourPackageReq) error {
	t, ok := m.tours[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.tours[id] = fromReq(id, t.Slug, req)
	return nil
}

func (m *mockTourRepo) UpdateImagePaths(_ context.Context, id int64, homepage, hero string) error {
	t, ok := m.tours[id]
	if !ok {
		return domain.ErrNotFound
	}
	if homepage != "" {
		t.HomepageImageURL = homepage
	}
	if hero != "" {
		t.HeroImageURL = hero
	}
	return nil
}

func (m *mockTourRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.tours[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.tours, id)
	_, _ = m.gallery.DeleteByPackage(ctx, id)
	return nil
}

type mockGalleryRepo struct {
	nextID int64
	images map[int64]domain.GalleryImage
}

func newMockGalleryRepo() *mockGalleryRepo {
	return &mockGalleryRepo{nextID: 1, images: make(map[int64]domain.GalleryImage)}
}

func (m *mockGalleryRepo) Create(_ context.Context, tourID int64, img domain.GalleryImage) (*domain.GalleryImage, error) {
	img.ID = m.nextID
	img.TourPackageID = tourID
	img.CreatedAt = time.Now()
	m.nextID++
	m.images[img.ID] = img
	return &img, nil
}

func (m *mockGalleryRepo) ListByPackage(_ context.Context, tourID int64) ([]domain.GalleryImage, error) {
	out := make([]domain.GalleryImage, 0)
	for _, img := range m.images {
		if img.TourPackageID == tourID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockGalleryRepo) ListByPackages(ctx context.Context, ids []int64) (map[int64][]domain.GalleryImage, error) {
	out := make(map[int64][]domain.GalleryImage, len(ids))
	for _, id := range ids {
		out[id], _ = m.ListByPackage(ctx, id)
	}
	return out, nil
}

func (m *mockGalleryRepo) DeleteByPackage(_ context.Context, tourID int64) (int64, error) {
	var n int64
	for id, img := range m.images {
		if img.TourPackageID == tourID {
			delete(m.images, id)
			n++
		}
	}
	return n, nil
}

func (m *mockGalleryRepo) Delete(_ context.Context, tourID, imageID int64) error {
	img, ok := m.images[imageID]
	if !ok || img.TourPackageID != tourID {
		return domain.ErrNotFound
	}
	delete(m.images, imageID)
	return nil
}

func (m *mockGalleryRepo) WithTx(pgx.Tx) postgres.GalleryRepo { return m }

type mockUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
	// raceEmail makes the next Create for this email fail as if a
	// concurrent insert had won.
	raceEmail string
}

func newMockUsersRepo() *mockUsersRepo {
	return &mockUsersRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (m *mockUsersRepo) List(context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.users))
	for id := int64(1); id < m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUsersRepo) ListByType(ctx context.Context, t domain.UserType) ([]domain.User, error) {
	all, _ := m.List(ctx)
	out := make([]domain.User, 0)
	for _, u := range all {
		if u.Type == t {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUsersRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUsersRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.ID == id })
}

func (m *mockUsersRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return email != "" && u.Email == email })
}

func (m *mockUsersRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return username != "" && u.Username == username })
}

func (m *mockUsersRepo) insert(in domain.NewUser) *domain.User {
	u := &domain.User{
		ID: m.nextID, Name: in.Name, Email: in.Email, Username: in.Username,
		Phone: in.Phone, PasswordHash: in.PasswordHash, Type: in.Type,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.nextID++
	m.users[u.ID] = u
	return u
}

func (m *mockUsersRepo) Create(_ context.Context, in domain.NewUser) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in.Email != "" && in.Email == m.raceEmail {
		m.raceEmail = ""
		m.insert(domain.NewUser{Name: "racer", Email: in.Email, Type: domain.UserClient})
		return nil, domain.ErrDuplicateEmail
	}
	for _, u := range m.users {
		if in.Email != "" && u.Email == in.Email {
			return nil, domain.ErrDuplicateEmail
		}
		if in.Username != "" && u.Username == in.Username {
			return nil, domain.ErrDuplicateUsername
		}
	}
	c := *m.insert(in)
	return &c, nil
}

func (m *mockUsersRepo) Update(_ context.Context, id int64, p domain.UserPatch) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil && *p.Email != "" {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Type != nil {
		u.Type = *p.Type
	}
	c := *u
	return &c, nil
}

func (m *mockUsersRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type mockBookingRepo struct {
	nextID   int64
	bookings map[int64]*domain.Booking
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{nextID: 1, bookings: make(map[int64]*domain.Booking)}
}

func (m *mockBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	c := *b
	c.ID = m.nextID
	m.nextID++
	if c.Status == "" {
		c.Status = domain.BookingPending
	}
	if c.CreatedAt.IsZero() {
		// later rows sort first, like created_at DESC
		c.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(c.ID) * time.Minute)
	}
	c.UpdatedAt = c.CreatedAt
	m.bookings[c.ID] = &c
	out := c
	return &out, nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (m *mockBookingRepo) ListAll(context.Context) ([]domain.Booking, error) {
	out := make([]domain.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *mockBookingRepo) Update(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	cur, ok := m.bookings[b.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cur.Name, cur.Email, cur.Phone = b.Name, b.Email, b.Phone
	cur.TourType, cur.TourDate, cur.Guests, cur.Message = b.TourType, b.TourDate, b.Guests, b.Message
	return m.GetByID(ctx, b.ID)
}

func (m *mockBookingRepo) SetStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	cur, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cur.Status = status
	cur.UpdatedAt = time.Now()
	return m.GetByID(ctx, id)
}

func (m *mockBookingRepo) Count(context.Context) (int, error) { return len(m.bookings), nil }

type mockIdempotencyRepo struct {
	records map[string]int64
}

func newMockIdempotencyRepo() *mockIdempotencyRepo {
	return &mockIdempotencyRepo{records: make(map[string]int64)}
}

func (m *mockIdempotencyRepo) Lookup(_ context.Context, key string) (int64, error) {
	return m.records[key], nil
}

func (m *mockIdempotencyRepo) Remember(_ context.Context, key string, bookingID int64, _ time.Duration) error {
	if _, ok := m.records[key]; !ok {
		m.records[key] = bookingID
	}
	return nil
}

func (m *mockIdempotencyRepo) CleanupExpired(context.Context) (int64, error) { return 0, nil }

type mockLocationRepo struct {
	locations map[string]*domain.Location
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{locations: make(map[string]*domain.Location)}
}

func (m *mockLocationRepo) List(context.Context) ([]domain.Location, error) {
	out := make([]domain.Location, 0, len(m.locations))
	for _, l := range m.locations {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *mockLocationRepo) GetBySlug(_ context.Context, s string) (*domain.Location, error) {
	l, ok := m.locations[s]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *l
	return &c, nil
}

func (m *mockLocationRepo) SlugExists(_ context.Context, s string) (bool, error) {
	_, ok := m.locations[s]
	return ok, nil
}

func (m *mockLocationRepo) Create(_ context.Context, s string, in *domain.LocationReq) (*domain.Location, error) {
	if _, ok := m.locations[s]; ok {
		return nil, domain.ErrDuplicateLocation
	}
	l := &domain.Location{ID: int64(len(m.locations) + 1), Slug: s, Title: in.Title, Subtitle: in.Subtitle}
	m.locations[s] = l
	c := *l
	return &c, nil
}

func (m *mockLocationRepo) Update(ctx context.Context, s string, in *domain.LocationReq) (*domain.Location, error) {
	l, ok := m.locations[s]
	if !ok {
		return nil, domain.ErrNotFound
	}
	l.Title, l.Subtitle = in.Title, in.Subtitle
	return m.GetBySlug(ctx, s)
}

func (m *mockLocationRepo) Delete(_ context.Context, s string) error {
	if _, ok := m.locations[s]; !ok {
		return domain.ErrNotFound
	}
	delete(m.locations, s)
	return nil
}

// mockCache stores JSON like the redis cache does.
type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (c *mockCache) Get(_ context.Context, key string, dst any) error {
	b, ok := c.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(b, dst)
}

func (c *mockCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *mockCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mockCache) Close() error { return nil }

type published struct {
	subject string
	data    any
}

type mockPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *mockPublisher) Publish(_ context.Context, subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{subject: subject, data: data})
	return p.err
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.subject
	}
	return out
}

type mockMailer struct {
	mu      sync.Mutex
	notices []mailer.BookingStatusNotice
	sendErr error
}

func (m *mockMailer) Send(context.Context, string, string, string, string, string) (string, error) {
	return "mock-id", m.sendErr
}

func (m *mockMailer) SendBookingStatus(_ context.Context, n mailer.BookingStatusNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, n)
	return m.sendErr
}

var (
	_ postgres.TourRepo        = (*mockTourRepo)(nil)
	_ postgres.GalleryRepo     = (*mockGalleryRepo)(nil)
	_ postgres.UsersRepo       = (*mockUsersRepo)(nil)
	_ postgres.BookingRepo     = (*mockBookingRepo)(nil)
	_ postgres.IdempotencyRepo = (*mockIdempotencyRepo)(nil)
	_ postgres.LocationRepo    = (*mockLocationRepo)(nil)
	_ cache.Cache              = (*mockCache)(nil)
	_ events.Publisher         = (*mockPublisher)(nil)
	_ mailer.Service           = (*mockMailer)(nil)
)
