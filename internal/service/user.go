package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/repo/postgres"
	"github.com/sapphiretrails/backoffice/internal/utils"
	"github.com/sapphiretrails/backoffice/pkg/auth"
	"github.com/sapphiretrails/backoffice/pkg/config"
	"github.com/sapphiretrails/backoffice/pkg/events"
	"github.com/sapphiretrails/backoffice/pkg/logger"
	"github.com/sapphiretrails/backoffice/pkg/metrics"
)

// guestSecretBytes is the length of the throwaway password given to users
// created from a booking form.
const guestSecretBytes = 16

type UserService interface {
	// ResolveGuest returns the id of the user owning email, creating a
	// client account on first sight.
	ResolveGuest(ctx context.Context, name, email, phone string) (int64, error)
	Register(ctx context.Context, req *domain.RegisterReq) (*domain.User, error)
	CreateAdmin(ctx context.Context, req *domain.CreateAdminReq) (*domain.User, error)
	Login(ctx context.Context, req *domain.LoginReq) (*domain.LoginRes, error)
	List(ctx context.Context, userType string) ([]domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, req *domain.UpdateUserReq) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	BootstrapSuperadmin(ctx context.Context, username, password string) error
}

type userService struct {
	users    postgres.UsersRepo
	eventBus events.Publisher
	metrics  *metrics.Metrics
	config   config.AuthConfig
}

func NewUserService(
	users postgres.UsersRepo,
	eventBus events.Publisher,
	m *metrics.Metrics,
	cfg config.AuthConfig,
) UserService {
	return &userService{users: users, eventBus: eventBus, metrics: m, config: cfg}
}

func (s *userService) ResolveGuest(ctx context.Context, name, email, phone string) (int64, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return 0, domain.NewValidationError("email", "is required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		s.metrics.GuestsResolved.WithLabelValues("existing").Inc()
		return u.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return 0, fmt.Errorf("failed to look up guest: %w", err)
	}

	secret, err := auth.RandomSecret(guestSecretBytes)
	if err != nil {
		return 0, fmt.Errorf("failed to generate guest password: %w", err)
	}
	hash, err := auth.HashPassword(secret)
	if err != nil {
		return 0, err
	}

	u, err = s.users.Create(ctx, domain.NewUser{
		Name:         utils.NormalizeString(name),
		Email:        email,
		Phone:        utils.NormalizePhone(phone),
		PasswordHash: hash,
		Type:         domain.UserClient,
	})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		// Lost the race against a concurrent booking with the same email.
		u, err = s.users.GetByEmail(ctx, email)
		if err != nil {
			return 0, fmt.Errorf("failed to re-read guest: %w", err)
		}
		s.metrics.GuestsResolved.WithLabelValues("existing").Inc()
		return u.ID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create guest: %w", err)
	}

	s.metrics.GuestsResolved.WithLabelValues("created").Inc()
	s.publish(ctx, events.UserCreated, u)
	return u.ID, nil
}

func (s *userService) Register(ctx context.Context, req *domain.RegisterReq) (*domain.User, error) {
	req.Email = utils.NormalizeEmail(req.Email)
	req.Name = utils.NormalizeString(req.Name)
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, domain.NewUser{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        utils.NormalizePhone(req.Phone),
		PasswordHash: hash,
		Type:         domain.UserClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	s.publish(ctx, events.UserCreated, u)
	return u, nil
}

func (s *userService) CreateAdmin(ctx context.Context, req *domain.CreateAdminReq) (*domain.User, error) {
	req.Username = utils.NormalizeString(req.Username)
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, domain.NewUser{
		Name:         req.Username,
		Username:     req.Username,
		PasswordHash: hash,
		Type:         domain.UserType(req.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	logger.InfoContext(ctx, "Admin created", "user_id", u.ID, "role", u.Type)
	s.publish(ctx, events.UserCreated, u)
	return u, nil
}

// Login accepts a username or, when the login contains "@", an email.
// Legacy bcrypt hashes are upgraded to argon2id on success.
func (s *userService) Login(ctx context.Context, req *domain.LoginReq) (*domain.LoginRes, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	login := utils.NormalizeString(req.Login)
	var (
		u   *domain.User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.users.GetByEmail(ctx, utils.NormalizeEmail(login))
	} else {
		u, err = s.users.GetByUsername(ctx, login)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(req.Password, u.PasswordHash)
	if err != nil {
		logger.WarnContext(ctx, "Password verification error", "error", err, "user_id", u.ID)
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if auth.NeedsRehash(u.PasswordHash) {
		if hash, err := auth.HashPassword(req.Password); err == nil {
			if _, err := s.users.Update(ctx, u.ID, domain.UserPatch{PasswordHash: &hash}); err != nil {
				logger.ErrorContext(ctx, "Failed to upgrade password hash", "error", err, "user_id", u.ID)
			}
		}
	}

	token, err := auth.NewAccessToken(u.ID, u.Username, u.Email, string(u.Type), s.config.JWTSecret, s.config.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &domain.LoginRes{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenTTL / time.Second),
		User:        u.Info(),
	}, nil
}

func (s *userService) List(ctx context.Context, userType string) ([]domain.User, error) {
	if userType == "" {
		return s.users.List(ctx)
	}
	t, ok := domain.ParseUserType(userType)
	if !ok {
		return nil, domain.NewValidationError("type", "must be one of: client, admin, superadmin")
	}
	return s.users.ListByType(ctx, t)
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) Update(ctx context.Context, id int64, req *domain.UpdateUserReq) (*domain.User, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	patch := domain.UserPatch{Name: req.Name}
	if req.Phone != nil {
		p := utils.NormalizePhone(*req.Phone)
		patch.Phone = &p
	}
	if req.Email != nil {
		e := utils.NormalizeEmail(*req.Email)
		patch.Email = &e
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}
	if req.Type != nil {
		t, _ := domain.ParseUserType(*req.Type)
		patch.Type = &t
	}

	u, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	s.publish(ctx, events.UserDeleted, u)
	return nil
}

// BootstrapSuperadmin creates the configured superadmin when it does not
// exist yet. An empty username disables it.
func (s *userService) BootstrapSuperadmin(ctx context.Context, username, password string) error {
	if username == "" {
		return nil
	}
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	_, err = s.CreateAdmin(ctx, &domain.CreateAdminReq{
		Username: username,
		Password: password,
		Role:     string(domain.UserSuperadmin),
	})
	return err
}

func (s *userService) publish(ctx context.Context, subject string, u *domain.User) {
	event := events.UserEvent{UserID: u.ID, Type: string(u.Type), At: time.Now().UTC()}
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish user event", "error", err, "subject", subject, "user_id", u.ID)
	}
}
