package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/repair-ticket-service/internal/auth"
	"github.com/spec-kit/repair-ticket-service/internal/config"
	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/repository"
	apperrors "github.com/spec-kit/repair-ticket-service/pkg/util/errorutil"
)

const invalidCredentials = "Credenciales inválidas"

// RegisterInput describes a new customer account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserService is the account capability used by the HTTP layer.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

var _ UserService = (*AuthService)(nil)

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		tokenMgr:   tokens,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Register creates a customer account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.create(ctx, input, domain.RoleCustomer)
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewUnauthorized(invalidCredentials)
		}
		return "", apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", apperrors.NewUnauthorized(invalidCredentials)
	}

	token, _, err := s.tokenMgr.GenerateToken(user.Email, user.Role)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return token, nil
}

// GetByEmail looks an account up.
func (s *AuthService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// SeedAdmin creates the administrator account unless it already exists.
func (s *AuthService) SeedAdmin(ctx context.Context, seed config.AdminSeed) error {
	if strings.TrimSpace(seed.Email) == "" || seed.Password == "" {
		s.logger.Info("admin seed not configured; skipping")
		return nil
	}

	_, err := s.users.GetByEmail(ctx, normalizeEmail(seed.Email))
	if err == nil {
		s.logger.Info("admin account already present", zap.String("email", seed.Email))
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	_, err = s.create(ctx, RegisterInput{
		FirstName: seed.FirstName,
		LastName:  seed.LastName,
		Email:     seed.Email,
		Password:  seed.Password,
	}, domain.RoleAdmin)
	if err != nil && !apperrors.IsConflict(err) {
		return err
	}
	s.logger.Info("admin account seeded", zap.String("email", seed.Email))
	return nil
}

func (s *AuthService) create(ctx context.Context, input RegisterInput, role domain.Role) (*domain.User, error) {
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperrors.NewValidationError("password too long", map[string]any{"password": "max 72 bytes"})
		}
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		UserID:       uuid.NewString(),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
