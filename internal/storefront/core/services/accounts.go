package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/validation"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=60"`
	Email    string `json:"email" validate:"required,storeemail"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AccountService struct {
	users     ports.UserRepository
	validator *validation.Validator
	now       func() time.Time
}

func NewAccountService(users ports.UserRepository, v *validation.Validator) *AccountService {
	return &AccountService{
		users:     users,
		validator: v,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a customer account.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	return s.create(ctx, in, entity.RoleUser)
}

// CreateAdmin creates an account with the admin role.
func (s *AccountService) CreateAdmin(ctx context.Context, in RegisterInput) (*entity.User, error) {
	return s.create(ctx, in, entity.RoleAdmin)
}

func (s *AccountService) create(ctx context.Context, in RegisterInput, role entity.Role) (*entity.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}
	u := &entity.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, fmt.Errorf("accounts: create user: %w", err)
	}
	u.PasswordHash = ""
	slog.InfoContext(ctx, "user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*entity.User, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindCredentials(ctx, normalizeEmail(in.Email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("accounts: find credentials: %w", err)
	}
	if !auth.CheckPasswordHash(in.Password, u.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	u.PasswordHash = ""
	return u, nil
}

// Principal converts a user into session claims.
func Principal(u *entity.User) auth.Principal {
	return auth.Principal{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
