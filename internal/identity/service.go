// Package identity handles registration and credential authentication over
// the user store.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/opencircle/socialgraph/internal/auth"
	"github.com/opencircle/socialgraph/internal/models"
	"github.com/opencircle/socialgraph/internal/store"
)

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrMissingFields   = errors.New("missing required fields")
	ErrDuplicateEmail  = errors.New("user already exists")
	ErrBadCredentials  = errors.New("no active account found with the given credentials")
	ErrInactiveAccount = errors.New("user is deactivated")
)

type Service struct {
	users    store.UserStore
	validate *validator.Validate
}

func NewService(users store.UserStore) *Service {
	return &Service{
		users:    users,
		validate: validator.New(),
	}
}

// Register creates an active user after validating input and checking for a
// case-insensitive email duplicate. The stored password is an argon2id hash.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, ErrInvalidEmail
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email duplicate: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: hash,
		Name:     name,
		Active:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate checks credentials by exact email and returns a signed session
// token. Deactivated accounts are rejected even with a valid password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", fmt.Errorf("fetch user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.Password)
	if err != nil || !match {
		return "", ErrBadCredentials
	}
	if !user.Active {
		return "", ErrInactiveAccount
	}

	token, err := auth.CreateJWT(user.ID.String())
	if err != nil {
		return "", fmt.Errorf("create jwt: %w", err)
	}
	return token, nil
}
