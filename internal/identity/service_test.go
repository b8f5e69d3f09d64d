package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/opencircle/socialgraph/internal/auth"
	"github.com/opencircle/socialgraph/internal/models"
	"github.com/opencircle/socialgraph/internal/store"
)

func TestRegisterHashesPassword(t *testing.T) {
	users := store.NewMemoryUserStore()
	svc := NewService(users)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	require.True(t, u.Active)
	require.NotEqual(t, "hunter22", u.Password)

	match, err := auth.VerifyPassword("hunter22", u.Password)
	require.NoError(t, err)
	require.True(t, match)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(store.NewMemoryUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "alice@example.com", "pw")
	require.ErrorIs(t, err, ErrMissingFields)
	_, err = svc.Register(ctx, "Alice", "", "pw")
	require.ErrorIs(t, err, ErrMissingFields)
	_, err = svc.Register(ctx, "Alice", "not-an-email", "pw")
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	svc := NewService(store.NewMemoryUserStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Other Alice", "ALICE@example.com", "pw")
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAuthenticate(t *testing.T) {
	auth.Init()
	users := store.NewMemoryUserStore()
	svc := NewService(users)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	token, err := svc.Authenticate(ctx, "alice@example.com", "hunter22")
	require.NoError(t, err)
	sub, err := auth.AuthenticateJWT(token)
	require.NoError(t, err)
	require.Equal(t, u.ID.String(), sub)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.Authenticate(ctx, "ghost@example.com", "hunter22")
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	auth.Init()
	users := store.NewMemoryUserStore()
	svc := NewService(users)
	ctx := context.Background()

	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, &models.User{
		ID:       uuid.New(),
		Email:    "bob@example.com",
		Password: hash,
		Name:     "Bob",
		Active:   false,
	}))

	_, err = svc.Authenticate(ctx, "bob@example.com", "hunter22")
	require.ErrorIs(t, err, ErrInactiveAccount)
}
