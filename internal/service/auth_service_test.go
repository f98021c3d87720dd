package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/equipment-service/internal/config"
	"github.com/spec-kit/equipment-service/internal/domain"
	apperrors "github.com/spec-kit/equipment-service/pkg/util"
)

func newAuthEnv(t *testing.T) (*AuthService, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            4, // min cost keeps the suite fast
	}, store.Users())
	return svc, store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthEnv(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name:     "Field Tech",
		Email:    "Tech@Example.com",
		Password: "long-enough-pass",
		Role:     domain.RoleTechnician,
	})
	require.NoError(t, err)
	assert.Equal(t, "tech@example.com", user.Email, "emails are stored lowercased")
	assert.True(t, user.Active)

	result, err := svc.Login(ctx, "tech@example.com", "long-enough-pass")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleTechnician, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthEnv(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name:     "Someone",
		Email:    "someone@example.com",
		Password: "correct-password",
		Role:     domain.RoleEndUser,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "someone@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.CodeOf(err))
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthEnv(t)

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.CodeOf(err))
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, store := newAuthEnv(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name:     "Former Tech",
		Email:    "former@example.com",
		Password: "still-remembers",
		Role:     domain.RoleTechnician,
	})
	require.NoError(t, err)

	disabled := store.users[user.ID]
	disabled.Active = false
	store.users[user.ID] = disabled

	_, err = svc.Login(ctx, "former@example.com", "still-remembers")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.CodeOf(err))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthEnv(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "X", Email: "x@example.com", Password: "short", Role: domain.RoleEndUser})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	_, err = svc.Register(ctx, RegisterInput{Name: "X", Email: "x@example.com", Password: "long-enough", Role: domain.UserRole("ROOT")})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}
