package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/apontei/apontei/internal/utils"
	"github.com/apontei/apontei/pkg/user"
)

func loginFixture(t *testing.T) (*ServiceImpl, user.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Abcdef12"), bcrypt.MinCost)
	require.NoError(t, err)

	u := user.User{
		ID:           "user-1",
		FullName:     "Ana Souza",
		Email:        "ana@example.com",
		PasswordHash: string(hash),
		Role:         user.RoleCollaborator,
		Status:       user.StatusActive,
	}
	repo := user.NewStubRepo()
	_, err = repo.Create(context.Background(), u)
	require.NoError(t, err)

	issuer := NewTokenIssuer("test-secret", time.Hour)
	clock := &utils.MockClock{}
	clock.SetNow(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	return NewService(repo, issuer, clock), u
}

func TestLogin(t *testing.T) {
	service, expected := loginFixture(t)

	token, u, err := service.Login(context.Background(), "ana@example.com", "Abcdef12")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, expected.ID, u.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	service, _ := loginFixture(t)

	_, _, err := service.Login(context.Background(), "ana@example.com", "WrongPass1")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	service, _ := loginFixture(t)

	_, _, err := service.Login(context.Background(), "nobody@example.com", "Abcdef12")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Abcdef12"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := user.NewStubRepo()
	_, err = repo.Create(context.Background(), user.User{
		ID:           "user-1",
		Email:        "ana@example.com",
		PasswordHash: string(hash),
		Status:       user.StatusInactive,
	})
	require.NoError(t, err)
	clock := &utils.MockClock{}
	clock.SetNow(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	service := NewService(repo, NewTokenIssuer("test-secret", time.Hour), clock)

	_, _, err = service.Login(context.Background(), "ana@example.com", "Abcdef12")

	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	u := user.User{ID: "user-1", Email: "ana@example.com", Role: user.RoleManager}

	token, err := issuer.Generate(u, time.Now())
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, user.RoleManager, claims.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("test-secret", time.Hour).Generate(user.User{ID: "user-1"}, time.Now())
	require.NoError(t, err)

	_, err = NewTokenIssuer("other-secret", time.Hour).Validate(token)

	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Generate(user.User{ID: "user-1"}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = issuer.Validate(token)

	assert.Error(t, err)
}
