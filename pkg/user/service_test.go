package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validUser() User {
	return User{
		FullName:  "Ana Souza",
		Email:     "ana@example.com",
		CPF:       "52998224725",
		Matricula: "C-001",
		Role:      RoleCollaborator,
		ManagerID: "manager-1",
	}
}

func TestCreateUser(t *testing.T) {
	service := NewService(NewStubRepo())

	created, err := service.Create(context.Background(), validUser(), "Abcdef12")

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, StatusActive, created.Status)
	assert.Equal(t, "America/Sao_Paulo", created.Timezone)
	assert.Equal(t, 40, created.WeeklyHours)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("Abcdef12")))
}

func TestCreateUserValidation(t *testing.T) {
	service := NewService(NewStubRepo())

	u := validUser()
	u.Email = "not-an-email"
	_, err := service.Create(context.Background(), u, "Abcdef12")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	u = validUser()
	u.CPF = "11111111111"
	_, err = service.Create(context.Background(), u, "Abcdef12")
	assert.ErrorIs(t, err, ErrInvalidCPF)

	u = validUser()
	_, err = service.Create(context.Background(), u, "weak")
	assert.ErrorIs(t, err, ErrWeakPassword)

	u = validUser()
	u.Role = "ESTAGIARIO"
	_, err = service.Create(context.Background(), u, "Abcdef12")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	service := NewService(NewStubRepo())
	_, err := service.Create(context.Background(), validUser(), "Abcdef12")
	require.NoError(t, err)

	dup := validUser()
	dup.CPF = "15350946056"
	dup.Matricula = "C-002"
	_, err = service.Create(context.Background(), dup, "Abcdef12")

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestListScopedByRole(t *testing.T) {
	repo := NewStubRepo()
	service := NewService(repo)
	director := User{ID: "d-1", Role: RoleDirector}
	manager := User{ID: "m-1", Role: RoleManager}
	collaborator := User{ID: "c-1", Role: RoleCollaborator, ManagerID: "m-1"}
	outsider := User{ID: "c-2", Role: RoleCollaborator, ManagerID: "m-2"}
	for _, u := range []User{director, manager, collaborator, outsider} {
		_, err := repo.Create(context.Background(), u)
		require.NoError(t, err)
	}

	all, err := service.List(WithUser(context.Background(), director))
	require.NoError(t, err)
	assert.Len(t, all, 4)

	team, err := service.List(WithUser(context.Background(), manager))
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, "c-1", team[0].ID)

	own, err := service.List(WithUser(context.Background(), collaborator))
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "c-1", own[0].ID)
}

func TestDeleteMissingUser(t *testing.T) {
	service := NewService(NewStubRepo())

	err := service.Delete(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNoUser)
}
