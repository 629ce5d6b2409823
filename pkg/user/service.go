package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidCPF   = errors.New("invalid CPF")
	ErrWeakPassword = errors.New("password must have at least 8 characters with upper case, lower case and digits")
	ErrInvalidRole  = errors.New("invalid role")
	ErrEmailTaken   = errors.New("email already registered")
)

const bcryptCost = 12

type Service interface {
	Create(ctx context.Context, u User, password string) (User, error)
	Get(ctx context.Context, id string) (User, error)
	GetCurrent(ctx context.Context) (User, error)
	Update(ctx context.Context, u User, newPassword string) (User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]User, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Create(ctx context.Context, u User, password string) (User, error) {
	if !IsValidEmail(u.Email) {
		return User{}, ErrInvalidEmail
	}
	if !IsValidCPF(u.CPF) {
		return User{}, ErrInvalidCPF
	}
	if !IsStrongPassword(password) {
		return User{}, ErrWeakPassword
	}
	if !u.Role.Valid() {
		return User{}, ErrInvalidRole
	}

	if _, err := s.repo.FindByEmail(ctx, u.Email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNoUser) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("could not hash password: %w", err)
	}

	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.PasswordHash = string(hash)
	u.Status = StatusActive
	if u.Timezone == "" {
		u.Timezone = "America/Sao_Paulo"
	}
	if u.WeeklyHours == 0 {
		u.WeeklyHours = 40
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	return s.repo.Create(ctx, u)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImpl) GetCurrent(ctx context.Context) (User, error) {
	id, err := CurrentID(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImpl) Update(ctx context.Context, u User, newPassword string) (User, error) {
	existing, err := s.repo.FindByID(ctx, u.ID)
	if err != nil {
		return User{}, err
	}

	if u.Email != existing.Email && !IsValidEmail(u.Email) {
		return User{}, ErrInvalidEmail
	}
	if u.CPF != existing.CPF && !IsValidCPF(u.CPF) {
		return User{}, ErrInvalidCPF
	}
	if !u.Role.Valid() {
		return User{}, ErrInvalidRole
	}

	u.PasswordHash = existing.PasswordHash
	if newPassword != "" {
		if !IsStrongPassword(newPassword) {
			return User{}, ErrWeakPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
		if err != nil {
			return User{}, fmt.Errorf("could not hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, u)
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.SoftDelete(ctx, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNoUser
	}
	return nil
}

// List is scoped by the caller's role: directors see everyone, managers see
// their own team, collaborators see only themselves.
func (s *ServiceImpl) List(ctx context.Context) ([]User, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	switch current.Role {
	case RoleDirector:
		return s.repo.List(ctx, "")
	case RoleManager:
		return s.repo.List(ctx, current.ID)
	default:
		return []User{current}, nil
	}
}
