package auth

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/apontei/apontei/internal/utils"
	"github.com/apontei/apontei/pkg/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user is inactive")
)

type Service interface {
	Login(ctx context.Context, email, password string) (string, user.User, error)
}

type ServiceImpl struct {
	users  user.Repo
	issuer *TokenIssuer
	clock  utils.Clock
}

func NewService(users user.Repo, issuer *TokenIssuer, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{users: users, issuer: issuer, clock: clock}
}

func (s *ServiceImpl) Login(ctx context.Context, email, password string) (string, user.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			return "", user.User{}, ErrInvalidCredentials
		}
		return "", user.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		log.Debugf("password mismatch for %s", email)
		return "", user.User{}, ErrInvalidCredentials
	}

	if u.Status != user.StatusActive {
		return "", user.User{}, ErrUserInactive
	}

	token, err := s.issuer.Generate(u, s.clock.Now())
	if err != nil {
		return "", user.User{}, err
	}
	return token, u, nil
}
