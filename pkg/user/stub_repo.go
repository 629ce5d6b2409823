package user

import (
	"context"
	"time"
)

type StubRepo struct {
	data map[string]User
}

func NewStubRepo() *StubRepo {
	return &StubRepo{data: map[string]User{}}
}

func (s *StubRepo) Create(ctx context.Context, u User) (User, error) {
	s.data[u.ID] = u
	return u, nil
}

func (s *StubRepo) FindByID(ctx context.Context, id string) (User, error) {
	u, ok := s.data[id]
	if !ok {
		return User{}, ErrNoUser
	}
	return u, nil
}

func (s *StubRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range s.data {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNoUser
}

func (s *StubRepo) Update(ctx context.Context, u User) (User, error) {
	if _, ok := s.data[u.ID]; !ok {
		return User{}, ErrNoUser
	}
	s.data[u.ID] = u
	return u, nil
}

func (s *StubRepo) SoftDelete(ctx context.Context, id string, now time.Time) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubRepo) List(ctx context.Context, managerID string) ([]User, error) {
	var users []User
	for _, u := range s.data {
		if managerID == "" || u.ManagerID == managerID {
			users = append(users, u)
		}
	}
	return users, nil
}
