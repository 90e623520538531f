package user

import (
	"context"
	"errors"

	"gutendex/internal/platform/crypto"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a user with a bcrypt hash of password. Emails are
// compared exactly as stored.
func (s *Service) Register(ctx context.Context, name, email, password string) (User, error) {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return User{}, ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	newUser := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, err
	}
	return *newUser, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) UpdateProfile(ctx context.Context, id, name, email string) (User, error) {
	return s.repo.UpdateProfile(ctx, id, name, email)
}
