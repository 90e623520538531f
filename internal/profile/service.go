package profile

import (
	"context"

	"gutendex/internal/user"
)

type Service struct {
	users *user.Service
}

func NewService(users *user.Service) *Service {
	return &Service{users: users}
}

// GetProfile returns the caller's own record.
func (s *Service) GetProfile(ctx context.Context, userID string) (user.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile replaces the caller's name and email. A taken email is
// user.ErrAlreadyExists.
func (s *Service) UpdateProfile(ctx context.Context, userID, name, email string) (user.User, error) {
	return s.users.UpdateProfile(ctx, userID, name, email)
}
