package user

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=../mocks/mock_user.go -package=mocks -mock_names=Repository=MockUserRepository

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	// UpdateProfile overwrites name and email and returns the stored row.
	UpdateProfile(ctx context.Context, id, name, email string) (User, error)
}
