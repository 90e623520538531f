package recovery

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gutendex/internal/platform/crypto"
)

// ErrInvalidCode covers every way a code can fail: wrong, unknown email,
// already used or expired.
var ErrInvalidCode = errors.New("invalid or expired code")

const (
	CodeLength = 6
	DefaultTTL = 10 * time.Minute
)

var codeSpace = big.NewInt(1_000_000)

//go:generate mockgen -source=recovery.go -destination=../mocks/mock_recovery.go -package=mocks -mock_names=Repository=MockRecoveryRepository

type Repository interface {
	CreateCode(ctx context.Context, userID, code string, expiresAt time.Time) error
	// Redeem consumes the unused code for email that is still valid at now
	// and stores passwordHash for its user, in one transaction. It returns
	// ErrInvalidCode when no such code exists.
	Redeem(ctx context.Context, email, code, passwordHash string, now time.Time) error
}

type Service struct {
	repo Repository
	ttl  time.Duration
	now  func() time.Time
}

func NewService(repo Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{repo: repo, ttl: ttl, now: time.Now}
}

// Issue stores a fresh code for userID and returns it.
func (s *Service) Issue(ctx context.Context, userID string) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	if err := s.repo.CreateCode(ctx, userID, code, s.now().Add(s.ttl)); err != nil {
		return "", err
	}
	return code, nil
}

// Redeem consumes code and sets newPassword for the owner of email.
func (s *Service) Redeem(ctx context.Context, email, code, newPassword string) error {
	if !wellFormed(code) {
		return ErrInvalidCode
	}
	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.Redeem(ctx, email, code, hash, s.now())
}

// GenerateCode returns a uniformly random zero-padded 6 digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func wellFormed(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
