package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gutendex/internal/platform/crypto"
	"gutendex/internal/platform/mailer"
	"gutendex/internal/recovery"
	"gutendex/internal/user"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	TokenTypeBearer = "bearer"
	recoverySubject = "Your OTP Code"
)

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Service struct {
	secret   string
	tokenTTL time.Duration
	users    *user.Service
	codes    *recovery.Service
	mail     mailer.Sender
	log      *slog.Logger
}

func NewService(secret string, tokenTTL time.Duration, users *user.Service, codes *recovery.Service, mail mailer.Sender, log *slog.Logger) *Service {
	return &Service{
		secret:   secret,
		tokenTTL: tokenTTL,
		users:    users,
		codes:    codes,
		mail:     mail,
		log:      log,
	}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (user.User, error) {
	return s.users.Register(ctx, name, email, password)
}

// Login checks the password against the stored hash and issues an access
// token carrying the user id and email. Unknown emails, inactive accounts
// and wrong passwords all yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return Token{}, ErrInvalidCredentials
	}
	if err != nil {
		return Token{}, err
	}
	if !u.IsActive || !crypto.VerifyPassword(u.PasswordHash, password) {
		return Token{}, ErrInvalidCredentials
	}

	accessToken, err := crypto.GenerateToken(s.secret, u.ID, u.Email, s.tokenTTL)
	if err != nil {
		return Token{}, fmt.Errorf("issue token: %w", err)
	}
	return Token{AccessToken: accessToken, TokenType: TokenTypeBearer}, nil
}

// RequestPasswordRecovery issues a one-time code for email and mails it.
// It returns user.ErrNotFound for unknown emails.
func (s *Service) RequestPasswordRecovery(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.codes.Issue(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("issue recovery code: %w", err)
	}

	if err := s.mail.Send(ctx, u.Email, recoverySubject, "Your OTP code is: "+code); err != nil {
		return fmt.Errorf("deliver recovery code: %w", err)
	}
	s.log.Info("recovery code issued", "user_id", u.ID)
	return nil
}

// VerifyRecoveryCode consumes code and sets newPassword. Any failure of the
// code itself is recovery.ErrInvalidCode.
func (s *Service) VerifyRecoveryCode(ctx context.Context, email, code, newPassword string) error {
	return s.codes.Redeem(ctx, email, code, newPassword)
}
