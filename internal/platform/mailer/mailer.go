package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

//go:generate mockgen -source=mailer.go -destination=../../mocks/mock_mailer.go -package=mocks

// Sender delivers a plain-text message to a single recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Config mirrors config.SMTP so this package does not import config.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// New returns an SMTP sender, or a logging no-op sender when host is empty.
func New(cfg Config, log *slog.Logger) Sender {
	if cfg.Host == "" {
		return &NoopSender{log: log}
	}
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

type SMTPSender struct {
	cfg  Config
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(addr, auth, s.cfg.From, []string{to}, buildMessage(s.cfg.From, to, subject, body)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}

// NoopSender logs instead of delivering. Used when SMTP is not configured.
type NoopSender struct {
	log *slog.Logger
}

func (n *NoopSender) Send(_ context.Context, to, subject, _ string) error {
	if n.log != nil {
		n.log.Info("smtp not configured, skipping email", "to", to, "subject", subject)
	}
	return nil
}
