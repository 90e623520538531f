package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gutendex/internal/auth"
	"gutendex/internal/book"
	"gutendex/internal/config"
	"gutendex/internal/httpx"
	"gutendex/internal/ingest"
	"gutendex/internal/profile"
)

const maxRequestBytes = 1 << 20

type routes struct {
	books   *book.HTTPHandler
	auth    *auth.HTTPHandler
	profile *profile.HTTPHandler
	ingest  *ingest.HTTPHandler
	ready   func(context.Context) error
}

func newRouter(h routes, cfg *config.Config, log *slog.Logger) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", promhttp.Handler())

	router.HandleFunc("GET /books", h.books.List)
	router.HandleFunc("GET /books/{id}", h.books.Get)

	authLimit := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware
	router.Handle("POST /auth/register", authLimit(http.HandlerFunc(h.auth.Register)))
	router.Handle("POST /auth/login", authLimit(http.HandlerFunc(h.auth.Login)))
	router.Handle("POST /auth/recover-password", authLimit(http.HandlerFunc(h.auth.RecoverPassword)))
	router.Handle("POST /auth/verify-otp", authLimit(http.HandlerFunc(h.auth.VerifyOTP)))

	requireAuth := httpx.AuthMiddleware(cfg.JWTSecret)
	router.Handle("GET /auth/profile", requireAuth(http.HandlerFunc(h.profile.GetProfile)))
	router.Handle("PUT /auth/profile", requireAuth(http.HandlerFunc(h.profile.UpdateProfile)))

	router.HandleFunc("POST /internal/jobs/ingest", h.ingest.Ingest)
	router.HandleFunc("GET /internal/jobs/ingest", h.ingest.Latest)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(log),
		httpx.RecoveryMiddleware(log),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		httpx.RequestSizeLimitMiddleware(maxRequestBytes),
		httpx.MetricsMiddleware,
	)
}
