package ingest

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"gutendex/internal/httpx"
)

type HTTPHandler struct {
	svc    *Service
	repo   Repository
	secret string
	log    *slog.Logger
}

func NewHTTPHandler(svc *Service, repo Repository, secret string, log *slog.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, repo: repo, secret: secret, log: log}
}

func (h *HTTPHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return false
	}
	got := r.Header.Get("X-Internal-Secret")
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) == 1
}

// Ingest handles POST /internal/jobs/ingest
// @Summary Trigger catalog import
// @Description Start downloading the catalog feed in the background, upserting every book and removing stale ones
// @Tags internal
// @Produce json
// @Param X-Internal-Secret header string true "Internal secret for authentication"
// @Success 202 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /internal/jobs/ingest [post]
func (h *HTTPHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid internal secret", nil)
		return
	}

	if err := h.svc.Start(context.WithoutCancel(r.Context())); errors.Is(err, ErrAlreadyRunning) {
		httpx.JSONError(w, r, http.StatusConflict, "INGEST_RUNNING", "an ingest run is already in progress", nil)
		return
	}

	httpx.JSON(w, http.StatusAccepted, httpx.SuccessResponse{
		Success: true,
		Data:    map[string]string{"message": "ingest run started"},
	})
}

// Latest handles GET /internal/jobs/ingest
// @Summary Latest catalog import run
// @Tags internal
// @Produce json
// @Param X-Internal-Secret header string true "Internal secret for authentication"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /internal/jobs/ingest [get]
func (h *HTTPHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid internal secret", nil)
		return
	}

	run, err := h.repo.LatestRun(r.Context())
	if errors.Is(err, ErrRunNotFound) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "no ingest run recorded", nil)
		return
	}
	if err != nil {
		h.log.Error("failed to load latest ingest run", "error", err)
		httpx.JSONInternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, run, nil)
}
