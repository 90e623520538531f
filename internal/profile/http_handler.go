package profile

import (
	"errors"
	"log/slog"
	"net/http"

	"gutendex/internal/auth"
	"gutendex/internal/httpx"
	"gutendex/internal/user"
)

type HTTPHandler struct {
	service *Service
	binder  *httpx.Binder
	log     *slog.Logger
}

func NewHTTPHandler(service *Service, binder *httpx.Binder, log *slog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, binder: binder, log: log}
}

// GetProfile handles GET /auth/profile
// @Summary Get own profile
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} auth.UserResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /auth/profile [get]
func (h *HTTPHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}

	u, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		// a token whose subject no longer exists is rejected like any other bad token
		if errors.Is(err, user.ErrNotFound) {
			httpx.Unauthorized(w, r)
			return
		}
		h.log.Error("get profile failed", "error", err, "request_id", httpx.RequestIDFrom(r))
		httpx.JSONInternalError(w, r)
		return
	}

	httpx.JSON(w, http.StatusOK, auth.NewUserResponse(u))
}

type UpdateProfileReq struct {
	Name  string `json:"name" mod:"trim" validate:"required,max=128"`
	Email string `json:"email" mod:"trim" validate:"required,email,max=320"`
}

// UpdateProfile handles PUT /auth/profile
// @Summary Update own profile
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body UpdateProfileReq true "Profile update"
// @Success 200 {object} auth.UserResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /auth/profile [put]
func (h *HTTPHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}

	var req UpdateProfileReq
	if err := h.binder.BindJSON(r, &req); err != nil {
		httpx.WriteBindError(w, r, err)
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), userID, req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			httpx.Unauthorized(w, r)
		case errors.Is(err, user.ErrAlreadyExists):
			httpx.JSONError(w, r, http.StatusBadRequest, "ALREADY_EXISTS", "Email already registered", nil)
		default:
			h.log.Error("update profile failed", "error", err, "request_id", httpx.RequestIDFrom(r))
			httpx.JSONInternalError(w, r)
		}
		return
	}

	httpx.JSON(w, http.StatusOK, auth.NewUserResponse(u))
}
