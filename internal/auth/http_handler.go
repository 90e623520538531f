package auth

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"gutendex/internal/httpx"
	"gutendex/internal/recovery"
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

type RegisterReq struct {
	Name     string `json:"name" mod:"trim" validate:"max=128"`
	Email    string `json:"email" mod:"trim" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type message struct {
	Msg string `json:"msg"`
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterReq true "Registration request"
// @Success 201 {object} UserResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /auth/register [post]
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterReq
	if err := h.binder.BindJSON(r, &req); err != nil {
		httpx.WriteBindError(w, r, err)
		return
	}

	u, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			httpx.JSONError(w, r, http.StatusBadRequest, "ALREADY_EXISTS", "Email already registered", nil)
			return
		}
		h.log.Error("register failed", "error", err, "request_id", httpx.RequestIDFrom(r))
		httpx.JSONInternalError(w, r)
		return
	}

	httpx.JSON(w, http.StatusCreated, NewUserResponse(u))
}

type LoginReq struct {
	Email    string `json:"email" mod:"trim" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// loginForm is the OAuth2 password form; username carries the email.
type loginForm struct {
	Username string `form:"username" mod:"trim"`
	Email    string `form:"email" mod:"trim"`
	Password string `form:"password" validate:"required"`
}

func (h *HTTPHandler) bindLogin(r *http.Request) (LoginReq, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" {
		var req LoginReq
		err := h.binder.BindJSON(r, &req)
		return req, err
	}

	var form loginForm
	if err := h.binder.BindForm(r, &form); err != nil {
		return LoginReq{}, err
	}
	req := LoginReq{Email: form.Email, Password: form.Password}
	if req.Email == "" {
		req.Email = form.Username
	}
	if details := h.binder.Validate(req); len(details) > 0 {
		return LoginReq{}, &httpx.RequestError{
			Status:  http.StatusUnprocessableEntity,
			Code:    "VALIDATION_ERROR",
			Message: "Invalid input",
			Details: details,
		}
	}
	return req, nil
}

// Login handles POST /auth/login
// @Summary User login
// @Description Authenticate with email and password, as JSON or as a url-encoded form
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body LoginReq true "Login request"
// @Success 200 {object} Token
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /auth/login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := h.bindLogin(r)
	if err != nil {
		httpx.WriteBindError(w, r, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials", nil)
			return
		}
		h.log.Error("login failed", "error", err, "request_id", httpx.RequestIDFrom(r))
		httpx.JSONInternalError(w, r)
		return
	}

	httpx.JSON(w, http.StatusOK, token)
}

type RecoverPasswordReq struct {
	Email string `json:"email" mod:"trim" validate:"required,email"`
}

// RecoverPassword handles POST /auth/recover-password
// @Summary Request a password recovery code
// @Description Mail a 6 digit one-time code valid for 10 minutes
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RecoverPasswordReq true "Recovery request"
// @Success 200 {object} message
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /auth/recover-password [post]
func (h *HTTPHandler) RecoverPassword(w http.ResponseWriter, r *http.Request) {
	var req RecoverPasswordReq
	if err := h.binder.BindJSON(r, &req); err != nil {
		httpx.WriteBindError(w, r, err)
		return
	}

	if err := h.service.RequestPasswordRecovery(r.Context(), req.Email); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		h.log.Error("password recovery failed", "error", err, "request_id", httpx.RequestIDFrom(r))
		httpx.JSONInternalError(w, r)
		return
	}

	httpx.JSON(w, http.StatusOK, message{Msg: "OTP sent to email"})
}

type VerifyOTPReq struct {
	Email       string `json:"email" mod:"trim" validate:"required,email"`
	OTP         string `json:"otp" mod:"trim" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,maxbytes=72"`
}

// VerifyOTP handles POST /auth/verify-otp
// @Summary Reset the password with a recovery code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPReq true "Verification request"
// @Success 200 {object} message
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /auth/verify-otp [post]
func (h *HTTPHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPReq
	if err := h.binder.BindJSON(r, &req); err != nil {
		httpx.WriteBindError(w, r, err)
		return
	}

	if err := h.service.VerifyRecoveryCode(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		if errors.Is(err, recovery.ErrInvalidCode) {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_OTP", "Invalid or expired OTP", nil)
			return
		}
		h.log.Error("otp verification failed", "error", err, "request_id", httpx.RequestIDFrom(r))
		httpx.JSONInternalError(w, r)
		return
	}

	httpx.JSON(w, http.StatusOK, message{Msg: "Password updated successfully"})
}
