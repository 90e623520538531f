package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gutendex/internal/httpx"
	"gutendex/internal/recovery"
	"gutendex/internal/testutil"
	"gutendex/internal/user"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *fixture) {
	f := newFixture(t)
	return NewHTTPHandler(f.svc, httpx.NewBinder(), slog.New(slog.NewTextHandler(io.Discard, nil))), f
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := testutil.DecodeBody(t, w)
	return body["error"].(map[string]interface{})["message"].(string)
}

func TestHTTPHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(f *fixture)
		expectedStatus int
	}{
		{
			name: "success",
			body: map[string]string{"email": "  mary@example.com ", "password": "password123"},
			setupMock: func(f *fixture) {
				f.users.EXPECT().GetByEmail(gomock.Any(), "mary@example.com").Return(user.User{}, user.ErrNotFound)
				f.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
					u.ID, u.IsActive, u.CreatedAt = "user-1", true, time.Now()
					return nil
				})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate email",
			body: map[string]string{"name": "Mary", "email": "mary@example.com", "password": "password123"},
			setupMock: func(f *fixture) {
				f.users.EXPECT().GetByEmail(gomock.Any(), "mary@example.com").Return(user.User{ID: "user-1"}, nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid email",
			body:           map[string]string{"email": "not-an-email", "password": "password123"},
			setupMock:      func(*fixture) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "short password",
			body:           map[string]string{"email": "mary@example.com", "password": "short"},
			setupMock:      func(*fixture) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "password over 72 bytes",
			body:           map[string]string{"email": "mary@example.com", "password": strings.Repeat("é", 40)},
			setupMock:      func(*fixture) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid json",
			body:           "not json",
			setupMock:      func(*fixture) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, f := newTestHandler(t)
			tt.setupMock(f)

			w := httptest.NewRecorder()
			h.Register(w, testutil.NewRequest(http.MethodPost, "/auth/register", tt.body))
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}

	t.Run("response shape", func(t *testing.T) {
		h, f := newTestHandler(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(user.User{}, user.ErrNotFound)
		f.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
			u.ID, u.IsActive = "user-1", true
			return nil
		})

		w := httptest.NewRecorder()
		h.Register(w, testutil.NewRequest(http.MethodPost, "/auth/register", map[string]string{"name": "Mary", "email": "mary@example.com", "password": "password123"}))
		require.Equal(t, http.StatusCreated, w.Code)

		body := testutil.DecodeBody(t, w)
		assert.Equal(t, "user-1", body["id"])
		assert.Equal(t, "Mary", body["name"])
		assert.Equal(t, "mary@example.com", body["email"])
		assert.Equal(t, true, body["is_active"])
		assert.NotContains(t, body, "password_hash")
	})

	t.Run("duplicate message", func(t *testing.T) {
		h, f := newTestHandler(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(user.User{ID: "user-1"}, nil)

		w := httptest.NewRecorder()
		h.Register(w, testutil.NewRequest(http.MethodPost, "/auth/register", map[string]string{"email": "mary@example.com", "password": "password123"}))
		assert.Equal(t, "Email already registered", errorMessage(t, w))
	})
}

func TestHTTPHandler_Login(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		h, f := newTestHandler(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), "mary@example.com").Return(storedUser(t, "password123"), nil)

		w := httptest.NewRecorder()
		h.Login(w, testutil.NewRequest(http.MethodPost, "/auth/login", map[string]string{"email": "mary@example.com", "password": "password123"}))

		require.Equal(t, http.StatusOK, w.Code)
		body := testutil.DecodeBody(t, w)
		assert.Equal(t, "bearer", body["token_type"])
		assert.NotEmpty(t, body["access_token"])
	})

	t.Run("form with username", func(t *testing.T) {
		h, f := newTestHandler(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), "mary@example.com").Return(storedUser(t, "password123"), nil)

		form := url.Values{"username": {"mary@example.com"}, "password": {"password123"}}
		r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.Login(w, r)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("form without email", func(t *testing.T) {
		h, _ := newTestHandler(t)

		form := url.Values{"password": {"password123"}}
		r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.Login(w, r)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		h, f := newTestHandler(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(user.User{}, user.ErrNotFound)

		w := httptest.NewRecorder()
		h.Login(w, testutil.NewRequest(http.MethodPost, "/auth/login", map[string]string{"email": "nobody@example.com", "password": "password123"}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials", errorMessage(t, w))
	})
}

func TestHTTPHandler_RecoverPassword(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		h, f := newTestHandler(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(user.User{}, user.ErrNotFound)

		w := httptest.NewRecorder()
		h.RecoverPassword(w, testutil.NewRequest(http.MethodPost, "/auth/recover-password", map[string]string{"email": "nobody@example.com"}))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", errorMessage(t, w))
	})

	t.Run("sent", func(t *testing.T) {
		h, f := newTestHandler(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(storedUser(t, "x"), nil)
		f.codes.EXPECT().CreateCode(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.mail.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		h.RecoverPassword(w, testutil.NewRequest(http.MethodPost, "/auth/recover-password", map[string]string{"email": "mary@example.com"}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OTP sent to email", testutil.DecodeBody(t, w)["msg"])
	})
}

func TestHTTPHandler_VerifyOTP(t *testing.T) {
	t.Run("used code", func(t *testing.T) {
		h, f := newTestHandler(t)
		f.codes.EXPECT().Redeem(gomock.Any(), "mary@example.com", "123456", gomock.Any(), gomock.Any()).Return(recovery.ErrInvalidCode)

		w := httptest.NewRecorder()
		h.VerifyOTP(w, testutil.NewRequest(http.MethodPost, "/auth/verify-otp", map[string]string{
			"email": "mary@example.com", "otp": "123456", "new_password": "newpassword",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid or expired OTP", errorMessage(t, w))
	})

	t.Run("malformed code", func(t *testing.T) {
		h, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		h.VerifyOTP(w, testutil.NewRequest(http.MethodPost, "/auth/verify-otp", map[string]string{
			"email": "mary@example.com", "otp": "abc", "new_password": "newpassword",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("password over 72 bytes", func(t *testing.T) {
		h, _ := newTestHandler(t)

		w := httptest.NewRecorder()
		h.VerifyOTP(w, testutil.NewRequest(http.MethodPost, "/auth/verify-otp", map[string]string{
			"email": "mary@example.com", "otp": "123456", "new_password": strings.Repeat("é", 40),
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		h, f := newTestHandler(t)
		f.codes.EXPECT().Redeem(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		h.VerifyOTP(w, testutil.NewRequest(http.MethodPost, "/auth/verify-otp", map[string]string{
			"email": "mary@example.com", "otp": "123456", "new_password": "newpassword",
		}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Password updated successfully", testutil.DecodeBody(t, w)["msg"])
	})
}
