package httpx

import (
	"net/http"
	"strings"

	"gutendex/internal/platform/crypto"
)

const credentialsMessage = "Could not validate credentials"

// AuthMiddleware requires a valid bearer token. Every failure (missing header,
// bad signature, expiry, missing subject) gets the same 401.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				Unauthorized(w, r)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				Unauthorized(w, r)
				return
			}

			ctx := ContextWithUser(r.Context(), claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func Unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", credentialsMessage, nil)
}
