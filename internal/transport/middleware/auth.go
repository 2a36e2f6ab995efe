package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/heartmarshall/wildlings-backend/pkg/ctxutil"
)

type deviceTokenValidator interface {
	ValidateDeviceToken(token string) (string, error)
}

// SyncAuth gates the sync endpoints. Two credentials are accepted:
//
//   - the shared internal token via the X-Internal-Token header, for
//     trusted first-party clients (disabled when internalToken is empty);
//   - a device bearer token issued at registration, which also places
//     the device id in the request context.
//
// Anything else is refused with 403 before any handler logic runs.
func SyncAuth(internalToken string, validator deviceTokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := r.Header.Get("X-Internal-Token"); tok != "" {
				if internalToken != "" &&
					subtle.ConstantTimeCompare([]byte(tok), []byte(internalToken)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
				forbidden(w)
				return
			}

			token := extractBearerToken(r)
			if token == "" {
				forbidden(w)
				return
			}
			deviceID, err := validator.ValidateDeviceToken(token)
			if err != nil {
				forbidden(w)
				return
			}

			ctx := ctxutil.WithDeviceID(r.Context(), deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InternalOnly admits only callers presenting the shared internal token.
// Device tokens are not accepted: the registration endpoint sits behind
// this gate, and a device must not be able to mint tokens for another.
func InternalOnly(internalToken string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := r.Header.Get("X-Internal-Token")
			if internalToken == "" || tok == "" ||
				subtle.ConstantTimeCompare([]byte(tok), []byte(internalToken)) != 1 {
				forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forbidden(w http.ResponseWriter) {
	http.Error(w, "forbidden", http.StatusForbidden)
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
