package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heartmarshall/wildlings-backend/pkg/ctxutil"
)

func TestSyncAuth_InternalToken(t *testing.T) {
	validator := &deviceTokenValidatorMock{
		ValidateDeviceTokenFunc: func(token string) (string, error) {
			t.Error("ValidateDeviceToken should not be called for internal-token requests")
			return "", errors.New("should not be called")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.DeviceIDFromCtx(r.Context()); ok {
			t.Error("internal-token requests carry no device id")
		}
		w.WriteHeader(http.StatusOK)
	})

	wrapped := SyncAuth("secret-internal", validator)(handler)

	req := httptest.NewRequest(http.MethodGet, "/sync/pull", nil)
	req.Header.Set("X-Internal-Token", "secret-internal")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestSyncAuth_WrongInternalToken(t *testing.T) {
	validator := &deviceTokenValidatorMock{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for a wrong internal token")
	})

	wrapped := SyncAuth("secret-internal", validator)(handler)

	req := httptest.NewRequest(http.MethodGet, "/sync/pull", nil)
	req.Header.Set("X-Internal-Token", "guess")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestSyncAuth_InternalTokenDisabled(t *testing.T) {
	// An empty configured token disables the static path entirely; even a
	// matching empty header must not pass.
	validator := &deviceTokenValidatorMock{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	wrapped := SyncAuth("", validator)(handler)

	req := httptest.NewRequest(http.MethodGet, "/sync/pull", nil)
	req.Header.Set("X-Internal-Token", "anything")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestSyncAuth_DeviceToken(t *testing.T) {
	validator := &deviceTokenValidatorMock{
		ValidateDeviceTokenFunc: func(token string) (string, error) {
			if token == "valid-token" {
				return "dev-1", nil
			}
			return "", errors.New("invalid token")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID, ok := ctxutil.DeviceIDFromCtx(r.Context())
		if !ok {
			t.Error("expected device id in context")
			return
		}
		if deviceID != "dev-1" {
			t.Errorf("expected device id dev-1, got %s", deviceID)
		}
		w.WriteHeader(http.StatusOK)
	})

	wrapped := SyncAuth("secret-internal", validator)(handler)

	req := httptest.NewRequest(http.MethodPost, "/sync/push", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestSyncAuth_InvalidDeviceToken(t *testing.T) {
	validator := &deviceTokenValidatorMock{
		ValidateDeviceTokenFunc: func(token string) (string, error) {
			return "", errors.New("invalid token")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for an invalid device token")
	})

	wrapped := SyncAuth("secret-internal", validator)(handler)

	req := httptest.NewRequest(http.MethodPost, "/sync/push", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestSyncAuth_NoCredentials(t *testing.T) {
	validator := &deviceTokenValidatorMock{
		ValidateDeviceTokenFunc: func(token string) (string, error) {
			t.Error("ValidateDeviceToken should not be called without a bearer token")
			return "", errors.New("should not be called")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for anonymous requests")
	})

	wrapped := SyncAuth("secret-internal", validator)(handler)

	req := httptest.NewRequest(http.MethodGet, "/sync/pull", nil)
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}

	if len(validator.ValidateDeviceTokenCalls()) > 0 {
		t.Error("ValidateDeviceToken should not be called for anonymous request")
	}
}

func TestExtractBearerToken_Cases(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"empty header", "", ""},
		{"bearer with token", "Bearer valid-token", "valid-token"},
		{"bearer lowercase", "bearer valid-token", "valid-token"},
		{"bearer mixed case", "BEARER valid-token", "valid-token"},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
		{"bearer no space", "Bearertoken", ""},
		{"bearer empty token", "Bearer ", ""},
		{"just bearer", "Bearer", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			got := extractBearerToken(req)
			if got != tc.want {
				t.Errorf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestInternalOnly(t *testing.T) {
	cases := []struct {
		name       string
		configured string
		header     string
		wantStatus int
	}{
		{"matching token", "secret-internal", "secret-internal", http.StatusOK},
		{"wrong token", "secret-internal", "guess", http.StatusForbidden},
		{"missing header", "secret-internal", "", http.StatusForbidden},
		{"gate disabled", "", "anything", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			wrapped := InternalOnly(tc.configured)(handler)

			req := httptest.NewRequest(http.MethodPost, "/devices/register", nil)
			if tc.header != "" {
				req.Header.Set("X-Internal-Token", tc.header)
			}
			rec := httptest.NewRecorder()

			wrapped.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}
