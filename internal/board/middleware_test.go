package board

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/clinicflow/internal/workflow"
)

func mintToken(t *testing.T, secret, role string) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func authedRequest(t *testing.T, secret, role string) *httptest.ResponseRecorder {
	t.Helper()
	var gotRole workflow.Role
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole, _ = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+mintToken(t, secret, role))
	}
	rec := httptest.NewRecorder()
	Auth("board-secret")(next).ServeHTTP(rec, req)

	if rec.Code == http.StatusOK && gotRole == "" {
		t.Fatal("role missing from context on success")
	}
	return rec
}

func TestAuthValidToken(t *testing.T) {
	if rec := authedRequest(t, "board-secret", "doctor"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthWrongSecret(t *testing.T) {
	if rec := authedRequest(t, "other-secret", "doctor"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMissingHeader(t *testing.T) {
	if rec := authedRequest(t, "board-secret", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthUnknownRole(t *testing.T) {
	if rec := authedRequest(t, "board-secret", "janitor"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthDisabledWithoutSecret(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	rec := httptest.NewRecorder()
	Auth("")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
