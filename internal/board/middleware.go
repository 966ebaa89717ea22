package board

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/clinicflow/internal/workflow"
)

type contextKey string

const roleKey contextKey = "boardRole"

// Claims are the JWT claims board tokens carry.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth enforces an HMAC-signed JWT with a known role claim on board
// endpoints and stores the role in the request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, `{"error": "board auth disabled"}`, http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, `{"error": "missing authorization header"}`, http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := Claims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, `{"error": "invalid token"}`, http.StatusUnauthorized)
				return
			}
			role, ok := workflow.ParseRole(claims.Role)
			if !ok {
				http.Error(w, `{"error": "unknown role"}`, http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleFromContext returns the authenticated role if present.
func RoleFromContext(ctx context.Context) (workflow.Role, bool) {
	role, ok := ctx.Value(roleKey).(workflow.Role)
	return role, ok
}
