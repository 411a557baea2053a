package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"modguard/model"
	"modguard/utils/database"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
)

type contextKey string

const userContextKey contextKey = "user"

// SetUser stores the authenticated user in the request context.
func SetUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil if the request
// went through no auth middleware.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// JWTAuthMiddleware validates dashboard session tokens and resolves the
// authenticated user from the database.
type JWTAuthMiddleware struct {
	secret []byte
	db     *sqlx.DB
}

func NewJWTAuthMiddleware(secret string, db *sqlx.DB) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{secret: []byte(secret), db: db}
}

// WithAuth wraps an HTTP handler with bearer-token authentication.
func (m *JWTAuthMiddleware) WithAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			writeAuthError(w, "missing bearer token")
			return
		}

		userID, err := m.ValidateToken(token)
		if err != nil {
			log.Printf("[API] Rejected token from %s: %v", r.RemoteAddr, err)
			writeAuthError(w, "invalid token")
			return
		}

		user, err := database.GetUser(m.db, userID)
		if err != nil {
			log.Printf("[API] Error loading user %s: %v", userID, err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if user == nil {
			writeAuthError(w, "unknown user")
			return
		}

		next(w, r.WithContext(SetUser(r.Context(), user)))
	}
}

// ValidateToken parses and verifies a session token and returns the user ID
// it was issued for.
func (m *JWTAuthMiddleware) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}

// BearerToken extracts the token from the Authorization header, falling
// back to the token query parameter for WebSocket clients.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
