package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"

	"github.com/sowhat1234/yazamutforum/internal/db"
	"github.com/sowhat1234/yazamutforum/internal/models"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

// Claims are the identity claims issued by the auth provider.
type Claims struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Image    string `json:"image"`
	jwt.StandardClaims
}

// Identify resolves the caller from a bearer token or the session cookie and
// stores the user id and stored role in the request context. Requests without
// valid credentials pass through anonymously.
func Identify(repo *db.Repository, jwtSecret, sessionCookie string, logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID, err := resolve(r, repo, jwtSecret, sessionCookie)
			if err != nil {
				logger.Printf("identity rejected: %v", err)
			}
			if userID != "" {
				role, err := repo.GetUserRole(ctx, userID)
				if err != nil {
					logger.Printf("role lookup for %s failed: %v", userID, err)
					role = models.RoleUser
				}
				ctx = WithUser(ctx, userID, role)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolve(r *http.Request, repo *db.Repository, jwtSecret, sessionCookie string) (string, error) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		claims, err := ParseToken(strings.TrimPrefix(header, "Bearer "), jwtSecret)
		if err != nil {
			return "", err
		}
		user := &models.User{
			ID:       claims.UserID,
			Name:     claims.Name,
			Username: claims.Username,
			Email:    claims.Email,
			Image:    claims.Image,
		}
		if err := repo.UpsertUser(r.Context(), user); err != nil {
			return "", fmt.Errorf("upsert user %s: %w", user.ID, err)
		}
		return user.ID, nil
	}

	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", nil
	}
	session, err := repo.GetSession(r.Context(), cookie.Value)
	if err != nil {
		return "", fmt.Errorf("session: %w", err)
	}
	return session.UserID, nil
}

// ParseToken verifies an HS256 token and returns its claims. The user id is
// taken from user_id, falling back to sub.
func ParseToken(tokenString, secret string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("bearer tokens are disabled")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %v", err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token carries no user id")
	}
	return claims, nil
}

// WithUser returns ctx carrying the caller's identity.
func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// UserIDFromContext returns the caller's user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// RoleFromContext returns the caller's stored role, if any.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}
