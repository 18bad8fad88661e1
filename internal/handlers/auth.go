package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/sowhat1234/yazamutforum/internal/service"
)

// AuthHandler exposes the identity the auth provider established for the
// request. Sign-in itself happens outside this service.
type AuthHandler struct {
	users *service.UserService
	log   *log.Logger
}

func NewAuthHandler(users *service.UserService, log *log.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

func (h *AuthHandler) Register(rt *Router) {
	rt.Query("auth.getSession", h.Session)
}

// Session returns the caller's profile, or null for anonymous callers.
func (h *AuthHandler) Session(ctx context.Context, userID string, _ json.RawMessage) (any, error) {
	user, err := h.users.Me(ctx, userID)
	if err != nil || user == nil {
		return nil, err
	}
	return user, nil
}

// Pinger is satisfied by the repository.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the database answers.
func Health(db Pinger, log *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			log.Printf("health check failed: %v", err)
			writeJSON(w, log, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	}
}
