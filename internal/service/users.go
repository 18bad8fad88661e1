package service

import (
	"context"
	"errors"
	"log"

	"github.com/sowhat1234/yazamutforum/internal/db"
	"github.com/sowhat1234/yazamutforum/internal/models"
)

// UserService exposes the caller's own profile.
type UserService struct {
	repo *db.Repository
	log  *log.Logger
}

// Me returns the caller's profile, or nil for anonymous callers and users
// the auth provider never synced.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, nil
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal(err)
	}
	return user, nil
}
