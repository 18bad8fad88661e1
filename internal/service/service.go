// Package service holds the forum's business rules: validation, ownership
// and role checks, vote and interest accounting, pagination and
// notifications. Handlers call it; it calls the repository.
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/sowhat1234/yazamutforum/internal/apperr"
	"github.com/sowhat1234/yazamutforum/internal/db"
	"github.com/sowhat1234/yazamutforum/internal/models"
)

// Page size bounds for cursor lists.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Services bundles the per-entity services over one repository.
type Services struct {
	Ideas         *IdeaService
	Comments      *CommentService
	Categories    *CategoryService
	Posts         *PostService
	Notifications *NotificationService
	Reports       *ReportService
	Users         *UserService
}

// New wires every service to repo.
func New(repo *db.Repository, logger *log.Logger) *Services {
	n := &NotificationService{repo: repo, log: logger}
	return &Services{
		Ideas:         &IdeaService{repo: repo, log: logger, notify: n},
		Comments:      &CommentService{repo: repo, log: logger, notify: n},
		Categories:    &CategoryService{repo: repo, log: logger},
		Posts:         &PostService{repo: repo, log: logger},
		Notifications: n,
		Reports:       &ReportService{repo: repo, log: logger},
		Users:         &UserService{repo: repo, log: logger},
	}
}

// lookup converts a repository error from a single-entity read or write.
func lookup(err error, notFound string) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFoundf("%s", notFound)
	}
	return internal(err)
}

func internal(err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e
	}
	return apperr.Wrap(err, "internal server error")
}

// requireAdmin checks the caller's stored role.
func requireAdmin(ctx context.Context, repo *db.Repository, userID, message string) error {
	role, err := repo.GetUserRole(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.Forbiddenf("%s", message)
	}
	if err != nil {
		return internal(err)
	}
	if role != models.RoleAdmin {
		return apperr.Forbiddenf("%s", message)
	}
	return nil
}

func resolveLimit(limit *int) (int, error) {
	if limit == nil {
		return DefaultLimit, nil
	}
	if *limit < 1 || *limit > MaxLimit {
		return 0, apperr.BadRequestf("limit must be between 1 and %d", MaxLimit)
	}
	return *limit, nil
}

// paginate trims a limit+1 result to limit items and reports the cursor for
// the following page, which is the id of the last item returned.
func paginate[T any](items []T, limit int, id func(T) string) ([]T, *string) {
	if len(items) <= limit {
		return items, nil
	}
	items = items[:limit]
	next := id(items[len(items)-1])
	return items, &next
}

// cursorErr maps an unknown cursor onto BadRequest.
func cursorErr(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperr.BadRequestf("invalid cursor")
	}
	return internal(err)
}

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		if min == 1 {
			return apperr.BadRequestf("%s is required", field)
		}
		return apperr.BadRequestf("%s must be at least %d characters", field, min)
	}
	if max > 0 && n > max {
		return apperr.BadRequestf("%s must be at most %d characters", field, max)
	}
	return nil
}

// cleanList trims entries and drops empty ones.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// conflictOr maps a unique violation onto Conflict and a missing row onto
// NotFound.
func conflictOr(err error, conflict, notFound string) error {
	if errors.Is(err, db.ErrConflict) {
		return apperr.Conflictf("%s", conflict)
	}
	return lookup(err, notFound)
}
