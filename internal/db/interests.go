package db

import (
	"context"

	"github.com/sowhat1234/yazamutforum/internal/models"
)

// CreateInterest records a user's interest in an idea. A second interest for
// the same pair fails with ErrConflict.
func (r *Repository) CreateInterest(ctx context.Context, in *models.Interest) error {
	in.ID = newID()
	in.CreatedAt = r.now().UTC()
	_, err := r.db.ExecContext(ctx, "INSERT INTO interests (id, user_id, idea_id, message, created_at) VALUES (?, ?, ?, ?, ?)",
		in.ID, in.UserID, in.IdeaID, in.Message, formatTime(in.CreatedAt))
	return translate(err)
}

// GetInterest retrieves the interest of a user in an idea.
func (r *Repository) GetInterest(ctx context.Context, userID, ideaID string) (*models.Interest, error) {
	in := &models.Interest{}
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, idea_id, message, created_at
        FROM interests WHERE user_id = ? AND idea_id = ?`, userID, ideaID).
		Scan(&in.ID, &in.UserID, &in.IdeaID, &in.Message, ts(&in.CreatedAt))
	if err != nil {
		return nil, translate(err)
	}
	return in, nil
}

// DeleteInterest removes the interest of a user in an idea.
func (r *Repository) DeleteInterest(ctx context.Context, userID, ideaID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM interests WHERE user_id = ? AND idea_id = ?", userID, ideaID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ListInterestsByIdea returns the interests in an idea with the interested
// users' profiles, newest first.
func (r *Repository) ListInterestsByIdea(ctx context.Context, ideaID string) ([]*models.Interest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT n.id, n.user_id, n.idea_id, n.message, n.created_at, `+authorColumns+`
        FROM interests n JOIN users u ON u.id = n.user_id
        WHERE n.idea_id = ? ORDER BY n.created_at DESC`, ideaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interests := []*models.Interest{}
	for rows.Next() {
		in := &models.Interest{User: &models.Author{}}
		dest := append([]any{&in.ID, &in.UserID, &in.IdeaID, &in.Message, ts(&in.CreatedAt)}, authorDest(in.User)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		interests = append(interests, in)
	}
	return interests, rows.Err()
}

// ListInterestsByUser returns a user's interests with the idea, its author
// and counts, newest first.
func (r *Repository) ListInterestsByUser(ctx context.Context, userID string) ([]*models.Interest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, idea_id, message, created_at
        FROM interests WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	interests := []*models.Interest{}
	for rows.Next() {
		in := &models.Interest{}
		if err := rows.Scan(&in.ID, &in.UserID, &in.IdeaID, &in.Message, ts(&in.CreatedAt)); err != nil {
			rows.Close()
			return nil, err
		}
		interests = append(interests, in)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Loaded after the rows are closed; the pool may hold a single connection.
	for _, in := range interests {
		idea, err := r.GetIdeaSummary(ctx, in.IdeaID)
		if err != nil {
			return nil, err
		}
		in.Idea = idea
	}
	return interests, nil
}
