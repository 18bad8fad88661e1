package db

import (
	"context"

	"github.com/sowhat1234/yazamutforum/internal/models"
)

// CreateNotification creates a new notification
func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = newID()
	n.CreatedAt = r.now().UTC()
	n.IsRead = false
	_, err := r.db.ExecContext(ctx, `INSERT INTO notifications (id, user_id, type, from_user_id, idea_id, comment_id, created_at, is_read)
        VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		n.ID, n.UserID, n.Type, n.FromUserID, n.IdeaID, n.CommentID, formatTime(n.CreatedAt))
	return translate(err)
}

// GetNotification retrieves a notification by ID.
func (r *Repository) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	n := &models.Notification{}
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, type, from_user_id, idea_id, comment_id, created_at, is_read
        FROM notifications WHERE id = ?`, id).
		Scan(&n.ID, &n.UserID, &n.Type, &n.FromUserID, &n.IdeaID, &n.CommentID, ts(&n.CreatedAt), &n.IsRead)
	if err != nil {
		return nil, translate(err)
	}
	return n, nil
}

// ListNotificationsByUser retrieves notifications for a user, newest first
func (r *Repository) ListNotificationsByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, type, from_user_id, idea_id, comment_id, created_at, is_read
        FROM notifications WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifs := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.FromUserID, &n.IdeaID, &n.CommentID, ts(&n.CreatedAt), &n.IsRead)
		if err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// MarkNotificationRead marks a notification as read
func (r *Repository) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE notifications SET is_read = 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
