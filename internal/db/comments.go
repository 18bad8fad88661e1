package db

import (
	"context"
	"database/sql"

	"github.com/sowhat1234/yazamutforum/internal/models"
)

const commentSelect = `SELECT c.id, c.idea_id, c.author_id, c.content, c.parent_id, c.created_at, c.updated_at, ` +
	authorColumns + ` FROM comments c JOIN users u ON u.id = c.author_id`

func commentDest(c *models.Comment) []any {
	c.Author = &models.Author{}
	dest := []any{&c.ID, &c.IdeaID, &c.AuthorID, &c.Content, &c.ParentID, ts(&c.CreatedAt), ts(&c.UpdatedAt)}
	return append(dest, authorDest(c.Author)...)
}

// CreateComment creates a new comment.
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = newID()
	comment.CreatedAt = r.now().UTC()
	comment.UpdatedAt = comment.CreatedAt
	_, err := r.db.ExecContext(ctx, `INSERT INTO comments (id, idea_id, author_id, content, parent_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID, comment.IdeaID, comment.AuthorID, comment.Content, comment.ParentID,
		formatTime(comment.CreatedAt), formatTime(comment.UpdatedAt))
	return translate(err)
}

// GetCommentByID returns a comment with its author.
func (r *Repository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	c := &models.Comment{}
	if err := r.db.QueryRowContext(ctx, commentSelect+" WHERE c.id = ?", id).Scan(commentDest(c)...); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (r *Repository) queryComments(ctx context.Context, query string, args ...any) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(commentDest(c)...); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ListCommentsByIdea returns the top-level comments of an idea in creation
// order, each carrying its replies in creation order.
func (r *Repository) ListCommentsByIdea(ctx context.Context, ideaID string) ([]*models.Comment, error) {
	all, err := r.queryComments(ctx, commentSelect+" WHERE c.idea_id = ? ORDER BY c.seq ASC", ideaID)
	if err != nil {
		return nil, err
	}
	return nestComments(all), nil
}

// ListReplies returns the replies of a comment in creation order.
func (r *Repository) ListReplies(ctx context.Context, parentID string) ([]*models.Comment, error) {
	return r.queryComments(ctx, commentSelect+" WHERE c.parent_id = ? ORDER BY c.seq ASC", parentID)
}

// nestComments attaches replies to their parents. Input must be in creation
// order, so parents always precede their replies.
func nestComments(all []*models.Comment) []*models.Comment {
	top := []*models.Comment{}
	byID := make(map[string]*models.Comment, len(all))
	for _, c := range all {
		if c.ParentID == nil {
			c.Replies = []*models.Comment{}
			top = append(top, c)
			byID[c.ID] = c
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
		}
	}
	return top
}

// UpdateComment updates the comment text and updated_at
func (r *Repository) UpdateComment(ctx context.Context, id, content string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE comments SET content = ?, updated_at = ? WHERE id = ?",
		content, formatTime(r.now()), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// DeleteComment deletes a comment and its replies.
func (r *Repository) DeleteComment(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		const family = "SELECT id FROM comments WHERE id = ? OR parent_id = ?"
		for _, stmt := range []string{
			"DELETE FROM notifications WHERE comment_id IN (" + family + ")",
			"DELETE FROM reports WHERE comment_id IN (" + family + ")",
		} {
			if _, err := tx.ExecContext(ctx, stmt, id, id); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE parent_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
		if err != nil {
			return err
		}
		return expectOne(res)
	})
}

// CountComments returns the number of comments (replies included) on an idea.
func (r *Repository) CountComments(ctx context.Context, ideaID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments WHERE idea_id = ?", ideaID).Scan(&n)
	return n, err
}
