package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sowhat1234/yazamutforum/internal/models"
)

const postColumns = `p.id, p.title, p.content, p.slug, p.category_id, p.author_id, p.is_pinned, p.view_count,
    p.created_at, p.updated_at`

func postDest(p *models.Post) []any {
	return []any{&p.ID, &p.Title, &p.Content, &p.Slug, &p.CategoryID, &p.AuthorID, &p.IsPinned, &p.ViewCount,
		ts(&p.CreatedAt), ts(&p.UpdatedAt)}
}

// CreatePost creates a new post.
func (r *Repository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = newID()
	post.CreatedAt = r.now().UTC()
	post.UpdatedAt = post.CreatedAt
	_, err := r.db.ExecContext(ctx, `INSERT INTO posts (id, title, content, slug, category_id, author_id, is_pinned, view_count, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		post.ID, post.Title, post.Content, post.Slug, post.CategoryID, post.AuthorID, boolInt(post.IsPinned),
		formatTime(post.CreatedAt), formatTime(post.UpdatedAt))
	return translate(err)
}

// PostSlugExists checks if a post with the slug exists.
func (r *Repository) PostSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM posts WHERE slug = ?)", slug).Scan(&exists)
	return exists, err
}

// GetPostByID retrieves a post by ID.
func (r *Repository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	p := &models.Post{}
	if err := r.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts p WHERE p.id = ?", id).Scan(postDest(p)...); err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// GetPostBySlug retrieves a post with its author.
func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*models.PostDetail, error) {
	d := &models.PostDetail{}
	dest := append(postDest(&d.Post), authorDest(&d.Author)...)
	err := r.db.QueryRowContext(ctx, "SELECT "+postColumns+", "+authorColumns+`
        FROM posts p JOIN users u ON u.id = p.author_id WHERE p.slug = ?`, slug).Scan(dest...)
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

// IncrementPostViews bumps the view counter of a post by one.
func (r *Repository) IncrementPostViews(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE posts SET view_count = view_count + 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// SetPostPinned pins or unpins a post.
func (r *Repository) SetPostPinned(ctx context.Context, id string, pinned bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE posts SET is_pinned = ?, updated_at = ? WHERE id = ?",
		boolInt(pinned), formatTime(r.now()), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ListPosts returns up to limit posts, pinned first and newest first,
// starting strictly after the post afterID when it is set.
func (r *Repository) ListPosts(ctx context.Context, categoryID, afterID string, limit int) ([]*models.PostSummary, error) {
	query := "SELECT " + postColumns + ", " + authorColumns + `,
        c.id, c.name, c.slug, c.color,
        (SELECT COUNT(*) FROM replies x WHERE x.post_id = p.id),
        (SELECT COUNT(*) FROM post_votes v WHERE v.post_id = p.id)
    FROM posts p
    JOIN users u ON u.id = p.author_id
    JOIN categories c ON c.id = p.category_id
    WHERE 1 = 1`
	var args []any

	if afterID != "" {
		var (
			pinned bool
			seq    int64
		)
		err := r.db.QueryRowContext(ctx, "SELECT is_pinned, seq FROM posts WHERE id = ?", afterID).Scan(&pinned, &seq)
		if err != nil {
			return nil, translate(err)
		}
		query += " AND (p.is_pinned < ? OR (p.is_pinned = ? AND p.seq < ?))"
		args = append(args, boolInt(pinned), boolInt(pinned), seq)
	}
	if categoryID != "" {
		query += " AND p.category_id = ?"
		args = append(args, categoryID)
	}
	query += " ORDER BY p.is_pinned DESC, p.seq DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.PostSummary{}
	for rows.Next() {
		s := &models.PostSummary{Author: &models.Author{}, Category: &models.Category{}}
		dest := append(postDest(&s.Post), authorDest(s.Author)...)
		dest = append(dest, &s.Category.ID, &s.Category.Name, &s.Category.Slug, &s.Category.Color,
			&s.Count.Replies, &s.Count.Votes)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		s.Category.IsActive = true
		posts = append(posts, s)
	}
	return posts, rows.Err()
}

// GetLatestPostByAuthor returns the author's most recent post.
func (r *Repository) GetLatestPostByAuthor(ctx context.Context, authorID string) (*models.Post, error) {
	p := &models.Post{}
	err := r.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts p WHERE p.author_id = ? ORDER BY p.seq DESC LIMIT 1",
		authorID).Scan(postDest(p)...)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// CreateReply adds a reply to a post.
func (r *Repository) CreateReply(ctx context.Context, reply *models.Reply) error {
	reply.ID = newID()
	reply.CreatedAt = r.now().UTC()
	_, err := r.db.ExecContext(ctx, "INSERT INTO replies (id, post_id, author_id, content, parent_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		reply.ID, reply.PostID, reply.AuthorID, reply.Content, reply.ParentID, formatTime(reply.CreatedAt))
	return translate(err)
}

// GetReply returns a reply without relations.
func (r *Repository) GetReply(ctx context.Context, id string) (*models.Reply, error) {
	x := &models.Reply{}
	err := r.db.QueryRowContext(ctx, "SELECT id, post_id, author_id, content, parent_id, created_at FROM replies WHERE id = ?", id).
		Scan(&x.ID, &x.PostID, &x.AuthorID, &x.Content, &x.ParentID, ts(&x.CreatedAt))
	if err != nil {
		return nil, translate(err)
	}
	return x, nil
}

// ListRepliesByPost returns top-level replies in creation order with their
// children and the votes on every reply.
func (r *Repository) ListRepliesByPost(ctx context.Context, postID string) ([]*models.Reply, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT x.id, x.post_id, x.author_id, x.content, x.parent_id, x.created_at, `+authorColumns+`
        FROM replies x JOIN users u ON u.id = x.author_id
        WHERE x.post_id = ? ORDER BY x.seq ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := []*models.Reply{}
	byID := map[string]*models.Reply{}
	for rows.Next() {
		x := &models.Reply{Author: &models.Author{}, Votes: []*models.ReplyVote{}}
		dest := append([]any{&x.ID, &x.PostID, &x.AuthorID, &x.Content, &x.ParentID, ts(&x.CreatedAt)}, authorDest(x.Author)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if x.ParentID == nil {
			x.Children = []*models.Reply{}
			top = append(top, x)
		} else if parent, ok := byID[*x.ParentID]; ok {
			parent.Children = append(parent.Children, x)
		} else {
			continue
		}
		byID[x.ID] = x
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	votes, err := r.db.QueryContext(ctx, `SELECT v.id, v.reply_id, v.user_id, v.type, v.created_at
        FROM reply_votes v JOIN replies x ON x.id = v.reply_id
        WHERE x.post_id = ? ORDER BY v.created_at ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer votes.Close()
	for votes.Next() {
		v := &models.ReplyVote{}
		if err := votes.Scan(&v.ID, &v.ReplyID, &v.UserID, &v.Type, ts(&v.CreatedAt)); err != nil {
			return nil, err
		}
		if x, ok := byID[v.ReplyID]; ok {
			x.Votes = append(x.Votes, v)
		}
	}
	return top, votes.Err()
}

// ListPostVotes returns the live votes on a post.
func (r *Repository) ListPostVotes(ctx context.Context, postID string) ([]*models.PostVote, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, post_id, user_id, type, created_at FROM post_votes WHERE post_id = ? ORDER BY created_at ASC", postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []*models.PostVote{}
	for rows.Next() {
		v := &models.PostVote{}
		if err := rows.Scan(&v.ID, &v.PostID, &v.UserID, &v.Type, ts(&v.CreatedAt)); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// ApplyPostVote toggles, switches or creates a user's vote on a post. Posts
// keep no counters; the tallies are counted from the live rows.
func (r *Repository) ApplyPostVote(ctx context.Context, postID, userID string, voteType models.VoteType) (*models.PostVoteResult, error) {
	return r.applyTallyVote(ctx, "post_votes", "post_id", postID, userID, voteType)
}

// ApplyReplyVote is ApplyPostVote for a reply.
func (r *Repository) ApplyReplyVote(ctx context.Context, replyID, userID string, voteType models.VoteType) (*models.PostVoteResult, error) {
	return r.applyTallyVote(ctx, "reply_votes", "reply_id", replyID, userID, voteType)
}

// applyTallyVote runs the vote toggle against table, whose target column is
// col. Both names are constants of this package.
func (r *Repository) applyTallyVote(ctx context.Context, table, col, targetID, userID string, voteType models.VoteType) (*models.PostVoteResult, error) {
	result := &models.PostVoteResult{}
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var (
			voteID   string
			existing models.VoteType
		)
		err := tx.QueryRowContext(ctx, "SELECT id, type FROM "+table+" WHERE "+col+" = ? AND user_id = ?", targetID, userID).
			Scan(&voteID, &existing)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, "INSERT INTO "+table+" (id, "+col+", user_id, type, created_at) VALUES (?, ?, ?, ?, ?)",
				newID(), targetID, userID, string(voteType), formatTime(r.now()))
			if err != nil {
				return translate(err)
			}
			result.Action = models.VoteCreated
		case err != nil:
			return err
		case existing == voteType:
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", voteID); err != nil {
				return err
			}
			result.Action = models.VoteRemoved
		default:
			if _, err := tx.ExecContext(ctx, "UPDATE "+table+" SET type = ? WHERE id = ?", string(voteType), voteID); err != nil {
				return err
			}
			result.Action = models.VoteUpdated
		}
		return tx.QueryRowContext(ctx, `SELECT
                COUNT(CASE WHEN type = 'UP' THEN 1 END),
                COUNT(CASE WHEN type = 'DOWN' THEN 1 END)
            FROM `+table+` WHERE `+col+` = ?`, targetID).Scan(&result.Upvotes, &result.Downvotes)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
