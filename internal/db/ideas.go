package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sowhat1234/yazamutforum/internal/models"
)

const ideaColumns = `i.id, i.title, i.description, i.category, i.tags, i.upvotes, i.downvotes,
    i.wants_team, i.needed_skills, i.author_id, i.created_at, i.updated_at`

func ideaDest(i *models.Idea) []any {
	return []any{&i.ID, &i.Title, &i.Description, &i.Category, list(&i.Tags), &i.Upvotes, &i.Downvotes,
		&i.WantsTeam, list(&i.NeededSkills), &i.AuthorID, ts(&i.CreatedAt), ts(&i.UpdatedAt)}
}

// summarySelect lists ideas with their author and relation counts.
const summarySelect = `SELECT ` + ideaColumns + `, ` + authorColumns + `,
    (SELECT COUNT(*) FROM comments c WHERE c.idea_id = i.id),
    (SELECT COUNT(*) FROM votes v WHERE v.idea_id = i.id),
    (SELECT COUNT(*) FROM interests n WHERE n.idea_id = i.id)
FROM ideas i JOIN users u ON u.id = i.author_id`

func summaryDest(s *models.IdeaSummary) []any {
	s.Author = &models.Author{}
	dest := ideaDest(&s.Idea)
	dest = append(dest, authorDest(s.Author)...)
	return append(dest, &s.Count.Comments, &s.Count.Votes, &s.Count.Interests)
}

// CreateIdea inserts an idea with zeroed vote counters.
func (r *Repository) CreateIdea(ctx context.Context, idea *models.Idea) error {
	idea.ID = newID()
	idea.Upvotes, idea.Downvotes = 0, 0
	idea.CreatedAt = r.now().UTC()
	idea.UpdatedAt = idea.CreatedAt
	if idea.Tags == nil {
		idea.Tags = []string{}
	}
	if idea.NeededSkills == nil {
		idea.NeededSkills = []string{}
	}

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO ideas (id, title, description, category, tags, wants_team, needed_skills, search_text, author_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		idea.ID, idea.Title, idea.Description, string(idea.Category), encodeList(idea.Tags),
		boolInt(idea.WantsTeam), encodeList(idea.NeededSkills),
		searchText(idea.Title, idea.Description, idea.Tags), idea.AuthorID,
		formatTime(idea.CreatedAt), formatTime(idea.UpdatedAt))
	return translate(err)
}

// searchText is the lower-cased text idea search matches against. SQLite's
// LOWER only folds ASCII, so folding happens here.
func searchText(title, description string, tags []string) string {
	parts := append([]string{title, description}, tags...)
	return strings.ToLower(strings.Join(parts, "\x00"))
}

// GetIdea retrieves an idea by ID.
func (r *Repository) GetIdea(ctx context.Context, id string) (*models.Idea, error) {
	idea := &models.Idea{}
	err := r.db.QueryRowContext(ctx, `SELECT `+ideaColumns+` FROM ideas i WHERE i.id = ?`, id).
		Scan(ideaDest(idea)...)
	if err != nil {
		return nil, translate(err)
	}
	return idea, nil
}

// GetIdeaSummary retrieves an idea with author and counts.
func (r *Repository) GetIdeaSummary(ctx context.Context, id string) (*models.IdeaSummary, error) {
	s := &models.IdeaSummary{}
	err := r.db.QueryRowContext(ctx, summarySelect+` WHERE i.id = ?`, id).Scan(summaryDest(s)...)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// GetIdeaWithAuthor retrieves an idea and its author's full profile.
func (r *Repository) GetIdeaWithAuthor(ctx context.Context, id string) (*models.IdeaDetail, error) {
	d := &models.IdeaDetail{}
	dest := append(ideaDest(&d.Idea), authorDest(&d.Author)...)
	err := r.db.QueryRowContext(ctx, `SELECT `+ideaColumns+`, `+authorColumns+`
        FROM ideas i JOIN users u ON u.id = i.author_id WHERE i.id = ?`, id).Scan(dest...)
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

// ListIdeas returns up to limit ideas newest first, starting strictly after
// the idea afterID when it is set.
func (r *Repository) ListIdeas(ctx context.Context, f models.IdeaFilter, afterID string, limit int) ([]*models.IdeaSummary, error) {
	var (
		where []string
		args  []any
	)
	if afterID != "" {
		var seq int64
		err := r.db.QueryRowContext(ctx, "SELECT seq FROM ideas WHERE id = ?", afterID).Scan(&seq)
		if err != nil {
			return nil, translate(err)
		}
		where = append(where, "i.seq < ?")
		args = append(args, seq)
	}
	if f.Category != "" {
		where = append(where, "i.category = ?")
		args = append(args, string(f.Category))
	}
	if f.WantsTeam != nil {
		where = append(where, "i.wants_team = ?")
		args = append(args, boolInt(*f.WantsTeam))
	}
	if f.AuthorID != "" {
		where = append(where, "i.author_id = ?")
		args = append(args, f.AuthorID)
	}
	if f.Search != "" {
		where = append(where, `i.search_text LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.Search))
	}

	query := summarySelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY i.seq DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ideas := []*models.IdeaSummary{}
	for rows.Next() {
		s := &models.IdeaSummary{}
		if err := rows.Scan(summaryDest(s)...); err != nil {
			return nil, err
		}
		ideas = append(ideas, s)
	}
	return ideas, rows.Err()
}

// UpdateIdea applies the non-nil fields of patch.
func (r *Repository) UpdateIdea(ctx context.Context, id string, patch models.IdeaPatch) error {
	var (
		set  []string
		args []any
	)
	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Category != nil {
		set = append(set, "category = ?")
		args = append(args, string(*patch.Category))
	}
	if patch.Tags != nil {
		set = append(set, "tags = ?")
		args = append(args, encodeList(*patch.Tags))
	}
	if patch.WantsTeam != nil {
		set = append(set, "wants_team = ?")
		args = append(args, boolInt(*patch.WantsTeam))
	}
	if patch.NeededSkills != nil {
		set = append(set, "needed_skills = ?")
		args = append(args, encodeList(*patch.NeededSkills))
	}
	set = append(set, "updated_at = ?")
	args = append(args, formatTime(r.now()), id)

	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE ideas SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return translate(err)
		}
		if err := expectOne(res); err != nil {
			return err
		}

		var (
			title, description string
			tags               []string
		)
		err = tx.QueryRowContext(ctx, "SELECT title, description, tags FROM ideas WHERE id = ?", id).
			Scan(&title, &description, list(&tags))
		if err != nil {
			return translate(err)
		}
		_, err = tx.ExecContext(ctx, "UPDATE ideas SET search_text = ? WHERE id = ?",
			searchText(title, description, tags), id)
		return err
	})
}

// DeleteIdea deletes an idea and everything attached to it.
func (r *Repository) DeleteIdea(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		// Order is important due to foreign keys
		stmts := []string{
			"DELETE FROM notifications WHERE idea_id = ? OR comment_id IN (SELECT id FROM comments WHERE idea_id = ?)",
			"DELETE FROM reports WHERE idea_id = ? OR comment_id IN (SELECT id FROM comments WHERE idea_id = ?)",
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, id, id); err != nil {
				return err
			}
		}
		for _, stmt := range []string{
			"DELETE FROM comments WHERE idea_id = ? AND parent_id IS NOT NULL",
			"DELETE FROM comments WHERE idea_id = ?",
			"DELETE FROM votes WHERE idea_id = ?",
			"DELETE FROM interests WHERE idea_id = ?",
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM ideas WHERE id = ?", id)
		if err != nil {
			return err
		}
		return expectOne(res)
	})
}
