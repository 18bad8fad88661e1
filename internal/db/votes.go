package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sowhat1234/yazamutforum/internal/models"
)

// counterDelta is the change applied to an idea's vote counters.
type counterDelta struct{ up, down int }

func (d *counterDelta) add(t models.VoteType, n int) {
	if t == models.VoteUp {
		d.up += n
	} else {
		d.down += n
	}
}

// ApplyVote toggles, switches or creates the user's vote on an idea and
// shifts the idea's counters by the matching delta, all in one transaction.
// The counters are never read and rewritten, so concurrent voters on the same
// idea cannot lose each other's updates.
func (r *Repository) ApplyVote(ctx context.Context, ideaID, userID string, voteType models.VoteType) (*models.VoteResult, error) {
	result := &models.VoteResult{}
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var (
			voteID   string
			existing models.VoteType
			delta    counterDelta
		)
		err := tx.QueryRowContext(ctx, "SELECT id, type FROM votes WHERE user_id = ? AND idea_id = ?", userID, ideaID).
			Scan(&voteID, &existing)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, "INSERT INTO votes (id, user_id, idea_id, type, created_at) VALUES (?, ?, ?, ?, ?)",
				newID(), userID, ideaID, string(voteType), formatTime(r.now()))
			if err != nil {
				return translate(err)
			}
			delta.add(voteType, 1)
			result.Action = models.VoteCreated
		case err != nil:
			return err
		case existing == voteType:
			if _, err := tx.ExecContext(ctx, "DELETE FROM votes WHERE id = ?", voteID); err != nil {
				return err
			}
			delta.add(voteType, -1)
			result.Action = models.VoteRemoved
		default:
			if _, err := tx.ExecContext(ctx, "UPDATE votes SET type = ? WHERE id = ?", string(voteType), voteID); err != nil {
				return err
			}
			delta.add(existing, -1)
			delta.add(voteType, 1)
			result.Action = models.VoteUpdated
		}

		res, err := tx.ExecContext(ctx, "UPDATE ideas SET upvotes = upvotes + ?, downvotes = downvotes + ? WHERE id = ?",
			delta.up, delta.down, ideaID)
		if err != nil {
			return err
		}
		if err := expectOne(res); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, "SELECT upvotes, downvotes FROM ideas WHERE id = ?", ideaID).
			Scan(&result.Upvotes, &result.Downvotes)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListVotesByIdea returns the live votes on an idea.
func (r *Repository) ListVotesByIdea(ctx context.Context, ideaID string) ([]*models.Vote, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, idea_id, type, created_at
        FROM votes WHERE idea_id = ? ORDER BY created_at ASC`, ideaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []*models.Vote{}
	for rows.Next() {
		v := &models.Vote{}
		if err := rows.Scan(&v.ID, &v.UserID, &v.IdeaID, &v.Type, ts(&v.CreatedAt)); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// CountVotes tallies the live vote rows of an idea.
func (r *Repository) CountVotes(ctx context.Context, ideaID string) (up, down int, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT
            COUNT(CASE WHEN type = 'UP' THEN 1 END),
            COUNT(CASE WHEN type = 'DOWN' THEN 1 END)
        FROM votes WHERE idea_id = ?`, ideaID).Scan(&up, &down)
	return
}
