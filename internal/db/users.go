package db

import (
	"context"
	"strings"

	"github.com/sowhat1234/yazamutforum/internal/models"
)

// UpsertUser inserts the user or refreshes the profile fields the auth
// provider owns. Role, bio and skills of an existing row are left alone.
func (r *Repository) UpsertUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}
	user.Email = strings.ToLower(user.Email)

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO users (id, name, username, email, image, bio, skills, role, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            username = excluded.username,
            email = excluded.email,
            image = excluded.image`,
		user.ID, user.Name, user.Username, user.Email, user.Image, user.Bio,
		encodeList(user.Skills), user.Role, formatTime(user.CreatedAt))
	return translate(err)
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, name, username, email, image, bio, skills, role, created_at
        FROM users WHERE id = ?`, userID).
		Scan(&user.ID, &user.Name, &user.Username, &user.Email, &user.Image, &user.Bio,
			list(&user.Skills), &user.Role, ts(&user.CreatedAt))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// GetUserRole returns the stored role of a user.
func (r *Repository) GetUserRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := r.db.QueryRowContext(ctx, "SELECT role FROM users WHERE id = ?", userID).Scan(&role)
	if err != nil {
		return "", translate(err)
	}
	return role, nil
}

// SetUserRole changes the stored role of a user.
func (r *Repository) SetUserRole(ctx context.Context, userID, role string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET role = ? WHERE id = ?", role, userID)
	if err != nil {
		return translate(err)
	}
	return expectOne(res)
}

// CreateSession stores a session issued by the auth provider.
func (r *Repository) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO sessions (session_id, user_id, expires) VALUES (?, ?, ?)",
		session.SessionID, session.UserID, formatTime(session.Expires))
	return translate(err)
}

// GetSession retrieves an unexpired session by ID.
func (r *Repository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, "SELECT session_id, user_id, expires FROM sessions WHERE session_id = ? AND expires > ?",
		sessionID, formatTime(r.now())).Scan(&session.SessionID, &session.UserID, ts(&session.Expires))
	if err != nil {
		return nil, translate(err)
	}
	return session, nil
}

// CleanExpiredSessions deletes all expired sessions
func (r *Repository) CleanExpiredSessions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires < ?", formatTime(r.now()))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// authorColumns must stay in the order authorDest scans them.
const authorColumns = "u.id, u.name, u.username, u.image, u.skills, u.bio, u.role"

func authorDest(a *models.Author) []any {
	return []any{&a.ID, &a.Name, &a.Username, &a.Image, list(&a.Skills), &a.Bio, &a.Role}
}
