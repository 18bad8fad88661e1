package db

import "context"

// RunMigrations runs database migrations.
func (r *Repository) RunMigrations(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL DEFAULT '',
            username TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            image TEXT NOT NULL DEFAULT '',
            bio TEXT NOT NULL DEFAULT '',
            skills TEXT NOT NULL DEFAULT '[]',
            role TEXT NOT NULL DEFAULT 'USER',
            created_at TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS sessions (
            session_id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            expires TEXT NOT NULL,
            FOREIGN KEY (user_id) REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS ideas (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL UNIQUE,
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            category TEXT NOT NULL,
            tags TEXT NOT NULL DEFAULT '[]',
            upvotes INTEGER NOT NULL DEFAULT 0,
            downvotes INTEGER NOT NULL DEFAULT 0,
            wants_team INTEGER NOT NULL DEFAULT 0,
            needed_skills TEXT NOT NULL DEFAULT '[]',
            search_text TEXT NOT NULL DEFAULT '',
            author_id TEXT NOT NULL,
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL,
            FOREIGN KEY (author_id) REFERENCES users(id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_ideas_author ON ideas(author_id)`,
		`CREATE TABLE IF NOT EXISTS votes (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            idea_id TEXT NOT NULL,
            type TEXT NOT NULL CHECK (type IN ('UP', 'DOWN')),
            created_at TEXT NOT NULL,
            UNIQUE (user_id, idea_id),
            FOREIGN KEY (user_id) REFERENCES users(id),
            FOREIGN KEY (idea_id) REFERENCES ideas(id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_votes_idea ON votes(idea_id)`,
		`CREATE TABLE IF NOT EXISTS interests (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            idea_id TEXT NOT NULL,
            message TEXT,
            created_at TEXT NOT NULL,
            UNIQUE (user_id, idea_id),
            FOREIGN KEY (user_id) REFERENCES users(id),
            FOREIGN KEY (idea_id) REFERENCES ideas(id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_interests_idea ON interests(idea_id)`,
		`CREATE TABLE IF NOT EXISTS comments (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL UNIQUE,
            idea_id TEXT NOT NULL,
            author_id TEXT NOT NULL,
            content TEXT NOT NULL,
            parent_id TEXT,
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL,
            FOREIGN KEY (idea_id) REFERENCES ideas(id),
            FOREIGN KEY (author_id) REFERENCES users(id),
            FOREIGN KEY (parent_id) REFERENCES comments(id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_comments_idea ON comments(idea_id)`,
		`CREATE TABLE IF NOT EXISTS categories (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            slug TEXT NOT NULL UNIQUE,
            description TEXT,
            color TEXT NOT NULL DEFAULT '#3b82f6',
            is_active INTEGER NOT NULL DEFAULT 1,
            created_at TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS posts (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL UNIQUE,
            title TEXT NOT NULL,
            content TEXT NOT NULL,
            slug TEXT NOT NULL UNIQUE,
            category_id TEXT NOT NULL,
            author_id TEXT NOT NULL,
            is_pinned INTEGER NOT NULL DEFAULT 0,
            view_count INTEGER NOT NULL DEFAULT 0,
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL,
            FOREIGN KEY (category_id) REFERENCES categories(id),
            FOREIGN KEY (author_id) REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS replies (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL UNIQUE,
            post_id TEXT NOT NULL,
            author_id TEXT NOT NULL,
            content TEXT NOT NULL,
            parent_id TEXT,
            created_at TEXT NOT NULL,
            FOREIGN KEY (post_id) REFERENCES posts(id),
            FOREIGN KEY (author_id) REFERENCES users(id),
            FOREIGN KEY (parent_id) REFERENCES replies(id)
        )`,
		`CREATE TABLE IF NOT EXISTS post_votes (
            id TEXT PRIMARY KEY,
            post_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            type TEXT NOT NULL CHECK (type IN ('UP', 'DOWN')),
            created_at TEXT NOT NULL,
            UNIQUE (post_id, user_id),
            FOREIGN KEY (post_id) REFERENCES posts(id),
            FOREIGN KEY (user_id) REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS reply_votes (
            id TEXT PRIMARY KEY,
            reply_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            type TEXT NOT NULL CHECK (type IN ('UP', 'DOWN')),
            created_at TEXT NOT NULL,
            UNIQUE (reply_id, user_id),
            FOREIGN KEY (reply_id) REFERENCES replies(id),
            FOREIGN KEY (user_id) REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            type TEXT NOT NULL,
            from_user_id TEXT,
            idea_id TEXT,
            comment_id TEXT,
            created_at TEXT NOT NULL,
            is_read INTEGER NOT NULL DEFAULT 0,
            FOREIGN KEY (user_id) REFERENCES users(id),
            FOREIGN KEY (from_user_id) REFERENCES users(id),
            FOREIGN KEY (idea_id) REFERENCES ideas(id),
            FOREIGN KEY (comment_id) REFERENCES comments(id)
        )`,
		`CREATE TABLE IF NOT EXISTS reports (
            id TEXT PRIMARY KEY,
            reporter_id TEXT NOT NULL,
            idea_id TEXT,
            comment_id TEXT,
            reason TEXT NOT NULL,
            created_at TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'open',
            FOREIGN KEY (reporter_id) REFERENCES users(id),
            FOREIGN KEY (idea_id) REFERENCES ideas(id),
            FOREIGN KEY (comment_id) REFERENCES comments(id)
        )`,
	}

	for _, query := range queries {
		if _, err := r.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}
