package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/sowhat1234/yazamutforum/internal/config"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("db: not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("db: unique constraint violated")
)

// Repository provides methods for working with the database.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository opens the configured database and checks the connection.
func NewRepository(cfg *config.Config) (*Repository, error) {
	var (
		conn *sql.DB
		err  error
	)
	switch cfg.Database.Driver {
	case "libsql":
		dsn := cfg.Database.URL
		if cfg.Database.Token != "" {
			dsn = fmt.Sprintf("%s?authToken=%s", dsn, cfg.Database.Token)
		}
		conn, err = sql.Open("libsql", dsn)
	case "", "sqlite3":
		conn, err = sql.Open("sqlite3", sqliteDSN(cfg.Database.Path))
		if err == nil && isMemory(cfg.Database.Path) {
			// Every connection to :memory: is a separate database.
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Repository{db: conn, now: time.Now}, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || path == "file::memory:"
}

// sqliteDSN enables foreign keys and takes the write lock at BEGIN so that
// concurrent vote transactions queue instead of failing with SQLITE_BUSY.
func sqliteDSN(path string) string {
	const params = "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	if isMemory(path) {
		return "file::memory:?" + params
	}
	return "file:" + path + "?" + params
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func newID() string {
	return uuid.NewString()
}

// inTx runs fn in a transaction, committing when fn returns nil.
func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	// libsql reports constraint failures as plain text.
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// timeLayout is fixed width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestamp scans the text timestamps written by formatTime. Drivers that
// already decode DATETIME columns hand over a time.Time.
type timestamp struct{ t *time.Time }

func ts(t *time.Time) timestamp { return timestamp{t} }

func (s timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.t = time.Time{}
		return nil
	case time.Time:
		*s.t = v.UTC()
		return nil
	case []byte:
		return s.parse(string(v))
	case string:
		return s.parse(v)
	}
	return fmt.Errorf("timestamp: unsupported type %T", src)
}

func (s timestamp) parse(v string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			*s.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("timestamp: cannot parse %q", v)
}

// stringList scans a JSON array column into a string slice.
type stringList struct{ v *[]string }

func list(v *[]string) stringList { return stringList{v} }

func (l stringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l.v = []string{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("stringList: unsupported type %T", src)
	}
	out := []string{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("stringList: %w", err)
		}
	}
	*l.v = out
	return nil
}

func encodeList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// likePattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '\'.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
