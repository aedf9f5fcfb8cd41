package newsletter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no subscriber has the requested email.
var ErrNotFound = errors.New("newsletter: subscriber not found")

// Subscriber is one row of the subscribers table. Timestamps are SQLite
// "YYYY-MM-DD HH:MM:SS" UTC strings; nil means never.
type Subscriber struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	SubscribedAt   string  `json:"subscribed_at"`
	Confirmed      bool    `json:"confirmed"`
	ConfirmedAt    *string `json:"confirmed_at"`
	Unsubscribed   bool    `json:"unsubscribed"`
	UnsubscribedAt *string `json:"unsubscribed_at"`
}

// Filter narrows List. A nil field matches both states.
type Filter struct {
	Confirmed    *bool
	Unsubscribed *bool
}

// Store wraps a SQLite database of newsletter subscribers.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS subscribers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE,
    subscribed_at TEXT NOT NULL DEFAULT (datetime('now')),
    confirmed INTEGER NOT NULL DEFAULT 0,
    confirmed_at TEXT,
    unsubscribed INTEGER NOT NULL DEFAULT 0,
    unsubscribed_at TEXT,
    ip_address TEXT,
    user_agent TEXT,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_subscribers_subscribed_at ON subscribers(subscribed_at);
`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const subscriberColumns = `id, email, subscribed_at, confirmed, confirmed_at, unsubscribed, unsubscribed_at`

// Get returns the subscriber with email or ErrNotFound.
func (s *Store) Get(ctx context.Context, email string) (Subscriber, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE email = ?`, email)
	sub, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Subscriber{}, ErrNotFound
	}
	return sub, err
}

// Add inserts a new subscriber. ip and userAgent may be empty.
func (s *Store) Add(ctx context.Context, email, ip, userAgent string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscribers (email, ip_address, user_agent) VALUES (?, ?, ?)`,
		email, nullString(ip), nullString(userAgent))
	if err != nil {
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

// Resubscribe clears the unsubscribed state of email and restarts its
// subscription date.
func (s *Store) Resubscribe(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE subscribers
SET unsubscribed = 0, unsubscribed_at = NULL, subscribed_at = datetime('now'), updated_at = datetime('now')
WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("resubscribe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Unsubscribe marks email as unsubscribed.
func (s *Store) Unsubscribe(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE subscribers
SET unsubscribed = 1, unsubscribed_at = datetime('now'), updated_at = datetime('now')
WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns subscribers matching f, newest subscription first.
func (s *Store) List(ctx context.Context, f Filter) ([]Subscriber, error) {
	var where []string
	var args []any
	if f.Confirmed != nil {
		where = append(where, "confirmed = ?")
		args = append(args, boolInt(*f.Confirmed))
	}
	if f.Unsubscribed != nil {
		where = append(where, "unsubscribed = ?")
		args = append(args, boolInt(*f.Unsubscribed))
	}

	query := `SELECT ` + subscriberColumns + ` FROM subscribers`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY subscribed_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	subs := []Subscriber{}
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row scanner) (Subscriber, error) {
	var sub Subscriber
	var confirmed, unsubscribed int
	var confirmedAt, unsubscribedAt sql.NullString
	if err := row.Scan(&sub.ID, &sub.Email, &sub.SubscribedAt, &confirmed, &confirmedAt, &unsubscribed, &unsubscribedAt); err != nil {
		return Subscriber{}, err
	}
	sub.Confirmed = confirmed == 1
	sub.Unsubscribed = unsubscribed == 1
	if confirmedAt.Valid {
		sub.ConfirmedAt = &confirmedAt.String
	}
	if unsubscribedAt.Valid {
		sub.UnsubscribedAt = &unsubscribedAt.String
	}
	return sub, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
