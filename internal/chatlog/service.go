// Package chatlog archives conversation turns in sqlite so the router can
// feed recent history back into completion requests.
package chatlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one archived conversation turn.
type Entry struct {
	Room    string
	UserID  string
	Role    string
	Content string
}

type Service struct {
	db *sql.DB
}

func New(dbPath string) (*Service, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open chatlog db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Service{db: db}, nil
}

// Append archives one turn. Role is "user" or "assistant".
func (s *Service) Append(ctx context.Context, room, userID, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chatlog (room, user_id, role, content) VALUES (?, ?, ?, ?)`,
		room, userID, role, content)
	if err != nil {
		return fmt.Errorf("append chatlog: %w", err)
	}
	return nil
}

// History returns the last n turns for a room, oldest first.
func (s *Service) History(ctx context.Context, room string, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT room, user_id, role, content FROM (
			SELECT id, room, user_id, role, content
			FROM chatlog WHERE room = ?
			ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, room, n)
	if err != nil {
		return nil, fmt.Errorf("query chatlog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Room, &e.UserID, &e.Role, &e.Content); err != nil {
			return nil, fmt.Errorf("scan chatlog row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Cleanup deletes turns older than the retention window and returns the
// number of rows removed.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().Format("2006-01-02 15:04:05")
	res, err := s.db.ExecContext(ctx, `DELETE FROM chatlog WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup chatlog: %w", err)
	}
	return res.RowsAffected()
}

func (s *Service) Close() error {
	return s.db.Close()
}
