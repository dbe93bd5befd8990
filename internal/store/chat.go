package store

import (
	"context"
	"fmt"
	"time"
)

// Message is one persisted chat transcript line.
type Message struct {
	ID        int64
	Sender    string
	Text      string
	CreatedAt time.Time
}

// AppendMessage adds a line to the transcript.
func (s *Store) AppendMessage(ctx context.Context, sender, text string) error {
	err := s.exec(ctx, `INSERT INTO chat_messages (sender, text, created_at) VALUES (?, ?, ?)`,
		sender, text, s.now().Unix())
	if err != nil {
		return fmt.Errorf("appending chat message: %w", err)
	}
	return nil
}

// Messages returns the transcript oldest first. limit <= 0 returns all rows;
// otherwise only the newest limit rows are returned, still oldest first.
func (s *Store) Messages(ctx context.Context, limit int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT id, sender, text, created_at FROM chat_messages ORDER BY id`
	args := []any{}
	if limit > 0 {
		query = `SELECT id, sender, text, created_at FROM
			(SELECT id, sender, text, created_at FROM chat_messages ORDER BY id DESC LIMIT ?)
			ORDER BY id`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m       Message
			created int64
		)
		if err := rows.Scan(&m.ID, &m.Sender, &m.Text, &created); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		m.CreatedAt = time.Unix(created, 0)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ClearMessages deletes the transcript.
func (s *Store) ClearMessages(ctx context.Context) error {
	if err := s.exec(ctx, `DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("clearing chat messages: %w", err)
	}
	return nil
}
