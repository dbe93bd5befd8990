package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CachedResource is a resource guide body saved after a successful fetch.
type CachedResource struct {
	Topic     string
	Content   string
	FetchedAt time.Time
}

// PutResource stores content for topic, replacing any previous copy.
func (s *Store) PutResource(ctx context.Context, topic, content string) error {
	err := s.exec(ctx, `INSERT INTO resource_cache (topic, content, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(topic) DO UPDATE SET content = excluded.content, fetched_at = excluded.fetched_at`,
		topic, content, s.now().Unix())
	if err != nil {
		return fmt.Errorf("caching resource %q: %w", topic, err)
	}
	return nil
}

// GetResource returns the cached copy for topic or ErrNotFound.
func (s *Store) GetResource(ctx context.Context, topic string) (*CachedResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		content string
		fetched int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT content, fetched_at FROM resource_cache WHERE topic = ?`, topic).
		Scan(&content, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached resource %q: %w", topic, err)
	}
	return &CachedResource{Topic: topic, Content: content, FetchedAt: time.Unix(fetched, 0)}, nil
}

// SaveCursor records the current-day pointer for a guide topic.
func (s *Store) SaveCursor(ctx context.Context, topic string, position int) error {
	err := s.exec(ctx, `INSERT INTO cursors (topic, position) VALUES (?, ?)
		ON CONFLICT(topic) DO UPDATE SET position = excluded.position`, topic, position)
	if err != nil {
		return fmt.Errorf("saving cursor for %q: %w", topic, err)
	}
	return nil
}

// LoadCursor returns the saved pointer for topic or ErrNotFound.
func (s *Store) LoadCursor(ctx context.Context, topic string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pos int
	err := s.db.QueryRowContext(ctx, `SELECT position FROM cursors WHERE topic = ?`, topic).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("reading cursor for %q: %w", topic, err)
	}
	return pos, nil
}

// ClearCursors forgets every saved guide pointer.
func (s *Store) ClearCursors(ctx context.Context) error {
	if err := s.exec(ctx, `DELETE FROM cursors`); err != nil {
		return fmt.Errorf("clearing cursors: %w", err)
	}
	return nil
}
