package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// cookieRecord is the persisted form of an http.Cookie.
type cookieRecord struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

// SaveSession replaces the cookies stored for baseURL.
func (s *Store) SaveSession(ctx context.Context, baseURL string, cookies []*http.Cookie) error {
	recs := make([]cookieRecord, 0, len(cookies))
	for _, c := range cookies {
		recs = append(recs, cookieRecord{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encoding cookies: %w", err)
	}
	err = s.exec(ctx, `INSERT INTO sessions (base_url, cookies, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(base_url) DO UPDATE SET cookies = excluded.cookies, updated_at = excluded.updated_at`,
		baseURL, string(b), s.now().Unix())
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// LoadSession returns the cookies stored for baseURL. Expired cookies are
// dropped. ErrNotFound is returned when no session was saved.
func (s *Store) LoadSession(ctx context.Context, baseURL string) ([]*http.Cookie, error) {
	s.mu.Lock()
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT cookies FROM sessions WHERE base_url = ?`, baseURL).Scan(&raw)
	s.mu.Unlock()
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var recs []cookieRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("decoding cookies: %w", err)
	}
	now := s.now()
	cookies := make([]*http.Cookie, 0, len(recs))
	for _, r := range recs {
		if !r.Expires.IsZero() && r.Expires.Before(now) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:     r.Name,
			Value:    r.Value,
			Path:     r.Path,
			Domain:   r.Domain,
			Expires:  r.Expires,
			Secure:   r.Secure,
			HttpOnly: r.HttpOnly,
		})
	}
	if len(cookies) == 0 {
		return nil, ErrNotFound
	}
	return cookies, nil
}

// ClearSession forgets the cookies stored for baseURL.
func (s *Store) ClearSession(ctx context.Context, baseURL string) error {
	if err := s.exec(ctx, `DELETE FROM sessions WHERE base_url = ?`, baseURL); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
