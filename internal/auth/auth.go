// Package auth signs users up, logs them in and out, and keeps the session
// cookie across CLI invocations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/impress/internal/api"
	"github.com/dshills/impress/internal/store"
)

var (
	// ErrMissingCredentials is returned when the email or password is empty.
	ErrMissingCredentials = errors.New("please provide an email and password")
	// ErrPasswordMismatch is returned by Signup when the confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidCredentials is returned when the server rejects a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotLoggedIn is returned by Require when no session is stored.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Client is the part of the API used for authentication.
type Client interface {
	BaseURL() string
	Signup(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Cookies() []*http.Cookie
	SetCookies(cookies []*http.Cookie)
}

// SessionStore holds local per-user state.
type SessionStore interface {
	SaveSession(ctx context.Context, baseURL string, cookies []*http.Cookie) error
	LoadSession(ctx context.Context, baseURL string) ([]*http.Cookie, error)
	ClearSession(ctx context.Context, baseURL string) error
	ClearMessages(ctx context.Context) error
	ClearCursors(ctx context.Context) error
}

// Service runs the account flows.
type Service struct {
	client Client
	store  SessionStore
	logger *zap.Logger
}

// New returns a Service.
func New(client Client, st SessionStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, store: st, logger: logger}
}

// Restore loads a persisted session into the client. It reports whether one
// was found.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	cookies, err := s.store.LoadSession(ctx, s.client.BaseURL())
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.client.SetCookies(cookies)
	s.logger.Debug("session restored", zap.Int("cookies", len(cookies)))
	return true, nil
}

// Require restores the persisted session and fails with ErrNotLoggedIn
// when there is none.
func (s *Service) Require(ctx context.Context) error {
	ok, err := s.Restore(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotLoggedIn
	}
	return nil
}

// Signup registers an account. confirm must equal password.
func (s *Service) Signup(ctx context.Context, email, password, confirm string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}
	if password != confirm {
		return "", ErrPasswordMismatch
	}
	msg, err := s.client.Signup(ctx, email, password)
	if err != nil {
		return "", fmt.Errorf("signup failed: %w", err)
	}
	s.logger.Info("account created", zap.String("email", email))
	return msg, nil
}

// Login authenticates and persists the session cookies.
func (s *Service) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingCredentials
	}
	err := s.client.Login(ctx, email, password)
	if errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := s.store.SaveSession(ctx, s.client.BaseURL(), s.client.Cookies()); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	s.logger.Info("logged in", zap.String("email", email))
	return nil
}

// Logout ends the server session and always clears local state, even when
// the request fails. The request error, if any, is still returned.
func (s *Service) Logout(ctx context.Context) error {
	reqErr := s.client.Logout(ctx)
	if reqErr != nil {
		s.logger.Warn("logout request failed", zap.Error(reqErr))
		reqErr = fmt.Errorf("logout request: %w", reqErr)
	}
	expire(s.client)
	return errors.Join(
		reqErr,
		s.store.ClearSession(ctx, s.client.BaseURL()),
		s.store.ClearMessages(ctx),
		s.store.ClearCursors(ctx),
	)
}

// expire drops the client's cookies from its jar.
func expire(c Client) {
	cookies := c.Cookies()
	for _, ck := range cookies {
		ck.MaxAge = -1
	}
	if len(cookies) > 0 {
		c.SetCookies(cookies)
	}
}

// Status describes the local session.
type Status struct {
	BaseURL  string `json:"base_url" yaml:"base_url"`
	LoggedIn bool   `json:"logged_in" yaml:"logged_in"`
	Cookies  int    `json:"cookies" yaml:"cookies"`
}

// Status reports whether a persisted session exists for the client's server.
func (s *Service) Status(ctx context.Context) (Status, error) {
	st := Status{BaseURL: s.client.BaseURL()}
	cookies, err := s.store.LoadSession(ctx, st.BaseURL)
	if errors.Is(err, store.ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	st.LoggedIn = len(cookies) > 0
	st.Cookies = len(cookies)
	return st, nil
}
