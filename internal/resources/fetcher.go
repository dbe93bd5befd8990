package resources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/impress/internal/schema/validate"
	"github.com/dshills/impress/internal/store"
	"github.com/dshills/impress/internal/textdiff"
)

// MaxAttempts bounds how many times a remote guide is requested.
const MaxAttempts = 5

var (
	// ErrFetchFailed is returned when every attempt to load a guide failed.
	ErrFetchFailed = errors.New("failed to load guide content after multiple attempts")
	// ErrEmptyURL is returned by Summarize for a blank URL.
	ErrEmptyURL = errors.New("URL cannot be empty")
	// ErrSummarizeFailed is returned when the summarizer answered with an error.
	ErrSummarizeFailed = errors.New("failed to summarize video, check the URL or try again")
	// ErrNotFetchable is returned by Fetch for the summarizer topic.
	ErrNotFetchable = errors.New("topic has no guide content; use summarize")
)

// Client is the part of the API the resource browser uses.
type Client interface {
	Text(ctx context.Context, path string) ([]byte, error)
	SummarizeVideo(ctx context.Context, videoURL string) (string, error)
}

// Cache persists fetched guides between runs.
type Cache interface {
	PutResource(ctx context.Context, topic, content string) error
	GetResource(ctx context.Context, topic string) (*store.CachedResource, error)
}

// Content is a loaded resource guide.
type Content struct {
	Topic     string    `json:"topic" yaml:"topic"`
	Body      string    `json:"content" yaml:"content"`
	Cached    bool      `json:"cached" yaml:"cached"`
	FetchedAt time.Time `json:"fetched_at,omitzero" yaml:"fetched_at,omitempty"`
	// Patch turns the previously cached body into Body. Set only on refresh
	// when the body changed.
	Patch    string `json:"patch,omitempty" yaml:"patch,omitempty"`
	Inserted int    `json:"inserted,omitempty" yaml:"inserted,omitempty"`
	Deleted  int    `json:"deleted,omitempty" yaml:"deleted,omitempty"`
}

// Fetcher loads resource guides through a cache.
type Fetcher struct {
	client  Client
	cache   Cache
	logger  *zap.Logger
	backoff time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCache sets the cache. Without one every Fetch goes to the server.
func WithCache(c Cache) Option {
	return func(f *Fetcher) { f.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithBackoff sets the delay before the second attempt. Each later attempt
// waits one more multiple of d.
func WithBackoff(d time.Duration) Option {
	return func(f *Fetcher) { f.backoff = d }
}

// NewFetcher returns a Fetcher.
func NewFetcher(client Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  client,
		logger:  zap.NewNop(),
		backoff: 250 * time.Millisecond,
		sleep:   sleepContext,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch returns the guide for name. Static topics never touch the network.
// A cached copy is returned unless refresh is set; with refresh the result
// carries a patch from the cached copy when the content changed.
func (f *Fetcher) Fetch(ctx context.Context, name string, refresh bool) (*Content, error) {
	t, err := Get(name)
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case KindStatic:
		return &Content{Topic: t.Name, Body: t.Content}, nil
	case KindSummarizer:
		return nil, fmt.Errorf("%s: %w", t.Name, ErrNotFetchable)
	}

	var prev *store.CachedResource
	if f.cache != nil {
		prev, err = f.cache.GetResource(ctx, t.Name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			prev = nil
		case err != nil:
			f.logger.Warn("reading resource cache", zap.String("topic", t.Name), zap.Error(err))
			prev = nil
		case !refresh:
			return &Content{Topic: t.Name, Body: prev.Content, Cached: true, FetchedAt: prev.FetchedAt}, nil
		}
	}

	body, err := f.fetchWithRetry(ctx, t)
	if err != nil {
		return nil, err
	}
	out := &Content{Topic: t.Name, Body: body, FetchedAt: time.Now()}
	if prev != nil {
		out.Patch = textdiff.Patch(prev.Content, body)
		if out.Patch != "" {
			out.Inserted, out.Deleted = textdiff.Stats(prev.Content, body)
		}
	}
	if f.cache != nil {
		if err := f.cache.PutResource(ctx, t.Name, body); err != nil {
			f.logger.Warn("writing resource cache", zap.String("topic", t.Name), zap.Error(err))
		}
	}
	return out, nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, t Topic) (string, error) {
	var last error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if attempt > 1 && f.backoff > 0 {
			if err := f.sleep(ctx, time.Duration(attempt-1)*f.backoff); err != nil {
				return "", err
			}
		}
		raw, err := f.client.Text(ctx, t.Endpoint)
		if err == nil {
			var body string
			body, err = validate.ResourceContent(raw)
			if err == nil {
				f.logger.Debug("resource fetched", zap.String("topic", t.Name), zap.Int("attempt", attempt))
				return body, nil
			}
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		last = err
		f.logger.Info("resource fetch attempt failed",
			zap.String("topic", t.Name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return "", fmt.Errorf("%s: %w: %w", t.Name, ErrFetchFailed, last)
}

// Summarize asks the server for a summary of the video at videoURL.
func (f *Fetcher) Summarize(ctx context.Context, videoURL string) (string, error) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return "", ErrEmptyURL
	}
	f.logger.Info("summarizing video", zap.String("url", videoURL))
	sum, err := f.client.SummarizeVideo(ctx, videoURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSummarizeFailed, err)
	}
	return sum, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
