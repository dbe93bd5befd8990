package resources

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/impress/internal/store"
)

// scripted answers Text calls from a queue and records the paths asked for.
type scripted struct {
	mu      sync.Mutex
	replies []reply
	paths   []string
	sumErr  error
	summary string
}

type reply struct {
	body string
	err  error
}

func (s *scripted) Text(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
	if len(s.replies) == 0 {
		return nil, errors.New("no reply scripted")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.body), nil
}

func (s *scripted) SummarizeVideo(_ context.Context, _ string) (string, error) {
	return s.summary, s.sumErr
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestGet(t *testing.T) {
	tp, err := Get("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTopic, tp.Name)

	tp, err = Get("scholarships")
	require.NoError(t, err)
	assert.Equal(t, "/generate-scholarship-guide", tp.Endpoint)
	assert.Equal(t, KindRemote, tp.Kind)

	_, err = Get("Cooking")
	assert.ErrorContains(t, err, "Women in Management")
}

func TestListAndExamples(t *testing.T) {
	names := []string{}
	for _, tp := range List() {
		names = append(names, tp.Name)
	}
	assert.Equal(t, []string{"Ted Talk Summarization", "Mentorship", "Women in Management", "Scholarships", "Google Resources"}, names)
	assert.Len(t, Examples(), 9)
	assert.Contains(t, Examples()[0].URL, "youtube.com")
}

func TestFetch_Static(t *testing.T) {
	c := &scripted{}
	got, err := NewFetcher(c).Fetch(context.Background(), "Google Resources", false)
	require.NoError(t, err)
	assert.Contains(t, got.Body, "NotebookLM")
	assert.Empty(t, c.paths)
}

func TestFetch_Summarizer(t *testing.T) {
	_, err := NewFetcher(&scripted{}).Fetch(context.Background(), DefaultTopic, false)
	assert.ErrorIs(t, err, ErrNotFetchable)
}

func TestFetch_JSONGuideField(t *testing.T) {
	c := &scripted{replies: []reply{{body: `{"guide": "# Mentors\nFind one."}`}}}
	got, err := NewFetcher(c, WithBackoff(0)).Fetch(context.Background(), "Mentorship", false)
	require.NoError(t, err)
	assert.Equal(t, "# Mentors\nFind one.", got.Body)
	assert.Equal(t, []string{"/generate-mentorship-guide"}, c.paths)
}

func TestFetch_RetriesUntilContent(t *testing.T) {
	c := &scripted{replies: []reply{
		{err: errors.New("502")},
		{body: `{"other": 1}`},
		{body: "## Plain markdown"},
	}}
	got, err := NewFetcher(c, WithBackoff(0)).Fetch(context.Background(), "Women in Management", false)
	require.NoError(t, err)
	assert.Equal(t, "## Plain markdown", got.Body)
	assert.Len(t, c.paths, 3)
}

func TestFetch_EmptyGuideIsRetriedNotCached(t *testing.T) {
	st := openStore(t)
	c := &scripted{replies: []reply{
		{body: `{"guide": ""}`},
		{body: `"just a string"`},
		{body: `{"guide": "Find a mentor."}`},
	}}
	got, err := NewFetcher(c, WithCache(st), WithBackoff(0)).Fetch(context.Background(), "Mentorship", false)
	require.NoError(t, err)
	assert.Equal(t, "Find a mentor.", got.Body)
	assert.Len(t, c.paths, 3)

	cached, err := st.GetResource(context.Background(), "Mentorship")
	require.NoError(t, err)
	assert.Equal(t, "Find a mentor.", cached.Content)
}

func TestFetch_GivesUpAfterMaxAttempts(t *testing.T) {
	c := &scripted{}
	for range MaxAttempts + 2 {
		c.replies = append(c.replies, reply{err: errors.New("500")})
	}
	_, err := NewFetcher(c, WithBackoff(0)).Fetch(context.Background(), "Mentorship", false)
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.Len(t, c.paths, MaxAttempts)
}

func TestFetch_BackoffHonorsContext(t *testing.T) {
	c := &scripted{replies: []reply{{err: errors.New("500")}, {body: "late"}}}
	ctx, cancel := context.WithCancel(context.Background())
	f := NewFetcher(c, WithBackoff(time.Hour))
	f.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}
	_, err := f.Fetch(ctx, "Mentorship", false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, c.paths, 1)
}

func TestFetch_CachesAndDiffsOnRefresh(t *testing.T) {
	st := openStore(t)
	c := &scripted{replies: []reply{
		{body: "Find a mentor.\nMeet monthly."},
		{body: "Find a mentor.\nMeet weekly."},
	}}
	f := NewFetcher(c, WithCache(st), WithBackoff(0))
	ctx := context.Background()

	first, err := f.Fetch(ctx, "Mentorship", false)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Empty(t, first.Patch)

	cached, err := f.Fetch(ctx, "Mentorship", false)
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Equal(t, first.Body, cached.Body)
	assert.Len(t, c.paths, 1)

	fresh, err := f.Fetch(ctx, "Mentorship", true)
	require.NoError(t, err)
	assert.Equal(t, "Find a mentor.\nMeet weekly.", fresh.Body)
	assert.Contains(t, fresh.Patch, "@@")
	assert.Positive(t, fresh.Inserted)
	assert.Positive(t, fresh.Deleted)

	again, err := st.GetResource(ctx, "Mentorship")
	require.NoError(t, err)
	assert.Equal(t, fresh.Body, again.Content)
}

func TestSummarize(t *testing.T) {
	f := NewFetcher(&scripted{summary: "Be bold."})
	_, err := f.Summarize(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyURL)

	sum, err := f.Summarize(context.Background(), "https://www.youtube.com/watch?v=x")
	require.NoError(t, err)
	assert.Equal(t, "Be bold.", sum)

	f = NewFetcher(&scripted{sumErr: errors.New("500")})
	_, err = f.Summarize(context.Background(), "https://www.youtube.com/watch?v=x")
	assert.ErrorIs(t, err, ErrSummarizeFailed)
}
