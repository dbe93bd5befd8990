// Package guide reconciles the 21-day guide view with the server's record
// of which days a user has completed.
//
// Selecting a topic fetches its day sequence and the user's progress and
// places the current-day pointer on the first incomplete day. Toggling a day
// updates the local state immediately and persists the change in the
// background; a failed persist is logged and the optimistic state is kept.
package guide

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/impress/internal/progress"
	"github.com/dshills/impress/internal/schema"
	"github.com/dshills/impress/internal/schema/validate"
)

//go:generate mockgen -source=tracker.go -destination=mocks/mocks.go -package=mocks Service

var (
	// ErrGuideNotFound is returned when the server has no guide for a topic.
	ErrGuideNotFound = errors.New("guide not found for the topic")
	// ErrNoTopic is returned by operations that need a selected topic.
	ErrNoTopic = errors.New("no topic selected")
	// ErrUnknownDay is returned when toggling a day outside the guide.
	ErrUnknownDay = errors.New("day is not part of the guide")
)

// Service is the remote guide and progress API.
type Service interface {
	Guide(ctx context.Context, topic string) (*schema.DailyGuide, error)
	UserProgress(ctx context.Context) (schema.Progress, error)
	UpdateDayCompletion(ctx context.Context, dc schema.DayCompletion) error
}

// State is a snapshot of the tracker.
type State struct {
	Topic     string       `json:"topic" yaml:"topic"`
	Days      []schema.Day `json:"days" yaml:"days"`
	Completed []int        `json:"completed" yaml:"completed"`
	// Position indexes Days; -1 when the guide is empty or unloaded.
	Position int  `json:"position" yaml:"position"`
	Pending  bool `json:"pending" yaml:"pending"`
}

// Current returns the day under the pointer.
func (s State) Current() (schema.Day, bool) {
	if s.Position < 0 || s.Position >= len(s.Days) {
		return schema.Day{}, false
	}
	return s.Days[s.Position], true
}

// IsCompleted reports whether day is in the completed set.
func (s State) IsCompleted(day int) bool {
	for _, d := range s.Completed {
		if d == day {
			return true
		}
	}
	return false
}

// Summary summarizes completion of the selected topic.
func (s State) Summary() progress.Summary {
	return progress.Summarize(s.Topic, s.Days, s.Completed)
}

// Tracker holds the guide view state for one user.
type Tracker struct {
	svc    Service
	userID int64
	logger *zap.Logger

	mu        sync.Mutex
	gen       uint64 // bumped on every SelectTopic; stale fetches are dropped
	topic     string
	loaded    bool
	days      []schema.Day
	completed map[int]bool
	pos       int
	pending   int
	tail      chan struct{} // closed when the most recent persist finishes
	failures  []error
	inflight  sync.WaitGroup
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for persist failures.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithUserID sets the user id sent with completion updates.
func WithUserID(id int64) Option {
	return func(t *Tracker) { t.userID = id }
}

// NewTracker returns a Tracker with nothing selected.
func NewTracker(svc Service, opts ...Option) *Tracker {
	t := &Tracker{
		svc:       svc,
		logger:    zap.NewNop(),
		completed: map[int]bool{},
		pos:       -1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// SelectTopic switches to topic and reconciles against the server. The
// previous topic's state is cleared first, so on error the tracker shows the
// new topic with no days. Re-selecting the same topic is safe.
func (t *Tracker) SelectTopic(ctx context.Context, topic string) (State, error) {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.topic = topic
	t.loaded = false
	t.days = nil
	t.completed = map[int]bool{}
	t.pos = -1
	t.mu.Unlock()

	var (
		dg   *schema.DailyGuide
		prog schema.Progress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dg, err = t.svc.Guide(gctx, topic)
		if errors.Is(err, validate.ErrNoGuide) {
			return fmt.Errorf("%q: %w", topic, ErrGuideNotFound)
		}
		if err != nil {
			return fmt.Errorf("fetching guide %q: %w", topic, err)
		}
		if dg == nil {
			return fmt.Errorf("%q: %w", topic, ErrGuideNotFound)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		prog, err = t.svc.UserProgress(gctx)
		if err != nil {
			return fmt.Errorf("fetching progress: %w", err)
		}
		return nil
	})
	werr := g.Wait()

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		// A newer selection won; keep its state and drop this result.
		t.logger.Debug("dropping superseded selection", zap.String("topic", topic), zap.Error(werr))
		return t.snapshotLocked(), nil
	}
	if werr != nil {
		t.logger.Warn("selecting topic failed", zap.String("topic", topic), zap.Error(werr))
		return t.snapshotLocked(), werr
	}

	t.loaded = true
	t.days = dg.Guide
	inGuide := make(map[int]bool, len(t.days))
	for _, d := range t.days {
		inGuide[d.Day] = true
	}
	for _, d := range prog.CompletedDays(topic) {
		if inGuide[d] {
			t.completed[d] = true
		}
	}
	t.pos = t.firstIncompleteLocked()

	t.logger.Debug("topic selected",
		zap.String("topic", topic),
		zap.Int("days", len(t.days)),
		zap.Int("completed", len(t.completed)),
		zap.Int("position", t.pos),
	)
	return t.snapshotLocked(), nil
}

// firstIncompleteLocked returns the index of the first day not completed,
// the last index when all are, or -1 for an empty guide.
func (t *Tracker) firstIncompleteLocked() int {
	for i, d := range t.days {
		if !t.completed[d.Day] {
			return i
		}
	}
	return len(t.days) - 1
}

// Toggle flips day's completion, advances the pointer by one (clamped to
// the last day) and persists the new flag asynchronously. The returned
// State already reflects the change. Persists are sent one at a time in
// toggle order; a failed persist is logged and is not rolled back.
func (t *Tracker) Toggle(ctx context.Context, day int) (State, error) {
	t.mu.Lock()
	if !t.loaded {
		t.mu.Unlock()
		return t.State(), ErrNoTopic
	}
	found := false
	for _, d := range t.days {
		if d.Day == day {
			found = true
			break
		}
	}
	if !found {
		t.mu.Unlock()
		return t.State(), fmt.Errorf("day %d of %q: %w", day, t.topic, ErrUnknownDay)
	}

	if t.completed[day] {
		delete(t.completed, day)
	} else {
		t.completed[day] = true
	}
	t.pos = min(t.pos+1, len(t.days)-1)

	dc := schema.DayCompletion{
		UserID:    t.userID,
		Topic:     t.topic,
		Day:       day,
		Completed: t.completed[day],
	}
	prev := t.tail
	done := make(chan struct{})
	t.tail = done
	t.pending++
	t.inflight.Add(1)
	snap := t.snapshotLocked()
	t.mu.Unlock()

	go t.persist(context.WithoutCancel(ctx), dc, prev, done)
	return snap, nil
}

// persist waits for the previous persist, sends dc, and records failures.
func (t *Tracker) persist(ctx context.Context, dc schema.DayCompletion, prev <-chan struct{}, done chan<- struct{}) {
	defer t.inflight.Done()
	defer close(done)
	if prev != nil {
		<-prev
	}

	err := t.svc.UpdateDayCompletion(ctx, dc)

	t.mu.Lock()
	t.pending--
	if err != nil {
		t.failures = append(t.failures, fmt.Errorf("updating day %d of %q: %w", dc.Day, dc.Topic, err))
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.Error("failed to update day completion status",
			zap.String("topic", dc.Topic),
			zap.Int("day", dc.Day),
			zap.Bool("completed", dc.Completed),
			zap.Error(err),
		)
		return
	}
	t.logger.Debug("day completion persisted",
		zap.String("topic", dc.Topic),
		zap.Int("day", dc.Day),
		zap.Bool("completed", dc.Completed),
	)
}

// Wait blocks until every in-flight persist has finished and returns the
// persist failures seen since the previous Wait, joined.
func (t *Tracker) Wait() error {
	t.inflight.Wait()
	t.mu.Lock()
	defer t.mu.Unlock()
	err := errors.Join(t.failures...)
	t.failures = nil
	return err
}

// Pending reports whether any persist is still in flight.
func (t *Tracker) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending > 0
}

// Next moves the pointer forward one day, clamped to the last day.
func (t *Tracker) Next() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.days) > 0 {
		t.pos = min(t.pos+1, len(t.days)-1)
	}
	return t.snapshotLocked()
}

// Prev moves the pointer back one day, clamped to the first day.
func (t *Tracker) Prev() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.days) > 0 {
		t.pos = max(t.pos-1, 0)
	}
	return t.snapshotLocked()
}

// Seek places the pointer on index i, clamped to the guide.
func (t *Tracker) Seek(i int) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.days) > 0 {
		t.pos = max(0, min(i, len(t.days)-1))
	}
	return t.snapshotLocked()
}

// SeekDay places the pointer on the day with index day.
func (t *Tracker) SeekDay(day int) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, d := range t.days {
		if d.Day == day {
			t.pos = i
			return t.snapshotLocked(), nil
		}
	}
	return t.snapshotLocked(), fmt.Errorf("day %d of %q: %w", day, t.topic, ErrUnknownDay)
}

// State returns a snapshot.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() State {
	days := make([]schema.Day, len(t.days))
	copy(days, t.days)
	completed := make([]int, 0, len(t.completed))
	for d := range t.completed {
		completed = append(completed, d)
	}
	sort.Ints(completed)
	return State{
		Topic:     t.topic,
		Days:      days,
		Completed: completed,
		Position:  t.pos,
		Pending:   t.pending > 0,
	}
}
