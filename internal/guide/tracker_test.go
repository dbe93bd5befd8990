package guide

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/impress/internal/guide/mocks"
	"github.com/dshills/impress/internal/schema"
	"github.com/dshills/impress/internal/schema/validate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const topic = "Building Confidence"

func guideOf(n int) *schema.DailyGuide {
	g := &schema.DailyGuide{Goal: topic}
	for i := 1; i <= n; i++ {
		g.Guide = append(g.Guide, schema.Day{Day: i, Title: "Step", Approaches: []string{"a"}})
	}
	return g
}

func progressOf(days ...int) schema.Progress {
	var st []schema.DayStatus
	for _, d := range days {
		st = append(st, schema.DayStatus{Day: d, Completed: true})
	}
	return schema.Progress{topic: st}
}

func selected(t *testing.T, n int, done ...int) (*Tracker, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().Guide(gomock.Any(), topic).Return(guideOf(n), nil)
	svc.EXPECT().UserProgress(gomock.Any()).Return(progressOf(done...), nil)

	tr := NewTracker(svc, WithUserID(7))
	_, err := tr.SelectTopic(context.Background(), topic)
	require.NoError(t, err)
	return tr, svc
}

func TestSelectTopic_PointsAtFirstIncomplete(t *testing.T) {
	tr, _ := selected(t, 21, 1, 2, 4)
	st := tr.State()
	assert.Equal(t, topic, st.Topic)
	assert.Len(t, st.Days, 21)
	assert.Equal(t, []int{1, 2, 4}, st.Completed)
	assert.Equal(t, 2, st.Position)

	day, ok := st.Current()
	require.True(t, ok)
	assert.Equal(t, 3, day.Day)
	assert.False(t, st.Pending)
}

func TestSelectTopic_AllCompletePointsAtLast(t *testing.T) {
	tr, _ := selected(t, 3, 1, 2, 3)
	assert.Equal(t, 2, tr.State().Position)
	assert.True(t, tr.State().Summary().Done)
}

func TestSelectTopic_IgnoresProgressOutsideGuide(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().Guide(gomock.Any(), topic).Return(guideOf(3), nil)
	prog := progressOf(1, 9)
	prog[topic] = append(prog[topic], schema.DayStatus{Day: 2, Completed: false})
	prog["Building Your Club"] = []schema.DayStatus{{Day: 3, Completed: true}}
	svc.EXPECT().UserProgress(gomock.Any()).Return(prog, nil)

	st, err := NewTracker(svc).SelectTopic(context.Background(), topic)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, st.Completed)
	assert.Equal(t, 1, st.Position)
}

func TestSelectTopic_EmptyGuideHasNoCurrentDay(t *testing.T) {
	tr, _ := selected(t, 0)
	st := tr.State()
	assert.Equal(t, -1, st.Position)
	_, ok := st.Current()
	assert.False(t, ok)

	_, err := tr.Toggle(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnknownDay)
}

func TestSelectTopic_IsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().Guide(gomock.Any(), topic).Return(guideOf(5), nil).Times(2)
	svc.EXPECT().UserProgress(gomock.Any()).Return(progressOf(1), nil).Times(2)

	tr := NewTracker(svc)
	first, err := tr.SelectTopic(context.Background(), topic)
	require.NoError(t, err)
	second, err := tr.SelectTopic(context.Background(), topic)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSelectTopic_SwitchClearsPreviousState(t *testing.T) {
	tr, svc := selected(t, 5, 1, 2)
	boom := errors.New("connection refused")
	svc.EXPECT().Guide(gomock.Any(), "Building Your Club").Return(nil, boom)
	svc.EXPECT().UserProgress(gomock.Any()).Return(progressOf(), nil).AnyTimes()

	st, err := tr.SelectTopic(context.Background(), "Building Your Club")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "Building Your Club", st.Topic)
	assert.Empty(t, st.Days)
	assert.Empty(t, st.Completed)
	assert.Equal(t, -1, st.Position)

	_, err = tr.Toggle(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoTopic)
}

func TestSelectTopic_MissingGuide(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().Guide(gomock.Any(), topic).Return(nil, validate.ErrNoGuide)
	svc.EXPECT().UserProgress(gomock.Any()).Return(progressOf(), nil).AnyTimes()

	_, err := NewTracker(svc).SelectTopic(context.Background(), topic)
	assert.ErrorIs(t, err, ErrGuideNotFound)
}

func TestSelectTopic_StaleResultDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	started := make(chan struct{})
	release := make(chan struct{})
	svc.EXPECT().Guide(gomock.Any(), "Building Your Club").DoAndReturn(
		func(context.Context, string) (*schema.DailyGuide, error) {
			close(started)
			<-release
			return guideOf(9), nil
		})
	svc.EXPECT().Guide(gomock.Any(), topic).Return(guideOf(3), nil)
	svc.EXPECT().UserProgress(gomock.Any()).Return(progressOf(1), nil).Times(2)

	tr := NewTracker(svc)
	errc := make(chan error, 1)
	go func() {
		_, err := tr.SelectTopic(context.Background(), "Building Your Club")
		errc <- err
	}()
	<-started
	_, err := tr.SelectTopic(context.Background(), topic)
	require.NoError(t, err)
	close(release)
	require.NoError(t, <-errc)

	st := tr.State()
	assert.Equal(t, topic, st.Topic)
	assert.Len(t, st.Days, 3)
}

func TestSelectTopic_StaleFailureDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	started := make(chan struct{})
	release := make(chan struct{})
	svc.EXPECT().Guide(gomock.Any(), "Building Your Club").DoAndReturn(
		func(context.Context, string) (*schema.DailyGuide, error) {
			close(started)
			<-release
			return nil, errors.New("upstream timeout")
		})
	svc.EXPECT().Guide(gomock.Any(), topic).Return(guideOf(3), nil)
	svc.EXPECT().UserProgress(gomock.Any()).Return(progressOf(1), nil).Times(2)

	tr := NewTracker(svc)
	type result struct {
		st  State
		err error
	}
	resc := make(chan result, 1)
	go func() {
		st, err := tr.SelectTopic(context.Background(), "Building Your Club")
		resc <- result{st, err}
	}()
	<-started
	_, err := tr.SelectTopic(context.Background(), topic)
	require.NoError(t, err)
	close(release)

	res := <-resc
	require.NoError(t, res.err)
	assert.Equal(t, topic, res.st.Topic)
	assert.Len(t, res.st.Days, 3)
	assert.Equal(t, 1, tr.State().Position)
}

func TestToggle_OptimisticAndPersisted(t *testing.T) {
	tr, svc := selected(t, 21, 1, 2)
	svc.EXPECT().UpdateDayCompletion(gomock.Any(), schema.DayCompletion{
		UserID: 7, Topic: topic, Day: 3, Completed: true,
	}).Return(nil)

	st, err := tr.Toggle(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, st.Completed)
	assert.Equal(t, 3, st.Position)
	assert.True(t, st.Pending)

	require.NoError(t, tr.Wait())
	assert.False(t, tr.Pending())
}

func TestToggle_UncheckAdvancesPointer(t *testing.T) {
	tr, svc := selected(t, 5, 1, 2)
	svc.EXPECT().UpdateDayCompletion(gomock.Any(), gomock.Any()).Return(nil)

	st, err := tr.Toggle(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, st.Completed)
	assert.Equal(t, 3, st.Position)
	require.NoError(t, tr.Wait())
}

func TestToggle_PointerClampedAtEnd(t *testing.T) {
	tr, svc := selected(t, 3, 1, 2)
	svc.EXPECT().UpdateDayCompletion(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	st, err := tr.Toggle(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Position)
	st, err = tr.Toggle(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Position)
	require.NoError(t, tr.Wait())
}

func TestToggle_FailureIsNotRolledBack(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().Guide(gomock.Any(), topic).Return(guideOf(5), nil)
	svc.EXPECT().UserProgress(gomock.Any()).Return(progressOf(), nil)
	svc.EXPECT().UpdateDayCompletion(gomock.Any(), gomock.Any()).Return(errors.New("503 service unavailable"))

	tr := NewTracker(svc, WithLogger(zap.New(core)))
	_, err := tr.SelectTopic(context.Background(), topic)
	require.NoError(t, err)

	_, err = tr.Toggle(context.Background(), 1)
	require.NoError(t, err)

	err = tr.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, []int{1}, tr.State().Completed, "optimistic state kept")
	assert.False(t, tr.Pending())

	entries := logs.FilterMessage("failed to update day completion status").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["day"])

	assert.NoError(t, tr.Wait(), "failures are reported once")
}

func TestToggle_PersistsInOrder(t *testing.T) {
	tr, svc := selected(t, 5)
	release := make(chan struct{})
	var order []bool
	first := svc.EXPECT().UpdateDayCompletion(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, dc schema.DayCompletion) error {
			<-release
			order = append(order, dc.Completed)
			return nil
		})
	second := svc.EXPECT().UpdateDayCompletion(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, dc schema.DayCompletion) error {
			order = append(order, dc.Completed)
			return nil
		})
	gomock.InOrder(first, second)

	_, err := tr.Toggle(context.Background(), 2)
	require.NoError(t, err)
	st, err := tr.Toggle(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, st.Completed)

	time.Sleep(10 * time.Millisecond)
	assert.True(t, tr.Pending())
	close(release)

	require.NoError(t, tr.Wait())
	assert.Equal(t, []bool{true, false}, order, "last write matches local state")
}

func TestToggle_SurvivesCanceledContext(t *testing.T) {
	tr, svc := selected(t, 2)
	svc.EXPECT().UpdateDayCompletion(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ schema.DayCompletion) error {
			return ctx.Err()
		})

	ctx, cancel := context.WithCancel(context.Background())
	_, err := tr.Toggle(ctx, 1)
	require.NoError(t, err)
	cancel()
	assert.NoError(t, tr.Wait())
}

func TestToggle_UnknownDay(t *testing.T) {
	tr, _ := selected(t, 3)
	_, err := tr.Toggle(context.Background(), 4)
	assert.ErrorIs(t, err, ErrUnknownDay)
	assert.Empty(t, tr.State().Completed)
}

func TestToggle_NoTopic(t *testing.T) {
	_, err := NewTracker(nil).Toggle(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoTopic)
}

func TestNavigation(t *testing.T) {
	tr, _ := selected(t, 3)
	assert.Equal(t, 0, tr.State().Position)
	assert.Equal(t, 0, tr.Prev().Position)
	assert.Equal(t, 1, tr.Next().Position)
	assert.Equal(t, 2, tr.Next().Position)
	assert.Equal(t, 2, tr.Next().Position)
	assert.Equal(t, 0, tr.Seek(-3).Position)
	assert.Equal(t, 2, tr.Seek(99).Position)

	st, err := tr.SeekDay(2)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Position)
	_, err = tr.SeekDay(7)
	assert.ErrorIs(t, err, ErrUnknownDay)
}

func TestNavigation_EmptyGuide(t *testing.T) {
	tr := NewTracker(nil)
	assert.Equal(t, -1, tr.Next().Position)
	assert.Equal(t, -1, tr.Prev().Position)
}

func TestResolve(t *testing.T) {
	got, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTopic, got)

	got, err = Resolve("3")
	require.NoError(t, err)
	assert.Equal(t, "Building Confidence", got)

	got, err = Resolve("saving your first $1,000")
	require.NoError(t, err)
	assert.Equal(t, "Saving Your First $1,000", got)

	_, err = Resolve("7")
	assert.Error(t, err)
	_, err = Resolve("Juggling")
	assert.ErrorContains(t, err, "valid topics are")
}

func TestTopics_ReturnsCopy(t *testing.T) {
	ts := Topics()
	require.Len(t, ts, 6)
	ts[0] = "changed"
	assert.Equal(t, "Building Your Club", Topics()[0])
}
