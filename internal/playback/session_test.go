package playback

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gostatus/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemDuration = 5 * time.Second

type stubHydrator struct {
	mu      sync.Mutex
	details map[int64]*Detail
	errs    map[int64]error
	gates   map[int64]chan struct{}
	calls   []int64
}

func newStubHydrator() *stubHydrator {
	return &stubHydrator{
		details: make(map[int64]*Detail),
		errs:    make(map[int64]error),
		gates:   make(map[int64]chan struct{}),
	}
}

// hold makes hydration of statusID wait until the returned func is called.
func (h *stubHydrator) hold(statusID int64) func() {
	ch := make(chan struct{})
	h.mu.Lock()
	h.gates[statusID] = ch
	h.mu.Unlock()
	return func() { close(ch) }
}

func (h *stubHydrator) Hydrate(ctx context.Context, viewerID, statusID int64) (*Detail, error) {
	h.mu.Lock()
	h.calls = append(h.calls, statusID)
	gate := h.gates[statusID]
	detail, err := h.details[statusID], h.errs[statusID]
	h.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return detail, err
}

func (h *stubHydrator) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

func testItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{StatusID: int64(i + 1), PublisherID: 1}
	}
	return items
}

func newTestSession(n int, h Hydrator) (*Session, *fakeClock) {
	clock := &fakeClock{}
	return NewSession("s1", 2, 1, testItems(n), h, clock, itemDuration), clock
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string  { return &s }

func TestSession_TimerWalksThroughGroup(t *testing.T) {
	s, clock := newTestSession(3, nil)
	assert.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Open())
	assert.Equal(t, StatePlaying, s.State())
	assert.Equal(t, 0, s.Snapshot().Cursor)

	for want := 1; want <= 2; want++ {
		clock.Advance(itemDuration)
		snap := s.Snapshot()
		assert.Equal(t, StatePlaying, snap.State)
		assert.Equal(t, want, snap.Cursor)
	}

	clock.Advance(itemDuration)
	assert.Equal(t, StateClosed, s.State())
	assert.Zero(t, clock.pending())
}

func TestSession_TimerDoesNotFireEarly(t *testing.T) {
	s, clock := newTestSession(2, nil)
	require.NoError(t, s.Open())

	clock.Advance(itemDuration - time.Millisecond)
	assert.Equal(t, 0, s.Snapshot().Cursor)
	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, s.Snapshot().Cursor)
}

func TestSession_NextOnLastItemCloses(t *testing.T) {
	s, clock := newTestSession(3, nil)
	require.NoError(t, s.Open())
	clock.Advance(itemDuration)
	clock.Advance(itemDuration)
	require.Equal(t, 2, s.Snapshot().Cursor)

	require.NoError(t, s.Next())
	assert.Equal(t, StateClosed, s.State())
}

func TestSession_OpenRules(t *testing.T) {
	s, _ := newTestSession(0, nil)
	assert.ErrorIs(t, s.Open(), common.ErrValidation)
	assert.Equal(t, StateIdle, s.State())

	s, _ = newTestSession(1, nil)
	require.NoError(t, s.Open())
	assert.ErrorIs(t, s.Open(), common.ErrInvalidTransition)
}

func TestSession_TransitionsFromIdleAndClosed(t *testing.T) {
	s, _ := newTestSession(2, nil)
	for name, op := range map[string]func() error{
		"pause": s.Pause, "resume": s.Resume, "next": s.Next, "previous": s.Previous,
	} {
		assert.ErrorIs(t, op(), common.ErrInvalidTransition, name)
	}

	require.NoError(t, s.Open())
	s.Close()
	s.Close()
	assert.Equal(t, StateClosed, s.State())
	assert.ErrorIs(t, s.Pause(), common.ErrInvalidTransition)
	assert.ErrorIs(t, s.Next(), common.ErrInvalidTransition)
}

func TestSession_PauseStopsTimerAndResumeRestartsFromZero(t *testing.T) {
	s, clock := newTestSession(2, nil)
	require.NoError(t, s.Open())

	clock.Advance(4 * time.Second)
	require.NoError(t, s.Pause())
	require.NoError(t, s.Pause())
	assert.Equal(t, StatePaused, s.State())
	assert.Zero(t, clock.pending())

	clock.Advance(time.Minute)
	assert.Equal(t, 0, s.Snapshot().Cursor)

	require.NoError(t, s.Resume())
	require.NoError(t, s.Resume())
	assert.Equal(t, 1, clock.pending())

	// elapsed time before the pause is not carried over
	clock.Advance(4 * time.Second)
	assert.Equal(t, 0, s.Snapshot().Cursor)
	clock.Advance(time.Second)
	assert.Equal(t, 1, s.Snapshot().Cursor)
}

func TestSession_ManualNavigationResetsTimer(t *testing.T) {
	s, clock := newTestSession(3, nil)
	require.NoError(t, s.Open())

	require.NoError(t, s.Previous())
	assert.Equal(t, 0, s.Snapshot().Cursor)

	clock.Advance(3 * time.Second)
	require.NoError(t, s.Next())
	assert.Equal(t, 1, s.Snapshot().Cursor)
	assert.Equal(t, 1, clock.pending())

	clock.Advance(3 * time.Second)
	require.NoError(t, s.Previous())
	assert.Equal(t, 0, s.Snapshot().Cursor)

	clock.Advance(4 * time.Second)
	assert.Equal(t, 0, s.Snapshot().Cursor)
	clock.Advance(time.Second)
	assert.Equal(t, 1, s.Snapshot().Cursor)
}

func TestSession_NavigationWhilePausedStaysPaused(t *testing.T) {
	s, clock := newTestSession(3, nil)
	require.NoError(t, s.Open())
	require.NoError(t, s.Pause())

	require.NoError(t, s.Next())
	assert.Equal(t, StatePaused, s.State())
	assert.Equal(t, 1, s.Snapshot().Cursor)
	assert.Zero(t, clock.pending())
}

func TestSession_CursorStaysInRange(t *testing.T) {
	s, clock := newTestSession(4, nil)
	require.NoError(t, s.Open())

	ops := []func(){
		func() { _ = s.Next() },
		func() { _ = s.Previous() },
		func() { _ = s.Previous() },
		func() { clock.Advance(itemDuration) },
		func() { _ = s.Pause() },
		func() { _ = s.Next() },
		func() { _ = s.Resume() },
		func() { clock.Advance(itemDuration) },
	}
	for i, op := range ops {
		op()
		snap := s.Snapshot()
		if snap.State == StatePlaying || snap.State == StatePaused {
			assert.GreaterOrEqual(t, snap.Cursor, 0, "step %d", i)
			assert.Less(t, snap.Cursor, len(snap.Items), "step %d", i)
		}
	}
}

func TestSession_HydrationMergesMonotonically(t *testing.T) {
	h := newStubHydrator()
	h.details[1] = &Detail{ViewCount: int64Ptr(3), LikeCount: int64Ptr(1)}
	s, _ := newTestSession(2, h)
	s.items[0].Caption = strPtr("hello")
	s.items[0].MediaURL = strPtr("http://m/1")

	require.NoError(t, s.Open())
	s.waitHydrations()

	item := s.Snapshot().Items[0]
	require.NotNil(t, item.Caption)
	assert.Equal(t, "hello", *item.Caption)
	assert.Equal(t, "http://m/1", *item.MediaURL)
	assert.Equal(t, int64(3), *item.ViewCount)
	assert.Equal(t, int64(1), *item.LikeCount)
}

func TestSession_SlowHydrationNeverDelaysTimer(t *testing.T) {
	h := newStubHydrator()
	release := h.hold(1)
	h.details[1] = &Detail{Caption: strPtr("late caption")}
	s, clock := newTestSession(3, h)
	require.NoError(t, s.Open())

	clock.Advance(itemDuration)
	assert.Equal(t, 1, s.Snapshot().Cursor)

	// a result for an item no longer on screen is kept without navigating
	release()
	s.waitHydrations()
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Cursor)
	require.NotNil(t, snap.Items[0].Caption)
	assert.Equal(t, "late caption", *snap.Items[0].Caption)
}

func TestSession_NotFoundAdvances(t *testing.T) {
	h := newStubHydrator()
	h.errs[2] = fmt.Errorf("status 2: %w", common.ErrNotFound)
	s, clock := newTestSession(3, h)
	require.NoError(t, s.Open())
	s.waitHydrations()

	clock.Advance(itemDuration)
	s.waitHydrations()

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Cursor)
	assert.True(t, snap.Items[1].Gone)
	assert.Equal(t, StatePlaying, snap.State)

	clock.Advance(itemDuration)
	assert.Equal(t, StateClosed, s.State())
}

func TestSession_NotFoundWhilePausedAdvancesButStaysPaused(t *testing.T) {
	h := newStubHydrator()
	release := h.hold(1)
	h.errs[1] = common.ErrNotFound
	s, clock := newTestSession(2, h)
	require.NoError(t, s.Open())
	require.NoError(t, s.Pause())

	release()
	s.waitHydrations()

	snap := s.Snapshot()
	assert.Equal(t, StatePaused, snap.State)
	assert.Equal(t, 1, snap.Cursor)
	assert.Zero(t, clock.pending())
}

func TestSession_NotFoundOnLastItemCloses(t *testing.T) {
	h := newStubHydrator()
	h.errs[1] = common.ErrNotFound
	s, _ := newTestSession(1, h)
	require.NoError(t, s.Open())
	s.waitHydrations()

	assert.Equal(t, StateClosed, s.State())
}

func TestSession_LateHydrationAfterCloseDiscarded(t *testing.T) {
	h := newStubHydrator()
	release := h.hold(1)
	h.details[1] = &Detail{ViewCount: int64Ptr(9)}
	s, _ := newTestSession(2, h)
	require.NoError(t, s.Open())

	s.Close()
	release()
	s.waitHydrations()

	snap := s.Snapshot()
	assert.Nil(t, snap.Items[0].ViewCount)
	assert.Equal(t, StateClosed, snap.State)
	assert.Equal(t, 1, h.callCount())
}

func TestSession_ResumeDoesNotRehydrate(t *testing.T) {
	h := newStubHydrator()
	s, _ := newTestSession(2, h)
	require.NoError(t, s.Open())
	require.NoError(t, s.Pause())
	require.NoError(t, s.Resume())
	s.waitHydrations()

	assert.Equal(t, 1, h.callCount())
}

func TestItem_MergeKeepsPopulatedFields(t *testing.T) {
	it := Item{Caption: strPtr("a"), ViewCount: int64Ptr(1)}
	it.merge(&Detail{LikeCount: int64Ptr(2)})
	it.merge(nil)

	assert.Equal(t, "a", *it.Caption)
	assert.Equal(t, int64(1), *it.ViewCount)
	assert.Equal(t, int64(2), *it.LikeCount)

	it.merge(&Detail{Caption: strPtr("b"), ViewCount: int64Ptr(5)})
	assert.Equal(t, "b", *it.Caption)
	assert.Equal(t, int64(5), *it.ViewCount)
}
