package moderation

import (
	"context"
	"testing"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"
	"gostatus/internal/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

var _ StatusStateRepository = (*memstore.Store)(nil)
var _ StatusStateRepository = (*StateRepository)(nil)

func newTestGate(t *testing.T) (*Gate, *memstore.Store, *common.FixedClock) {
	t.Helper()
	store := memstore.New()
	clock := common.NewFixedClock(t0)
	gate := NewGate(clock)
	gate.Register(KindStatus, NewStatusStore(store))
	return gate, store, clock
}

func seedStatus(t *testing.T, store *memstore.Store, publisher int64, created time.Time) int64 {
	t.Helper()
	st := &dbmysql.Status{
		PublisherID:     publisher,
		Kind:            common.StatusKindText,
		ModerationState: common.ModerationPending,
		CreatedAt:       created,
		ExpiresAt:       created.Add(dbmysql.StatusTTL),
	}
	require.NoError(t, store.CreateStatus(context.Background(), st))
	return st.StatusID
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to common.ModerationState
		want     bool
	}{
		{common.ModerationPending, common.ModerationApproved, true},
		{common.ModerationPending, common.ModerationRejected, true},
		{common.ModerationRejected, common.ModerationPending, true},
		{common.ModerationRejected, common.ModerationApproved, true},
		{common.ModerationApproved, common.ModerationRejected, false},
		{common.ModerationApproved, common.ModerationPending, false},
		{common.ModerationPending, common.ModerationExpired, true},
		{common.ModerationExpired, common.ModerationApproved, false},
		{common.ModerationExpired, common.ModerationPending, false},
		{common.ModerationExpired, common.ModerationExpired, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestVisible(t *testing.T) {
	st := &dbmysql.Status{PublisherID: 1, ModerationState: common.ModerationPending, ExpiresAt: t0.Add(time.Hour)}

	assert.True(t, Visible(st, 1, t0), "owner sees pending")
	assert.False(t, Visible(st, 2, t0))

	st.ModerationState = common.ModerationApproved
	assert.True(t, Visible(st, 2, t0))
	assert.False(t, Visible(st, 2, t0.Add(time.Hour)), "expired at the boundary")

	st.ModerationState = common.ModerationRejected
	assert.False(t, Visible(st, 2, t0))
	assert.False(t, Visible(nil, 2, t0))
}

func TestExpired(t *testing.T) {
	st := &dbmysql.Status{PublisherID: 1, ModerationState: common.ModerationApproved, ExpiresAt: t0.Add(time.Hour)}

	assert.False(t, Expired(st, t0))
	assert.True(t, Expired(st, t0.Add(time.Hour)), "boundary counts as expired")

	st.ModerationState = common.ModerationExpired
	assert.True(t, Expired(st, t0), "swept before expires_at")
	assert.True(t, Visible(st, 1, t0), "owner clause alone does not look at expiry")
}

func TestGate_ApproveIsIdempotent(t *testing.T) {
	gate, store, _ := newTestGate(t)
	id := seedStatus(t, store, 1, t0)

	subj, err := gate.Approve(context.Background(), KindStatus, id)
	require.NoError(t, err)
	assert.Equal(t, common.ModerationApproved, subj.State)

	subj, err = gate.Approve(context.Background(), KindStatus, id)
	require.NoError(t, err)
	assert.Equal(t, common.ModerationApproved, subj.State)
}

func TestGate_RejectRequiresReason(t *testing.T) {
	gate, store, _ := newTestGate(t)
	id := seedStatus(t, store, 1, t0)

	_, err := gate.Reject(context.Background(), KindStatus, id, "  ")
	assert.ErrorIs(t, err, common.ErrValidation)

	st, _ := store.GetStatus(context.Background(), id)
	assert.Equal(t, common.ModerationPending, st.ModerationState)
}

func TestGate_RejectCancelApprove(t *testing.T) {
	gate, store, _ := newTestGate(t)
	ctx := context.Background()
	id := seedStatus(t, store, 1, t0)

	subj, err := gate.Reject(ctx, KindStatus, id, "blurry")
	require.NoError(t, err)
	assert.Equal(t, common.ModerationRejected, subj.State)
	st, _ := store.GetStatus(ctx, id)
	require.NotNil(t, st.RejectionReason)
	assert.Equal(t, "blurry", *st.RejectionReason)

	subj, err = gate.CancelRejection(ctx, KindStatus, id)
	require.NoError(t, err)
	assert.Equal(t, common.ModerationPending, subj.State)
	st, _ = store.GetStatus(ctx, id)
	assert.Nil(t, st.RejectionReason, "cancel clears the reason")

	// cancelling again is a no-op
	_, err = gate.CancelRejection(ctx, KindStatus, id)
	require.NoError(t, err)

	_, err = gate.Approve(ctx, KindStatus, id)
	require.NoError(t, err)

	_, err = gate.Reject(ctx, KindStatus, id, "late")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
	_, err = gate.CancelRejection(ctx, KindStatus, id)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestGate_NoTransitionResurrectsExpired(t *testing.T) {
	gate, store, clock := newTestGate(t)
	ctx := context.Background()
	id := seedStatus(t, store, 1, t0)

	clock.Advance(dbmysql.StatusTTL)
	n, err := gate.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	for _, op := range []func() (*Subject, error){
		func() (*Subject, error) { return gate.Approve(ctx, KindStatus, id) },
		func() (*Subject, error) { return gate.Reject(ctx, KindStatus, id, "x") },
		func() (*Subject, error) { return gate.CancelRejection(ctx, KindStatus, id) },
	} {
		_, err := op()
		assert.ErrorIs(t, err, common.ErrInvalidTransition)
	}
	st, _ := store.GetStatus(ctx, id)
	assert.Equal(t, common.ModerationExpired, st.ModerationState)
}

func TestGate_LogicallyExpiredBeforeSweep(t *testing.T) {
	gate, store, clock := newTestGate(t)
	id := seedStatus(t, store, 1, t0)

	clock.Advance(dbmysql.StatusTTL + time.Second)
	_, err := gate.Approve(context.Background(), KindStatus, id)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestGate_SweepIsIdempotent(t *testing.T) {
	gate, store, _ := newTestGate(t)
	ctx := context.Background()
	seedStatus(t, store, 1, t0)
	seedStatus(t, store, 1, t0.Add(-30*time.Hour))
	seedStatus(t, store, 2, t0.Add(-24*time.Hour))

	n, err := gate.SweepAt(ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = gate.SweepAt(ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

// sweepingStore runs the sweep between Load and CompareAndSet.
type sweepingStore struct {
	Store
	repo *memstore.Store
	at   time.Time
}

func (s *sweepingStore) CompareAndSet(ctx context.Context, id int64, from, to common.ModerationState, reason *string, now time.Time) (bool, error) {
	if _, err := s.repo.ExpireDue(ctx, s.at); err != nil {
		return false, err
	}
	return s.Store.CompareAndSet(ctx, id, from, to, reason, now)
}

func TestGate_ExpiryWinsRace(t *testing.T) {
	store := memstore.New()
	clock := common.NewFixedClock(t0.Add(dbmysql.StatusTTL - time.Millisecond))
	gate := NewGate(clock)
	gate.Register(KindStatus, &sweepingStore{Store: NewStatusStore(store), repo: store, at: t0.Add(dbmysql.StatusTTL)})
	id := seedStatus(t, store, 1, t0)

	_, err := gate.Approve(context.Background(), KindStatus, id)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	st, _ := store.GetStatus(context.Background(), id)
	assert.Equal(t, common.ModerationExpired, st.ModerationState)
}

func TestGate_UnknownKindAndID(t *testing.T) {
	gate, _, _ := newTestGate(t)

	_, err := gate.Approve(context.Background(), Kind("page_post"), 1)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = gate.Approve(context.Background(), KindStatus, 404)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
