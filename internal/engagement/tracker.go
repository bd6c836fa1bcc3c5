package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"
	"gostatus/internal/logger"

	"github.com/sirupsen/logrus"
)

type ViewResult struct {
	StatusID  int64 `json:"status_id"`
	ViewCount int64 `json:"view_count"`
	// Recorded is true only for the viewer's first view.
	Recorded bool `json:"recorded"`
	// Queued means the write failed and was handed to the reconciler;
	// ViewCount is then an optimistic estimate.
	Queued bool `json:"queued,omitempty"`
}

type LikeResult struct {
	StatusID  int64 `json:"status_id"`
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

type Counts struct {
	StatusID  int64 `json:"status_id"`
	ViewCount int64 `json:"view_count"`
	LikeCount int64 `json:"like_count"`
}

// Visibility decides whether a viewer may see a status at all.
type Visibility interface {
	Visible(s *dbmysql.Status, viewerID int64) bool
}

// ViewQueue accepts view writes that could not be applied inline.
type ViewQueue interface {
	Enqueue(job ViewJob) bool
}

type Tracker struct {
	repo       Repository
	visibility Visibility
	queue      ViewQueue
	clock      common.Clock
	retryDelay time.Duration
}

// NewTracker wires the tracker; queue may be nil, in which case failed view
// writes are returned to the caller.
func NewTracker(repo Repository, visibility Visibility, queue ViewQueue, clock common.Clock, retryDelay time.Duration) *Tracker {
	return &Tracker{repo: repo, visibility: visibility, queue: queue, clock: clock, retryDelay: retryDelay}
}

// engageable loads a status another user wants to view or like.
func (t *Tracker) engageable(ctx context.Context, statusID, viewerID int64) (*dbmysql.Status, error) {
	st, err := t.repo.GetStatus(ctx, statusID)
	if err != nil {
		return nil, err
	}
	if st.PublisherID == viewerID {
		return nil, fmt.Errorf("engage with own status %d: %w", statusID, common.ErrForbidden)
	}
	if t.visibility != nil && !t.visibility.Visible(st, viewerID) {
		return nil, fmt.Errorf("status %d: %w", statusID, common.ErrNotFound)
	}
	return st, nil
}

// RecordView records the viewer's first view. Repeat views leave the count
// unchanged.
func (t *Tracker) RecordView(ctx context.Context, statusID, viewerID int64) (*ViewResult, error) {
	st, err := t.engageable(ctx, statusID, viewerID)
	if err != nil {
		return nil, err
	}

	now := t.clock.Now()
	var inserted bool
	err = t.retryOnce(ctx, func() error {
		var err error
		inserted, err = t.repo.InsertView(ctx, statusID, viewerID, now)
		return err
	})
	if err != nil {
		if isTransient(err) && t.queue != nil && t.queue.Enqueue(ViewJob{StatusID: statusID, ViewerID: viewerID, ViewedAt: now}) {
			logger.Log.WithError(err).WithFields(logrus.Fields{
				"status_id": statusID,
				"viewer_id": viewerID,
			}).Warn("view write failed, queued for reconciliation")
			return &ViewResult{StatusID: statusID, ViewCount: st.ViewCount + 1, Queued: true}, nil
		}
		return nil, fmt.Errorf("record view: %w", err)
	}

	views, _, err := t.repo.Counts(ctx, statusID)
	if err != nil {
		views = st.ViewCount
		if inserted {
			views++
		}
	}
	return &ViewResult{StatusID: statusID, ViewCount: views, Recorded: inserted}, nil
}

// ToggleLike removes an existing like or adds a new one.
func (t *Tracker) ToggleLike(ctx context.Context, statusID, viewerID int64) (*LikeResult, error) {
	if _, err := t.engageable(ctx, statusID, viewerID); err != nil {
		return nil, err
	}

	var removed bool
	if err := t.retryOnce(ctx, func() error {
		var err error
		removed, err = t.repo.DeleteLike(ctx, statusID, viewerID)
		return err
	}); err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	liked := !removed
	if liked {
		now := t.clock.Now()
		// a concurrent insert of the same like leaves it liked either way
		if err := t.retryOnce(ctx, func() error {
			_, err := t.repo.InsertLike(ctx, statusID, viewerID, now)
			return err
		}); err != nil {
			return nil, fmt.Errorf("toggle like: %w", err)
		}
	}

	_, likes, err := t.repo.Counts(ctx, statusID)
	if err != nil {
		return nil, fmt.Errorf("like count: %w", err)
	}
	return &LikeResult{StatusID: statusID, Liked: liked, LikeCount: likes}, nil
}

func (t *Tracker) CountsFor(ctx context.Context, statusID int64) (*Counts, error) {
	views, likes, err := t.repo.Counts(ctx, statusID)
	if err != nil {
		return nil, err
	}
	return &Counts{StatusID: statusID, ViewCount: views, LikeCount: likes}, nil
}

// OwnerCounts is CountsFor restricted to the publisher of the status.
func (t *Tracker) OwnerCounts(ctx context.Context, statusID, requesterID int64) (*Counts, error) {
	st, err := t.repo.GetStatus(ctx, statusID)
	if err != nil {
		return nil, err
	}
	if st.PublisherID != requesterID {
		return nil, fmt.Errorf("counts of status %d: %w", statusID, common.ErrForbidden)
	}
	return t.CountsFor(ctx, statusID)
}

func (t *Tracker) retryOnce(ctx context.Context, op func() error) error {
	err := op()
	if err == nil || !isTransient(err) {
		return err
	}
	if t.retryDelay > 0 {
		select {
		case <-time.After(t.retryDelay):
		case <-ctx.Done():
			return err
		}
	}
	return op()
}

// isTransient is false for domain outcomes that a retry cannot change.
func isTransient(err error) bool {
	switch {
	case errors.Is(err, common.ErrNotFound),
		errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrForbidden),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}
