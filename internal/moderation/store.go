package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"

	"gorm.io/gorm"
)

// Store persists one content kind's moderation state.
type Store interface {
	Load(ctx context.Context, id int64) (*Subject, error)
	// CompareAndSet moves id from -> to only while it is still in from and
	// not yet expired at now.
	CompareAndSet(ctx context.Context, id int64, from, to common.ModerationState, reason *string, now time.Time) (bool, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// StatusStateRepository is the status-table side of Store.
type StatusStateRepository interface {
	GetStatus(ctx context.Context, id int64) (*dbmysql.Status, error)
	CompareAndSetState(ctx context.Context, id int64, from, to common.ModerationState, reason *string, now time.Time) (bool, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type statusStore struct {
	repo StatusStateRepository
}

func NewStatusStore(repo StatusStateRepository) Store {
	return &statusStore{repo: repo}
}

func (s *statusStore) Load(ctx context.Context, id int64) (*Subject, error) {
	st, err := s.repo.GetStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Subject{
		Kind:      KindStatus,
		ID:        st.StatusID,
		OwnerID:   st.PublisherID,
		State:     st.ModerationState,
		Reason:    st.RejectionReason,
		ExpiresAt: st.ExpiresAt,
	}, nil
}

func (s *statusStore) CompareAndSet(ctx context.Context, id int64, from, to common.ModerationState, reason *string, now time.Time) (bool, error) {
	return s.repo.CompareAndSetState(ctx, id, from, to, reason, now)
}

func (s *statusStore) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.ExpireDue(ctx, now)
}

type StateRepository struct {
	db *gorm.DB
}

func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

func (r *StateRepository) GetStatus(ctx context.Context, id int64) (*dbmysql.Status, error) {
	var s dbmysql.Status
	err := r.db.WithContext(ctx).First(&s, "status_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("status %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StateRepository) CompareAndSetState(ctx context.Context, id int64, from, to common.ModerationState, reason *string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&dbmysql.Status{}).
		Where("status_id = ? AND moderation_state = ? AND expires_at > ?", id, from, now).
		Updates(map[string]interface{}{
			"moderation_state": to,
			"rejection_reason": reason,
			"updated_at":       now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ExpireDue is a single conditional UPDATE, so re-running it is harmless.
func (r *StateRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&dbmysql.Status{}).
		Where("moderation_state <> ? AND expires_at <= ?", common.ModerationExpired, now).
		Updates(map[string]interface{}{
			"moderation_state": common.ModerationExpired,
			"updated_at":       now,
		})
	return res.RowsAffected, res.Error
}
