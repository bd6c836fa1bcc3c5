package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"

	"gorm.io/gorm"
)

type Repository interface {
	CreateStatus(ctx context.Context, s *dbmysql.Status) error
	GetStatus(ctx context.Context, id int64) (*dbmysql.Status, error)
	// ListByPublisher returns live statuses oldest first.
	ListByPublisher(ctx context.Context, publisherID int64, approvedOnly bool, now time.Time) ([]dbmysql.Status, error)
	DeleteStatus(ctx context.Context, id int64) error
}

type StatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) CreateStatus(ctx context.Context, s *dbmysql.Status) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *StatusRepository) GetStatus(ctx context.Context, id int64) (*dbmysql.Status, error) {
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

func (r *StatusRepository) ListByPublisher(ctx context.Context, publisherID int64, approvedOnly bool, now time.Time) ([]dbmysql.Status, error) {
	q := r.db.WithContext(ctx).
		Where("publisher_id = ? AND expires_at > ? AND moderation_state <> ?", publisherID, now, common.ModerationExpired)
	if approvedOnly {
		q = q.Where("moderation_state = ?", common.ModerationApproved)
	}

	var statuses []dbmysql.Status
	err := q.Order("created_at ASC").Order("status_id ASC").Find(&statuses).Error
	return statuses, err
}

// DeleteStatus removes the status together with its views, likes and reports.
func (r *StatusRepository) DeleteStatus(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&dbmysql.StatusView{}, &dbmysql.StatusLike{}, &dbmysql.StatusReport{}} {
			if err := tx.Where("status_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&dbmysql.Status{}, "status_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("status %d: %w", id, common.ErrNotFound)
		}
		return nil
	})
}
