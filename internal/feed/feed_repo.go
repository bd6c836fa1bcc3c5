package feed

import (
	"context"
	"time"

	"gostatus/internal/dbmysql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository interface {
	Follow(ctx context.Context, viewerID, publisherID int64, at time.Time) error
	Unfollow(ctx context.Context, viewerID, publisherID int64) error
	FollowedPublishers(ctx context.Context, viewerID int64) ([]int64, error)
}

type StatusLister interface {
	ListByPublisher(ctx context.Context, publisherID int64, approvedOnly bool, now time.Time) ([]dbmysql.Status, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow is idempotent; an existing edge is left untouched.
func (r *followRepository) Follow(ctx context.Context, viewerID, publisherID int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dbmysql.Follow{ViewerID: viewerID, PublisherID: publisherID, CreatedAt: at}).Error
}

func (r *followRepository) Unfollow(ctx context.Context, viewerID, publisherID int64) error {
	return r.db.WithContext(ctx).
		Where("viewer_id = ? AND publisher_id = ?", viewerID, publisherID).
		Delete(&dbmysql.Follow{}).Error
}

func (r *followRepository) FollowedPublishers(ctx context.Context, viewerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Follow{}).
		Where("viewer_id = ?", viewerID).
		Order("publisher_id ASC").
		Pluck("publisher_id", &ids).Error
	return ids, err
}
