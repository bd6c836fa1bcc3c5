package engagement

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	GetStatus(ctx context.Context, id int64) (*dbmysql.Status, error)
	// InsertView reports false when the viewer had already been recorded.
	InsertView(ctx context.Context, statusID, viewerID int64, at time.Time) (bool, error)
	InsertLike(ctx context.Context, statusID, viewerID int64, at time.Time) (bool, error)
	DeleteLike(ctx context.Context, statusID, viewerID int64) (bool, error)
	Counts(ctx context.Context, statusID int64) (views int64, likes int64, err error)
}

type EngagementRepository struct {
	db *gorm.DB
}

func NewEngagementRepository(db *gorm.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

func (r *EngagementRepository) GetStatus(ctx context.Context, id int64) (*dbmysql.Status, error) {
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

// InsertView relies on the (status_id, viewer_id) unique index; the counter
// moves only when a row was actually written.
func (r *EngagementRepository) InsertView(ctx context.Context, statusID, viewerID int64, at time.Time) (bool, error) {
	inserted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&dbmysql.StatusView{StatusID: statusID, ViewerID: viewerID, ViewedAt: at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		inserted = true
		return tx.Model(&dbmysql.Status{}).
			Where("status_id = ?", statusID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	})
	return inserted, err
}

func (r *EngagementRepository) InsertLike(ctx context.Context, statusID, viewerID int64, at time.Time) (bool, error) {
	inserted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&dbmysql.StatusLike{StatusID: statusID, ViewerID: viewerID, LikedAt: at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		inserted = true
		return tx.Model(&dbmysql.Status{}).
			Where("status_id = ?", statusID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
	})
	return inserted, err
}

func (r *EngagementRepository) DeleteLike(ctx context.Context, statusID, viewerID int64) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("status_id = ? AND viewer_id = ?", statusID, viewerID).Delete(&dbmysql.StatusLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Model(&dbmysql.Status{}).
			Where("status_id = ? AND like_count > 0", statusID).
			UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
	})
	return deleted, err
}

func (r *EngagementRepository) Counts(ctx context.Context, statusID int64) (int64, int64, error) {
	var s dbmysql.Status
	err := r.db.WithContext(ctx).Select("view_count", "like_count").First(&s, "status_id = ?", statusID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, fmt.Errorf("status %d: %w", statusID, common.ErrNotFound)
	}
	return s.ViewCount, s.LikeCount, err
}
