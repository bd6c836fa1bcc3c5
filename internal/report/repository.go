package report

import (
	"context"
	"errors"
	"fmt"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	GetStatus(ctx context.Context, id int64) (*dbmysql.Status, error)
	// InsertReport reports false when the viewer already reported the status.
	InsertReport(ctx context.Context, r *dbmysql.StatusReport) (bool, error)
	HasReport(ctx context.Context, statusID, viewerID int64) (bool, error)
}

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) GetStatus(ctx context.Context, id int64) (*dbmysql.Status, error) {
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

func (r *ReportRepository) InsertReport(ctx context.Context, rep *dbmysql.StatusReport) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rep)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ReportRepository) HasReport(ctx context.Context, statusID, viewerID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.StatusReport{}).
		Where("status_id = ? AND viewer_id = ?", statusID, viewerID).
		Count(&count).Error
	return count > 0, err
}
