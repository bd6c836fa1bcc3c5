package dbmysql

import "time"

// StatusView is unique per (status, viewer); duplicates are ignored on insert.
type StatusView struct {
	ID       int64     `gorm:"primaryKey;autoIncrement;column:id"`
	StatusID int64     `gorm:"column:status_id;not null;uniqueIndex:idx_view_status_viewer,priority:1"`
	ViewerID int64     `gorm:"column:viewer_id;not null;uniqueIndex:idx_view_status_viewer,priority:2"`
	ViewedAt time.Time `gorm:"column:viewed_at"`
}

func (StatusView) TableName() string {
	return "status_views"
}

type StatusLike struct {
	ID       int64     `gorm:"primaryKey;autoIncrement;column:id"`
	StatusID int64     `gorm:"column:status_id;not null;uniqueIndex:idx_like_status_viewer,priority:1"`
	ViewerID int64     `gorm:"column:viewer_id;not null;uniqueIndex:idx_like_status_viewer,priority:2"`
	LikedAt  time.Time `gorm:"column:liked_at"`
}

func (StatusLike) TableName() string {
	return "status_likes"
}
