package dbmysql

import "time"

type Follow struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ViewerID    int64     `gorm:"column:viewer_id;not null;index:idx_viewer_publisher,unique" json:"viewer_id"`
	PublisherID int64     `gorm:"column:publisher_id;not null;index:idx_viewer_publisher,unique" json:"publisher_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}
