package dbmysql

import "time"

type StatusReport struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	StatusID    int64     `gorm:"column:status_id;not null;uniqueIndex:idx_report_status_viewer,priority:1" json:"status_id"`
	ViewerID    int64     `gorm:"column:viewer_id;not null;uniqueIndex:idx_report_status_viewer,priority:2" json:"viewer_id"`
	ReasonCode  string    `gorm:"column:reason_code;size:20;not null" json:"reason_code"`
	Description *string   `gorm:"column:description;size:1000" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (StatusReport) TableName() string {
	return "status_reports"
}
