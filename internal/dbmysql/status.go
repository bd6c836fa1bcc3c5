package dbmysql

import (
	"time"

	"gostatus/internal/common"
)

// Status is a short-lived update posted by a publisher.
type Status struct {
	StatusID        int64                  `gorm:"primaryKey;autoIncrement;column:status_id" json:"status_id"`
	PublisherID     int64                  `gorm:"column:publisher_id;not null;index:idx_status_publisher_created,priority:1" json:"publisher_id"`
	Kind            common.StatusKind      `gorm:"column:kind;size:10;not null" json:"kind"`
	MediaFileID     *string                `gorm:"column:media_file_id;size:64" json:"media_file_id,omitempty"`
	MediaMimeType   *string                `gorm:"column:media_mime_type;size:100" json:"media_mime_type,omitempty"`
	MediaSizeBytes  *int64                 `gorm:"column:media_size_bytes" json:"media_size_bytes,omitempty"`
	Caption         *string                `gorm:"column:caption;size:1000" json:"caption,omitempty"`
	ModerationState common.ModerationState `gorm:"column:moderation_state;size:10;not null;index" json:"moderation_state"`
	RejectionReason *string                `gorm:"column:rejection_reason;size:500" json:"rejection_reason,omitempty"`
	ViewCount       int64                  `gorm:"column:view_count;not null;default:0" json:"-"`
	LikeCount       int64                  `gorm:"column:like_count;not null;default:0" json:"-"`
	CreatedAt       time.Time              `gorm:"column:created_at;index:idx_status_publisher_created,priority:2" json:"created_at"`
	ExpiresAt       time.Time              `gorm:"column:expires_at;not null;index" json:"expires_at"`
	UpdatedAt       time.Time              `gorm:"column:updated_at" json:"updated_at"`
}

func (Status) TableName() string {
	return "statuses"
}

// StatusTTL is how long a status lives after creation.
const StatusTTL = 24 * time.Hour

// IsExpired reports whether the status is logically gone at now, whatever
// its stored moderation state says.
func (s *Status) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Media returns the attached media reference, or nil for text statuses.
func (s *Status) Media() *MediaRef {
	if s.MediaFileID == nil {
		return nil
	}
	ref := &MediaRef{FileID: *s.MediaFileID}
	if s.MediaMimeType != nil {
		ref.MimeType = *s.MediaMimeType
	}
	if s.MediaSizeBytes != nil {
		ref.SizeBytes = *s.MediaSizeBytes
	}
	return ref
}

// SetMedia copies ref into the flattened media columns.
func (s *Status) SetMedia(ref *MediaRef) {
	if ref == nil {
		s.MediaFileID, s.MediaMimeType, s.MediaSizeBytes = nil, nil, nil
		return
	}
	fileID, mime, size := ref.FileID, ref.MimeType, ref.SizeBytes
	s.MediaFileID, s.MediaMimeType, s.MediaSizeBytes = &fileID, &mime, &size
}
