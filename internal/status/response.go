package status

import (
	"strings"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"
)

// Response is the wire shape of a status. Counts and the rejection reason
// are only filled in for the publisher.
type Response struct {
	StatusID        int64                  `json:"status_id"`
	PublisherID     int64                  `json:"publisher_id"`
	Kind            common.StatusKind      `json:"kind"`
	Media           *dbmysql.MediaRef      `json:"media,omitempty"`
	MediaURL        string                 `json:"media_url,omitempty"`
	Caption         *string                `json:"caption,omitempty"`
	ModerationState common.ModerationState `json:"moderation_state"`
	RejectionReason *string                `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	ExpiresAt       time.Time              `json:"expires_at"`
	ViewCount       *int64                 `json:"view_count,omitempty"`
	LikeCount       *int64                 `json:"like_count,omitempty"`
}

func NewResponse(s *dbmysql.Status, viewerID int64, mediaBaseURL string) Response {
	resp := Response{
		StatusID:        s.StatusID,
		PublisherID:     s.PublisherID,
		Kind:            s.Kind,
		Media:           s.Media(),
		Caption:         s.Caption,
		ModerationState: s.ModerationState,
		CreatedAt:       s.CreatedAt,
		ExpiresAt:       s.ExpiresAt,
	}
	if resp.Media != nil {
		resp.MediaURL = MediaURL(mediaBaseURL, resp.Media.FileID)
	}
	if viewerID == s.PublisherID {
		views, likes := s.ViewCount, s.LikeCount
		resp.ViewCount, resp.LikeCount = &views, &likes
		resp.RejectionReason = s.RejectionReason
	}
	return resp
}

func NewResponses(statuses []dbmysql.Status, viewerID int64, mediaBaseURL string) []Response {
	out := make([]Response, 0, len(statuses))
	for i := range statuses {
		out = append(out, NewResponse(&statuses[i], viewerID, mediaBaseURL))
	}
	return out
}

// MediaURL joins the media server base URL and a GridFS file id.
func MediaURL(base, fileID string) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + fileID
}
