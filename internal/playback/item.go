package playback

import (
	"time"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"
	"gostatus/internal/status"
)

// Item is the session's local copy of one status in the group.
type Item struct {
	StatusID    int64             `json:"status_id"`
	PublisherID int64             `json:"publisher_id"`
	Kind        common.StatusKind `json:"kind"`
	CreatedAt   time.Time         `json:"created_at"`
	Caption     *string           `json:"caption,omitempty"`
	MediaURL    *string           `json:"media_url,omitempty"`
	ViewCount   *int64            `json:"view_count,omitempty"`
	LikeCount   *int64            `json:"like_count,omitempty"`
	// Gone is set once hydration found the status deleted or expired.
	Gone bool `json:"gone,omitempty"`
}

// Detail is what one hydration round trip returns. Nil fields are unknown.
type Detail struct {
	Caption   *string
	MediaURL  *string
	ViewCount *int64
	LikeCount *int64
}

// merge never replaces a populated field with a nil one.
func (it *Item) merge(d *Detail) {
	if d == nil {
		return
	}
	if d.Caption != nil {
		it.Caption = d.Caption
	}
	if d.MediaURL != nil {
		it.MediaURL = d.MediaURL
	}
	if d.ViewCount != nil {
		it.ViewCount = d.ViewCount
	}
	if d.LikeCount != nil {
		it.LikeCount = d.LikeCount
	}
}

func NewItems(statuses []dbmysql.Status, mediaBaseURL string) []Item {
	items := make([]Item, 0, len(statuses))
	for i := range statuses {
		st := &statuses[i]
		it := Item{
			StatusID:    st.StatusID,
			PublisherID: st.PublisherID,
			Kind:        st.Kind,
			CreatedAt:   st.CreatedAt,
			Caption:     st.Caption,
		}
		if ref := st.Media(); ref != nil {
			if url := status.MediaURL(mediaBaseURL, ref.FileID); url != "" {
				it.MediaURL = &url
			}
		}
		items = append(items, it)
	}
	return items
}
