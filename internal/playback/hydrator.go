package playback

import (
	"context"
	"errors"
	"fmt"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"
	"gostatus/internal/engagement"
	"gostatus/internal/logger"
	"gostatus/internal/moderation"
	"gostatus/internal/status"

	"github.com/sirupsen/logrus"
)

type StatusGetter interface {
	GetStatus(ctx context.Context, id int64) (*dbmysql.Status, error)
}

type Visibility interface {
	Visible(s *dbmysql.Status, viewerID int64) bool
}

type Engagement interface {
	RecordView(ctx context.Context, statusID, viewerID int64) (*engagement.ViewResult, error)
	CountsFor(ctx context.Context, statusID int64) (*engagement.Counts, error)
}

// DetailHydrator reloads a status for the item now on screen and records
// the view when the viewer is not the publisher. An expired status is gone
// for everybody, its publisher included.
type DetailHydrator struct {
	statuses     StatusGetter
	visibility   Visibility
	engagement   Engagement
	clock        common.Clock
	mediaBaseURL string
}

func NewDetailHydrator(statuses StatusGetter, visibility Visibility, eng Engagement, clock common.Clock, mediaBaseURL string) *DetailHydrator {
	return &DetailHydrator{statuses: statuses, visibility: visibility, engagement: eng, clock: clock, mediaBaseURL: mediaBaseURL}
}

func (h *DetailHydrator) Hydrate(ctx context.Context, viewerID, statusID int64) (*Detail, error) {
	st, err := h.statuses.GetStatus(ctx, statusID)
	if err != nil {
		return nil, err
	}
	if moderation.Expired(st, h.clock.Now()) || !h.visibility.Visible(st, viewerID) {
		return nil, fmt.Errorf("status %d: %w", statusID, common.ErrNotFound)
	}

	d := &Detail{Caption: st.Caption}
	if ref := st.Media(); ref != nil {
		if url := status.MediaURL(h.mediaBaseURL, ref.FileID); url != "" {
			d.MediaURL = &url
		}
	}

	entry := logger.Log.WithFields(logrus.Fields{"status_id": statusID, "viewer_id": viewerID})
	if viewerID == st.PublisherID {
		counts, err := h.engagement.CountsFor(ctx, statusID)
		if err != nil {
			entry.WithError(err).Warn("counts unavailable during hydration")
			return d, nil
		}
		d.ViewCount, d.LikeCount = &counts.ViewCount, &counts.LikeCount
		return d, nil
	}

	if _, err := h.engagement.RecordView(ctx, statusID, viewerID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		entry.WithError(err).Warn("view not recorded during hydration")
	}
	return d, nil
}
