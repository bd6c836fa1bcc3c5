package status

import (
	"context"
	"fmt"
	"strings"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"
	"gostatus/internal/logger"
	"gostatus/internal/moderation"

	"github.com/sirupsen/logrus"
)

// MediaRemover deletes stored media once its status is gone.
type MediaRemover interface {
	DeleteFile(ctx context.Context, fileID string) error
}

type CreateInput struct {
	PublisherID int64
	Kind        common.StatusKind
	Media       *dbmysql.MediaRef
	Caption     *string
}

type Service struct {
	repo   Repository
	media  MediaRemover
	clock  common.Clock
	limits common.MediaLimits
}

// NewService builds the status service. media may be nil when no media
// store is configured.
func NewService(repo Repository, media MediaRemover, clock common.Clock, limits common.MediaLimits) *Service {
	return &Service{repo: repo, media: media, clock: clock, limits: limits}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*dbmysql.Status, error) {
	if in.PublisherID <= 0 {
		return nil, common.Validationf("publisher_id is required")
	}
	if !in.Kind.IsValid() {
		return nil, common.Validationf("unknown kind %q", in.Kind)
	}

	var caption *string
	if in.Caption != nil && strings.TrimSpace(*in.Caption) != "" {
		c := strings.TrimSpace(*in.Caption)
		caption = &c
	}
	if in.Media == nil && caption == nil {
		return nil, common.Validationf("status needs media or a caption")
	}

	if in.Media != nil {
		if in.Media.FileID == "" {
			return nil, common.Validationf("media file_id is required")
		}
		if err := common.ValidateMedia(in.Kind, in.Media.MimeType, in.Media.SizeBytes, s.limits); err != nil {
			return nil, err
		}
	} else if in.Kind.HasMedia() {
		return nil, common.Validationf("%s status requires media", in.Kind)
	}

	if caption != nil {
		if err := common.ValidateCaption(*caption, s.limits.MaxCaptionLength); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	st := &dbmysql.Status{
		PublisherID:     in.PublisherID,
		Kind:            in.Kind,
		Caption:         caption,
		ModerationState: common.ModerationPending,
		CreatedAt:       now,
		ExpiresAt:       now.Add(dbmysql.StatusTTL),
		UpdatedAt:       now,
	}
	st.SetMedia(in.Media)

	if err := s.repo.CreateStatus(ctx, st); err != nil {
		return nil, fmt.Errorf("create status: %w", err)
	}
	logger.Log.WithFields(logrus.Fields{
		"status_id":    st.StatusID,
		"publisher_id": st.PublisherID,
		"kind":         st.Kind,
	}).Debug("status created")
	return st, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*dbmysql.Status, error) {
	return s.repo.GetStatus(ctx, id)
}

// GetForViewer hides statuses the viewer may not see behind NotFound. An
// expired status is NotFound for its publisher as well.
func (s *Service) GetForViewer(ctx context.Context, id, viewerID int64) (*dbmysql.Status, error) {
	st, err := s.repo.GetStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if moderation.Expired(st, now) || !moderation.Visible(st, viewerID, now) {
		return nil, fmt.Errorf("status %d: %w", id, common.ErrNotFound)
	}
	return st, nil
}

func (s *Service) Delete(ctx context.Context, id, requesterID int64) error {
	st, err := s.repo.GetStatus(ctx, id)
	if err != nil {
		return err
	}
	if st.PublisherID != requesterID {
		return fmt.Errorf("delete status %d: %w", id, common.ErrForbidden)
	}
	if err := s.repo.DeleteStatus(ctx, id); err != nil {
		return err
	}

	if s.media != nil && st.MediaFileID != nil {
		if err := s.media.DeleteFile(ctx, *st.MediaFileID); err != nil {
			logger.Log.WithError(err).WithField("file_id", *st.MediaFileID).Warn("failed to delete status media")
		}
	}
	return nil
}

// ListByPublisher returns every live status to the owner and only approved
// ones to anybody else, oldest first.
func (s *Service) ListByPublisher(ctx context.Context, publisherID int64, asOwner bool) ([]dbmysql.Status, error) {
	return s.repo.ListByPublisher(ctx, publisherID, !asOwner, s.clock.Now())
}
