package playback

import (
	"context"
	"fmt"
	"sync"

	"gostatus/internal/common"
	"gostatus/internal/config"
	"gostatus/internal/feed"
	"gostatus/internal/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type GroupLoader interface {
	PublisherGroup(ctx context.Context, viewerID, publisherID int64) (*feed.Group, error)
}

// Registry tracks live sessions. It never holds its own lock while calling
// into a session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	loader       GroupLoader
	hydrator     Hydrator
	clock        Clock
	cfg          config.PlaybackConfig
	mediaBaseURL string
}

func NewRegistry(loader GroupLoader, hydrator Hydrator, clock Clock, cfg config.PlaybackConfig, mediaBaseURL string) *Registry {
	return &Registry{
		sessions:     make(map[string]*Session),
		loader:       loader,
		hydrator:     hydrator,
		clock:        clock,
		cfg:          cfg,
		mediaBaseURL: mediaBaseURL,
	}
}

// Open loads the publisher's group as viewerID sees it and starts playing.
func (r *Registry) Open(ctx context.Context, viewerID, publisherID int64) (*Session, error) {
	group, err := r.loader.PublisherGroup(ctx, viewerID, publisherID)
	if err != nil {
		return nil, err
	}
	if len(group.Statuses) == 0 {
		return nil, common.Validationf("publisher %d has nothing to play", publisherID)
	}

	s := NewSession(uuid.NewString(), viewerID, publisherID, NewItems(group.Statuses, r.mediaBaseURL), r.hydrator, r.clock, r.cfg.ItemDuration)
	s.onClose = r.remove

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	if err := s.Open(); err != nil {
		r.remove(s.id)
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"session_id":   s.id,
		"viewer_id":    viewerID,
		"publisher_id": publisherID,
		"items":        len(group.Statuses),
	}).Info("playback session opened")
	return s, nil
}

// Get returns the session if it is live and belongs to viewerID.
func (r *Registry) Get(id string, viewerID int64) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("playback session %s: %w", id, common.ErrNotFound)
	}
	if s.viewerID != viewerID {
		return nil, fmt.Errorf("playback session %s: %w", id, common.ErrForbidden)
	}
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) CloseAll() {
	r.mu.RLock()
	live := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.mu.RUnlock()

	for _, s := range live {
		s.Close()
	}
	logger.Log.WithField("sessions", len(live)).Info("playback sessions closed")
}
