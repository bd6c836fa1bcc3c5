package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/logger"

	"github.com/sirupsen/logrus"
)

type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateClosed  State = "closed"
)

type Hydrator interface {
	Hydrate(ctx context.Context, viewerID, statusID int64) (*Detail, error)
}

type Snapshot struct {
	ID          string `json:"session_id"`
	ViewerID    int64  `json:"viewer_id"`
	PublisherID int64  `json:"publisher_id"`
	State       State  `json:"state"`
	Cursor      int    `json:"cursor"`
	Items       []Item `json:"items"`
}

// Session plays one publisher's group for one viewer. At most one item
// timer is live at a time; generation invalidates callbacks of timers that
// were stopped after they had already fired.
type Session struct {
	mu          sync.Mutex
	id          string
	viewerID    int64
	publisherID int64
	items       []Item
	cursor      int
	state       State

	itemDuration time.Duration
	clock        Clock
	hydrator     Hydrator
	timer        Timer
	generation   uint64

	ctx        context.Context
	cancel     context.CancelFunc
	hydrations sync.WaitGroup

	// onClose runs under the session lock and must not call back into it.
	onClose func(id string)
}

func NewSession(id string, viewerID, publisherID int64, items []Item, hydrator Hydrator, clock Clock, itemDuration time.Duration) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:           id,
		viewerID:     viewerID,
		publisherID:  publisherID,
		items:        items,
		state:        StateIdle,
		itemDuration: itemDuration,
		clock:        clock,
		hydrator:     hydrator,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) ViewerID() int64 { return s.viewerID }

func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return s.invalid("open")
	}
	if len(s.items) == 0 {
		return common.Validationf("cannot play an empty group")
	}
	s.state = StatePlaying
	s.cursor = 0
	s.activateLocked()
	return nil
}

// Pause is a no-op when already paused.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StatePaused:
		return nil
	case StatePlaying:
		s.stopTimerLocked()
		s.state = StatePaused
		return nil
	}
	return s.invalid("pause")
}

// Resume restarts the current item's timer from zero.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StatePlaying:
		return nil
	case StatePaused:
		s.state = StatePlaying
		s.startTimerLocked()
		return nil
	}
	return s.invalid("resume")
}

// Next moves to the following item and, while playing, restarts the item
// timer from zero. A paused session stays paused with no timer running until
// Resume. Next on the last item closes the session.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked() {
		return s.invalid("next")
	}
	s.advanceLocked()
	return nil
}

// Previous mirrors Next and is a no-op on the first item.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked() {
		return s.invalid("previous")
	}
	if s.cursor == 0 {
		return nil
	}
	s.cursor--
	s.enterCursorLocked()
	return nil
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return Snapshot{
		ID:          s.id,
		ViewerID:    s.viewerID,
		PublisherID: s.publisherID,
		State:       s.state,
		Cursor:      s.cursor,
		Items:       items,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) invalid(op string) error {
	return fmt.Errorf("%s while %s: %w", op, s.state, common.ErrInvalidTransition)
}

func (s *Session) activeLocked() bool {
	return s.state == StatePlaying || s.state == StatePaused
}

// activateLocked starts the timer and hydration for the item at cursor.
func (s *Session) activateLocked() {
	s.startTimerLocked()
	s.hydrateLocked(s.cursor)
}

// enterCursorLocked is called after a cursor move; a paused session keeps
// its timer stopped until resumed.
func (s *Session) enterCursorLocked() {
	if s.state == StatePlaying {
		s.activateLocked()
		return
	}
	s.hydrateLocked(s.cursor)
}

func (s *Session) advanceLocked() {
	if s.cursor+1 >= len(s.items) {
		s.closeLocked()
		return
	}
	s.cursor++
	s.enterCursorLocked()
}

func (s *Session) startTimerLocked() {
	s.stopTimerLocked()
	gen := s.generation
	s.timer = s.clock.AfterFunc(s.itemDuration, func() { s.expire(gen) })
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state != StatePlaying {
		return
	}
	s.timer = nil
	s.advanceLocked()
}

func (s *Session) closeLocked() {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	s.stopTimerLocked()
	s.cancel()
	if s.onClose != nil {
		s.onClose(s.id)
	}
}

func (s *Session) hydrateLocked(idx int) {
	if s.hydrator == nil {
		return
	}
	statusID := s.items[idx].StatusID
	s.hydrations.Add(1)
	go s.hydrate(s.ctx, idx, statusID)
}

func (s *Session) hydrate(ctx context.Context, idx int, statusID int64) {
	defer s.hydrations.Done()
	detail, err := s.hydrator.Hydrate(ctx, s.viewerID, statusID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.items[idx].Gone = true
			if idx == s.cursor {
				s.advanceLocked()
			}
			return
		}
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"session_id": s.id,
			"status_id":  statusID,
		}).Warn("hydration failed")
		return
	}
	s.items[idx].merge(detail)
}

// waitHydrations blocks until every hydration started so far has returned.
func (s *Session) waitHydrations() {
	s.hydrations.Wait()
}
