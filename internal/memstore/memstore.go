// Package memstore keeps every status table in process memory. It honours
// the same uniqueness and conditional-update rules as the SQL repositories.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"
)

type pair struct {
	statusID int64
	viewerID int64
}

type Store struct {
	mu       sync.RWMutex
	nextID   int64
	reportID int64
	statuses map[int64]*dbmysql.Status
	views    map[pair]time.Time
	likes    map[pair]time.Time
	reports  map[pair]*dbmysql.StatusReport
	follows  map[int64]map[int64]time.Time

	// Fault, when set, is consulted before each write; a non-nil result is
	// returned instead of performing it.
	Fault func(op string) error
}

func New() *Store {
	return &Store{
		statuses: make(map[int64]*dbmysql.Status),
		views:    make(map[pair]time.Time),
		likes:    make(map[pair]time.Time),
		reports:  make(map[pair]*dbmysql.StatusReport),
		follows:  make(map[int64]map[int64]time.Time),
	}
}

func (s *Store) fault(op string) error {
	if s.Fault == nil {
		return nil
	}
	return s.Fault(op)
}

func notFound(id int64) error {
	return fmt.Errorf("status %d: %w", id, common.ErrNotFound)
}

// --------- STATUSES ---------

func (s *Store) CreateStatus(ctx context.Context, st *dbmysql.Status) error {
	if err := s.fault("create_status"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	st.StatusID = s.nextID
	cp := *st
	s.statuses[st.StatusID] = &cp
	return nil
}

func (s *Store) GetStatus(ctx context.Context, id int64) (*dbmysql.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *st
	return &cp, nil
}

func (s *Store) ListByPublisher(ctx context.Context, publisherID int64, approvedOnly bool, now time.Time) ([]dbmysql.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []dbmysql.Status
	for _, st := range s.statuses {
		if st.PublisherID != publisherID || !now.Before(st.ExpiresAt) || st.ModerationState == common.ModerationExpired {
			continue
		}
		if approvedOnly && st.ModerationState != common.ModerationApproved {
			continue
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].StatusID < out[j].StatusID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteStatus(ctx context.Context, id int64) error {
	if err := s.fault("delete_status"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.statuses[id]; !ok {
		return notFound(id)
	}
	delete(s.statuses, id)
	for k := range s.views {
		if k.statusID == id {
			delete(s.views, k)
		}
	}
	for k := range s.likes {
		if k.statusID == id {
			delete(s.likes, k)
		}
	}
	for k := range s.reports {
		if k.statusID == id {
			delete(s.reports, k)
		}
	}
	return nil
}

// --------- MODERATION ---------

func (s *Store) CompareAndSetState(ctx context.Context, id int64, from, to common.ModerationState, reason *string, now time.Time) (bool, error) {
	if err := s.fault("set_state"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[id]
	if !ok || st.ModerationState != from || !now.Before(st.ExpiresAt) {
		return false, nil
	}
	st.ModerationState = to
	if reason != nil {
		r := *reason
		st.RejectionReason = &r
	} else {
		st.RejectionReason = nil
	}
	st.UpdatedAt = now
	return true, nil
}

func (s *Store) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	if err := s.fault("expire_due"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, st := range s.statuses {
		if st.ModerationState != common.ModerationExpired && !now.Before(st.ExpiresAt) {
			st.ModerationState = common.ModerationExpired
			st.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// --------- ENGAGEMENT ---------

func (s *Store) InsertView(ctx context.Context, statusID, viewerID int64, at time.Time) (bool, error) {
	if err := s.fault("insert_view"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[statusID]
	if !ok {
		return false, notFound(statusID)
	}
	k := pair{statusID, viewerID}
	if _, dup := s.views[k]; dup {
		return false, nil
	}
	s.views[k] = at
	st.ViewCount++
	return true, nil
}

func (s *Store) InsertLike(ctx context.Context, statusID, viewerID int64, at time.Time) (bool, error) {
	if err := s.fault("insert_like"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[statusID]
	if !ok {
		return false, notFound(statusID)
	}
	k := pair{statusID, viewerID}
	if _, dup := s.likes[k]; dup {
		return false, nil
	}
	s.likes[k] = at
	st.LikeCount++
	return true, nil
}

func (s *Store) DeleteLike(ctx context.Context, statusID, viewerID int64) (bool, error) {
	if err := s.fault("delete_like"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := pair{statusID, viewerID}
	if _, ok := s.likes[k]; !ok {
		return false, nil
	}
	delete(s.likes, k)
	if st, ok := s.statuses[statusID]; ok && st.LikeCount > 0 {
		st.LikeCount--
	}
	return true, nil
}

func (s *Store) Counts(ctx context.Context, statusID int64) (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[statusID]
	if !ok {
		return 0, 0, notFound(statusID)
	}
	return st.ViewCount, st.LikeCount, nil
}

// --------- REPORTS ---------

func (s *Store) InsertReport(ctx context.Context, r *dbmysql.StatusReport) (bool, error) {
	if err := s.fault("insert_report"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.statuses[r.StatusID]; !ok {
		return false, notFound(r.StatusID)
	}
	k := pair{r.StatusID, r.ViewerID}
	if _, dup := s.reports[k]; dup {
		return false, nil
	}
	cp := *r
	s.reportID++
	cp.ID = s.reportID
	r.ID = cp.ID
	s.reports[k] = &cp
	return true, nil
}

func (s *Store) HasReport(ctx context.Context, statusID, viewerID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.reports[pair{statusID, viewerID}]
	return ok, nil
}

// Report returns a copy of the stored report, if any.
func (s *Store) Report(statusID, viewerID int64) (*dbmysql.StatusReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[pair{statusID, viewerID}]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

func (s *Store) ReportCount(statusID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k := range s.reports {
		if k.statusID == statusID {
			n++
		}
	}
	return n
}

// --------- FOLLOWS ---------

func (s *Store) Follow(ctx context.Context, viewerID, publisherID int64, at time.Time) error {
	if err := s.fault("follow"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.follows[viewerID] == nil {
		s.follows[viewerID] = make(map[int64]time.Time)
	}
	if _, ok := s.follows[viewerID][publisherID]; !ok {
		s.follows[viewerID][publisherID] = at
	}
	return nil
}

func (s *Store) Unfollow(ctx context.Context, viewerID, publisherID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.follows[viewerID], publisherID)
	return nil
}

func (s *Store) FollowedPublishers(ctx context.Context, viewerID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.follows[viewerID]))
	for id := range s.follows[viewerID] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
