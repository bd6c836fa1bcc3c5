package moderation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"
	"gostatus/internal/logger"

	"github.com/sirupsen/logrus"
)

const (
	maxCASAttempts  = 3
	maxReasonLength = 500
)

// Gate runs the moderation state machine over every registered kind.
type Gate struct {
	mu     sync.RWMutex
	stores map[Kind]Store
	clock  common.Clock
}

func NewGate(clock common.Clock) *Gate {
	return &Gate{stores: make(map[Kind]Store), clock: clock}
}

func (g *Gate) Register(kind Kind, store Store) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stores[kind] = store
}

func (g *Gate) store(kind Kind) (Store, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.stores[kind]
	if !ok {
		return nil, common.Validationf("unknown content kind %q", kind)
	}
	return s, nil
}

func (g *Gate) Approve(ctx context.Context, kind Kind, id int64) (*Subject, error) {
	return g.transition(ctx, kind, id, common.ModerationApproved, nil)
}

func (g *Gate) Reject(ctx context.Context, kind Kind, id int64, reason string) (*Subject, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, common.Validationf("rejection reason is required")
	}
	if len(reason) > maxReasonLength {
		return nil, common.Validationf("rejection reason must be at most %d characters", maxReasonLength)
	}
	return g.transition(ctx, kind, id, common.ModerationRejected, &reason)
}

func (g *Gate) CancelRejection(ctx context.Context, kind Kind, id int64) (*Subject, error) {
	return g.transition(ctx, kind, id, common.ModerationPending, nil)
}

func (g *Gate) transition(ctx context.Context, kind Kind, id int64, to common.ModerationState, reason *string) (*Subject, error) {
	store, err := g.store(kind)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		subj, err := store.Load(ctx, id)
		if err != nil {
			return nil, err
		}

		now := g.clock.Now()
		if subj.State == common.ModerationExpired || !now.Before(subj.ExpiresAt) {
			return nil, fmt.Errorf("%s %d is expired: %w", kind, id, common.ErrInvalidTransition)
		}
		if isNoop(subj.State, to) {
			return subj, nil
		}
		if !CanTransition(subj.State, to) {
			return nil, fmt.Errorf("%s %d: %s -> %s: %w", kind, id, subj.State, to, common.ErrInvalidTransition)
		}

		ok, err := store.CompareAndSet(ctx, id, subj.State, to, reason, now)
		if err != nil {
			return nil, fmt.Errorf("update %s %d: %w", kind, id, err)
		}
		if ok {
			logger.Log.WithFields(logrus.Fields{
				"kind": kind,
				"id":   id,
				"from": subj.State,
				"to":   to,
			}).Info("moderation transition")
			subj.State = to
			subj.Reason = reason
			return subj, nil
		}
		// lost a race; reload and re-check
	}
	return nil, fmt.Errorf("%s %d changed concurrently: %w", kind, id, common.ErrConflict)
}

// Sweep expires everything due at the gate's current time.
func (g *Gate) Sweep(ctx context.Context) (int64, error) {
	return g.SweepAt(ctx, g.clock.Now())
}

func (g *Gate) SweepAt(ctx context.Context, now time.Time) (int64, error) {
	g.mu.RLock()
	stores := make(map[Kind]Store, len(g.stores))
	for k, s := range g.stores {
		stores[k] = s
	}
	g.mu.RUnlock()

	var total int64
	for kind, store := range stores {
		n, err := store.ExpireDue(ctx, now)
		if err != nil {
			return total, fmt.Errorf("sweep %s: %w", kind, err)
		}
		total += n
	}
	return total, nil
}

func (g *Gate) Visible(s *dbmysql.Status, viewerID int64) bool {
	return Visible(s, viewerID, g.clock.Now())
}
