package moderation

import (
	"time"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"
)

// Kind tags the type of content flowing through the gate.
type Kind string

const KindStatus Kind = "status"

// Subject is the moderation view of one piece of content.
type Subject struct {
	Kind      Kind                   `json:"kind"`
	ID        int64                  `json:"id"`
	OwnerID   int64                  `json:"owner_id"`
	State     common.ModerationState `json:"state"`
	Reason    *string                `json:"reason,omitempty"`
	ExpiresAt time.Time              `json:"expires_at"`
}

var transitions = map[common.ModerationState]map[common.ModerationState]bool{
	common.ModerationPending:  {common.ModerationApproved: true, common.ModerationRejected: true},
	common.ModerationRejected: {common.ModerationApproved: true, common.ModerationRejected: true, common.ModerationPending: true},
	common.ModerationApproved: {},
	common.ModerationExpired:  {},
}

// CanTransition reports whether from -> to is a legal move. Expired is
// terminal and reachable from everything else.
func CanTransition(from, to common.ModerationState) bool {
	if from == common.ModerationExpired {
		return false
	}
	if to == common.ModerationExpired {
		return true
	}
	return transitions[from][to]
}

// isNoop covers approving an approved item and cancelling a rejection that
// is already pending. Re-rejecting is not a no-op because the reason changes.
func isNoop(from, to common.ModerationState) bool {
	return from == to && to != common.ModerationRejected
}

// Visible is true for the publisher, or for an approved status that has not
// reached its expiry yet.
func Visible(s *dbmysql.Status, viewerID int64, now time.Time) bool {
	if s == nil {
		return false
	}
	if viewerID == s.PublisherID {
		return true
	}
	return s.ModerationState == common.ModerationApproved && now.Before(s.ExpiresAt)
}

// Expired is true once a status has been swept or has reached expires_at,
// whichever comes first. It holds for the publisher too.
func Expired(s *dbmysql.Status, now time.Time) bool {
	return s.ModerationState == common.ModerationExpired || s.IsExpired(now)
}
