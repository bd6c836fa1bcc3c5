package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"
	"gostatus/internal/logger"
	"gostatus/internal/moderation"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	maxConcurrentLoads = 8
)

// Group is one publisher's visible statuses, oldest first.
type Group struct {
	PublisherID int64
	Statuses    []dbmysql.Status
	LatestAt    time.Time
	LatestID    int64
}

type Page struct {
	Groups     []Group
	NextOffset int
	HasMore    bool
}

type Assembler struct {
	statuses StatusLister
	follows  FollowRepository
	clock    common.Clock
}

func NewAssembler(statuses StatusLister, follows FollowRepository, clock common.Clock) *Assembler {
	return &Assembler{statuses: statuses, follows: follows, clock: clock}
}

// AssembleOwnFeed returns every live status of the publisher, including
// pending and rejected ones.
func (a *Assembler) AssembleOwnFeed(ctx context.Context, publisherID int64) (*Group, error) {
	return a.PublisherGroup(ctx, publisherID, publisherID)
}

// PublisherGroup loads the statuses of publisherID that viewerID may see.
func (a *Assembler) PublisherGroup(ctx context.Context, viewerID, publisherID int64) (*Group, error) {
	now := a.clock.Now()
	list, err := a.statuses.ListByPublisher(ctx, publisherID, viewerID != publisherID, now)
	if err != nil {
		return nil, fmt.Errorf("list statuses of %d: %w", publisherID, err)
	}

	g := &Group{PublisherID: publisherID}
	for _, st := range list {
		if moderation.Expired(&st, now) || !moderation.Visible(&st, viewerID, now) {
			continue
		}
		g.Statuses = append(g.Statuses, st)
		if g.LatestAt.IsZero() || st.CreatedAt.After(g.LatestAt) ||
			(st.CreatedAt.Equal(g.LatestAt) && st.StatusID > g.LatestID) {
			g.LatestAt = st.CreatedAt
			g.LatestID = st.StatusID
		}
	}
	return g, nil
}

// AssembleFollowedFeed groups the visible statuses of every followed
// publisher. Publishers with nothing to show are left out.
func (a *Assembler) AssembleFollowedFeed(ctx context.Context, viewerID int64, offset, limit int) (*Page, error) {
	if offset < 0 {
		return nil, common.Validationf("offset must not be negative")
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	publishers, err := a.follows.FollowedPublishers(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("followed publishers: %w", err)
	}

	loaded := make([]*Group, len(publishers))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentLoads)
	for i, pid := range publishers {
		i, pid := i, pid
		eg.Go(func() error {
			g, err := a.PublisherGroup(egCtx, viewerID, pid)
			if err != nil {
				return err
			}
			loaded[i] = g
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	groups := make([]Group, 0, len(loaded))
	for _, g := range loaded {
		if g != nil && len(g.Statuses) > 0 {
			groups = append(groups, *g)
		}
	}
	sortGroups(groups)

	logger.Log.WithFields(logrus.Fields{
		"viewer_id":  viewerID,
		"publishers": len(publishers),
		"groups":     len(groups),
	}).Debug("followed feed assembled")

	page := &Page{Groups: []Group{}}
	if offset >= len(groups) {
		return page, nil
	}
	end := offset + limit
	if end > len(groups) {
		end = len(groups)
	}
	page.Groups = groups[offset:end]
	page.HasMore = end < len(groups)
	if page.HasMore {
		page.NextOffset = end
	}
	return page, nil
}

// sortGroups orders by latest status descending; equal timestamps fall
// back to the latest status id, ascending.
func sortGroups(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		if !groups[i].LatestAt.Equal(groups[j].LatestAt) {
			return groups[i].LatestAt.After(groups[j].LatestAt)
		}
		return groups[i].LatestID < groups[j].LatestID
	})
}

func (a *Assembler) Follow(ctx context.Context, viewerID, publisherID int64) error {
	if publisherID <= 0 {
		return common.Validationf("invalid publisher id %d", publisherID)
	}
	if viewerID == publisherID {
		return common.Validationf("cannot follow yourself")
	}
	return a.follows.Follow(ctx, viewerID, publisherID, a.clock.Now())
}

func (a *Assembler) Unfollow(ctx context.Context, viewerID, publisherID int64) error {
	return a.follows.Unfollow(ctx, viewerID, publisherID)
}

func (a *Assembler) Following(ctx context.Context, viewerID int64) ([]int64, error) {
	return a.follows.FollowedPublishers(ctx, viewerID)
}
