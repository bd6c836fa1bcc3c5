package report

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"gostatus/internal/common"
	"gostatus/internal/dbmysql"
	"gostatus/internal/logger"

	"github.com/sirupsen/logrus"
)

const maxDescriptionLength = 1000

type Reason struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var reasons = []Reason{
	{Code: "spam", Label: "Spam"},
	{Code: "inappropriate", Label: "Inappropriate content"},
	{Code: "harassment", Label: "Harassment or bullying"},
	{Code: "other", Label: "Other"},
}

type Result struct {
	StatusID   int64  `json:"status_id"`
	ReasonCode string `json:"reason_code"`
	// Duplicate is set when an earlier report from the same viewer exists.
	Duplicate bool `json:"duplicate"`
}

type Visibility interface {
	Visible(s *dbmysql.Status, viewerID int64) bool
}

type Service struct {
	repo       Repository
	visibility Visibility
	clock      common.Clock
}

func NewService(repo Repository, visibility Visibility, clock common.Clock) *Service {
	return &Service{repo: repo, visibility: visibility, clock: clock}
}

func (s *Service) ListReasons() []Reason {
	out := make([]Reason, len(reasons))
	copy(out, reasons)
	return out
}

func knownReason(code string) bool {
	for _, r := range reasons {
		if r.Code == code {
			return true
		}
	}
	return false
}

func (s *Service) Submit(ctx context.Context, statusID, viewerID int64, reasonCode string, description *string) (*Result, error) {
	if !knownReason(reasonCode) {
		return nil, common.Validationf("unknown reason %q", reasonCode)
	}
	if description != nil {
		trimmed := capRunes(strings.TrimSpace(*description), maxDescriptionLength)
		if trimmed == "" {
			description = nil
		} else {
			description = &trimmed
		}
	}

	st, err := s.repo.GetStatus(ctx, statusID)
	if err != nil {
		return nil, err
	}
	if s.visibility != nil && !s.visibility.Visible(st, viewerID) {
		return nil, fmt.Errorf("status %d: %w", statusID, common.ErrNotFound)
	}

	inserted, err := s.repo.InsertReport(ctx, &dbmysql.StatusReport{
		StatusID:    statusID,
		ViewerID:    viewerID,
		ReasonCode:  reasonCode,
		Description: description,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("submit report: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"status_id": statusID,
		"viewer_id": viewerID,
		"reason":    reasonCode,
		"duplicate": !inserted,
	}).Info("status reported")

	return &Result{StatusID: statusID, ReasonCode: reasonCode, Duplicate: !inserted}, nil
}

func (s *Service) HasReported(ctx context.Context, statusID, viewerID int64) (bool, error) {
	return s.repo.HasReport(ctx, statusID, viewerID)
}

// capRunes cuts s to at most n runes.
func capRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
