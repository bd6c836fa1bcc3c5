package moderation

import (
	"context"
	"time"

	"gostatus/internal/logger"

	"github.com/robfig/cron/v3"
)

type sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// SweepScheduler runs the expiry sweep on a cron schedule.
type SweepScheduler struct {
	cronEngine *cron.Cron
	gate       sweeper
	spec       string
	timeout    time.Duration
}

func NewSweepScheduler(gate *Gate, spec string, timeout time.Duration) *SweepScheduler {
	return newSweepScheduler(gate, spec, timeout)
}

func newSweepScheduler(gate sweeper, spec string, timeout time.Duration) *SweepScheduler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SweepScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		gate:       gate,
		spec:       spec,
		timeout:    timeout,
	}
}

func (s *SweepScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.spec, s.runSweep); err != nil {
		return err
	}
	s.cronEngine.Start()
	logger.Log.WithField("spec", s.spec).Info("expiry sweep scheduled")
	return nil
}

func (s *SweepScheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.gate.Sweep(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("expiry sweep failed")
		return
	}
	if n > 0 {
		logger.Log.WithField("expired", n).Info("expiry sweep done")
	}
}

// Stop waits for a running sweep to finish.
func (s *SweepScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
}
