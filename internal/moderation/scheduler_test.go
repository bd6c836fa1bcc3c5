package moderation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) Sweep(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("sweep must run with a deadline")
	}
	return 2, c.err
}

func TestSweepScheduler_RunSweep(t *testing.T) {
	sw := &countingSweeper{}
	s := newSweepScheduler(sw, "@every 1m", time.Second)

	s.runSweep()
	sw.err = errors.New("db down")
	s.runSweep()

	assert.Equal(t, int32(2), sw.calls.Load())
}

func TestSweepScheduler_InvalidSpec(t *testing.T) {
	s := newSweepScheduler(&countingSweeper{}, "not a cron spec", 0)
	assert.Error(t, s.Start())
}

func TestSweepScheduler_StartStop(t *testing.T) {
	s := newSweepScheduler(&countingSweeper{}, "@every 1h", time.Second)
	assert.NoError(t, s.Start())
	s.Stop()
}
