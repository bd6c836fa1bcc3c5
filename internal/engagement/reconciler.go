package engagement

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"gostatus/internal/config"
	"gostatus/internal/logger"

	"github.com/sirupsen/logrus"
)

type ViewJob struct {
	StatusID int64
	ViewerID int64
	ViewedAt time.Time
}

type viewWriter interface {
	InsertView(ctx context.Context, statusID, viewerID int64, at time.Time) (bool, error)
}

// Reconciler replays view writes that failed inline on a small worker pool.
type Reconciler struct {
	repo       viewWriter
	jobs       chan ViewJob
	workerPool int
	maxRetries int
	retryDelay time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	applied atomic.Int64
	dropped atomic.Int64
}

func NewReconciler(repo viewWriter, cfg config.EngagementConfig) *Reconciler {
	ctx, cancel := context.WithCancel(context.Background())

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	buffer := cfg.ChannelBufferSize
	if buffer <= 0 {
		buffer = 100
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 1
	}

	r := &Reconciler{
		repo:       repo,
		jobs:       make(chan ViewJob, buffer),
		workerPool: workers,
		maxRetries: retries,
		retryDelay: time.Duration(cfg.RetryDelay) * time.Millisecond,
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.processJobs()
	}
	return r
}

// Enqueue never blocks; a full queue drops the job and reports false.
func (r *Reconciler) Enqueue(job ViewJob) bool {
	if r.ctx.Err() != nil {
		return false
	}
	select {
	case r.jobs <- job:
		return true
	default:
		r.dropped.Add(1)
		logger.Log.WithFields(logrus.Fields{
			"status_id": job.StatusID,
			"viewer_id": job.ViewerID,
		}).Error("reconciliation queue full, dropping view")
		return false
	}
}

func (r *Reconciler) processJobs() {
	defer r.wg.Done()

	for {
		select {
		case job := <-r.jobs:
			r.apply(job)
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Reconciler) apply(job ViewJob) {
	entry := logger.Log.WithFields(logrus.Fields{
		"status_id": job.StatusID,
		"viewer_id": job.ViewerID,
	})

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(r.ctx, 5*time.Second)
		_, err := r.repo.InsertView(ctx, job.StatusID, job.ViewerID, job.ViewedAt)
		cancel()
		if err == nil {
			r.applied.Add(1)
			entry.WithField("attempt", attempt).Info("view reconciled")
			return
		}
		if !isTransient(err) {
			r.dropped.Add(1)
			entry.WithError(err).Warn("view reconciliation abandoned")
			return
		}

		select {
		case <-time.After(r.retryDelay * time.Duration(attempt)):
		case <-r.ctx.Done():
			return
		}
	}
	r.dropped.Add(1)
	entry.Error("view reconciliation gave up after retries")
}

// Stats returns how many queued views were applied and dropped so far.
func (r *Reconciler) Stats() (applied, dropped int64) {
	return r.applied.Load(), r.dropped.Load()
}

func (r *Reconciler) Shutdown() {
	r.cancel()
	r.wg.Wait()
	logger.Log.Info("engagement reconciler stopped")
}
