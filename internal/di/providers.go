package di

import (
	"context"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/config"
	"gostatus/internal/dbmongo"
	"gostatus/internal/dbmysql"
	"gostatus/internal/engagement"
	"gostatus/internal/feed"
	"gostatus/internal/logger"
	"gostatus/internal/media"
	"gostatus/internal/memstore"
	"gostatus/internal/moderation"
	"gostatus/internal/playback"
	"gostatus/internal/report"
	"gostatus/internal/status"
)

type Application struct {
	Config     *config.Config
	Gate       *moderation.Gate
	Sweeper    *moderation.SweepScheduler
	Reconciler *engagement.Reconciler
	Playback   *playback.Registry

	StatusHandler     *status.Handler
	FeedHandler       *feed.Handler
	EngagementHandler *engagement.Handler
	ReportHandler     *report.Handler
	PlaybackHandler   *playback.Handler
	ModerationHTTP    *moderation.HTTPHandler
	ModerationGRPC    *moderation.GRPCHandler
	// Media is nil when MongoDB is disabled or unreachable.
	Media *media.HTTPServer
}

// Stores bundles the persistence backends of every component. With
// DB_DRIVER=memory all of them are the same in-process store.
type Stores struct {
	Status     status.Repository
	State      moderation.StatusStateRepository
	Engagement engagement.Repository
	Reports    report.Repository
	Follows    feed.FollowRepository
	Lister     feed.StatusLister
}

func ProvideConfig() *config.Config {
	cfg := config.LoadConfig()
	logger.Init(cfg)
	return cfg
}

func ProvideClock() common.Clock {
	return common.SystemClock{}
}

func ProvideStores(cfg *config.Config) (*Stores, func(), error) {
	if cfg.Database.Driver == "memory" {
		logger.Log.Warn("using in-memory store, data is lost on restart")
		mem := memstore.New()
		return &Stores{
			Status:     mem,
			State:      mem,
			Engagement: mem,
			Reports:    mem,
			Follows:    mem,
			Lister:     mem,
		}, func() {}, nil
	}

	db, err := dbmysql.NewDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	statuses := status.NewStatusRepository(db)
	return &Stores{
		Status:     statuses,
		State:      moderation.NewStateRepository(db),
		Engagement: engagement.NewEngagementRepository(db),
		Reports:    report.NewReportRepository(db),
		Follows:    feed.NewFollowRepository(db),
		Lister:     statuses,
	}, cleanup, nil
}

// ProvideMongo returns nil when media storage is disabled or unreachable;
// text statuses keep working without it.
func ProvideMongo(cfg *config.Config) (*dbmongo.MongoClient, func()) {
	if !cfg.MongoDB.Enabled {
		logger.Log.Info("MongoDB disabled, media endpoints off")
		return nil, func() {}
	}
	client, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		logger.Log.WithError(err).Warn("MongoDB unavailable, media endpoints off")
		return nil, func() {}
	}
	return client, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Close(ctx)
	}
}

func ProvideMediaStorage(client *dbmongo.MongoClient) *dbmongo.MediaStorage {
	if client == nil {
		return nil
	}
	return dbmongo.NewMediaStorage(client)
}

func ProvideMediaRemover(storage *dbmongo.MediaStorage) status.MediaRemover {
	if storage == nil {
		return nil
	}
	return storage
}

func ProvideMediaLimits(cfg *config.Config) common.MediaLimits {
	return common.MediaLimits{
		MaxVideoBytes:    cfg.Status.MaxVideoBytes,
		MaxImageBytes:    cfg.Status.MaxImageBytes,
		MaxCaptionLength: cfg.Status.MaxCaptionLength,
	}
}

func ProvideMediaServer(storage *dbmongo.MediaStorage, limits common.MediaLimits, cfg *config.Config) *media.HTTPServer {
	if storage == nil {
		return nil
	}
	return media.NewHTTPServer(storage, limits, cfg.Server.MediaBaseURL)
}

func ProvideGate(clock common.Clock, stores *Stores) *moderation.Gate {
	gate := moderation.NewGate(clock)
	gate.Register(moderation.KindStatus, moderation.NewStatusStore(stores.State))
	return gate
}

func ProvideSweepScheduler(gate *moderation.Gate, cfg *config.Config) *moderation.SweepScheduler {
	return moderation.NewSweepScheduler(gate, cfg.Sweep.CronSpec, cfg.Sweep.Timeout)
}

func ProvideStatusService(stores *Stores, remover status.MediaRemover, clock common.Clock, limits common.MediaLimits) *status.Service {
	return status.NewService(stores.Status, remover, clock, limits)
}

func ProvideStatusHandler(svc *status.Service, cfg *config.Config) *status.Handler {
	return status.NewHandler(svc, cfg.Server.MediaBaseURL)
}

func ProvideReconciler(stores *Stores, cfg *config.Config) (*engagement.Reconciler, func()) {
	r := engagement.NewReconciler(stores.Engagement, cfg.Engagement)
	return r, r.Shutdown
}

func ProvideTracker(stores *Stores, gate *moderation.Gate, reconciler *engagement.Reconciler, clock common.Clock, cfg *config.Config) *engagement.Tracker {
	retryDelay := time.Duration(cfg.Engagement.RetryDelay) * time.Millisecond
	return engagement.NewTracker(stores.Engagement, gate, reconciler, clock, retryDelay)
}

func ProvideReportService(stores *Stores, gate *moderation.Gate, clock common.Clock) *report.Service {
	return report.NewService(stores.Reports, gate, clock)
}

func ProvideAssembler(stores *Stores, clock common.Clock) *feed.Assembler {
	return feed.NewAssembler(stores.Lister, stores.Follows, clock)
}

func ProvideFeedHandler(assembler *feed.Assembler, cfg *config.Config) *feed.Handler {
	return feed.NewHandler(assembler, cfg.Server.MediaBaseURL)
}

func ProvideHydrator(stores *Stores, gate *moderation.Gate, tracker *engagement.Tracker, clock common.Clock, cfg *config.Config) playback.Hydrator {
	return playback.NewDetailHydrator(stores.Status, gate, tracker, clock, cfg.Server.MediaBaseURL)
}

func ProvidePlaybackRegistry(assembler *feed.Assembler, hydrator playback.Hydrator, cfg *config.Config) (*playback.Registry, func()) {
	r := playback.NewRegistry(assembler, hydrator, playback.SystemClock{}, cfg.Playback, cfg.Server.MediaBaseURL)
	return r, r.CloseAll
}
