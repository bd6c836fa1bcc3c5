//go:build wireinject
// +build wireinject

package di

import (
	"gostatus/internal/engagement"
	"gostatus/internal/moderation"
	"gostatus/internal/playback"
	"gostatus/internal/report"

	"github.com/google/wire"
)

// InitializeApplication is expanded by wire into wire_gen.go.
func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideClock,
		ProvideStores,
		ProvideMongo,
		ProvideMediaStorage,
		ProvideMediaRemover,
		ProvideMediaLimits,
		ProvideMediaServer,
		ProvideGate,
		ProvideSweepScheduler,
		ProvideStatusService,
		ProvideStatusHandler,
		ProvideReconciler,
		ProvideTracker,
		engagement.NewHandler,
		ProvideReportService,
		report.NewHandler,
		ProvideAssembler,
		ProvideFeedHandler,
		ProvideHydrator,
		ProvidePlaybackRegistry,
		playback.NewHandler,
		moderation.NewHTTPHandler,
		moderation.NewGRPCHandler,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
