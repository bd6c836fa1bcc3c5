package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/di"
	"gostatus/internal/logger"
	"gostatus/internal/moderation"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	app, cleanup, err := di.InitializeApplication()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to initialize application")
	}
	defer cleanup()
	cfg := app.Config

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:        setupRouter(app),
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			loggingUnaryInterceptor,
			common.AuthInterceptor(cfg.Auth.JWTSecret, moderation.ServiceName),
		),
	)
	moderation.RegisterModerationServer(grpcServer, app.ModerationGRPC)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(moderation.ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		logger.Log.WithError(err).Fatalf("failed to listen on port %s", cfg.Server.GRPCPort)
	}

	if err := app.Sweeper.Start(); err != nil {
		logger.Log.WithError(err).Fatal("failed to start expiry sweep")
	}

	go func() {
		logger.Log.Infof("gRPC server listening on %s", lis.Addr())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Log.WithError(err).Fatal("gRPC server failed")
		}
	}()

	go func() {
		logger.Log.Infof("HTTP server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	healthServer.Shutdown()
	app.Sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Warn("HTTP server forced to shutdown")
	}
	grpcServer.GracefulStop()

	applied, dropped := app.Reconciler.Stats()
	logger.Log.WithFields(logrus.Fields{
		"views_reconciled": applied,
		"views_dropped":    dropped,
	}).Info("server stopped")
}

func loggingUnaryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	entry := logger.Log.WithFields(logrus.Fields{
		"method":   info.FullMethod,
		"duration": time.Since(start),
	})
	if err != nil {
		entry.WithError(err).Warn("gRPC call failed")
	} else {
		entry.Debug("gRPC call completed")
	}
	return resp, err
}
