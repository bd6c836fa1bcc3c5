package main

import (
	"net/http"
	"time"

	"gostatus/internal/common"
	"gostatus/internal/di"
	"gostatus/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func setupRouter(app *di.Application) http.Handler {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware)

	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)
	if app.Media != nil {
		app.Media.DownloadRoutes(router)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(common.HTTPAuth(app.Config.Auth.JWTSecret))

	if app.Media != nil {
		app.Media.UploadRoutes(api)
	}
	app.StatusHandler.Routes(api)
	app.FeedHandler.Routes(api)
	app.EngagementHandler.Routes(api)
	app.ReportHandler.Routes(api)
	app.PlaybackHandler.Routes(api)
	app.ModerationHTTP.Routes(api)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	return c.Handler(router)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start),
			"request_id": w.Header().Get("X-Request-ID"),
		}).Info("http request")
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "gostatus"})
}
