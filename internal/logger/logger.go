package logger

import (
	"io"
	"os"
	"strings"

	"gostatus/internal/config"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance
var Log = logrus.New()

// Init configures the global logger from the logging and server sections.
func Init(cfg *config.Config) {
	Log.SetOutput(outputFor(cfg.Logging.OutputPath))

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.Logging.Level, err)
		Log.SetLevel(logrus.InfoLevel)
	} else {
		Log.SetLevel(level)
	}

	if useJSON(cfg) {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	Log.Debugf("Log level set to: %s", Log.GetLevel().String())
}

func useJSON(cfg *config.Config) bool {
	if strings.EqualFold(cfg.Logging.Format, "json") {
		return true
	}
	env := strings.ToLower(cfg.Server.Environment)
	return env == "production" || env == "staging"
}

func outputFor(path string) io.Writer {
	switch strings.ToLower(path) {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		Log.Warnf("Cannot open log file %s, using stdout: %v", path, err)
		return os.Stdout
	}
	return f
}

// Get returns the configured global logger.
func Get() *logrus.Logger {
	return Log
}
