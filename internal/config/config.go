package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// MongoDB holds status media (GridFS)
	MongoDB MongoDBConfig `json:"mongodb"`

	Auth AuthConfig `json:"auth"`

	// Status creation limits
	Status StatusConfig `json:"status"`

	Playback PlaybackConfig `json:"playback"`

	// Expiry sweep schedule
	Sweep SweepConfig `json:"sweep"`

	// Engagement reconciliation workers
	Engagement EngagementConfig `json:"engagement"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host         string `json:"host"`
	HTTPPort     string `json:"http_port"`
	GRPCPort     string `json:"grpc_port"`
	ReadTimeout  int    `json:"read_timeout"`  // Seconds
	WriteTimeout int    `json:"write_timeout"` // Seconds
	Environment  string `json:"environment"`   // development, staging, production
	MediaBaseURL string `json:"media_base_url"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver       string `json:"driver"` // mysql, postgres, memory
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	SSLMode      string `json:"ssl_mode"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

type MongoDBConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	Bucket   string `json:"bucket"`
}

type AuthConfig struct {
	JWTSecret string `json:"-"`
}

// StatusConfig bounds what a publisher may attach to a status
type StatusConfig struct {
	MaxVideoBytes    int64 `json:"max_video_bytes"`
	MaxImageBytes    int64 `json:"max_image_bytes"`
	MaxCaptionLength int   `json:"max_caption_length"`
}

type PlaybackConfig struct {
	ItemDuration time.Duration `json:"item_duration"`
}

type SweepConfig struct {
	CronSpec string        `json:"cron_spec"`
	Timeout  time.Duration `json:"timeout"`
}

// EngagementConfig contains the view reconciliation worker configuration
type EngagementConfig struct {
	Workers           int `json:"workers"`             // Number of worker goroutines
	ChannelBufferSize int `json:"channel_buffer_size"` // Channel buffer size
	MaxRetries        int `json:"max_retries"`         // Max retry attempts
	RetryDelay        int `json:"retry_delay"`         // Milliseconds
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // json, text
	OutputPath string `json:"output_path"` // stdout, stderr, or file path
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	host := getEnv("SERVER_HOST", "localhost")
	httpPort := getEnv("HTTP_PORT", "8080")

	return &Config{
		Server: ServerConfig{
			Host:         host,
			HTTPPort:     httpPort,
			GRPCPort:     getEnv("GRPC_PORT", "7005"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
			Environment:  getEnv("ENVIRONMENT", "development"),
			MediaBaseURL: getEnv("MEDIA_BASE_URL", fmt.Sprintf("http://%s:%s/media", host, httpPort)),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "mysql")),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "3306"),
			Username:     getEnv("DB_USER", "gostatus"),
			Password:     getEnv("DB_PASSWORD", "gostatus123"),
			DatabaseName: getEnv("DB_NAME", "gostatus"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		MongoDB: MongoDBConfig{
			Enabled:  getEnvAsBool("MONGO_ENABLED", true),
			Host:     getEnv("MONGO_HOST", "localhost"),
			Port:     getEnv("MONGO_PORT", "27017"),
			Username: getEnv("MONGO_USERNAME", ""),
			Password: getEnv("MONGO_PASSWORD", ""),
			Database: getEnv("MONGO_DATABASE", "gostatus"),
			Bucket:   getEnv("MONGO_BUCKET", "status_media"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret"),
		},
		Status: StatusConfig{
			MaxVideoBytes:    int64(getEnvAsInt("STATUS_MAX_VIDEO_BYTES", 50<<20)),
			MaxImageBytes:    int64(getEnvAsInt("STATUS_MAX_IMAGE_BYTES", 10<<20)),
			MaxCaptionLength: getEnvAsInt("STATUS_MAX_CAPTION", 500),
		},
		Playback: PlaybackConfig{
			ItemDuration: time.Duration(getEnvAsInt("PLAYBACK_ITEM_DURATION_MS", 5000)) * time.Millisecond,
		},
		Sweep: SweepConfig{
			CronSpec: getEnv("SWEEP_CRON", "@every 1m"),
			Timeout:  time.Duration(getEnvAsInt("SWEEP_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Engagement: EngagementConfig{
			Workers:           getEnvAsInt("ENGAGEMENT_WORKERS", 4),
			ChannelBufferSize: getEnvAsInt("ENGAGEMENT_BUFFER", 1000),
			MaxRetries:        getEnvAsInt("ENGAGEMENT_MAX_RETRIES", 3),
			RetryDelay:        getEnvAsInt("ENGAGEMENT_RETRY_DELAY", 200),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "text"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
	}
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) PostgresDSN() string {
	port := cfg.Database.Port
	if port == "" || port == "3306" {
		port = "5432"
	}
	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Database.Host,
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.DatabaseName,
		port,
		sslMode,
	)
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.Username != "" && cfg.MongoDB.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
			cfg.MongoDB.Username,
			cfg.MongoDB.Password,
			cfg.MongoDB.Host,
			cfg.MongoDB.Port,
			cfg.MongoDB.Database,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
}

func (cfg *Config) IsProduction() bool {
	return cfg.Server.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
