package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Queue       QueueConfig
	Extractor   ExtractorConfig
	Transcriber TranscriberConfig
	Matcher     MatcherConfig
	Ranker      RankerConfig
	Ingest      IngestConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int
	MetricsPort     int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestDeadline time.Duration
	MaxUploadSize   int64
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	LinesTTL time.Duration
	MovieTTL time.Duration
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
}

// QueueConfig holds message queue configuration
type QueueConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Vhost    string
}

// ExtractorConfig holds extraction strategy chain configuration
type ExtractorConfig struct {
	StrategyTimeout time.Duration
	MetadataTimeout time.Duration
	RatePerSecond   float64
	Burst           int
	CookieFile      string
	MaxBodyBytes    int64
	UserAgent       string
	FallbackAgent   string
}

// TranscriberConfig holds speech-to-text configuration
type TranscriberConfig struct {
	Endpoint       string
	Model          string
	Deadline       time.Duration
	FFmpegPath     string
	FFprobePath    string
	TempDir        string
	WordsPerSecond float64
}

// MatcherConfig holds subtitle matching configuration
type MatcherConfig struct {
	WindowSlack   float64
	WindowFloor   time.Duration
	WindowCeiling time.Duration
	MinEvidence   int
	Workers       int
}

// RankerConfig holds result ranking configuration
type RankerConfig struct {
	MinConfidence float64
	MaxResults    int
}

// IngestConfig holds subtitle ingestion configuration
type IngestConfig struct {
	APIBaseURL string
	APIKey     string
	Username   string
	Password   string
	UserAgent  string
	Language   string
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.metricsPort", 9091)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.readTimeout", "30s")
	viper.SetDefault("server.writeTimeout", "60s")
	viper.SetDefault("server.shutdownTimeout", "10s")
	viper.SetDefault("server.requestDeadline", "90s")
	viper.SetDefault("server.maxUploadSize", 200*1024*1024) // 200MB

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "cineshazam")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxConns", 25)
	viper.SetDefault("database.minConns", 5)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.linesTTL", "30m")
	viper.SetDefault("redis.movieTTL", "10m")

	// Storage defaults
	viper.SetDefault("storage.endpoint", "localhost:9000")
	viper.SetDefault("storage.accessKeyID", "minioadmin")
	viper.SetDefault("storage.secretAccessKey", "minioadmin")
	viper.SetDefault("storage.bucketName", "clips")
	viper.SetDefault("storage.region", "us-east-1")
	viper.SetDefault("storage.useSSL", false)

	// Queue defaults
	viper.SetDefault("queue.host", "localhost")
	viper.SetDefault("queue.port", 5672)
	viper.SetDefault("queue.user", "guest")
	viper.SetDefault("queue.password", "guest")
	viper.SetDefault("queue.vhost", "/")

	// Extractor defaults
	viper.SetDefault("extractor.strategyTimeout", "20s")
	viper.SetDefault("extractor.metadataTimeout", "8s")
	viper.SetDefault("extractor.ratePerSecond", 2.0)
	viper.SetDefault("extractor.burst", 4)
	viper.SetDefault("extractor.cookieFile", "")
	viper.SetDefault("extractor.maxBodyBytes", 50*1024*1024) // 50MB
	viper.SetDefault("extractor.userAgent", "CineShazam/1.0")
	viper.SetDefault("extractor.fallbackAgent", "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0")

	// Transcriber defaults
	viper.SetDefault("transcriber.endpoint", "http://localhost:9090")
	viper.SetDefault("transcriber.model", "base")
	viper.SetDefault("transcriber.deadline", "60s")
	viper.SetDefault("transcriber.ffmpegPath", "ffmpeg")
	viper.SetDefault("transcriber.ffprobePath", "ffprobe")
	viper.SetDefault("transcriber.tempDir", "/tmp/cineshazam")
	viper.SetDefault("transcriber.wordsPerSecond", 2.5)

	// Matcher defaults
	viper.SetDefault("matcher.windowSlack", 1.3)
	viper.SetDefault("matcher.windowFloor", "20s")
	viper.SetDefault("matcher.windowCeiling", "10m")
	viper.SetDefault("matcher.minEvidence", 2)
	viper.SetDefault("matcher.workers", 4)

	// Ranker defaults
	viper.SetDefault("ranker.minConfidence", 0.35)
	viper.SetDefault("ranker.maxResults", 10)

	// Ingest defaults
	viper.SetDefault("ingest.apiBaseURL", "https://api.opensubtitles.com/api/v1")
	viper.SetDefault("ingest.apiKey", "")
	viper.SetDefault("ingest.username", "")
	viper.SetDefault("ingest.password", "")
	viper.SetDefault("ingest.userAgent", "CineShazam v1.0.0")
	viper.SetDefault("ingest.language", "en")
}
