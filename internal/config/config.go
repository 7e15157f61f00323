package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ストレージバックエンドの種別。
const (
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// maxYouTubeResults は YouTube Data API の maxResults 上限。
const maxYouTubeResults = 50

// defaultYouTubeChannelID は動画・統計を表示するチャンネル。
const defaultYouTubeChannelID = "UCBJycsmduvYEL83R_U4JriQ"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Storage
	StorageBackend       string
	DatabaseURL          string
	DynamoDBTableName    string
	DynamoDBEndpoint     string
	StorageRetentionDays int
	CleanupInterval      time.Duration

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitOrder   int

	// YouTube
	YouTubeAPIKey       string
	YouTubeChannelID    string
	YouTubeAPIBaseURL   string
	YouTubeFeedFallback bool
	YouTubeTimeout      time.Duration
	YouTubeCacheTTL     time.Duration
	YouTubeMaxResults   int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 選択したストレージバックエンドに必要な環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.StorageBackend = strings.ToLower(getEnvString("STORAGE_BACKEND", BackendPostgres))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DynamoDBTableName = os.Getenv("DYNAMODB_TABLE_NAME")

	// Required fields
	var missing []string

	switch cfg.StorageBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendDynamoDB:
		if cfg.DynamoDBTableName == "" {
			missing = append(missing, "DYNAMODB_TABLE_NAME")
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND: %q (postgres, dynamodb, memory)", cfg.StorageBackend)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.DynamoDBEndpoint = getEnvString("DYNAMODB_ENDPOINT", "")
	cfg.StorageRetentionDays = getEnvInt("STORAGE_RETENTION_DAYS", 90)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitOrder = getEnvInt("RATE_LIMIT_ORDER", 10)
	cfg.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")
	cfg.YouTubeChannelID = getEnvString("YOUTUBE_CHANNEL_ID", defaultYouTubeChannelID)
	cfg.YouTubeAPIBaseURL = getEnvString("YOUTUBE_API_BASE_URL", "https://www.googleapis.com")
	cfg.YouTubeFeedFallback = getEnvBool("YOUTUBE_FEED_FALLBACK", true)
	cfg.YouTubeTimeout = getEnvDuration("YOUTUBE_TIMEOUT", 10*time.Second)
	cfg.YouTubeCacheTTL = getEnvDuration("YOUTUBE_CACHE_TTL", 10*time.Minute)
	cfg.YouTubeMaxResults = min(getEnvInt("YOUTUBE_MAX_RESULTS", 6), maxYouTubeResults)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.ServerPort)
	// 未設定時はBASE_URLのスキームから決める
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", strings.HasPrefix(cfg.BaseURL, "https://"))
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// StorageRetention はクライアントストレージの保持期間を返す。
func (c *Config) StorageRetention() time.Duration {
	return time.Duration(c.StorageRetentionDays) * 24 * time.Hour
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
