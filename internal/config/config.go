package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// DefaultGeminiBaseURL はGeminiのOpenAI互換エンドポイント。
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Token
	JWTSecret string
	TokenTTL  time.Duration

	// Generation (Gemini)
	GeminiAPIKey      string
	GeminiBaseURL     string
	GeminiModel       string
	GenerationTimeout time.Duration

	// Rate Limit（req/min）
	RateLimitGeneral    int
	RateLimitGeneration int

	// Password
	BcryptCost int

	// Server
	ServerPort     string
	BodyLimitBytes int64

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel string
}

// LoadDotEnv はカレントディレクトリの.envファイルを読み込む。
// ファイルが存在しない場合は何もしない。
// 既にプロセス環境に設定されている変数は上書きしない。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// JWT_SECRETの欠落は起動時の致命的エラーとして扱う。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	// 範囲外の値は解析できない値と同様にデフォルトへ戻す
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 7*24*time.Hour)
	cfg.GeminiBaseURL = getEnvString("GEMINI_BASE_URL", DefaultGeminiBaseURL)
	cfg.GeminiModel = getEnvString("GEMINI_MODEL", "gemini-2.0-flash")
	cfg.GenerationTimeout = getEnvDuration("GENERATION_TIMEOUT", 30*time.Second)
	cfg.RateLimitGeneral = getEnvIntInRange("RATE_LIMIT_GENERAL", 120, 1, math.MaxInt)
	cfg.RateLimitGeneration = getEnvIntInRange("RATE_LIMIT_GENERATION", 20, 1, math.MaxInt)
	cfg.BcryptCost = getEnvIntInRange("BCRYPT_COST", 10, bcrypt.MinCost, bcrypt.MaxCost)
	cfg.ServerPort = getEnvString("SERVER_PORT", "5000")
	cfg.BodyLimitBytes = getEnvInt64("BODY_LIMIT_BYTES", 10<<20)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
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
	if err != nil {
		return defaultVal
	}
	return i
}

// getEnvIntInRange は[minVal, maxVal]の範囲外の値をdefaultValとして扱う。
func getEnvIntInRange(key string, defaultVal, minVal, maxVal int) int {
	i := getEnvInt(key, defaultVal)
	if i < minVal || i > maxVal {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
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
