package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/mindblown/internal/auth"
	"github.com/hitoshi/mindblown/internal/chat"
	"github.com/hitoshi/mindblown/internal/config"
	"github.com/hitoshi/mindblown/internal/emotion"
	"github.com/hitoshi/mindblown/internal/handler"
	"github.com/hitoshi/mindblown/internal/journal"
	"github.com/hitoshi/mindblown/internal/llm"
	"github.com/hitoshi/mindblown/internal/metrics"
	"github.com/hitoshi/mindblown/internal/middleware"
	"github.com/hitoshi/mindblown/internal/repository"
	"github.com/hitoshi/mindblown/internal/security"
	"github.com/hitoshi/mindblown/internal/token"
	"github.com/hitoshi/mindblown/internal/user"
)

// Server はワイヤリング済みのHTTPサーバーと、停止時に解放するリソースを保持する。
type Server struct {
	HTTP        *http.Server
	rateLimiter *middleware.RateLimiter
}

// NewServer は設定とDB接続から全依存関係を組み立てたServerを生成する。
// メトリクスはregに登録する。
func NewServer(cfg *config.Config, db *sql.DB, reg *prometheus.Registry) (*Server, error) {
	// 1. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	observationRepo := repository.NewPostgresObservationRepo(db)

	// 2. メトリクス
	collector := metrics.NewCollector(reg)

	// 3. トークン
	tokens, err := token.NewService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	// 4. 文章生成クライアント
	generator, err := llm.NewClient(llm.Config{
		BaseURL: cfg.GeminiBaseURL,
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GenerationTimeout,
	}, llm.WithObserver(collector))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	// 5. ドメインサービスの初期化
	authService := auth.NewService(userRepo, tokens, auth.ServiceConfig{BcryptCost: cfg.BcryptCost})
	userService := user.NewService(userRepo)
	chatService := chat.NewService(userRepo, generator, security.NewReplySanitizer())
	journalService := journal.NewService(
		observationRepo,
		emotion.NewClassifier(generator),
		journal.WithRecorder(collector),
	)

	// 6. ルーターの構築
	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitGeneration))

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		StatusObserver:    collector,
		TokenVerifier:     tokens,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		BodyLimitBytes:    cfg.BodyLimitBytes,
		RateLimiter:       rl,

		AuthService:    authService,
		ChatService:    chatService,
		JournalService: journalService,
		UserService:    userService,

		HealthChecker:  db,
		MetricsHandler: metrics.Handler(reg),
	})

	return &Server{
		HTTP: &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		rateLimiter: rl,
	}, nil
}

// Close はバックグラウンドで動作するリソースを停止する。
func (s *Server) Close() {
	s.rateLimiter.Stop()
}
