package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/mindblown/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	StatusObserver    middleware.StatusObserver
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	BodyLimitBytes    int64
	RateLimiter       *middleware.RateLimiter

	// サービス
	AuthService    AuthServiceInterface
	ChatService    ChatServiceInterface
	JournalService JournalServiceInterface
	UserService    UserServiceInterface

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	StatusMetrics → Logging → Recovery → CORS → SecurityHeaders → BodyLimit
//	  認証ルート: → Auth → RateLimit(General)
//	  文章生成ルート: → RateLimit(Generation)
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if deps.StatusObserver != nil {
		r.Use(middleware.NewStatusMetricsMiddleware(deps.StatusObserver))
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewBodyLimitMiddleware(deps.BodyLimitBytes))

	authHandler := NewAuthHandler(deps.AuthService)
	chatHandler := NewChatHandler(deps.ChatService)
	emotionHandler := NewEmotionHandler(deps.JournalService)
	userHandler := NewUserHandler(deps.UserService)

	// --- 認証不要のルート ---
	r.Get("/", Root)
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 文章生成を伴うルート（専用レート制限を追加）
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.GenerationMiddleware())

			r.Post("/chat/curhat", chatHandler.Curhat)
			r.Post("/emotion/analyze", emotionHandler.Analyze)
		})

		r.Get("/attendance/history", emotionHandler.History)

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", userHandler.Me)
			r.Put("/profile", userHandler.UpdateProfile)
		})
	})

	return r
}
