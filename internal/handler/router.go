package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/merchshop/internal/middleware"
)

// HealthChecker はヘルスチェックで疎通確認する依存先。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	CookieSecure      bool
	CookieDomain      string
	RateLimiter       *middleware.RateLimiter
	StatusRecorder    middleware.HTTPStatusRecorder // nil可

	// 運用
	HealthChecker  HealthChecker // nil可（DBを使わないバックエンド）
	MetricsHandler http.Handler  // nil可

	// ドメイン
	Catalog      ProductCatalog
	CartService  CartServiceInterface
	UserService  UserServiceInterface
	OrderService OrderServiceInterface
	IntroTracker IntroTracker
	VideoLoader  VideoLoader
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → ClientIdentity → Logging → SecurityHeaders → CORS
//	  → RateLimit(General) → CSRF
//
// 注文確定（POST /api/order）にはさらに注文専用のレート制限を適用する。
// /health と /metrics はクライアント識別とレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))

	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	csrfConfig := middleware.CSRFConfig{
		CookieSecure: deps.CookieSecure,
		CookieDomain: deps.CookieDomain,
	}

	productHandler := NewProductHandler(deps.Catalog)
	cartHandler := NewCartHandler(deps.CartService)
	userHandler := NewUserHandler(deps.UserService)
	orderHandler := NewOrderHandler(deps.OrderService)
	introHandler := NewIntroHandler(deps.IntroTracker)
	videoHandler := NewVideoHandler(deps.VideoLoader)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewClientIdentityMiddleware(middleware.ClientCookieConfig{
			CookieSecure: deps.CookieSecure,
			CookieDomain: deps.CookieDomain,
		}))
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusRecorder))
		r.Use(middleware.NewSecurityHeadersMiddleware())
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(csrfConfig))

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewCSRFMiddleware(csrfConfig))

			// 商品
			r.Route("/api/products", func(r chi.Router) {
				r.Get("/", productHandler.ListProducts)
				r.Get("/featured", productHandler.ListFeatured)
				r.Get("/{id}", productHandler.GetProduct)
			})

			// カート
			r.Route("/api/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Delete("/items/{productId}", cartHandler.RemoveOne)
				r.Delete("/products/{productId}", cartHandler.RemoveAll)
			})

			// サインイン状態
			r.Route("/api/user", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Put("/", userHandler.SignIn)
				r.Delete("/", userHandler.SignOut)
			})

			// チェックアウト
			r.Route("/api/order", func(r chi.Router) {
				r.Get("/", orderHandler.GetCheckout)
				r.With(deps.RateLimiter.OrderMiddleware()).Post("/", orderHandler.PlaceOrder)
			})

			r.Get("/api/intro", introHandler.GetIntro)

			// チャンネル動画・統計
			r.Get("/api/videos/latest", videoHandler.LatestVideos)
			r.Get("/api/videos/latest-one", videoHandler.LatestVideo)
			r.Get("/api/channel/stats", videoHandler.ChannelStats)
		})
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

// healthHandler はヘルスチェックのハンドラーを返す。
// checkerが設定されている場合は疎通確認に失敗すると503を返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
