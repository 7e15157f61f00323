package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/hitoshi/merchshop/internal/cart"
	"github.com/hitoshi/merchshop/internal/catalog"
	"github.com/hitoshi/merchshop/internal/config"
	"github.com/hitoshi/merchshop/internal/database"
	"github.com/hitoshi/merchshop/internal/handler"
	"github.com/hitoshi/merchshop/internal/intro"
	"github.com/hitoshi/merchshop/internal/logger"
	"github.com/hitoshi/merchshop/internal/metrics"
	"github.com/hitoshi/merchshop/internal/middleware"
	"github.com/hitoshi/merchshop/internal/order"
	"github.com/hitoshi/merchshop/internal/repository"
	"github.com/hitoshi/merchshop/internal/security"
	"github.com/hitoshi/merchshop/internal/storage"
	"github.com/hitoshi/merchshop/internal/user"
	"github.com/hitoshi/merchshop/internal/worker/cleanup"
	"github.com/hitoshi/merchshop/internal/youtube"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	if cmd == CommandHelp {
		Usage(w)
		return nil
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("storage_backend", cfg.StorageBackend),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// backend はクライアントストレージの接続結果。
// healthはDBを使うバックエンドの場合のみ設定される。
type backend struct {
	repo   repository.ClientStorageRepository
	health handler.HealthChecker
	close  func()
}

// openBackend は設定に応じたクライアントストレージを開く。
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := openDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &backend{
			repo:   repository.NewPostgresClientStorageRepo(db),
			health: db,
			close:  func() { db.Close() },
		}, nil

	case config.BackendDynamoDB:
		client, err := newDynamoDBClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		slog.Info("dynamodb client configured",
			slog.String("table", cfg.DynamoDBTableName),
		)
		return &backend{
			repo:  repository.NewDynamoDBClientStorageRepo(client, cfg.DynamoDBTableName, cfg.StorageRetention()),
			close: func() {},
		}, nil

	default:
		slog.Warn("using in-memory client storage; data is lost on restart")
		return &backend{
			repo:  repository.NewMemoryClientStorageRepo(),
			close: func() {},
		}, nil
	}
}

func openDatabase(databaseURL string) (*sql.DB, error) {
	db, err := database.Open(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")
	return db, nil
}

// newDynamoDBClient はAWSの標準の認証情報チェーンでDynamoDBクライアントを生成する。
// DYNAMODB_ENDPOINT が設定されている場合はローカルのDynamoDBなどに接続する。
func newDynamoDBClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	}), nil
}

// newRateLimiter は設定値（req/min）からレートリミッターを生成する。
func newRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	rlCfg := middleware.DefaultRateLimiterConfig()
	// configはreq/min単位なのでreq/secに変換する
	rlCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rlCfg.GeneralBurst = cfg.RateLimitGeneral
	rlCfg.OrderRate = rate.Limit(float64(cfg.RateLimitOrder) / 60.0)
	rlCfg.OrderBurst = cfg.RateLimitOrder
	return middleware.NewRateLimiter(rlCfg)
}

// newVideoSource は最新動画の取得元を選ぶ。
// APIキーがあればData APIを使い、なければチャンネルフィードで代替する。
// どちらも使えない場合はData APIのクライアントを返し、取得はAPIキー未設定エラーになる。
func newVideoSource(cfg *config.Config, api *youtube.Client, guard security.SSRFGuardService, sanitizer security.TextSanitizer, logger *slog.Logger) youtube.VideoSource {
	if cfg.YouTubeAPIKey == "" && cfg.YouTubeFeedFallback {
		logger.Info("YOUTUBE_API_KEY is not set; using channel feed for latest videos")
		return youtube.NewFeedSource(guard.NewSafeClient(cfg.YouTubeTimeout), guard, sanitizer, logger)
	}
	return api
}

// newHandler は全依存関係をワイヤリングしてHTTPハンドラーを構築する。
// 返却するレートリミッターは呼び出し元が停止する。
func newHandler(cfg *config.Config, b *backend, logger *slog.Logger) (http.Handler, *middleware.RateLimiter) {
	// 1. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 2. セキュリティサービス
	guard := security.NewSSRFGuard()
	sanitizer := security.NewTextSanitizer()

	// 3. 永続化境界
	store := storage.NewStore(b.repo, logger, collector)
	locker := storage.NewLocker()

	// 4. ドメインサービス
	products := catalog.NewDefault()
	cartService := cart.NewService(products, store, locker, collector)
	userService := user.NewService(store, locker, sanitizer, logger)
	orderService := order.NewService(store, locker, sanitizer, collector, logger)

	// 5. YouTube
	api := youtube.NewClient(
		guard.NewSafeClient(cfg.YouTubeTimeout),
		cfg.YouTubeAPIKey, cfg.YouTubeAPIBaseURL,
		guard, sanitizer, logger,
	)
	loader := youtube.NewLoader(
		newVideoSource(cfg, api, guard, sanitizer, logger), api,
		youtube.LoaderConfig{
			ChannelID:  cfg.YouTubeChannelID,
			MaxResults: cfg.YouTubeMaxResults,
			Timeout:    cfg.YouTubeTimeout,
			CacheTTL:   cfg.YouTubeCacheTTL,
		},
		collector, logger,
	)

	// 6. ルーター
	rateLimiter := newRateLimiter(cfg)
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            logger,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CookieSecure:      cfg.CookieSecure,
		CookieDomain:      cfg.CookieDomain,
		RateLimiter:       rateLimiter,
		StatusRecorder:    collector,
		HealthChecker:     b.health,
		MetricsHandler:    metrics.Handler(registry),

		Catalog:      products,
		CartService:  cartService,
		UserService:  userService,
		OrderService: orderService,
		IntroTracker: intro.NewTracker(intro.DefaultExpiration),
		VideoLoader:  loader,
	})

	return router, rateLimiter
}

// runServe はAPIサーバーモードで起動する。
// ストレージを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	b, err := openBackend(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer b.close()

	router, rateLimiter := newHandler(cfg, b, slog.Default())
	defer rateLimiter.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// PostgreSQLの場合は保持期間を過ぎたクライアントストレージを定期的に削除する。
// DynamoDBはテーブルのTTLで期限切れを削除し、インメモリはプロセス内で完結するため、
// どちらもワーカーの処理は不要で即座に終了する。
func runWorker(cfg *config.Config) error {
	if cfg.StorageBackend != config.BackendPostgres {
		slog.Info("worker has nothing to do for this storage backend",
			slog.String("storage_backend", cfg.StorageBackend),
		)
		return nil
	}

	db, err := openDatabase(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	job := cleanup.NewCleanupJob(repository.NewPostgresClientStorageRepo(db), slog.Default())
	job.RetentionDays = cfg.StorageRetentionDays

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.CleanupInterval),
		slog.Int("retention_days", cfg.StorageRetentionDays),
	)

	// クリーンアップをメインgoroutineで実行（ブロッキング）
	job.Start(ctx, cfg.CleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。PostgreSQL以外では何もしない。
func runMigrate(cfg *config.Config) error {
	if cfg.StorageBackend != config.BackendPostgres {
		slog.Info("migrations are only applied to the postgres backend",
			slog.String("storage_backend", cfg.StorageBackend),
		)
		return nil
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
