package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hitoshi/merchshop/internal/model"
)

// 取得種別。キャッシュキーとメトリクスのラベルに使用する。
const (
	KindLatestVideos = "latest_videos"
	KindLatestVideo  = "latest_video"
	KindChannelStats = "channel_stats"
)

// FetchRecorder は取得結果の記録先。
type FetchRecorder interface {
	RecordYouTubeFetch(kind, result string, d time.Duration)
}

// LoaderConfig はLoaderの設定。
type LoaderConfig struct {
	ChannelID  string
	MaxResults int
	Timeout    time.Duration // 1回の取得に許す時間
	CacheTTL   time.Duration // 成功した結果を再利用する期間
}

// Loader は取得種別ごとにTaskを1つ起動し、TTLの間キャッシュする。
// 取得中の呼び出し元は同じTaskを共有し、完了するまでpendingを受け取る。
// 失敗したTaskはキャッシュから外し、次の呼び出しで新しく取得する。
type Loader struct {
	videos   VideoSource
	stats    StatsSource
	cfg      LoaderConfig
	cache    *gocache.Cache
	mu       sync.Mutex
	recorder FetchRecorder
	logger   *slog.Logger
}

// NewLoader はLoaderの新しいインスタンスを生成する。recorderはnilでもよい。
func NewLoader(videos VideoSource, stats StatsSource, cfg LoaderConfig, recorder FetchRecorder, logger *slog.Logger) *Loader {
	return &Loader{
		videos:   videos,
		stats:    stats,
		cfg:      cfg,
		cache:    gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		recorder: recorder,
		logger:   logger,
	}
}

// LatestVideos は最新動画一覧のTaskを返す。
func (l *Loader) LatestVideos() *Task[[]model.Video] {
	return load(l, KindLatestVideos, func(ctx context.Context) ([]model.Video, error) {
		return l.videos.Latest(ctx, l.cfg.ChannelID, l.cfg.MaxResults)
	})
}

// LatestVideo は最新動画1件のTaskを返す。
func (l *Loader) LatestVideo() *Task[model.Video] {
	return load(l, KindLatestVideo, func(ctx context.Context) (model.Video, error) {
		videos, err := l.videos.Latest(ctx, l.cfg.ChannelID, 1)
		if err != nil {
			return model.Video{}, err
		}
		if len(videos) == 0 {
			return model.Video{}, ErrNoVideo
		}
		return videos[0], nil
	})
}

// ChannelStats はチャンネル統計情報のTaskを返す。
func (l *Loader) ChannelStats() *Task[model.ChannelStats] {
	return load(l, KindChannelStats, func(ctx context.Context) (model.ChannelStats, error) {
		return l.stats.ChannelStatistics(ctx, l.cfg.ChannelID)
	})
}

// load はキャッシュ済みのTaskを返すか、新しいTaskを起動してキャッシュする。
func load[T any](l *Loader, kind string, fetch func(ctx context.Context) (T, error)) *Task[T] {
	key := fmt.Sprintf("%s:%s:%d", kind, l.cfg.ChannelID, l.cfg.MaxResults)

	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.cache.Get(key); ok {
		if task, ok := cached.(*Task[T]); ok {
			return task
		}
	}

	task := Start(func() (T, error) {
		ctx, cancel := context.WithTimeout(context.Background(), l.cfg.Timeout)
		defer cancel()

		start := time.Now()
		v, err := fetch(ctx)
		elapsed := time.Since(start)

		result := string(StatusSuccess)
		if err != nil {
			result = string(StatusFailure)
			l.logger.Warn("YouTubeデータの取得に失敗しました",
				slog.String("kind", kind),
				slog.String("channel_id", l.cfg.ChannelID),
				slog.String("error", err.Error()),
			)
		}
		if l.recorder != nil {
			l.recorder.RecordYouTubeFetch(kind, result, elapsed)
		}
		return v, err
	})
	l.cache.SetDefault(key, task)

	go func() {
		<-task.Done()
		if task.err != nil {
			l.evict(key, task)
		}
	}()
	return task
}

// evict はキーに登録されているのがtaskである場合のみ削除する。
func (l *Loader) evict(key string, task any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.cache.Get(key); ok && cached == task {
		l.cache.Delete(key)
	}
}
