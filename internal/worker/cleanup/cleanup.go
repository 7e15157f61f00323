// Package cleanup はクライアントストレージの自動削除ジョブを提供する。
// 保持期間（デフォルト90日）を超えて更新されていないクライアントの
// カートとサインイン状態を定期的に削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// StaleDeleter は指定時刻より前に更新されたエントリを削除するインターフェース。
// repository.ClientStorageRepositoryが満たす。
type StaleDeleter interface {
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// CleanupJob は保持期間を超過したクライアントストレージの自動削除ジョブ。
// 冪等な削除処理を保証する。
type CleanupJob struct {
	repo          StaleDeleter
	logger        *slog.Logger
	now           func() time.Time
	RetentionDays int // 保持日数（デフォルト: 90）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は90日。
func NewCleanupJob(repo StaleDeleter, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:          repo,
		logger:        logger,
		now:           time.Now,
		RetentionDays: 90,
	}
}

// Run は保持期間を超過したエントリを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()
	cutoff := j.now().Add(-time.Duration(j.RetentionDays) * 24 * time.Hour)

	deletedCount, err := j.repo.DeleteStale(ctx, cutoff)
	if err != nil {
		j.logger.Error("クライアントストレージのクリーンアップに失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("クライアントストレージのクリーンアップに失敗: %w", err)
	}

	j.logger.Info("クライアントストレージのクリーンアップが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Time("cutoff", cutoff),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

// Start はinterval間隔でRunを実行する。起動直後に1回実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("クリーンアップジョブを開始しました",
		slog.Duration("interval", interval),
		slog.Int("retention_days", j.RetentionDays),
	)

	// エラーはRun内でログ出力済み
	_ = j.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("クリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
