// Package logger はJSON構造化ログの初期化を提供する。
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// serviceName は全ログに付与するサービス名。
const serviceName = "merchshop"

// ParseLevel はLOG_LEVELの値をslog.Levelに変換する。
// 空文字はINFOとして扱う。大文字小文字は区別しない。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// Setup は指定レベル以上を出力するJSON構造化ログのslog.Loggerを生成して返す。
// すべてのエントリにserviceフィールドを付与する。
func Setup(w io.Writer, level slog.Leveler) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler).With(slog.String("service", serviceName))
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// writerがnilの場合はos.Stdoutに出力する。
// ログレベルは環境変数LOG_LEVELから読み込み、不正な値の場合はINFOで警告を出す。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	raw := os.Getenv("LOG_LEVEL")
	level, err := ParseLevel(raw)

	logger := Setup(w, level)
	slog.SetDefault(logger)

	if err != nil {
		logger.Warn("invalid LOG_LEVEL, falling back to info", slog.String("log_level", raw))
	}
}
