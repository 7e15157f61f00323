// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"
)

// ClientStorageRepository はクライアントごとのキーバリューストアの永続化インターフェース。
// ブラウザのローカルストレージに相当し、clientIDが名前空間となる。
type ClientStorageRepository interface {
	// Get は指定クライアント・キーの値を取得する。存在しない場合はfalseを返す。
	Get(ctx context.Context, clientID, key string) ([]byte, bool, error)

	// Put は指定クライアント・キーに値を保存する。既存の値は上書きする。
	Put(ctx context.Context, clientID, key string, value []byte) error

	// DeleteStale は最終更新がolderThanより古いエントリを削除し、削除件数を返す。
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}
