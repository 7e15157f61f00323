package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresClientStorageRepo はPostgreSQLを使用したクライアントストレージリポジトリ。
type PostgresClientStorageRepo struct {
	db *sql.DB
}

// NewPostgresClientStorageRepo はPostgresClientStorageRepoを生成する。
func NewPostgresClientStorageRepo(db *sql.DB) *PostgresClientStorageRepo {
	return &PostgresClientStorageRepo{db: db}
}

// Get は指定クライアント・キーの値を取得する。存在しない場合はfalseを返す。
func (r *PostgresClientStorageRepo) Get(ctx context.Context, clientID, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM client_storage WHERE client_id = $1 AND key = $2`,
		clientID, key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("クライアントストレージの取得に失敗しました: %w", err)
	}

	return value, true, nil
}

// Put は指定クライアント・キーに値を保存する。既存の値は上書きする。
func (r *PostgresClientStorageRepo) Put(ctx context.Context, clientID, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO client_storage (client_id, key, value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (client_id, key)
		 DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		clientID, key, value,
	)
	if err != nil {
		return fmt.Errorf("クライアントストレージの保存に失敗しました: %w", err)
	}
	return nil
}

// DeleteStale はolderThan以降に一度も書き込みのないクライアントのエントリをまとめて削除し、削除件数を返す。
// 有効期限はキー単位ではなくクライアント単位で判定する。
func (r *PostgresClientStorageRepo) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM client_storage
		 WHERE client_id IN (
		     SELECT client_id FROM client_storage
		     GROUP BY client_id
		     HAVING max(updated_at) < $1
		 )`,
		olderThan,
	)
	if err != nil {
		return 0, fmt.Errorf("古いクライアントストレージの削除に失敗しました: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ ClientStorageRepository = (*PostgresClientStorageRepo)(nil)
