// Package storage はカートとサインイン状態をクライアントストレージに保存する永続化境界を提供する。
//
// 読み込みは失敗しない: キーが存在しない、取得に失敗した、JSONが壊れている場合は
// 既定値（空のカート、未サインイン）にフォールバックし、エラーはログにのみ記録する。
// 書き込みは変更のたびに値全体をシリアライズして保存する。
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hitoshi/merchshop/internal/model"
	"github.com/hitoshi/merchshop/internal/repository"
)

const (
	// KeyCart はカートを保存するキー。値はProductのJSON配列。
	KeyCart = "cart"
	// KeyUser はサインイン状態を保存するキー。値は {isAuthenticated, name} のJSONオブジェクト。
	KeyUser = "user"
)

// FallbackRecorder は既定値へのフォールバック発生を記録するインターフェース。
type FallbackRecorder interface {
	RecordStorageFallback(key string, reason string)
}

// Store はクライアントストレージへの読み書きを行う永続化境界。
type Store struct {
	repo     repository.ClientStorageRepository
	logger   *slog.Logger
	recorder FallbackRecorder
}

// NewStore はStoreを生成する。recorderはnilでもよい。
func NewStore(repo repository.ClientStorageRepository, logger *slog.Logger, recorder FallbackRecorder) *Store {
	return &Store{
		repo:     repo,
		logger:   logger,
		recorder: recorder,
	}
}

// LoadCart は保存されたカートを返す。
// 読み込みに失敗した場合は空のカートを返し、エラーは呼び出し元に返さない。
func (s *Store) LoadCart(ctx context.Context, clientID string) []model.Product {
	var cart []model.Product
	if !s.load(ctx, clientID, KeyCart, &cart) || cart == nil {
		return []model.Product{}
	}
	return cart
}

// SaveCart はカート全体をシリアライズして保存する。
func (s *Store) SaveCart(ctx context.Context, clientID string, cart []model.Product) error {
	if cart == nil {
		cart = []model.Product{}
	}
	return s.save(ctx, clientID, KeyCart, cart)
}

// LoadUser は保存されたサインイン状態を返す。
// 読み込みに失敗した場合は未サインイン状態を返し、エラーは呼び出し元に返さない。
func (s *Store) LoadUser(ctx context.Context, clientID string) model.UserSession {
	var user model.UserSession
	if !s.load(ctx, clientID, KeyUser, &user) {
		return model.DefaultUserSession()
	}
	return user
}

// SaveUser はサインイン状態をシリアライズして保存する。
func (s *Store) SaveUser(ctx context.Context, clientID string, user model.UserSession) error {
	return s.save(ctx, clientID, KeyUser, user)
}

// load はキーの値をdstにデコードする。値が使えない場合はfalseを返す。
// キーが存在しない場合は通常の状態としてログを出さない。
func (s *Store) load(ctx context.Context, clientID, key string, dst any) bool {
	raw, ok, err := s.repo.Get(ctx, clientID, key)
	if err != nil {
		s.fallback(clientID, key, "read_error", err)
		return false
	}
	if !ok {
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		s.fallback(clientID, key, "malformed", err)
		return false
	}
	return true
}

func (s *Store) save(ctx context.Context, clientID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s のシリアライズに失敗しました: %w", key, err)
	}
	if err := s.repo.Put(ctx, clientID, key, raw); err != nil {
		s.logger.Error("クライアントストレージへの保存に失敗しました",
			slog.String("client_id", clientID),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

func (s *Store) fallback(clientID, key, reason string, err error) {
	s.logger.Warn("保存値を読み込めないため既定値を使用します",
		slog.String("client_id", clientID),
		slog.String("key", key),
		slog.String("reason", reason),
		slog.String("error", err.Error()),
	)
	if s.recorder != nil {
		s.recorder.RecordStorageFallback(key, reason)
	}
}
