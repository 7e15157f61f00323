// Package user はクライアントに保存するサインイン状態を管理する。
//
// 資格情報の検証は行わない。サインインは名前を保存するだけのフラグである。
package user

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/hitoshi/merchshop/internal/model"
	"github.com/hitoshi/merchshop/internal/security"
	"github.com/hitoshi/merchshop/internal/storage"
)

// MaxNameLength は表示名の最大文字数。
const MaxNameLength = 100

// Service はサインイン状態のサービス層。
type Service struct {
	store     *storage.Store
	locker    *storage.Locker
	sanitizer security.TextSanitizer
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(store *storage.Store, locker *storage.Locker, sanitizer security.TextSanitizer, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		locker:    locker,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// Get は現在のサインイン状態を返す。
func (s *Service) Get(ctx context.Context, clientID string) model.UserSession {
	return s.store.LoadUser(ctx, clientID)
}

// SignIn は名前を保存してサインイン状態にする。
// 名前はタグを除去したうえで1文字以上MaxNameLength文字以内でなければならない。
func (s *Service) SignIn(ctx context.Context, clientID, name string) (model.UserSession, error) {
	cleaned := s.sanitizer.Sanitize(name)
	if cleaned == "" || utf8.RuneCountInString(cleaned) > MaxNameLength {
		return model.UserSession{}, model.NewInvalidNameError()
	}

	session := model.UserSession{IsAuthenticated: true, Name: cleaned}
	if err := s.save(ctx, clientID, session); err != nil {
		return model.UserSession{}, err
	}

	s.logger.Info("サインインしました", slog.String("client_id", clientID))
	return session, nil
}

// SignOut はサインイン状態を解除する。
func (s *Service) SignOut(ctx context.Context, clientID string) (model.UserSession, error) {
	session := model.DefaultUserSession()
	if err := s.save(ctx, clientID, session); err != nil {
		return model.UserSession{}, err
	}
	return session, nil
}

func (s *Service) save(ctx context.Context, clientID string, session model.UserSession) error {
	unlock := s.locker.Lock(clientID)
	defer unlock()

	if err := s.store.SaveUser(ctx, clientID, session); err != nil {
		return model.NewStorageFailedError()
	}
	return nil
}
