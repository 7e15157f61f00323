// Package order はチェックアウト画面のガードと注文受付を提供する。
// 決済は行わず、受け付けた注文は保存しない。
package order

import (
	"context"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/merchshop/internal/cart"
	"github.com/hitoshi/merchshop/internal/model"
	"github.com/hitoshi/merchshop/internal/security"
	"github.com/hitoshi/merchshop/internal/storage"
)

// Recorder はチェックアウトと注文の記録先。
type Recorder interface {
	RecordCheckout(state string)
	RecordOrderPlaced()
}

// Checkout はチェックアウト画面に表示する内容。
// StateがCheckoutReady以外の場合、Cartは空のまま返す。
type Checkout struct {
	State model.CheckoutState `json:"state"`
	User  model.UserSession   `json:"user"`
	Cart  cart.View           `json:"cart"`
}

// Service はチェックアウトのサービス層。
type Service struct {
	store     *storage.Store
	locker    *storage.Locker
	sanitizer security.TextSanitizer
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewService はServiceの新しいインスタンスを生成する。recorderはnilでもよい。
func NewService(store *storage.Store, locker *storage.Locker, sanitizer security.TextSanitizer, recorder Recorder, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		locker:    locker,
		sanitizer: sanitizer,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Prepare はチェックアウト画面のガード状態を返す。
// 未サインインの判定をカートが空かどうかの判定より先に行う。
func (s *Service) Prepare(ctx context.Context, clientID string) Checkout {
	c := s.prepare(ctx, clientID)
	if s.recorder != nil {
		s.recorder.RecordCheckout(string(c.State))
	}
	return c
}

func (s *Service) prepare(ctx context.Context, clientID string) Checkout {
	user := s.store.LoadUser(ctx, clientID)
	if !user.IsAuthenticated {
		return Checkout{State: model.CheckoutSignInRequired, User: user, Cart: cart.NewView(nil)}
	}

	view := cart.NewView(s.store.LoadCart(ctx, clientID))
	if len(view.Items) == 0 {
		return Checkout{State: model.CheckoutCartEmpty, User: user, Cart: view}
	}
	return Checkout{State: model.CheckoutReady, User: user, Cart: view}
}

// Place は注文を受け付け、カートを空にする。
// ガード状態がreadyでない場合とフォームに不備がある場合はエラーを返す。
func (s *Service) Place(ctx context.Context, clientID string, form model.Customer) (*model.Order, error) {
	unlock := s.locker.Lock(clientID)
	defer unlock()

	c := s.prepare(ctx, clientID)
	switch c.State {
	case model.CheckoutSignInRequired:
		return nil, model.NewSignInRequiredError()
	case model.CheckoutCartEmpty:
		return nil, model.NewCartEmptyError()
	}

	customer, invalid := s.validate(form)
	if len(invalid) > 0 {
		return nil, model.NewInvalidOrderFormError(invalid)
	}

	order := &model.Order{
		ID:       s.newID(),
		Items:    c.Cart.Items,
		Total:    c.Cart.Total,
		Customer: customer,
		PlacedAt: s.now().UTC(),
	}

	if err := s.store.SaveCart(ctx, clientID, []model.Product{}); err != nil {
		return nil, model.NewStorageFailedError()
	}

	s.logger.Info("注文を受け付けました",
		slog.String("client_id", clientID),
		slog.String("order_id", order.ID),
		slog.Int("items", c.Cart.Count),
		slog.String("total", c.Cart.FormattedTotal),
	)
	if s.recorder != nil {
		s.recorder.RecordOrderPlaced()
	}
	return order, nil
}

// validate はフォームをサニタイズし、不備のあるフィールド名を返す。
func (s *Service) validate(form model.Customer) (model.Customer, []string) {
	customer := model.Customer{
		FullName:        s.sanitizer.Sanitize(form.FullName),
		Email:           s.sanitizer.Sanitize(form.Email),
		ShippingAddress: s.sanitizer.Sanitize(form.ShippingAddress),
	}

	var invalid []string
	if customer.FullName == "" {
		invalid = append(invalid, "fullName")
	}
	if addr, err := mail.ParseAddress(customer.Email); err != nil || addr.Address != customer.Email {
		invalid = append(invalid, "email")
	}
	if customer.ShippingAddress == "" {
		invalid = append(invalid, "shippingAddress")
	}
	return customer, invalid
}
