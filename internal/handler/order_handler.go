package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/merchshop/internal/model"
	"github.com/hitoshi/merchshop/internal/order"
)

// OrderServiceInterface は注文ハンドラーが必要とするサービスインターフェース。
type OrderServiceInterface interface {
	// Prepare はチェックアウト画面のガード状態を返す。
	Prepare(ctx context.Context, clientID string) order.Checkout
	// Place は注文を受け付け、カートを空にする。
	Place(ctx context.Context, clientID string, form model.Customer) (*model.Order, error)
}

// OrderHandler はチェックアウトのHTTPハンドラー。
type OrderHandler struct {
	service OrderServiceInterface
}

// NewOrderHandler はOrderHandlerを生成する。
func NewOrderHandler(service OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: service}
}

// GetCheckout はチェックアウト画面の状態を返す。
// 未サインイン・カートが空の場合もエラーではなく状態として200で返す。
// GET /api/order
func (h *OrderHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDOrError(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.service.Prepare(r.Context(), clientID))
}

// PlaceOrder は注文を受け付ける。
// POST /api/order
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDOrError(w, r)
	if !ok {
		return
	}

	var form model.Customer
	if !decodeBody(w, r, &form) {
		return
	}

	placed, err := h.service.Place(r.Context(), clientID, form)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, placed)
}
