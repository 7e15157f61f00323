package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/merchshop/internal/cart"
	"github.com/hitoshi/merchshop/internal/model"
)

// CartServiceInterface はカートハンドラーが必要とするサービスインターフェース。
type CartServiceInterface interface {
	// Get はカートの表示内容を返す。
	Get(ctx context.Context, clientID string) cart.View
	// AddItem は商品を1つ追加する。
	AddItem(ctx context.Context, clientID, productID string) (cart.View, error)
	// RemoveOne は商品を1つ取り除く。
	RemoveOne(ctx context.Context, clientID, productID string) (cart.View, error)
	// RemoveAll は商品をすべて取り除く。
	RemoveAll(ctx context.Context, clientID, productID string) (cart.View, error)
}

// CartHandler はカート操作のHTTPハンドラー。
type CartHandler struct {
	service CartServiceInterface
}

// NewCartHandler はCartHandlerを生成する。
func NewCartHandler(service CartServiceInterface) *CartHandler {
	return &CartHandler{service: service}
}

// addItemRequest はカート追加リクエストのボディ。
type addItemRequest struct {
	ProductID string `json:"productId"`
}

// GetCart はカートの集計行・数量・合計を返す。
// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDOrError(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.service.Get(r.Context(), clientID))
}

// AddItem はカートに商品を1つ追加する。
// POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDOrError(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("productIdが空です"))
		return
	}

	view, err := h.service.AddItem(r.Context(), clientID, productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// RemoveOne はカートから商品を1つ取り除く。カートにない場合は何もしない。
// DELETE /api/cart/items/{productId}
func (h *CartHandler) RemoveOne(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.service.RemoveOne)
}

// RemoveAll はカートから商品をすべて取り除く。
// DELETE /api/cart/products/{productId}
func (h *CartHandler) RemoveAll(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, h.service.RemoveAll)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, clientID, productID string) (cart.View, error)) {
	clientID, ok := clientIDOrError(w, r)
	if !ok {
		return
	}

	view, err := fn(r.Context(), clientID, chi.URLParam(r, "productId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
