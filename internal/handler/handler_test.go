package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/merchshop/internal/cart"
	"github.com/hitoshi/merchshop/internal/middleware"
	"github.com/hitoshi/merchshop/internal/model"
	"github.com/hitoshi/merchshop/internal/order"
)

// --- モック定義 ---

// mockCartService はCartServiceInterfaceのモック実装。
type mockCartService struct {
	getFn       func(ctx context.Context, clientID string) cart.View
	addItemFn   func(ctx context.Context, clientID, productID string) (cart.View, error)
	removeOneFn func(ctx context.Context, clientID, productID string) (cart.View, error)
	removeAllFn func(ctx context.Context, clientID, productID string) (cart.View, error)
}

func (m *mockCartService) Get(ctx context.Context, clientID string) cart.View {
	if m.getFn != nil {
		return m.getFn(ctx, clientID)
	}
	return cart.NewView(nil)
}

func (m *mockCartService) AddItem(ctx context.Context, clientID, productID string) (cart.View, error) {
	if m.addItemFn != nil {
		return m.addItemFn(ctx, clientID, productID)
	}
	return cart.NewView(nil), nil
}

func (m *mockCartService) RemoveOne(ctx context.Context, clientID, productID string) (cart.View, error) {
	if m.removeOneFn != nil {
		return m.removeOneFn(ctx, clientID, productID)
	}
	return cart.NewView(nil), nil
}

func (m *mockCartService) RemoveAll(ctx context.Context, clientID, productID string) (cart.View, error) {
	if m.removeAllFn != nil {
		return m.removeAllFn(ctx, clientID, productID)
	}
	return cart.NewView(nil), nil
}

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	getFn     func(ctx context.Context, clientID string) model.UserSession
	signInFn  func(ctx context.Context, clientID, name string) (model.UserSession, error)
	signOutFn func(ctx context.Context, clientID string) (model.UserSession, error)
}

func (m *mockUserService) Get(ctx context.Context, clientID string) model.UserSession {
	if m.getFn != nil {
		return m.getFn(ctx, clientID)
	}
	return model.DefaultUserSession()
}

func (m *mockUserService) SignIn(ctx context.Context, clientID, name string) (model.UserSession, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, clientID, name)
	}
	return model.UserSession{IsAuthenticated: true, Name: name}, nil
}

func (m *mockUserService) SignOut(ctx context.Context, clientID string) (model.UserSession, error) {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, clientID)
	}
	return model.DefaultUserSession(), nil
}

// mockOrderService はOrderServiceInterfaceのモック実装。
type mockOrderService struct {
	prepareFn func(ctx context.Context, clientID string) order.Checkout
	placeFn   func(ctx context.Context, clientID string, form model.Customer) (*model.Order, error)
}

func (m *mockOrderService) Prepare(ctx context.Context, clientID string) order.Checkout {
	if m.prepareFn != nil {
		return m.prepareFn(ctx, clientID)
	}
	return order.Checkout{State: model.CheckoutSignInRequired}
}

func (m *mockOrderService) Place(ctx context.Context, clientID string, form model.Customer) (*model.Order, error) {
	if m.placeFn != nil {
		return m.placeFn(ctx, clientID, form)
	}
	return &model.Order{ID: "order-1", Customer: form}, nil
}

// mockIntroTracker はIntroTrackerのモック実装。
type mockIntroTracker struct {
	seen map[string]bool
}

func (m *mockIntroTracker) CheckAndMark(tabID string) bool {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[tabID] {
		return false
	}
	m.seen[tabID] = true
	return true
}

// --- ヘルパー ---

// withClient はリクエストコンテキストにクライアントIDとタブIDを注入する。
func withClient(req *http.Request, clientID string) *http.Request {
	ctx := middleware.ContextWithClientID(req.Context(), clientID)
	ctx = middleware.ContextWithTabID(ctx, "tab-"+clientID)
	return req.WithContext(ctx)
}

// withURLParam はchiのURLパラメータをリクエストに設定する。
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v\nbody: %s", err, w.Body.String())
	}
	return v
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	if w.Code != wantStatus {
		t.Errorf("status = %d, want %d (body: %s)", w.Code, wantStatus, w.Body.String())
	}
	body := decodeJSON[apiErrorBody](t, w)
	if body.Code != wantCode {
		t.Errorf("code = %q, want %q", body.Code, wantCode)
	}
}

type apiErrorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// --- 共通処理 ---

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *model.APIError
		want int
	}{
		{model.NewInvalidCategoryError("x"), http.StatusBadRequest},
		{model.NewInvalidSortError("x"), http.StatusBadRequest},
		{model.NewInvalidRequestError("x"), http.StatusBadRequest},
		{model.NewClientUnavailableError(), http.StatusBadRequest},
		{model.NewInvalidNameError(), http.StatusUnprocessableEntity},
		{model.NewInvalidOrderFormError([]string{"email"}), http.StatusUnprocessableEntity},
		{model.NewProductNotFoundError("x"), http.StatusNotFound},
		{model.NewSignInRequiredError(), http.StatusForbidden},
		{model.NewCartEmptyError(), http.StatusConflict},
		{model.NewRateLimitError(), http.StatusTooManyRequests},
		{model.NewStorageFailedError(), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if got := mapAPIErrorToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandleServiceError_NonAPIError_Returns500(t *testing.T) {
	w := httptest.NewRecorder()
	handleServiceError(w, context.DeadlineExceeded)

	assertErrorCode(t, w, http.StatusInternalServerError, model.ErrCodeInternal)
}
