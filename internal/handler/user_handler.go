package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/merchshop/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Get はサインイン状態を返す。
	Get(ctx context.Context, clientID string) model.UserSession
	// SignIn は名前を記録してサインイン状態にする。本人確認は行わない。
	SignIn(ctx context.Context, clientID, name string) (model.UserSession, error)
	// SignOut はサインイン状態を解除する。
	SignOut(ctx context.Context, clientID string) (model.UserSession, error)
}

// UserHandler はサインイン状態のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// signInRequest はサインインリクエストのボディ。
type signInRequest struct {
	Name string `json:"name"`
}

// GetUser はサインイン状態を返す。
// GET /api/user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDOrError(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.service.Get(r.Context(), clientID))
}

// SignIn はサインイン状態にする。
// PUT /api/user
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDOrError(w, r)
	if !ok {
		return
	}

	var req signInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.service.SignIn(r.Context(), clientID, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// SignOut はサインイン状態を解除する。
// DELETE /api/user
func (h *UserHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDOrError(w, r)
	if !ok {
		return
	}

	session, err := h.service.SignOut(r.Context(), clientID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}
