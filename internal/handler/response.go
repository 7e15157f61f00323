package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/merchshop/internal/middleware"
	"github.com/hitoshi/merchshop/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("レスポンスの書き込みに失敗しました", slog.String("error", err.Error()))
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidCategory, model.ErrCodeInvalidSort,
		model.ErrCodeInvalidRequest, model.ErrCodeClientUnavailable:
		return http.StatusBadRequest
	case model.ErrCodeInvalidName, model.ErrCodeInvalidOrderForm:
		return http.StatusUnprocessableEntity
	case model.ErrCodeProductNotFound:
		return http.StatusNotFound
	case model.ErrCodeSignInRequired:
		return http.StatusForbidden
	case model.ErrCodeCartEmpty:
		return http.StatusConflict
	case model.ErrCodeCSRFFailed:
		return http.StatusForbidden
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// clientIDOrError はコンテキストからクライアントIDを取り出す。
// 取り出せない場合はエラーレスポンスを書き込み、falseを返す。
func clientIDOrError(w http.ResponseWriter, r *http.Request) (string, bool) {
	clientID, err := middleware.ClientIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewClientUnavailableError())
		return "", false
	}
	return clientID, true
}

// decodeBody はリクエストボディをJSONとしてdstにデコードする。
// 失敗した場合はエラーレスポンスを書き込み、falseを返す。
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("ボディをJSONとして解析できません"))
		return false
	}
	return true
}

// maxRequestBodySize はJSONリクエストボディの上限（64KB）。
const maxRequestBodySize = 64 << 10
