// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string   // エラーコード
	Message  string   // エラーメッセージ
	Category string   // カテゴリ: validation, cart, order, video, system
	Action   string   // ユーザー向け対処方法
	Fields   []string // 入力不備のあったフィールド名（フォームの検証エラーのみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCategory   = "INVALID_CATEGORY"
	ErrCodeInvalidSort       = "INVALID_SORT"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidName       = "INVALID_NAME"
	ErrCodeInvalidOrderForm  = "INVALID_ORDER_FORM"
	ErrCodeSignInRequired    = "SIGN_IN_REQUIRED"
	ErrCodeCartEmpty         = "CART_EMPTY"
	ErrCodeStorageFailed     = "STORAGE_FAILED"
	ErrCodeClientUnavailable = "CLIENT_UNAVAILABLE"
	ErrCodeCSRFFailed        = "CSRF_VALIDATION_FAILED"
	ErrCodeRateLimited       = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// NewInvalidCategoryError は無効なカテゴリエラーを生成する。
func NewInvalidCategoryError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCategory,
		Message:  fmt.Sprintf("無効なカテゴリです: %s", category),
		Category: "validation",
		Action:   "カテゴリには All、Apparel、Accessories、Lifestyle のいずれかを指定してください。",
	}
}

// NewInvalidSortError は無効な並び順エラーを生成する。
func NewInvalidSortError(sortKey string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSort,
		Message:  fmt.Sprintf("無効な並び順です: %s", sortKey),
		Category: "validation",
		Action:   "並び順には default、priceLowHigh、priceHighLow、popularity、nameAZ、nameZA のいずれかを指定してください。",
	}
}

// NewProductNotFoundError は商品未検出エラーを生成する。
func NewProductNotFoundError(productID string) *APIError {
	return &APIError{
		Code:     ErrCodeProductNotFound,
		Message:  fmt.Sprintf("指定された商品が見つかりません: %s", productID),
		Category: "cart",
		Action:   "商品IDを確認してください。",
	}
}

// NewInvalidRequestError はリクエストボディ不正エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidNameError は表示名が不正な場合のエラーを生成する。
func NewInvalidNameError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidName,
		Message:  "名前が不正です。",
		Category: "validation",
		Action:   "1文字以上100文字以内の名前を入力してください。",
	}
}

// NewInvalidOrderFormError は注文フォームの入力不備エラーを生成する。
func NewInvalidOrderFormError(fields []string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidOrderForm,
		Message:  fmt.Sprintf("注文フォームの入力に不備があります: %v", fields),
		Category: "validation",
		Action:   "氏名、メールアドレス、配送先住所を正しく入力してください。",
		Fields:   fields,
	}
}

// NewSignInRequiredError は未サインインで注文しようとした場合のエラーを生成する。
func NewSignInRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSignInRequired,
		Message:  "注文にはサインインが必要です。",
		Category: "order",
		Action:   "サインインしてから再度お試しください。",
	}
}

// NewCartEmptyError は空のカートで注文しようとした場合のエラーを生成する。
func NewCartEmptyError() *APIError {
	return &APIError{
		Code:     ErrCodeCartEmpty,
		Message:  "カートが空です。",
		Category: "order",
		Action:   "商品をカートに追加してから注文してください。",
	}
}

// NewStorageFailedError はクライアントストレージへの書き込み失敗エラーを生成する。
func NewStorageFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeStorageFailed,
		Message:  "変更内容を保存できませんでした。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewClientUnavailableError はクライアント識別子が取得できない場合のエラーを生成する。
func NewClientUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeClientUnavailable,
		Message:  "クライアントを識別できません。",
		Category: "system",
		Action:   "Cookieを有効にしてページを再読み込みしてください。",
	}
}

// NewCSRFValidationError はCSRFトークン検証失敗エラーを生成する。
func NewCSRFValidationError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFFailed,
		Message:  "CSRFトークンの検証に失敗しました。",
		Category: "system",
		Action:   "ページを再読み込みしてから再度お試しください。",
	}
}

// NewRateLimitError はレート制限超過エラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
