// Package model はドメインモデルを定義する。
package model

import "time"

// CartGroup はカート内の同一商品をまとめた表示用の集計行。
// カートの明細列から読み出しのたびに再計算され、永続化されない。
// LineTotalとFormattedSubtotalは集計時に数量から埋める。
type CartGroup struct {
	Product
	Quantity          int     `json:"quantity"`
	LineTotal         float64 `json:"subtotal"`          // 価格 × 数量（丸めなし）
	FormattedSubtotal string  `json:"formattedSubtotal"` // 表示用の小計（小数点以下2桁）
}

// Subtotal は集計行の小計（価格 × 数量）を返す。丸めは行わない。
func (g CartGroup) Subtotal() float64 {
	return g.PriceValue * float64(g.Quantity)
}

// CheckoutState はチェックアウト画面のガード状態を表す。
type CheckoutState string

const (
	// CheckoutSignInRequired は未サインインのためチェックアウトできない状態。
	CheckoutSignInRequired CheckoutState = "sign_in_required"
	// CheckoutCartEmpty はカートが空のためチェックアウトできない状態。
	CheckoutCartEmpty CheckoutState = "cart_empty"
	// CheckoutReady は注文フォームを表示できる状態。
	CheckoutReady CheckoutState = "ready"
)

// Customer は注文フォームで入力される購入者情報。
type Customer struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	ShippingAddress string `json:"shippingAddress"`
}

// Order は受け付けた注文を表す。決済は行わず、保存もしない。
type Order struct {
	ID       string      `json:"id"`
	Items    []CartGroup `json:"items"`
	Total    float64     `json:"total"`
	Customer Customer    `json:"customer"`
	PlacedAt time.Time   `json:"placedAt"`
}
