// Package cart はカートの集計と変更操作を提供する。
//
// カートは商品の順序付き列として保持し、同じ商品の重複は数量2以上を表す。
// 数量と合計は列から読み出しのたびに再計算する。
package cart

import (
	"fmt"
	"slices"

	"github.com/hitoshi/merchshop/internal/model"
)

// Aggregate はカートの明細列を商品IDごとの集計行にまとめる。
// 集計行は各商品が最初に現れた順に並び、数量は出現回数となる。
// 各行の小計は数量が確定した後に計算する。
func Aggregate(items []model.Product) []model.CartGroup {
	groups := make([]model.CartGroup, 0, len(items))
	index := make(map[string]int, len(items))

	for _, p := range items {
		if i, ok := index[p.ID]; ok {
			groups[i].Quantity++
			continue
		}
		index[p.ID] = len(groups)
		groups = append(groups, model.CartGroup{Product: p, Quantity: 1})
	}

	for i := range groups {
		groups[i].LineTotal = groups[i].Subtotal()
		groups[i].FormattedSubtotal = FormatAmount(groups[i].LineTotal)
	}
	return groups
}

// Total は集計行の合計金額（価格 × 数量の総和）を返す。丸めは表示時に行う。
func Total(groups []model.CartGroup) float64 {
	var total float64
	for _, g := range groups {
		total += g.Subtotal()
	}
	return total
}

// Count は集計行の数量の総和を返す。
func Count(groups []model.CartGroup) int {
	n := 0
	for _, g := range groups {
		n += g.Quantity
	}
	return n
}

// FormatAmount は金額を小数点以下2桁の表示用文字列にする。
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Add は商品を末尾に追加した新しい列を返す。
func Add(items []model.Product, p model.Product) []model.Product {
	out := slices.Clone(items)
	return append(out, p)
}

// RemoveOne は指定商品の最初の1件を取り除いた新しい列を返す。
// 該当商品がない場合は変更しない。
func RemoveOne(items []model.Product, productID string) []model.Product {
	i := slices.IndexFunc(items, func(p model.Product) bool { return p.ID == productID })
	if i < 0 {
		return slices.Clone(items)
	}
	out := make([]model.Product, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// RemoveAll は指定商品をすべて取り除いた新しい列を返す。
func RemoveAll(items []model.Product, productID string) []model.Product {
	out := make([]model.Product, 0, len(items))
	for _, p := range items {
		if p.ID != productID {
			out = append(out, p)
		}
	}
	return out
}
