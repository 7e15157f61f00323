// Package catalog は商品カタログの保持と、カテゴリ絞り込み・並び替えを提供する。
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hitoshi/merchshop/internal/model"
)

// Catalog は起動時に定義される不変の商品一覧。
type Catalog struct {
	products []model.Product
	byID     map[string]int
}

// New は商品一覧からCatalogを生成する。
// 入力スライスはコピーして保持するため、呼び出し元の変更は反映されない。
func New(products []model.Product) *Catalog {
	c := &Catalog{
		products: slices.Clone(products),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c
}

// Products はカタログ順の商品一覧のコピーを返す。
func (c *Catalog) Products() []model.Product {
	return slices.Clone(c.products)
}

// FindByID は指定IDの商品を返す。見つからない場合はfalseを返す。
func (c *Catalog) FindByID(id string) (model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i], true
}

// Featured はカタログ先頭からn件の商品を返す。トップページのおすすめ表示用。
func (c *Catalog) Featured(n int) []model.Product {
	if n < 0 {
		n = 0
	}
	if n > len(c.products) {
		n = len(c.products)
	}
	return slices.Clone(c.products[:n])
}

// Query はカテゴリと並び順を検証し、表示用の商品列を返す。
// 未定義のカテゴリ・並び順はバリデーションエラーとなる。
func (c *Catalog) Query(category model.Category, sortKey model.SortKey) ([]model.Product, error) {
	if !category.IsValid() {
		return nil, model.NewInvalidCategoryError(string(category))
	}
	if !sortKey.IsValid() {
		return nil, model.NewInvalidSortError(string(sortKey))
	}
	return Sort(Filter(c.products, category), sortKey), nil
}

// Filter はカテゴリが完全一致する商品をカタログ順に返す。
// CategoryAll の場合は全商品をそのまま返す。
func Filter(products []model.Product, category model.Category) []model.Product {
	if category == model.CategoryAll {
		return slices.Clone(products)
	}
	result := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			result = append(result, p)
		}
	}
	return result
}

// Sort は指定された並び順で商品列を安定ソートした新しいスライスを返す。
// 同値の場合は入力順を保つ。商品名はバイト列として大文字小文字を区別して比較する。
// SortDefault または未知のキーでは入力順のまま返す。
func Sort(products []model.Product, sortKey model.SortKey) []model.Product {
	result := slices.Clone(products)

	var compare func(a, b model.Product) int
	switch sortKey {
	case model.SortPriceLowHigh:
		compare = func(a, b model.Product) int { return cmp.Compare(a.PriceValue, b.PriceValue) }
	case model.SortPriceHighLow:
		compare = func(a, b model.Product) int { return cmp.Compare(b.PriceValue, a.PriceValue) }
	case model.SortPopularity:
		compare = func(a, b model.Product) int { return cmp.Compare(b.Popularity, a.Popularity) }
	case model.SortNameAZ:
		compare = func(a, b model.Product) int { return strings.Compare(a.Name, b.Name) }
	case model.SortNameZA:
		compare = func(a, b model.Product) int { return strings.Compare(b.Name, a.Name) }
	default:
		return result
	}

	slices.SortStableFunc(result, compare)
	return result
}
