// Package model はドメインモデルを定義する。
package model

// Product はショップで販売する商品を表す。
// 起動時に定義され、実行中に生成・削除されることはない。
// JSONのフィールド名はクライアントストレージに保存される形式と一致させる。
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`      // 表示用価格（例: "$29.99"）
	PriceValue  float64  `json:"priceValue"` // 計算用価格（非負）
	Popularity  int      `json:"popularity"`
	Image       string   `json:"image"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// Category は商品カテゴリを表す。
type Category string

const (
	// CategoryAll は全カテゴリを通過させるセンチネル値。
	CategoryAll Category = "All"
	// CategoryApparel はアパレル。
	CategoryApparel Category = "Apparel"
	// CategoryAccessories はアクセサリー。
	CategoryAccessories Category = "Accessories"
	// CategoryLifestyle はライフスタイル。
	CategoryLifestyle Category = "Lifestyle"
)

// Categories は選択可能なカテゴリの一覧（表示順）。
var Categories = []Category{
	CategoryAll,
	CategoryApparel,
	CategoryAccessories,
	CategoryLifestyle,
}

// IsValid はカテゴリが定義済みの値かどうかを判定する。
func (c Category) IsValid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// SortKey は商品一覧の並び順を表す。
type SortKey string

const (
	// SortDefault はカタログの定義順。
	SortDefault SortKey = "default"
	// SortPriceLowHigh は価格の昇順。
	SortPriceLowHigh SortKey = "priceLowHigh"
	// SortPriceHighLow は価格の降順。
	SortPriceHighLow SortKey = "priceHighLow"
	// SortPopularity は人気の降順。
	SortPopularity SortKey = "popularity"
	// SortNameAZ は商品名の昇順。
	SortNameAZ SortKey = "nameAZ"
	// SortNameZA は商品名の降順。
	SortNameZA SortKey = "nameZA"
)

// SortKeys は選択可能な並び順の一覧（表示順）。
var SortKeys = []SortKey{
	SortDefault,
	SortPriceLowHigh,
	SortPriceHighLow,
	SortPopularity,
	SortNameAZ,
	SortNameZA,
}

// IsValid は並び順が定義済みの値かどうかを判定する。
func (k SortKey) IsValid() bool {
	for _, v := range SortKeys {
		if k == v {
			return true
		}
	}
	return false
}
