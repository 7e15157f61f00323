package catalog

import "github.com/hitoshi/merchshop/internal/model"

// FeaturedCount はトップページに表示するおすすめ商品の件数。
const FeaturedCount = 3

// SampleProducts はショップで販売する商品の定義。
// 画像URLはプレースホルダー。
var SampleProducts = []model.Product{
	{
		ID:          "1",
		Name:        "MKBHD Black T-Shirt",
		Price:       "$29.99",
		PriceValue:  29.99,
		Popularity:  90,
		Image:       "https://picsum.photos/400/400?random=1",
		Category:    model.CategoryApparel,
		Description: "Premium cotton tee with signature MKBHD logo",
	},
	{
		ID:          "2",
		Name:        "MKBHD Hoodie",
		Price:       "$59.99",
		PriceValue:  59.99,
		Popularity:  120,
		Image:       "https://picsum.photos/400/400?random=2",
		Category:    model.CategoryApparel,
		Description: "Comfortable hoodie for tech enthusiasts",
	},
	{
		ID:          "3",
		Name:        "MKBHD Tech Desk Mat",
		Price:       "$24.99",
		PriceValue:  24.99,
		Popularity:  70,
		Image:       "https://picsum.photos/400/400?random=3",
		Category:    model.CategoryAccessories,
		Description: "Large desk mat perfect for your setup",
	},
	{
		ID:          "4",
		Name:        "MKBHD Coffee Mug",
		Price:       "$14.99",
		PriceValue:  14.99,
		Popularity:  60,
		Image:       "https://picsum.photos/400/400?random=4",
		Category:    model.CategoryLifestyle,
		Description: "Start your day with quality coffee",
	},
	{
		ID:          "5",
		Name:        "MKBHD Phone Case",
		Price:       "$19.99",
		PriceValue:  19.99,
		Popularity:  80,
		Image:       "https://picsum.photos/400/400?random=5",
		Category:    model.CategoryAccessories,
		Description: "Protect your phone in style",
	},
	{
		ID:          "6",
		Name:        "MKBHD Poster Set",
		Price:       "$34.99",
		PriceValue:  34.99,
		Popularity:  50,
		Image:       "https://picsum.photos/400/400?random=6",
		Category:    model.CategoryLifestyle,
		Description: "Decorate your space with tech vibes",
	},
}

// NewDefault はSampleProductsから構築したCatalogを返す。
func NewDefault() *Catalog {
	return New(SampleProducts)
}
