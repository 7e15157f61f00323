package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/merchshop/internal/model"
)

// featuredCount はホーム画面に表示するおすすめ商品の件数。
const featuredCount = 3

// emptyProductsMessage は絞り込み結果が0件のときに表示するメッセージ。
const emptyProductsMessage = "No products found."

// ProductCatalog は商品ハンドラーが必要とするカタログのインターフェース。
type ProductCatalog interface {
	// Query はカテゴリと並び順を検証し、表示用の商品列を返す。
	Query(category model.Category, sortKey model.SortKey) ([]model.Product, error)
	// Featured は先頭n件の商品を返す。
	Featured(n int) []model.Product
	// FindByID はIDで商品を検索する。
	FindByID(id string) (model.Product, bool)
}

// ProductHandler は商品一覧・詳細のHTTPハンドラー。
type ProductHandler struct {
	catalog ProductCatalog
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(catalog ProductCatalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// productListResponse は商品一覧のAPIレスポンス。
// 0件の場合はEmptyをtrueにし、UIが空状態を明示的に表示できるようにする。
type productListResponse struct {
	Products []model.Product `json:"products"`
	Count    int             `json:"count"`
	Category model.Category  `json:"category"`
	Sort     model.SortKey   `json:"sort"`
	Empty    bool            `json:"empty"`
	Message  string          `json:"message,omitempty"`
}

// ListProducts は商品一覧を返す。
// GET /api/products?category=&sort=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := model.CategoryAll
	if v := r.URL.Query().Get("category"); v != "" {
		category = model.Category(v)
	}
	sortKey := model.SortDefault
	if v := r.URL.Query().Get("sort"); v != "" {
		sortKey = model.SortKey(v)
	}

	products, err := h.catalog.Query(category, sortKey)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := productListResponse{
		Products: products,
		Count:    len(products),
		Category: category,
		Sort:     sortKey,
	}
	if len(products) == 0 {
		resp.Products = []model.Product{}
		resp.Empty = true
		resp.Message = emptyProductsMessage
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListFeatured はおすすめ商品を返す。
// GET /api/products/featured
func (h *ProductHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.Featured(featuredCount)
	writeJSON(w, http.StatusOK, productListResponse{
		Products: products,
		Count:    len(products),
		Category: model.CategoryAll,
		Sort:     model.SortDefault,
		Empty:    len(products) == 0,
	})
}

// GetProduct は商品詳細を返す。
// GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, ok := h.catalog.FindByID(id)
	if !ok {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewProductNotFoundError(id))
		return
	}

	writeJSON(w, http.StatusOK, product)
}
