package cart

import (
	"context"

	"github.com/hitoshi/merchshop/internal/model"
	"github.com/hitoshi/merchshop/internal/storage"
)

// 変更操作の種類。メトリクスのラベルに使用する。
const (
	OpAdd       = "add"
	OpRemoveOne = "remove_one"
	OpRemoveAll = "remove_all"
)

// ProductFinder は商品IDから商品を引くインターフェース。
type ProductFinder interface {
	FindByID(id string) (model.Product, bool)
}

// MutationRecorder はカート変更操作の記録先。
type MutationRecorder interface {
	RecordCartMutation(op string)
}

// View はカート画面に表示する集計結果。
type View struct {
	Items          []model.CartGroup `json:"items"`
	Count          int               `json:"count"`
	Total          float64           `json:"total"`
	FormattedTotal string            `json:"formattedTotal"`
}

// NewView は明細列から表示用の集計結果を作る。
func NewView(items []model.Product) View {
	groups := Aggregate(items)
	total := Total(groups)
	return View{
		Items:          groups,
		Count:          Count(groups),
		Total:          total,
		FormattedTotal: FormatAmount(total),
	}
}

// Service はカートのサービス層。
// 変更のたびにカート全体をクライアントストレージへ保存する。
type Service struct {
	products ProductFinder
	store    *storage.Store
	locker   *storage.Locker
	recorder MutationRecorder
}

// NewService はServiceの新しいインスタンスを生成する。recorderはnilでもよい。
func NewService(products ProductFinder, store *storage.Store, locker *storage.Locker, recorder MutationRecorder) *Service {
	return &Service{
		products: products,
		store:    store,
		locker:   locker,
		recorder: recorder,
	}
}

// Get は現在のカートの集計結果を返す。
func (s *Service) Get(ctx context.Context, clientID string) View {
	return NewView(s.store.LoadCart(ctx, clientID))
}

// AddItem は商品を1つカートに追加する。
func (s *Service) AddItem(ctx context.Context, clientID, productID string) (View, error) {
	p, ok := s.products.FindByID(productID)
	if !ok {
		return View{}, model.NewProductNotFoundError(productID)
	}
	return s.mutate(ctx, clientID, OpAdd, func(items []model.Product) []model.Product {
		return Add(items, p)
	})
}

// RemoveOne は指定商品を1つカートから取り除く。カートにない商品の場合は何もしない。
func (s *Service) RemoveOne(ctx context.Context, clientID, productID string) (View, error) {
	return s.mutate(ctx, clientID, OpRemoveOne, func(items []model.Product) []model.Product {
		return RemoveOne(items, productID)
	})
}

// RemoveAll は指定商品をすべてカートから取り除く。
func (s *Service) RemoveAll(ctx context.Context, clientID, productID string) (View, error) {
	return s.mutate(ctx, clientID, OpRemoveAll, func(items []model.Product) []model.Product {
		return RemoveAll(items, productID)
	})
}

func (s *Service) mutate(ctx context.Context, clientID, op string, fn func([]model.Product) []model.Product) (View, error) {
	unlock := s.locker.Lock(clientID)
	defer unlock()

	items := fn(s.store.LoadCart(ctx, clientID))
	if err := s.store.SaveCart(ctx, clientID, items); err != nil {
		return View{}, model.NewStorageFailedError()
	}

	if s.recorder != nil {
		s.recorder.RecordCartMutation(op)
	}
	return NewView(items), nil
}
