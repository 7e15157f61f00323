// Package intro はタブ単位で一度だけ表示するイントロ演出の表示済みフラグを管理する。
package intro

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultExpiration はフラグの保持期間。ブラウザのセッションより長ければよい。
const DefaultExpiration = 12 * time.Hour

// Tracker はタブIDごとのイントロ表示済みフラグを保持する。
type Tracker struct {
	cache *gocache.Cache
}

// NewTracker はTrackerを生成する。expirationが0以下の場合はDefaultExpirationを使う。
func NewTracker(expiration time.Duration) *Tracker {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &Tracker{cache: gocache.New(expiration, expiration/2)}
}

// ShouldShow はイントロを表示すべきかを返す。
func (t *Tracker) ShouldShow(tabID string) bool {
	_, shown := t.cache.Get(tabID)
	return !shown
}

// MarkShown はイントロを表示済みにする。
func (t *Tracker) MarkShown(tabID string) {
	t.cache.SetDefault(tabID, true)
}

// CheckAndMark はイントロを表示すべきかを返し、同時に表示済みにする。
// 同じタブから同時に呼ばれても、trueを返すのは一度だけである。
func (t *Tracker) CheckAndMark(tabID string) bool {
	return t.cache.Add(tabID, true, gocache.DefaultExpiration) == nil
}
