// Package model はドメインモデルを定義する。
package model

import "time"

// Video はチャンネルの動画1件を表す。
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Thumbnail   string    `json:"thumbnail"`
	URL         string    `json:"url"` // 埋め込み用URL
	PublishedAt time.Time `json:"publishedAt"`
}

// ChannelStats はチャンネルの統計情報を表す。
type ChannelStats struct {
	SubscriberCount int64 `json:"subscriberCount"`
	ViewCount       int64 `json:"viewCount"`
	VideoCount      int64 `json:"videoCount"`
}
