package youtube

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/merchshop/internal/model"
	"github.com/hitoshi/merchshop/internal/security"
)

// defaultFeedBaseURL はチャンネルフィードのベースURL。
const defaultFeedBaseURL = "https://www.youtube.com"

// FeedSource はチャンネルの公開Atomフィードから最新動画を取得する。
// APIキーを必要としないため、キー未設定時の代替取得元として使用する。
type FeedSource struct {
	httpClient *http.Client
	baseURL    string
	guard      security.SSRFGuardService
	sanitizer  security.TextSanitizer
	logger     *slog.Logger
}

// NewFeedSource はFeedSourceの新しいインスタンスを生成する。
func NewFeedSource(httpClient *http.Client, guard security.SSRFGuardService, sanitizer security.TextSanitizer, logger *slog.Logger) *FeedSource {
	return &FeedSource{
		httpClient: httpClient,
		baseURL:    defaultFeedBaseURL,
		guard:      guard,
		sanitizer:  sanitizer,
		logger:     logger,
	}
}

// Latest はフィードに含まれる動画を新しい順に最大max件返す。
func (f *FeedSource) Latest(ctx context.Context, channelID string, max int) ([]model.Video, error) {
	feedURL := f.baseURL + "/feeds/videos.xml?channel_id=" + url.QueryEscape(channelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Error("チャンネルフィードの取得に失敗しました",
			slog.String("channel_id", channelID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		f.logger.Error("チャンネルフィードのパースに失敗しました",
			slog.String("channel_id", channelID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("フィードのパースに失敗しました: %w", err)
	}

	videos := make([]model.Video, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if len(videos) >= max {
			break
		}
		if item == nil {
			continue
		}
		id := feedVideoID(item)
		if id == "" {
			continue
		}

		v := model.Video{
			ID:        id,
			Title:     f.sanitizer.Sanitize(item.Title),
			Thumbnail: safeThumbnail(f.guard, feedThumbnail(item)),
			URL:       EmbedURL(id),
		}
		if item.PublishedParsed != nil {
			v.PublishedAt = *item.PublishedParsed
		}
		videos = append(videos, v)
	}
	return videos, nil
}

// feedVideoID は yt:videoId 拡張要素、なければ "yt:video:<id>" 形式のIDから動画IDを取り出す。
func feedVideoID(item *gofeed.Item) string {
	if ids := item.Extensions["yt"]["videoId"]; len(ids) > 0 && ids[0].Value != "" {
		return ids[0].Value
	}
	if id, ok := strings.CutPrefix(item.GUID, "yt:video:"); ok {
		return id
	}
	return ""
}

// feedThumbnail は media:group 内の media:thumbnail のURLを返す。
func feedThumbnail(item *gofeed.Item) string {
	for _, group := range item.Extensions["media"]["group"] {
		for _, thumb := range group.Children["thumbnail"] {
			if u := thumb.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}
