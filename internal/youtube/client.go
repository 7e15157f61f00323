// Package youtube はチャンネルの最新動画と統計情報の取得を提供する。
// YouTube Data API v3 のクライアント、APIキーがない場合のチャンネルフィードによる代替取得、
// 非同期タスクとキャッシュ付きローダーを含む。
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hitoshi/merchshop/internal/model"
	"github.com/hitoshi/merchshop/internal/security"
)

const (
	// defaultBaseURL はYouTube Data APIのベースURL。
	defaultBaseURL = "https://www.googleapis.com"
	// embedBaseURL は埋め込みプレーヤーのURL。
	embedBaseURL = "https://www.youtube.com/embed/"
	// FallbackThumbnail はサムネイルが取得できない場合に使用する画像。
	FallbackThumbnail = "https://placehold.co/320x180/222/fff?text=No+Image"
	// maxBodySize はAPIレスポンスの最大読み取りサイズ。
	maxBodySize = 2 * 1024 * 1024
	// kindVideo は検索結果のうち動画を表す種別。
	kindVideo = "youtube#video"
)

var (
	// ErrMissingAPIKey はAPIキーが設定されていない場合のエラー。
	ErrMissingAPIKey = errors.New("YouTube APIキーが設定されていません")
	// ErrNoVideo は検索結果に動画が含まれない場合のエラー。
	ErrNoVideo = errors.New("最新の動画が見つかりません")
	// ErrChannelNotFound はチャンネルが見つからない場合のエラー。
	ErrChannelNotFound = errors.New("チャンネルが見つかりません")
)

// VideoSource は最新動画の取得元。
type VideoSource interface {
	Latest(ctx context.Context, channelID string, max int) ([]model.Video, error)
}

// StatsSource はチャンネル統計情報の取得元。
type StatsSource interface {
	ChannelStatistics(ctx context.Context, channelID string) (model.ChannelStats, error)
}

// Client はYouTube Data API v3 のクライアント。
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	guard      security.SSRFGuardService
	sanitizer  security.TextSanitizer
	logger     *slog.Logger
}

// NewClient はClientの新しいインスタンスを生成する。baseURLが空の場合は公式APIを使う。
func NewClient(
	httpClient *http.Client,
	apiKey, baseURL string,
	guard security.SSRFGuardService,
	sanitizer security.TextSanitizer,
	logger *slog.Logger,
) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    baseURL,
		guard:      guard,
		sanitizer:  sanitizer,
		logger:     logger,
	}
}

// searchResponse は search エンドポイントのレスポンスのうち使用する部分。
type searchResponse struct {
	Items []struct {
		ID struct {
			Kind    string `json:"kind"`
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string    `json:"title"`
			PublishedAt time.Time `json:"publishedAt"`
			Thumbnails  map[string]struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// channelsResponse は channels エンドポイントのレスポンスのうち使用する部分。
// 統計値は文字列で返される。
type channelsResponse struct {
	Items []struct {
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			ViewCount       string `json:"viewCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Latest はSearchLatestを呼び出す。VideoSourceを満たす。
func (c *Client) Latest(ctx context.Context, channelID string, max int) ([]model.Video, error) {
	return c.SearchLatest(ctx, channelID, max)
}

// SearchLatest はチャンネルの新しい順の動画を最大max件返す。
// 検索結果のうち動画以外（再生リスト、チャンネル）は除外する。
func (c *Client) SearchLatest(ctx context.Context, channelID string, max int) ([]model.Video, error) {
	q := url.Values{}
	q.Set("channelId", channelID)
	q.Set("part", "snippet,id")
	q.Set("order", "date")
	q.Set("maxResults", strconv.Itoa(max))

	var resp searchResponse
	if err := c.get(ctx, "/youtube/v3/search", q, &resp); err != nil {
		return nil, err
	}

	videos := make([]model.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.Kind != kindVideo || item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, model.Video{
			ID:          item.ID.VideoID,
			Title:       c.sanitizer.Sanitize(item.Snippet.Title),
			Thumbnail:   c.thumbnail(item.Snippet.Thumbnails["high"].URL),
			URL:         EmbedURL(item.ID.VideoID),
			PublishedAt: item.Snippet.PublishedAt,
		})
	}
	return videos, nil
}

// ChannelStatistics はチャンネルの登録者数・総再生回数・動画数を返す。
func (c *Client) ChannelStatistics(ctx context.Context, channelID string) (model.ChannelStats, error) {
	q := url.Values{}
	q.Set("part", "statistics")
	q.Set("id", channelID)

	var resp channelsResponse
	if err := c.get(ctx, "/youtube/v3/channels", q, &resp); err != nil {
		return model.ChannelStats{}, err
	}
	if len(resp.Items) == 0 {
		return model.ChannelStats{}, ErrChannelNotFound
	}

	s := resp.Items[0].Statistics
	var stats model.ChannelStats
	var err error
	if stats.SubscriberCount, err = parseCount(s.SubscriberCount); err != nil {
		return model.ChannelStats{}, fmt.Errorf("subscriberCount: %w", err)
	}
	if stats.ViewCount, err = parseCount(s.ViewCount); err != nil {
		return model.ChannelStats{}, fmt.Errorf("viewCount: %w", err)
	}
	if stats.VideoCount, err = parseCount(s.VideoCount); err != nil {
		return model.ChannelStats{}, fmt.Errorf("videoCount: %w", err)
	}
	return stats, nil
}

// get はAPIを呼び出してJSONレスポンスをdstにデコードする。
func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	reqURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	q.Set("key", c.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("YouTube APIの呼び出しに失敗しました",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("YouTube APIがエラーステータスを返しました",
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("API error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		c.logger.Error("YouTube APIのレスポンスのパースに失敗しました",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	return nil
}

// thumbnail は安全なhttps URLであればそのまま、そうでなければ代替画像を返す。
func (c *Client) thumbnail(raw string) string {
	return safeThumbnail(c.guard, raw)
}

func safeThumbnail(guard security.SSRFGuardService, raw string) string {
	if raw == "" || guard.ValidateImageURL(raw) != nil {
		return FallbackThumbnail
	}
	return raw
}

// EmbedURL は動画IDから埋め込みプレーヤーのURLを作る。
func EmbedURL(videoID string) string {
	return embedBaseURL + url.PathEscape(videoID)
}

func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
