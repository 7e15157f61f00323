package handler

import (
	"net/http"
	"time"

	"github.com/hitoshi/merchshop/internal/model"
	"github.com/hitoshi/merchshop/internal/youtube"
)

// maxWait は?wait=で指定できる待機時間の上限。
const maxWait = 10 * time.Second

// VideoLoader は動画ハンドラーが必要とする非同期取得のインターフェース。
type VideoLoader interface {
	LatestVideos() *youtube.Task[[]model.Video]
	LatestVideo() *youtube.Task[model.Video]
	ChannelStats() *youtube.Task[model.ChannelStats]
}

// VideoHandler はチャンネル動画・統計のHTTPハンドラー。
// 取得は非同期で行い、完了前はstatus=pendingを返す。
type VideoHandler struct {
	loader VideoLoader
}

// NewVideoHandler はVideoHandlerを生成する。
func NewVideoHandler(loader VideoLoader) *VideoHandler {
	return &VideoHandler{loader: loader}
}

// videosResponse は最新動画一覧のAPIレスポンス。
type videosResponse struct {
	Status            youtube.Status `json:"status"`
	Videos            []model.Video  `json:"videos"`
	Error             string         `json:"error,omitempty"`
	FallbackThumbnail string         `json:"fallbackThumbnail"`
}

// videoResponse は最新動画1件のAPIレスポンス。
type videoResponse struct {
	Status            youtube.Status `json:"status"`
	Video             *model.Video   `json:"video,omitempty"`
	Error             string         `json:"error,omitempty"`
	FallbackThumbnail string         `json:"fallbackThumbnail"`
}

// statsResponse はチャンネル統計のAPIレスポンス。
type statsResponse struct {
	Status    youtube.Status      `json:"status"`
	Stats     *model.ChannelStats `json:"stats,omitempty"`
	Formatted *formattedStats     `json:"formatted,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// formattedStats は表示用に短縮した統計値（例: "19.2M"）。
type formattedStats struct {
	Subscribers string `json:"subscribers"`
	Views       string `json:"views"`
	Videos      string `json:"videos"`
}

// LatestVideos は最新動画一覧の取得状態を返す。
// GET /api/videos/latest?wait=
func (h *VideoHandler) LatestVideos(w http.ResponseWriter, r *http.Request) {
	wait, ok := parseWait(w, r)
	if !ok {
		return
	}

	res := h.loader.LatestVideos().Wait(wait)
	resp := videosResponse{
		Status:            res.Status,
		Videos:            []model.Video{},
		FallbackThumbnail: youtube.FallbackThumbnail,
	}
	switch res.Status {
	case youtube.StatusSuccess:
		if res.Value != nil {
			resp.Videos = res.Value
		}
	case youtube.StatusFailure:
		resp.Error = res.Err.Error()
	}

	writeJSON(w, statusCodeFor(res.Status), resp)
}

// LatestVideo は最新動画1件の取得状態を返す。
// GET /api/videos/latest-one?wait=
func (h *VideoHandler) LatestVideo(w http.ResponseWriter, r *http.Request) {
	wait, ok := parseWait(w, r)
	if !ok {
		return
	}

	res := h.loader.LatestVideo().Wait(wait)
	resp := videoResponse{
		Status:            res.Status,
		FallbackThumbnail: youtube.FallbackThumbnail,
	}
	switch res.Status {
	case youtube.StatusSuccess:
		v := res.Value
		resp.Video = &v
	case youtube.StatusFailure:
		resp.Error = res.Err.Error()
	}

	writeJSON(w, statusCodeFor(res.Status), resp)
}

// ChannelStats はチャンネル統計の取得状態を返す。
// GET /api/channel/stats?wait=
func (h *VideoHandler) ChannelStats(w http.ResponseWriter, r *http.Request) {
	wait, ok := parseWait(w, r)
	if !ok {
		return
	}

	res := h.loader.ChannelStats().Wait(wait)
	resp := statsResponse{Status: res.Status}
	switch res.Status {
	case youtube.StatusSuccess:
		s := res.Value
		resp.Stats = &s
		resp.Formatted = &formattedStats{
			Subscribers: youtube.FormatCount(s.SubscriberCount),
			Views:       youtube.FormatCount(s.ViewCount),
			Videos:      youtube.FormatCount(s.VideoCount),
		}
	case youtube.StatusFailure:
		resp.Error = res.Err.Error()
	}

	writeJSON(w, statusCodeFor(res.Status), resp)
}

// parseWait は?wait=の待機時間を解析する。未指定は0（待たない）。
// 上限を超える値はmaxWaitに切り詰める。
func parseWait(w http.ResponseWriter, r *http.Request) (time.Duration, bool) {
	raw := r.URL.Query().Get("wait")
	if raw == "" {
		return 0, true
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("waitは0以上の時間（例: 2s）で指定してください"))
		return 0, false
	}
	return min(d, maxWait), true
}

// statusCodeFor は取得状態のHTTPステータスコードを返す。
// 取得失敗はページ全体の失敗ではないため200で返す。
func statusCodeFor(s youtube.Status) int {
	if s == youtube.StatusPending {
		return http.StatusAccepted
	}
	return http.StatusOK
}
