package handler

import (
	"net/http"

	"github.com/hitoshi/merchshop/internal/middleware"
	"github.com/hitoshi/merchshop/internal/model"
)

// IntroTracker はイントロ表示済みフラグのインターフェース。
type IntroTracker interface {
	// CheckAndMark は未表示ならtrueを返し、同時に表示済みにする。
	CheckAndMark(tabID string) bool
}

// IntroHandler はイントロアニメーション表示可否のHTTPハンドラー。
type IntroHandler struct {
	tracker IntroTracker
}

// NewIntroHandler はIntroHandlerを生成する。
func NewIntroHandler(tracker IntroTracker) *IntroHandler {
	return &IntroHandler{tracker: tracker}
}

type introResponse struct {
	Show bool `json:"show"`
}

// GetIntro はイントロを表示すべきかを返し、表示済みとして記録する。
// 同じブラウザセッションでは最初の1回だけshow=trueとなる。
// GET /api/intro
func (h *IntroHandler) GetIntro(w http.ResponseWriter, r *http.Request) {
	tabID, err := middleware.TabIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewClientUnavailableError())
		return
	}

	writeJSON(w, http.StatusOK, introResponse{Show: h.tracker.CheckAndMark(tabID)})
}
