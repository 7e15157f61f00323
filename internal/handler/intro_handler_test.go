package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/merchshop/internal/model"
)

func TestIntroHandler_ShowsOncePerTab(t *testing.T) {
	h := NewIntroHandler(&mockIntroTracker{})

	want := []bool{true, false, false}
	for i, w := range want {
		rec := httptest.NewRecorder()
		h.GetIntro(rec, withClient(httptest.NewRequest(http.MethodGet, "/api/intro", nil), "client-1"))

		got := decodeJSON[introResponse](t, rec)
		if got.Show != w {
			t.Errorf("call %d: show = %v, want %v", i, got.Show, w)
		}
	}

	// 別タブでは再び表示する
	rec := httptest.NewRecorder()
	h.GetIntro(rec, withClient(httptest.NewRequest(http.MethodGet, "/api/intro", nil), "client-2"))
	if got := decodeJSON[introResponse](t, rec); !got.Show {
		t.Error("new tab should show intro")
	}
}

func TestIntroHandler_NoTabID_Returns400(t *testing.T) {
	h := NewIntroHandler(&mockIntroTracker{})

	w := httptest.NewRecorder()
	h.GetIntro(w, httptest.NewRequest(http.MethodGet, "/api/intro", nil))

	assertErrorCode(t, w, http.StatusBadRequest, model.ErrCodeClientUnavailable)
}
