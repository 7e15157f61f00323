// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

const (
	// clientCookieName はクライアントストレージの名前空間を識別するCookie。
	// ブラウザを閉じても保持する。
	clientCookieName = "client_id"
	// tabCookieName はブラウザのセッション単位の識別子を保持するCookie。
	// 有効期限を設定せず、ブラウザを閉じると破棄される。
	tabCookieName = "tab_id"
	// clientCookieMaxAge はclient_id Cookieの有効期間（400日）。
	clientCookieMaxAge = 400 * 24 * 60 * 60
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	clientIDContextKey = contextKey("client_id")
	tabIDContextKey    = contextKey("tab_id")
)

// ClientCookieConfig は識別用Cookieの設定。
type ClientCookieConfig struct {
	CookieSecure bool
	CookieDomain string
}

// NewClientIdentityMiddleware はclient_idとtab_idのCookieを読み取り、
// リクエストコンテキストに注入するミドルウェアを返す。
// Cookieがない、またはUUIDとして不正な場合は新しい値を発行する。
func NewClientIdentityMiddleware(config ClientCookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID, issued := readOrIssue(r, clientCookieName)
			if issued {
				http.SetCookie(w, &http.Cookie{
					Name:     clientCookieName,
					Value:    clientID,
					Path:     "/",
					Domain:   config.CookieDomain,
					MaxAge:   clientCookieMaxAge,
					HttpOnly: true,
					Secure:   config.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
				slog.Debug("client_idを発行しました", slog.String("client_id", clientID))
			}

			tabID, issued := readOrIssue(r, tabCookieName)
			if issued {
				http.SetCookie(w, &http.Cookie{
					Name:     tabCookieName,
					Value:    tabID,
					Path:     "/",
					Domain:   config.CookieDomain,
					HttpOnly: true,
					Secure:   config.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := ContextWithClientID(r.Context(), clientID)
			ctx = ContextWithTabID(ctx, tabID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// readOrIssue はCookieの値を返す。値が使えない場合は新しいUUIDとtrueを返す。
func readOrIssue(r *http.Request, name string) (string, bool) {
	if cookie, err := r.Cookie(name); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String(), false
		}
	}
	return uuid.NewString(), true
}

// ClientIDFromContext はリクエストコンテキストからクライアントIDを取得する。
func ClientIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(clientIDContextKey).(string)
	if !ok || id == "" {
		return "", fmt.Errorf("client ID not found in context")
	}
	return id, nil
}

// TabIDFromContext はリクエストコンテキストからタブIDを取得する。
func TabIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(tabIDContextKey).(string)
	if !ok || id == "" {
		return "", fmt.Errorf("tab ID not found in context")
	}
	return id, nil
}

// ContextWithClientID はコンテキストにクライアントIDを注入する。
func ContextWithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDContextKey, clientID)
}

// ContextWithTabID はコンテキストにタブIDを注入する。
func ContextWithTabID(ctx context.Context, tabID string) context.Context {
	return context.WithValue(ctx, tabIDContextKey, tabID)
}
