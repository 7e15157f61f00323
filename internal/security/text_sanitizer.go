// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は外部API由来の動画タイトルや利用者が入力した名前・住所から
// HTMLタグを取り除き、プレーンテキストとして扱える文字列にする。
// bluemondayのStrictPolicyを使用し、すべてのタグと属性を除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキストのサニタイズ機能のインターフェースを定義する。
type TextSanitizer interface {
	// Sanitize はHTMLタグを除去し、前後の空白を取り除いた文字列を返す。
	// 文字参照は元の文字に戻す。同一入力に対して常に同一出力を返す。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのポリシーはスレッドセーフに使用できる。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はHTMLタグを除去したプレーンテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	// StrictPolicyは & や < をエスケープして返すため、プレーンテキストに戻す
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}
