// Package model はドメインモデルを定義する。
package model

// UserSession はクライアント側に保存されるサインイン状態を表す。
// サーバー側での本人確認は行わない。
type UserSession struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Name            string `json:"name"`
}

// DefaultUserSession は保存値が存在しない場合の既定のサインイン状態を返す。
func DefaultUserSession() UserSession {
	return UserSession{IsAuthenticated: false, Name: ""}
}
