// Command merchshop はストアフロントのバックエンドを起動する。
//
// サブコマンド:
//
//	serve        APIサーバー（デフォルト）
//	worker       保持期間を過ぎたクライアントストレージの定期削除
//	migrate      データベースマイグレーションの適用
//	healthcheck  /health への疎通確認（コンテナのヘルスチェック用）
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/merchshop/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "merchshop: %v\n", err)
		os.Exit(1)
	}
}
