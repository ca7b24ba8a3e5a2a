package main

import (
	"github.com/shouni/go-web-probe/cmd"
)

// main は、cmd.Execute を呼び出します。エラー時の終了処理は cmd.Execute の中で行われます。
func main() {
	cmd.Execute()
}
