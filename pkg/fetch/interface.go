package fetch

import (
	"context"
	"net/http"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Fetcher は、URLからレスポンスボディの生バイト配列を取得する機能のインターフェースを定義します。
// ステータスコードの検査は実装側 (*httpkit.Client) が行います。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Doer は、*http.Client.Do() と互換性のあるHTTPクライアントのインターフェースを定義します。
// レスポンスのステータスコードやヘッダーを呼び出し側で扱う場合に使用します。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client は Fetcher と Doer の両方を満たすクライアントです。*httpkit.Client はこれを満たします。
type Client interface {
	Fetcher
	Doer
}
