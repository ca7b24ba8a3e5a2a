package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// MaxBodySize は、レスポンスボディの最大読み込みサイズです。
const MaxBodySize = int64(10 * 1024 * 1024) // 10MB

// TextFetcher は、Doer でGETしたレスポンスボディを文字コード判定のうえテキストに変換します。
// ステータスコードは検査せず、エラーページでもボディをそのまま返します。
type TextFetcher struct {
	doer    Doer
	verbose bool
}

// NewTextFetcher は、新しいTextFetcherのインスタンスを生成します。
func NewTextFetcher(doer Doer) (*TextFetcher, error) {
	if doer == nil {
		return nil, fmt.Errorf("fetch.NewTextFetcher: Doer cannot be nil")
	}
	return &TextFetcher{doer: doer}, nil
}

// WithVerbose は、ステータスと判定した文字コードをログ出力するかどうかを設定します。
func (t *TextFetcher) WithVerbose(verbose bool) *TextFetcher {
	t.verbose = verbose
	return t
}

// FetchText は指定されたURLからコンテンツを取得し、文字列として返します。
func (t *TextFetcher) FetchText(ctx context.Context, url string) (string, error) {
	// 1. GETリクエストの送信 (通信の責務)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("GETリクエスト作成に失敗しました (URL: %s): %w", url, err)
	}
	resp, err := t.doer.Do(req)
	if err != nil {
		return "", fmt.Errorf("コンテンツの取得に失敗しました (URL: %s): %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return "", fmt.Errorf("レスポンスボディの読み込みに失敗しました (URL: %s): %w", url, err)
	}

	// 2. テキストへの変換 (デコードの責務)
	contentType := resp.Header.Get("Content-Type")
	text, name, err := DecodeText(body, contentType)
	if err != nil {
		return "", fmt.Errorf("レスポンスボディをテキストとして読み込めませんでした (URL: %s): %w", url, err)
	}
	if t.verbose {
		log.Printf("レスポンスを受信しました (URL: %s, status: %d, charset: %s, %dバイト)", url, resp.StatusCode, name, len(body))
	}
	return text, nil
}

// DecodeText は文字コードを判定し、UTF-8文字列に変換します。
// 判定はBOM、Content-Typeのcharset、<meta charset>、ボディ全体のUTF-8妥当性の順で行い、
// いずれにも該当しない場合は windows-1252 として扱います。
func DecodeText(body []byte, contentType string) (text string, encodingName string, err error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)

	// DetermineEncoding は先頭1024バイトしか見ないため、既定値にフォールバックした場合は全体で再判定する
	if !certain && name == "windows-1252" && utf8.Valid(body) {
		return string(body), "utf-8", nil
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", name, fmt.Errorf("%s としてのデコードに失敗しました: %w", name, err)
	}
	return string(decoded), name, nil
}
