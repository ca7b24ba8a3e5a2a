package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shouni/go-web-probe/pkg/fetch"
	"github.com/shouni/go-web-probe/pkg/probe"
)

// Options は、1件のプローブ処理の実行設定です。
type Options struct {
	Query          probe.Query
	OverallTimeout time.Duration // 0 以下の場合はタイムアウトなし
	Verbose        bool
}

// ProbeURL は、URLからページを取得し、価格クエリと詳細クエリの結果を w に書き込むメインの処理パイプラインです。
func ProbeURL(ctx context.Context, doer fetch.Doer, rawURL string, opts Options, w io.Writer) error {
	// 1. 全体処理のコンテキストを設定
	if opts.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.OverallTimeout)
		defer cancel()
	}

	// 2. 依存性の初期化 (Doer -> TextFetcher -> Runner)
	textFetcher, err := fetch.NewTextFetcher(doer)
	if err != nil {
		return fmt.Errorf("TextFetcherの初期化エラー: %w", err)
	}
	textFetcher.WithVerbose(opts.Verbose)

	runner, err := probe.NewRunner(textFetcher, opts.Query)
	if err != nil {
		return fmt.Errorf("Runnerの初期化エラー: %w", err)
	}

	// 3. プローブの実行
	if err := runner.Run(ctx, rawURL, w); err != nil {
		return fmt.Errorf("プローブの実行エラー (URL: %s): %w", rawURL, err)
	}
	return nil
}

// ProbeToString は ProbeURL の出力を文字列として返します。エラー時も途中までの出力を返します。
func ProbeToString(ctx context.Context, doer fetch.Doer, rawURL string, opts Options) (string, error) {
	var buf bytes.Buffer
	err := ProbeURL(ctx, doer, rawURL, opts, &buf)
	return buf.String(), err
}

// Prober は、共有の Doer とタイムアウト設定を保持し、scraper.Prober インターフェースを満たします。
type Prober struct {
	doer           fetch.Doer
	overallTimeout time.Duration
	verbose        bool
}

// NewProber は新しい Prober を生成します。
func NewProber(doer fetch.Doer, overallTimeout time.Duration, verbose bool) (*Prober, error) {
	if doer == nil {
		return nil, fmt.Errorf("pipeline.NewProber: Doer cannot be nil")
	}
	return &Prober{doer: doer, overallTimeout: overallTimeout, verbose: verbose}, nil
}

// Probe は1件のURLを処理し、出力を文字列として返します。
func (p *Prober) Probe(ctx context.Context, rawURL string, q probe.Query) (string, error) {
	return ProbeToString(ctx, p.doer, rawURL, Options{
		Query:          q,
		OverallTimeout: p.overallTimeout,
		Verbose:        p.verbose,
	})
}
