package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shouni/go-web-probe/pkg/probe"
	"github.com/shouni/go-web-probe/pkg/types"
)

const (
	// DefaultMaxConcurrency は、並列プローブのデフォルトの最大同時実行数を定義します。
	DefaultMaxConcurrency = 6
	// DefaultScrapeRateLimit は、リクエスト開始の最小間隔を定義します。
	DefaultScrapeRateLimit = 1000 * time.Millisecond
)

// Prober は、1件のURLに対してクエリを実行し、出力を返す機能のインターフェースです。
type Prober interface {
	Probe(ctx context.Context, url string, q probe.Query) (string, error)
}

// Target は、並列プローブの1件分の入力です。
type Target struct {
	URL   string
	Query probe.Query
}

// Scraper は複数URLのプローブ機能を提供するインターフェースです。
type Scraper interface {
	ProbeInParallel(ctx context.Context, targets []Target) []types.URLResult
}

// ParallelScraper は Scraper インターフェースを実装する並列処理構造体です。
type ParallelScraper struct {
	prober         Prober
	maxConcurrency int           // 最大並列数を保持するフィールド
	rateLimit      time.Duration // リクエスト開始の間隔 (0 の場合は制限なし)
}

// NewParallelScraper は ParallelScraper を初期化します。
// 依存性として Prober と、最大同時実行数を受け取ります。
func NewParallelScraper(prober Prober, maxConcurrency int) *ParallelScraper {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &ParallelScraper{
		prober:         prober,
		maxConcurrency: maxConcurrency,
		rateLimit:      DefaultScrapeRateLimit,
	}
}

// WithRateLimit はリクエスト開始の間隔を設定します。0 以下の場合はレート制限を無効にします。
func (s *ParallelScraper) WithRateLimit(d time.Duration) *ParallelScraper {
	if d < 0 {
		d = 0
	}
	s.rateLimit = d
	return s
}

// ProbeInParallel は Scraper インターフェースのメソッドを実装します。
// 結果は入力と同じ順序で返されます。
func (s *ParallelScraper) ProbeInParallel(ctx context.Context, targets []Target) []types.URLResult {
	var wg sync.WaitGroup
	results := make([]types.URLResult, len(targets))

	// バッファ付きチャネルをセマフォとして使用し、同時実行数を制限する
	semaphore := make(chan struct{}, s.maxConcurrency)

	var rateLimiter <-chan time.Time
	if s.rateLimit > 0 {
		ticker := time.NewTicker(s.rateLimit)
		defer ticker.Stop()
		rateLimiter = ticker.C
	}

	for i, target := range targets {
		wg.Add(1)

		// リソース（スロット）の確保。maxConcurrency件実行中の場合はここでブロックして待機。
		semaphore <- struct{}{}

		go func(i int, t Target) {
			defer wg.Done()

			// 処理完了後にリソース（スロット）を解放。他の待機中のGoroutineが実行可能になる。
			defer func() { <-semaphore }()

			// 最初の1件は待たずに開始する
			if rateLimiter != nil && i > 0 {
				select {
				case <-rateLimiter:
				case <-ctx.Done():
					results[i] = types.URLResult{URL: t.URL, Error: ctx.Err()}
					return
				}
			}
			if err := ctx.Err(); err != nil {
				results[i] = types.URLResult{URL: t.URL, Error: err}
				return
			}

			content, err := s.prober.Probe(ctx, t.URL, t.Query)
			if err != nil {
				err = fmt.Errorf("プローブに失敗しました: %w", err)
			}

			results[i] = types.URLResult{
				URL:     t.URL,
				Content: content,
				Error:   err,
			}
		}(i, target)
	}

	wg.Wait()
	return results
}
