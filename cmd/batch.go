package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-web-probe/internal/config"
	"github.com/shouni/go-web-probe/internal/pipeline"
	"github.com/shouni/go-web-probe/pkg/probe"
	"github.com/shouni/go-web-probe/pkg/scraper"
)

// コマンドラインフラグ変数を定義
var (
	batchConfigPath string        // --config フラグで受け取るYAMLファイル
	inputURLs       string        // --urls フラグで受け取るカンマ区切りのURLリスト
	concurrency     int           // --concurrency フラグで受け取る並列実行数
	rateLimit       time.Duration // --rate-limit フラグで受け取るリクエスト開始間隔
	batchQuery      queryFlags
)

// readURLs は r から1行1URLで読み込みます。空行と # で始まる行は無視します。
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("標準入力の読み取りエラー: %w", err)
	}
	return urls, nil
}

// splitURLs はカンマ区切りのURLリストを分割します。空要素は無視します。
func splitURLs(s string) []string {
	var urls []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// buildTargets は、URLのスキームを補完し、同じクエリを持つ Target の一覧を作成します。
func buildTargets(urls []string, q probe.Query) ([]scraper.Target, error) {
	targets := make([]scraper.Target, 0, len(urls))
	for _, u := range urls {
		processed, err := ensureScheme(u)
		if err != nil {
			return nil, fmt.Errorf("URLスキームの処理エラー: %w", err)
		}
		targets = append(targets, scraper.Target{URL: processed, Query: q})
	}
	return targets, nil
}

// targetsFromConfig は、YAMLファイルの対象を Target の一覧に変換します。
func targetsFromConfig(f *config.File) ([]scraper.Target, error) {
	targets := make([]scraper.Target, 0, len(f.Targets))
	for _, t := range f.Targets {
		processed, err := ensureScheme(t.URL)
		if err != nil {
			return nil, fmt.Errorf("URLスキームの処理エラー: %w", err)
		}
		targets = append(targets, scraper.Target{URL: processed, Query: t.Query})
	}
	return targets, nil
}

// runProbePipeline は、並列プローブを実行して結果を表示するメインロジックです。
func runProbePipeline(cmd *cobra.Command, title string, targets []scraper.Target) error {
	fetcher := GetGlobalFetcher()
	if fetcher == nil {
		return fmt.Errorf("HTTPクライアントの取得に失敗しました")
	}
	prober, err := pipeline.NewProber(fetcher, overallTimeout(), clibase.Flags.Verbose)
	if err != nil {
		return fmt.Errorf("Proberの初期化エラー: %w", err)
	}

	s := scraper.NewParallelScraper(prober, concurrency).WithRateLimit(rateLimit)

	log.Printf("並列プローブ開始 (対象URL数: %d, 最大同時実行数: %d, 1件あたりのタイムアウト: %s)",
		len(targets), concurrency, overallTimeout())

	results := s.ProbeInParallel(context.Background(), targets)

	if failed := printResults(cmd.OutOrStdout(), title, results); failed > 0 {
		return fmt.Errorf("%d 件のプローブに失敗しました", failed)
	}
	return nil
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "複数の商品ページを並列でプローブします",
	Long: `--config のYAMLファイル、--urls のカンマ区切りリスト、または標準入力 (1行1URL) から
対象を読み込み、指定された最大同時実行数で並列にプローブします。
1件でも失敗した場合は非ゼロで終了します。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		var targets []scraper.Target

		switch {
		case batchConfigPath != "":
			f, err := config.LoadFile(batchConfigPath)
			if err != nil {
				return err
			}
			if targets, err = targetsFromConfig(f); err != nil {
				return err
			}

		default:
			q, err := batchQuery.query()
			if err != nil {
				return fmt.Errorf("クエリの指定エラー: %w", err)
			}

			var urls []string
			if inputURLs != "" {
				urls = splitURLs(inputURLs)
			} else {
				log.Println("URLが指定されていないため、標準入力からURLを読み込みます (Ctrl+DまたはEOFで終了)...")
				if urls, err = readURLs(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			if targets, err = buildTargets(urls, q); err != nil {
				return err
			}
		}

		if len(targets) == 0 {
			return fmt.Errorf("処理対象のURLが一つも指定されていません")
		}

		return runProbePipeline(cmd, "並列プローブ結果", targets)
	},
}

// addBatchFlags は、並列実行に関するフラグを登録します。
func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c",
		scraper.DefaultMaxConcurrency,
		"最大並列実行数")
	cmd.Flags().DurationVar(&rateLimit, "rate-limit",
		scraper.DefaultScrapeRateLimit,
		"リクエスト開始の最小間隔 (0で無効)")
}

func init() {
	batchCmd.Flags().StringVar(&batchConfigPath, "config", "", "プローブ対象を定義したYAMLファイル")
	batchCmd.Flags().StringVarP(&inputURLs, "urls", "u", "",
		"プローブ対象のカンマ区切りURLリスト (例: url1,url2,url3)")
	batchQuery.bind(batchCmd)
	addBatchFlags(batchCmd)
	batchCmd.MarkFlagsMutuallyExclusive("config", "urls")
	// --config 使用時のクエリはYAMLファイルで指定する
	markExclusiveWith(batchCmd, "config")
}
