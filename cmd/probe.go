package cmd

import (
	"context"
	"fmt"
	"log"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-web-probe/internal/pipeline"
	"github.com/shouni/go-web-probe/pkg/probe"
)

var (
	probeURL   string
	probeQuery queryFlags
)

// resolveProbeURL は、位置引数、--url フラグ、既定URLの順に処理対象URLを決定します。
func resolveProbeURL(args []string, flagURL string) string {
	if len(args) > 0 {
		return args[0]
	}
	if flagURL != "" {
		return flagURL
	}
	return probe.DefaultURL
}

var probeCmd = &cobra.Command{
	Use:   "probe [URL]",
	Short: "商品ページを取得し、価格要素の属性値と詳細テキストを表示します",
	Long: `指定されたURL (省略時は組み込みの商品ページ) を取得してHTMLとして解析し、
--selector に一致する要素の --attr 属性値を表示します。
続いて同じテキストを再解析し、一致した要素から --depth 階層上の祖先の配下で
--detail に一致する要素を表示します。`,
	Args: cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. クエリの組み立てと検証
		q, err := probeQuery.query()
		if err != nil {
			return fmt.Errorf("クエリの指定エラー: %w", err)
		}

		// 2. URLのスキーム補完とバリデーション
		processedURL, err := ensureScheme(resolveProbeURL(args, probeURL))
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}
		if clibase.Flags.Verbose {
			log.Printf("処理対象URL: %s (全体タイムアウト: %s)", processedURL, overallTimeout())
		}

		// 3. 依存性の取得
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}

		// 4. メインロジックの実行 (結果は逐次標準出力へ)
		return pipeline.ProbeURL(context.Background(), fetcher, processedURL, pipeline.Options{
			Query:          q,
			OverallTimeout: overallTimeout(),
			Verbose:        clibase.Flags.Verbose,
		}, cmd.OutOrStdout())
	},
}

func init() {
	probeCmd.Flags().StringVarP(&probeURL, "url", "u", "", "処理対象のURL (位置引数が優先)")
	probeQuery.bind(probeCmd)
}
