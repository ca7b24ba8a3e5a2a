package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/shouni/go-web-probe/pkg/feed"
)

var (
	feedURL   string
	feedLimit int
	feedQuery queryFlags
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "RSS/Atomフィードに含まれる商品ページをすべてプローブします",
	Long:  `指定されたURLからRSSまたはAtomフィードを取得し、各アイテムのリンク先を batch と同じ方法で並列にプローブします。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := feedQuery.query()
		if err != nil {
			return fmt.Errorf("クエリの指定エラー: %w", err)
		}
		processedURL, err := ensureScheme(feedURL)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		// 1. 依存性の初期化
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}
		parser, err := feed.NewParser(fetcher)
		if err != nil {
			return fmt.Errorf("フィードパーサーの初期化エラー: %w", err)
		}

		// 2. フィードの取得と解析
		ctx, cancel := context.WithTimeout(context.Background(), overallTimeout())
		defer cancel()

		log.Printf("処理対象フィードURL: %s (全体タイムアウト: %s)", processedURL, overallTimeout())
		parsedFeed, err := parser.FetchAndParse(ctx, processedURL)
		if err != nil {
			return fmt.Errorf("フィード解析パイプラインの実行エラー: %w", err)
		}

		links := feed.GetAllLinks(feed.NewFeedAdapter(parsedFeed))
		if feedLimit > 0 && len(links) > feedLimit {
			links = links[:feedLimit]
		}
		if len(links) == 0 {
			return fmt.Errorf("フィード %q にプローブ対象のリンクがありません", parsedFeed.Title)
		}

		// 3. 各リンクの並列プローブ
		targets, err := buildTargets(links, q)
		if err != nil {
			return err
		}
		return runProbePipeline(cmd, fmt.Sprintf("フィード「%s」のプローブ結果", parsedFeed.Title), targets)
	},
}

func init() {
	feedCmd.Flags().StringVarP(&feedURL, "url", "u", "", "解析対象のフィード (RSS/Atom) URL")
	feedCmd.Flags().IntVar(&feedLimit, "limit", 0, "プローブするリンクの最大件数 (0で無制限)")
	feedQuery.bind(feedCmd)
	addBatchFlags(feedCmd)

	feedCmd.MarkFlagRequired("url")
}
