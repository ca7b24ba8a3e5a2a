package cmd

import (
	"fmt"
	"log"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/spf13/cobra"

	"github.com/shouni/go-web-probe/pkg/fetch"
)

// --- グローバル定数 ---

const (
	appName           = "web-probe"
	defaultTimeoutSec = 10 // 秒
	defaultMaxRetries = 0  // 既定ではリトライしない

	// overallTimeoutFactor は、クライアントタイムアウトに対する全体処理のタイムアウトの倍率です。
	overallTimeoutFactor = 2
	// DefaultOverallTimeout は、--timeout 0 が指定された場合の全体処理のタイムアウトです。
	DefaultOverallTimeout = 20 * time.Second
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec int // --timeout タイムアウト
	MaxRetries int // --max-retries リトライ回数
}

var Flags AppFlags
var globalFetcher fetch.Client

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().IntVar(
		&Flags.TimeoutSec,
		"timeout",
		defaultTimeoutSec,
		"HTTPリクエストのタイムアウト時間（秒）",
	)
	rootCmd.PersistentFlags().IntVar(
		&Flags.MaxRetries,
		"max-retries",
		defaultMaxRetries,
		"フィード取得時のHTTPリクエストのリトライ最大回数 (0でリトライなし)",
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	if Flags.TimeoutSec < 0 {
		return fmt.Errorf("--timeout は0以上を指定してください: %d", Flags.TimeoutSec)
	}
	if Flags.MaxRetries < 0 {
		return fmt.Errorf("--max-retries は0以上を指定してください: %d", Flags.MaxRetries)
	}

	timeout := time.Duration(Flags.TimeoutSec) * time.Second

	if clibase.Flags.Verbose {
		log.Printf("HTTPクライアントのタイムアウトを設定しました (Timeout: %s)。", timeout)
		log.Printf("HTTPクライアントのリトライ回数を設定しました (MaxRetries: %d)。", Flags.MaxRetries)
	}

	// 共有フェッチャーの初期化
	globalFetcher = httpkit.New(
		timeout,
		httpkit.WithMaxRetries(uint64(Flags.MaxRetries)),
	)

	return nil
}

// GetGlobalFetcher は、初期化されたフェッチャーを返す関数 (DIの代わり)
func GetGlobalFetcher() fetch.Client {
	return globalFetcher
}

// overallTimeout は、クライアントタイムアウトの2倍を全体処理のタイムアウトとして返します。
func overallTimeout() time.Duration {
	if Flags.TimeoutSec == 0 {
		return DefaultOverallTimeout
	}
	return time.Duration(Flags.TimeoutSec*overallTimeoutFactor) * time.Second
}

// --- エントリポイント ---

// Execute は、clibase を使用してルートコマンドを構築・実行します。
// エラー時は clibase.Execute の中で os.Exit(1) されます。
func Execute() {
	clibase.Execute(
		appName,
		addAppPersistentFlags,
		initAppPreRunE,
		probeCmd,
		batchCmd,
		feedCmd,
	)
}
