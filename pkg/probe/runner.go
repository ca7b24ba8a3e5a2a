package probe

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// TextSource は、URLからHTMLテキストを取得する機能のインターフェースです。
// *fetch.TextFetcher はこのインターフェースを満たします。
type TextSource interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Runner は、取得 → 解析 → 価格クエリ → 再解析 → 詳細クエリ の一連の処理を実行します。
type Runner struct {
	source   TextSource
	compiled *Compiled
}

// NewRunner は Query をコンパイルし、新しいRunnerを生成します。
// セレクターが不正な場合は、通信を行う前にエラーを返します。
func NewRunner(source TextSource, q Query) (*Runner, error) {
	if source == nil {
		return nil, fmt.Errorf("probe.NewRunner: TextSource cannot be nil")
	}
	compiled, err := CompileQuery(q)
	if err != nil {
		return nil, fmt.Errorf("クエリの初期化に失敗しました: %w", err)
	}
	return &Runner{source: source, compiled: compiled}, nil
}

// Query は、Runnerが使用するクエリを返します。
func (r *Runner) Query() Query {
	return r.compiled.Query
}

// Run は url を取得し、RunText を実行します。取得に失敗した場合は何も出力しません。
func (r *Runner) Run(ctx context.Context, url string, w io.Writer) error {
	text, err := r.source.FetchText(ctx, url)
	if err != nil {
		return err
	}
	return r.RunText(text, w)
}

// RunText は取得済みのテキストに対して2つのクエリを実行し、結果を w に書き込みます。
// 出力は逐次書き込まれるため、詳細クエリが失敗しても価格クエリの結果は残ります。
func (r *Runner) RunText(text string, w io.Writer) error {
	// 1. 価格クエリ (1回目の解析)
	doc, err := ParseDocument(text)
	if err != nil {
		return err
	}
	values, queryErr := AttributeValues(doc, r.compiled.Selector, r.compiled.Query.Attribute)
	for _, v := range values {
		if _, err := fmt.Fprintf(w, "%q\n", v); err != nil {
			return fmt.Errorf("出力の書き込みに失敗しました: %w", err)
		}
	}
	if queryErr != nil {
		return fmt.Errorf("価格クエリ (%s) の実行エラー: %w", r.compiled.Query.Selector, queryErr)
	}

	// 2. 詳細クエリ (独立した2回目の解析)
	doc, err = ParseDocument(text)
	if err != nil {
		return err
	}
	nodes, queryErr := DetailMatches(doc, r.compiled.Selector, r.compiled.Query.Depth, r.compiled.Detail)
	for _, n := range nodes {
		if _, err := fmt.Fprintln(w, r.render(n)); err != nil {
			return fmt.Errorf("出力の書き込みに失敗しました: %w", err)
		}
	}
	if queryErr != nil {
		return fmt.Errorf("詳細クエリ (%s) の実行エラー: %w", r.compiled.Query.Detail, queryErr)
	}

	return nil
}

func (r *Runner) render(n *html.Node) string {
	if r.compiled.Query.Format == FormatText {
		return TextString(n)
	}
	return DebugString(n)
}
