package types

// URLResult は、特定のURLに対するプローブの出力、またはその処理中に発生したエラーを保持します。
// これは、Scraperの出力、batch/feed コマンドの表示の入力として利用されます。
type URLResult struct {
	URL     string // 処理対象のURL
	Content string // 価格クエリと詳細クエリの出力 (エラー時は途中までの出力)
	Error   error  // 処理中に発生したエラー
}

// Succeeded は、エラーなく処理が完了したかどうかを返します。
func (r URLResult) Succeeded() bool {
	return r.Error == nil
}
