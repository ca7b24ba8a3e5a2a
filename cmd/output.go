package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/shouni/go-web-probe/pkg/types"
)

// printResults は並列プローブの結果を入力順に表示し、失敗件数を返します。
func printResults(w io.Writer, title string, results []types.URLResult) (failed int) {
	fmt.Fprintf(w, "--- %s ---\n", title)

	succeeded := 0
	for i, res := range results {
		if res.Succeeded() {
			succeeded++
			fmt.Fprintf(w, "✅ [%d] %s\n", i+1, res.URL)
		} else {
			failed++
			fmt.Fprintf(w, "❌ [%d] %s\n", i+1, res.URL)
		}

		// 失敗時も途中までの出力を表示する
		if content := strings.TrimRight(res.Content, "\n"); content != "" {
			for _, line := range strings.Split(content, "\n") {
				fmt.Fprintf(w, "     %s\n", line)
			}
		}
		if res.Error != nil {
			fmt.Fprintf(w, "     エラー: %v\n", res.Error)
		}
	}

	fmt.Fprintln(w, "-------------------------------")
	fmt.Fprintf(w, "完了: 成功 %d 件, 失敗 %d 件\n", succeeded, failed)
	return failed
}
