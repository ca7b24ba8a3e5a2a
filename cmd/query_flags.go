package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shouni/go-web-probe/pkg/probe"
)

// queryFlags は、probe/batch/feed コマンドで共通のクエリ関連フラグを保持します。
type queryFlags struct {
	selector  string
	attribute string
	detail    string
	depth     int
	format    string
}

// queryFlagNames は、bind が登録するフラグ名の一覧です。
var queryFlagNames = []string{"selector", "attr", "detail", "depth", "format"}

// bind はクエリ関連のフラグを cmd に登録します。既定値は probe.DefaultQuery() です。
func (f *queryFlags) bind(cmd *cobra.Command) {
	d := probe.DefaultQuery()
	cmd.Flags().StringVarP(&f.selector, "selector", "s", d.Selector, "価格要素のCSSセレクター")
	cmd.Flags().StringVarP(&f.attribute, "attr", "a", d.Attribute, "価格要素から読み取る属性名")
	cmd.Flags().StringVarP(&f.detail, "detail", "d", d.Detail, "祖先要素の配下で検索する詳細テキストのCSSセレクター")
	cmd.Flags().IntVar(&f.depth, "depth", d.Depth, "価格要素から遡る親の階層数")
	cmd.Flags().StringVarP(&f.format, "format", "f", d.Format, "詳細要素の出力形式 (debug または text)")
}

// query はフラグの値から probe.Query を組み立てて検証します。
func (f *queryFlags) query() (probe.Query, error) {
	q := probe.Query{
		Selector:  f.selector,
		Attribute: f.attribute,
		Detail:    f.detail,
		Depth:     f.depth,
		Format:    f.format,
	}
	if err := q.Validate(); err != nil {
		return probe.Query{}, err
	}
	return q, nil
}

// markExclusiveWith は、クエリ関連のフラグを other と同時に指定できないようにします。
func markExclusiveWith(cmd *cobra.Command, other string) {
	for _, name := range queryFlagNames {
		cmd.MarkFlagsMutuallyExclusive(other, name)
	}
}
