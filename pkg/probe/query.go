package probe

import (
	"errors"
	"fmt"

	"github.com/andybalholm/cascadia"
)

// ----------------------------------------------------------------------
// 定数定義
// ----------------------------------------------------------------------
const (
	// DefaultURL は、URLが指定されなかった場合に取得する商品ページです。
	DefaultURL = "https://pinkhouse-webshop.jp/shopdetail/000000002386/ph/page1/recommend/"

	DefaultSelector  = "#M_price2"
	DefaultAttribute = "value"
	DefaultDetail    = ".item_detail_text"
	DefaultDepth     = 2

	// FormatDebug は、要素を引用符付きのHTMLとして出力します。
	FormatDebug = "debug"
	// FormatText は、要素を空白正規化したテキストとして出力します。
	FormatText = "text"
)

var (
	// ErrInvalidSelector は、CSSセレクターのコンパイルに失敗したことを示します。
	ErrInvalidSelector = errors.New("CSSセレクターが不正です")
	// ErrAttributeMissing は、一致した要素に目的の属性が存在しないことを示します。
	ErrAttributeMissing = errors.New("属性が存在しません")
	// ErrAncestorDepth は、指定された階層まで親要素を遡れないことを示します。
	ErrAncestorDepth = errors.New("親要素が存在しません")
)

// Query は、1回のプローブで使用するセレクターと出力形式をまとめたものです。
type Query struct {
	Selector  string // 価格要素のセレクター
	Attribute string // 価格要素から読み取る属性名
	Detail    string // 祖先要素の配下で検索する詳細テキストのセレクター
	Depth     int    // 価格要素から遡る親の階層数
	Format    string // FormatDebug または FormatText
}

// DefaultQuery は、組み込みの既定値を持つ Query を返します。
func DefaultQuery() Query {
	return Query{
		Selector:  DefaultSelector,
		Attribute: DefaultAttribute,
		Detail:    DefaultDetail,
		Depth:     DefaultDepth,
		Format:    FormatDebug,
	}
}

// WithDefaults は、空のフィールドを base の値で補完した Query を返します。
// Depth は負の値のときのみ補完されます (0 は「遡らない」として有効)。
func (q Query) WithDefaults(base Query) Query {
	if q.Selector == "" {
		q.Selector = base.Selector
	}
	if q.Attribute == "" {
		q.Attribute = base.Attribute
	}
	if q.Detail == "" {
		q.Detail = base.Detail
	}
	if q.Depth < 0 {
		q.Depth = base.Depth
	}
	if q.Format == "" {
		q.Format = base.Format
	}
	return q
}

// Validate は Query の値を検証します。セレクターの構文はここでは検証しません。
func (q Query) Validate() error {
	if q.Selector == "" {
		return fmt.Errorf("セレクターが指定されていません")
	}
	if q.Attribute == "" {
		return fmt.Errorf("属性名が指定されていません")
	}
	if q.Detail == "" {
		return fmt.Errorf("詳細テキストのセレクターが指定されていません")
	}
	if q.Depth < 0 {
		return fmt.Errorf("親の階層数は0以上である必要があります: %d", q.Depth)
	}
	if q.Format != FormatDebug && q.Format != FormatText {
		return fmt.Errorf("出力形式は %s または %s を指定してください: %s", FormatDebug, FormatText, q.Format)
	}
	return nil
}

// Compiled は、コンパイル済みのセレクターを保持します。
type Compiled struct {
	Query    Query
	Selector cascadia.Selector
	Detail   cascadia.Selector
}

// CompileQuery は Query を検証し、セレクターをコンパイルします。
func CompileQuery(q Query) (*Compiled, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	sel, err := compileSelector(q.Selector)
	if err != nil {
		return nil, err
	}
	detail, err := compileSelector(q.Detail)
	if err != nil {
		return nil, err
	}
	return &Compiled{Query: q, Selector: sel, Detail: detail}, nil
}

func compileSelector(s string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("%w (%q): %v", ErrInvalidSelector, s, err)
	}
	return sel, nil
}
