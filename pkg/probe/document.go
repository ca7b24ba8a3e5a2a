package probe

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	textUtils "github.com/shouni/go-utils/text"
	"golang.org/x/net/html"
)

// ParseDocument は前後の空白を除去したテキストをHTMLとして解析します。
// 解析はHTML5のエラー回復規則に従うため、不正なマークアップでも失敗しません。
func ParseDocument(text string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(strings.TrimSpace(text)))
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}
	return doc, nil
}

// AttributeValues は sel に一致する各要素から attr 属性の値を文書順に読み取ります。
// 属性が存在しない要素に到達した場合は、それまでに読み取った値と ErrAttributeMissing を返します。
func AttributeValues(doc *goquery.Document, sel cascadia.Selector, attr string) ([]string, error) {
	var values []string
	var missingErr error

	doc.FindMatcher(sel).EachWithBreak(func(i int, s *goquery.Selection) bool {
		v, ok := s.Attr(attr)
		if !ok {
			missingErr = fmt.Errorf("%w: %s 要素に %s 属性がありません", ErrAttributeMissing, describe(s.Nodes[0]), attr)
			return false
		}
		values = append(values, v)
		return true
	})

	return values, missingErr
}

// Ancestor は n から depth 階層だけ親を遡ったノードを返します。
// 途中で親が存在しない場合は ErrAncestorDepth を返します。
func Ancestor(n *html.Node, depth int) (*html.Node, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: ノードがnilです", ErrAncestorDepth)
	}
	current := n
	for level := 1; level <= depth; level++ {
		if current.Parent == nil {
			return nil, fmt.Errorf("%w: %s から %d 階層目の親がありません (要求: %d 階層)", ErrAncestorDepth, describe(n), level, depth)
		}
		current = current.Parent
	}
	return current, nil
}

// DetailMatches は sel に一致する各要素について depth 階層上の祖先を求め、
// その祖先自身と子孫から detail に一致する要素を文書順に集めます。
// 祖先を遡れない要素に到達した場合は、それまでに集めた要素と ErrAncestorDepth を返します。
func DetailMatches(doc *goquery.Document, sel cascadia.Selector, depth int, detail cascadia.Selector) ([]*html.Node, error) {
	var matches []*html.Node
	for _, n := range doc.FindMatcher(sel).Nodes {
		ancestor, err := Ancestor(n, depth)
		if err != nil {
			return matches, err
		}
		matches = append(matches, detail.MatchAll(ancestor)...)
	}
	return matches, nil
}

// DebugString はノードのHTMLを引用符付きで返します。
func DebugString(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		// 不正なツリー (子を持つvoid要素など) は描画できないため、要素の概要で代用する
		return strconv.Quote(describe(n))
	}
	return strconv.Quote(buf.String())
}

// TextString はノードのテキストを空白正規化し、引用符付きで返します。
func TextString(n *html.Node) string {
	text := goquery.NewDocumentFromNode(n).Text()
	return strconv.Quote(textUtils.NormalizeText(text))
}

// describe はエラーメッセージ用に要素を tag#id.class 形式で表します。
func describe(n *html.Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.Type != html.ElementNode {
		return fmt.Sprintf("node(type=%d)", n.Type)
	}
	var b strings.Builder
	b.WriteString(n.Data)
	for _, a := range n.Attr {
		switch a.Key {
		case "id":
			b.WriteString("#" + a.Val)
		case "class":
			for _, c := range strings.Fields(a.Val) {
				b.WriteString("." + c)
			}
		}
	}
	return b.String()
}
