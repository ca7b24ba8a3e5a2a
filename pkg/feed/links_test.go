package feed

import (
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
)

// MockLinkSource は LinkSource インターフェースを満たすテスト用のモックです。
type MockLinkSource struct {
	Links []string
}

func (m *MockLinkSource) GetLinks() []string {
	return m.Links
}

func TestFeedAdapter_GetLinks(t *testing.T) {
	tests := []struct {
		name     string
		feed     *gofeed.Feed
		expected []string
	}{
		{
			name: "正常ケース_複数のリンクを含む",
			feed: &gofeed.Feed{
				Items: []*gofeed.Item{
					{Link: "https://example.com/a"},
					{Link: "https://example.com/b"},
					{Link: ""}, // 空リンクは無視される
					{Link: "https://example.com/c"},
				},
			},
			expected: []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"},
		},
		{
			name: "正常ケース_重複と前後の空白",
			feed: &gofeed.Feed{
				Items: []*gofeed.Item{
					{Link: " https://example.com/a\n"},
					nil,
					{Link: "https://example.com/a"},
					{Link: "https://example.com/b"},
				},
			},
			expected: []string{"https://example.com/a", "https://example.com/b"},
		},
		{
			name:     "エッジケース_アイテムが空",
			feed:     &gofeed.Feed{Items: []*gofeed.Item{}},
			expected: []string{},
		},
		{
			name:     "エッジケース_フィードがnil",
			feed:     nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewFeedAdapter(tt.feed).GetLinks())
		})
	}
}

func TestGetAllLinks(t *testing.T) {
	expectedLinks := []string{"link1", "link2"}

	assert.Equal(t, expectedLinks, GetAllLinks(&MockLinkSource{Links: expectedLinks}))
	assert.Equal(t, expectedLinks, GetAllLinks(NewFeedAdapter(&gofeed.Feed{
		Items: []*gofeed.Item{{Link: "link1"}, {Link: "link2"}},
	})))
	assert.Equal(t, []string{}, GetAllLinks(nil))
}
