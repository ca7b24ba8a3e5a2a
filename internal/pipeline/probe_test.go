package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"github.com/shouni/go-web-probe/pkg/probe"
)

// productPage は <meta charset> を持たないため、文字コードは Content-Type ヘッダーから判定される。
const productPage = `<html><body>
<div class="item_box">
  <div class="item_detail_text">ギンガムチェック</div>
  <p><input type="hidden" id="M_price2" value="1,234円"></p>
</div>
</body></html>`

var expectedOutput = `"1,234円"` + "\n" + strconv.Quote(`<div class="item_detail_text">ギンガムチェック</div>`) + "\n"

// MockDoer はテスト用の fetch.Doer インターフェースの実装です。
type MockDoer struct {
	body []byte
	err  error
}

func (m *MockDoer) Do(req *http.Request) (*http.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader(m.body)),
	}, nil
}

// newTestServer は status と Content-Type を指定してボディを返すテストサーバーを起動します。
func newTestServer(t *testing.T, status int, contentType string, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func probeWithHTTPKit(t *testing.T, url string) (string, error) {
	t.Helper()
	client := httpkit.New(5*time.Second, httpkit.WithMaxRetries(0))
	var out bytes.Buffer
	err := ProbeURL(context.Background(), client, url, Options{
		Query:          probe.DefaultQuery(),
		OverallTimeout: 10 * time.Second,
	}, &out)
	return out.String(), err
}

func TestProbeURL_WithHTTPKit(t *testing.T) {
	eucPage, err := japanese.EUCJP.NewEncoder().String(productPage)
	require.NoError(t, err)

	// 先頭1024バイトを超えるASCIIのみの<head>を持つUTF-8ページ
	longHeadPage := "<html><head><style>" + strings.Repeat("a", 1100) + "</style></head>" +
		strings.TrimPrefix(productPage, "<html>")

	tests := []struct {
		name        string
		status      int
		contentType string
		body        []byte
		expected    string
	}{
		{
			name:        "utf8_with_surrounding_whitespace",
			status:      http.StatusOK,
			contentType: "text/html; charset=utf-8",
			body:        []byte("\n  " + productPage + "\n"),
			expected:    expectedOutput,
		},
		{
			name:        "euc_jp_declared_only_in_header",
			status:      http.StatusOK,
			contentType: "text/html; charset=EUC-JP",
			body:        []byte(eucPage),
			expected:    expectedOutput,
		},
		{
			name:        "utf8_after_long_ascii_head",
			status:      http.StatusOK,
			contentType: "text/html; charset=utf-8",
			body:        []byte(longHeadPage),
			expected:    expectedOutput,
		},
		{
			name:        "not_found_page_is_still_parsed",
			status:      http.StatusNotFound,
			contentType: "text/html; charset=utf-8",
			body:        []byte(`<html><body><div><p><input id="M_price2" value="1234"></p></div></body></html>`),
			expected:    `"1234"` + "\n",
		},
		{
			name:        "server_error_page_without_price_prints_nothing",
			status:      http.StatusInternalServerError,
			contentType: "text/html; charset=utf-8",
			body:        []byte(`<html><body><h1>Internal Server Error</h1></body></html>`),
			expected:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, tt.contentType, tt.body)

			out, err := probeWithHTTPKit(t, srv.URL)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestProbeURL_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	unreachable := srv.URL
	srv.Close()

	out, err := probeWithHTTPKit(t, unreachable)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), unreachable)
	assert.Empty(t, out, "取得失敗時は何も出力されない")
}

func TestProbeURL_Errors(t *testing.T) {
	t.Run("nil_doer", func(t *testing.T) {
		err := ProbeURL(context.Background(), nil, "https://example.com/", Options{Query: probe.DefaultQuery()}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("invalid_selector_before_fetch", func(t *testing.T) {
		q := probe.DefaultQuery()
		q.Detail = "div["
		doer := &MockDoer{err: errors.New("呼び出されないはず")}
		err := ProbeURL(context.Background(), doer, "https://example.com/", Options{Query: q}, &bytes.Buffer{})
		assert.ErrorIs(t, err, probe.ErrInvalidSelector)
	})

	t.Run("attribute_missing", func(t *testing.T) {
		doer := &MockDoer{body: []byte(`<div><p><input id="M_price2"></p></div>`)}
		out, err := ProbeToString(context.Background(), doer, "https://example.com/", Options{Query: probe.DefaultQuery()})
		assert.ErrorIs(t, err, probe.ErrAttributeMissing)
		assert.Empty(t, out)
	})
}

func TestProber_Probe(t *testing.T) {
	_, err := NewProber(nil, time.Second, false)
	assert.Error(t, err)

	p, err := NewProber(&MockDoer{body: []byte(productPage)}, time.Second, false)
	require.NoError(t, err)

	out, err := p.Probe(context.Background(), "https://example.com/item", probe.DefaultQuery())
	assert.NoError(t, err)
	assert.Equal(t, expectedOutput, out)
}
