package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-web-probe/pkg/probe"
)

func TestParse(t *testing.T) {
	t.Run("defaults_are_inherited", func(t *testing.T) {
		f, err := Parse([]byte(`
defaults:
  detail: .spec
  format: text
targets:
  - url: https://example.com/a
  - url: https://example.com/b
    selector: span.price
    attribute: data-yen
    depth: 0
`))
		require.NoError(t, err)
		require.Len(t, f.Targets, 2)

		a := f.Targets[0].Query
		assert.Equal(t, probe.DefaultSelector, a.Selector)
		assert.Equal(t, probe.DefaultAttribute, a.Attribute)
		assert.Equal(t, ".spec", a.Detail)
		assert.Equal(t, probe.DefaultDepth, a.Depth)
		assert.Equal(t, probe.FormatText, a.Format)

		b := f.Targets[1].Query
		assert.Equal(t, "span.price", b.Selector)
		assert.Equal(t, "data-yen", b.Attribute)
		assert.Equal(t, ".spec", b.Detail)
		assert.Equal(t, 0, b.Depth)
	})

	t.Run("builtin_defaults_without_defaults_section", func(t *testing.T) {
		f, err := Parse([]byte("targets:\n  - url: https://example.com/\n"))
		require.NoError(t, err)
		assert.Equal(t, probe.DefaultQuery(), f.Targets[0].Query)
	})

	errorCases := []struct {
		name     string
		yaml     string
		contains string
	}{
		{name: "no_targets", yaml: "defaults:\n  depth: 1\n", contains: "targets"},
		{name: "missing_url", yaml: "targets:\n  - selector: '#a'\n", contains: "url"},
		{name: "negative_depth", yaml: "targets:\n  - url: https://example.com/\n    depth: -3\n", contains: "階層数"},
		{name: "unknown_format", yaml: "defaults:\n  format: xml\ntargets:\n  - url: https://example.com/\n", contains: "出力形式"},
		{name: "broken_yaml", yaml: "targets: [\n", contains: "YAML"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
			assert.Nil(t, f)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targets:\n  - url: https://example.com/item\n"), 0o600))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/item", f.Targets[0].URL)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
