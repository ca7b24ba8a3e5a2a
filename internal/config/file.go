// Package config は、batch コマンドが読み込むプローブ対象のYAMLファイルを扱います。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shouni/go-web-probe/pkg/probe"
)

// File は、YAMLファイルのトップレベル構造です。
type File struct {
	Defaults QueryConfig `yaml:"defaults"`
	Targets  []Target    `yaml:"targets"`
}

// QueryConfig は、probe.Query のYAML表現です。空のフィールドは既定値で補完されます。
type QueryConfig struct {
	Selector  string `yaml:"selector"`
	Attribute string `yaml:"attribute"`
	Detail    string `yaml:"detail"`
	Depth     *int   `yaml:"depth"`
	Format    string `yaml:"format"`
}

// Target は、プローブ対象のURLとクエリの組です。
type Target struct {
	URL         string `yaml:"url"`
	QueryConfig `yaml:",inline"`

	// Query は LoadFile によって補完済みの値が設定されます。
	Query probe.Query `yaml:"-"`
}

// merge は、空のフィールドを base の値で補完した probe.Query を返します。
// depth は未指定 (nil) の場合のみ補完され、明示された値はそのまま検証に回されます。
func (c QueryConfig) merge(base probe.Query) probe.Query {
	q := probe.Query{
		Selector:  c.Selector,
		Attribute: c.Attribute,
		Detail:    c.Detail,
		Depth:     base.Depth,
		Format:    c.Format,
	}.WithDefaults(base)
	if c.Depth != nil {
		q.Depth = *c.Depth
	}
	return q
}

// LoadFile はYAMLファイルを読み込み、既定値を補完して検証します。
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	return Parse(data)
}

// Parse はYAMLのバイト列を解析し、既定値を補完して検証します。
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("設定ファイルのYAML解析に失敗しました: %w", err)
	}
	if err := f.applyDefaults(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) applyDefaults() error {
	if len(f.Targets) == 0 {
		return fmt.Errorf("targets が1件も定義されていません")
	}

	base := f.Defaults.merge(probe.DefaultQuery())
	for i := range f.Targets {
		t := &f.Targets[i]
		if t.URL == "" {
			return fmt.Errorf("targets[%d]: url が指定されていません", i)
		}
		t.Query = t.QueryConfig.merge(base)
		if err := t.Query.Validate(); err != nil {
			return fmt.Errorf("targets[%d] (%s): %w", i, t.URL, err)
		}
	}
	return nil
}
