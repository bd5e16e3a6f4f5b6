package feed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/homerec/core"
)

// FileFeed 从 JSON 或 YAML 文件读取房源列表（顶层为数组）。
// 每次调用都重新读取文件，便于离线更新目录。
type FileFeed struct {
	Path string
}

func (f *FileFeed) Name() string { return "file" }

func (f *FileFeed) Properties(ctx context.Context) ([]core.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, unavailable(f.Name(), err)
	}
	var props []core.Property
	if err := yaml.Unmarshal(data, &props); err != nil {
		return nil, unavailable(f.Name(), fmt.Errorf("parse %s: %w", f.Path, err))
	}
	return props, nil
}
