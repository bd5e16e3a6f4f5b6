// Package feed 提供房源目录（Feed）的多种来源：内存 Mock、JSON/YAML 文件、
// core.Store（Redis/内存）中的 JSON、SQLite 表，以及多来源合并。
//
// Feed 只负责按固定顺序给出房源，房源在下游只读。
package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/homerec/core"
)

// Feed 是房源目录的来源。返回的切片由调用方持有，Feed 之后不会修改它。
type Feed interface {
	Name() string
	Properties(ctx context.Context) ([]core.Property, error)
}

func unavailable(name string, err error) error {
	return core.WrapDomainError(core.ModuleFeed, core.ErrorCodeUnavailable, fmt.Sprintf("feed %s unavailable", name), err)
}

func decodeJSON(data []byte) ([]core.Property, error) {
	var props []core.Property
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	return props, nil
}

// Static 是固定的房源列表，主要用于测试与 CLI。
type Static []core.Property

func (s Static) Name() string { return "static" }

func (s Static) Properties(context.Context) ([]core.Property, error) {
	return append([]core.Property(nil), s...), nil
}
