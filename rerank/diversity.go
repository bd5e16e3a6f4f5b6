package rerank

import (
	"context"
	"strings"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/pipeline"
)

// Diversity 是按地域打散的 ReRank：同一分组内超过 MaxPerGroup 的房源被移到末尾，
// 相对顺序不变，因此放在 TopNNode 之前时不会减少返回条数。
//
// 分组来源优先级：
//   - label[Key].Value
//   - 房源字段 city / state（Key 为 "city" 或 "state" 时）
type Diversity struct {
	Key         string // 默认 "city"
	MaxPerGroup int    // 默认 1
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.Key
	if key == "" {
		key = "city"
	}
	limit := n.MaxPerGroup
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))
	demoted := make([]*core.Item, 0)

	for _, it := range items {
		if it == nil {
			continue
		}
		group := groupOf(it, key)
		if group == "" {
			out = append(out, it)
			continue
		}
		if seen[group] >= limit {
			demoted = append(demoted, it)
			continue
		}
		seen[group]++
		out = append(out, it)
	}

	return append(out, demoted...), nil
}

func groupOf(it *core.Item, key string) string {
	if lbl, ok := it.Labels[key]; ok && lbl.Value != "" {
		return lbl.Value
	}
	switch key {
	case "city":
		return strings.ToLower(it.Property.City)
	case "state":
		return strings.ToLower(it.Property.State)
	default:
		return ""
	}
}
