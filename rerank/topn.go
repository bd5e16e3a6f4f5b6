package rerank

import (
	"context"
	"strconv"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/pkg/utils"
)

// TopNNode 截取排序结果的前 N 个，并给保留的房源打上名次标签 position（从 1 开始）。
// N <= 0 时不截断。nil 项跳过，不占名次。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string        { return "rerank.topn" }
func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopNNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	limit := len(items)
	if n.N > 0 && n.N < limit {
		limit = n.N
	}
	out := make([]*core.Item, 0, limit)
	for _, it := range items {
		if len(out) == limit {
			break
		}
		if it == nil {
			continue
		}
		it.PutLabel("position", utils.Label{Value: strconv.Itoa(len(out) + 1), Source: utils.SourceRerank})
		out = append(out, it)
	}
	return out, nil
}
