package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/homerec/core"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链，按顺序执行。
type Pipeline struct {
	// Name 来自配置文件，默认链路为空
	Name  string
	Nodes []Node
}

// Run 依次执行每个 Node。ctx 取消时在 Node 之间停止。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// Describe 返回各 Node 的 "kind:name"，用于启动日志。
func (p *Pipeline) Describe() []string {
	out := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		out = append(out, string(n.Kind())+":"+n.Name())
	}
	return out
}
