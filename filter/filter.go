package filter

import (
	"context"

	"github.com/rushteam/homerec/core"
)

// Filter 判断一个房源是否违反硬性条件，返回 true 表示移除。
// 实现必须只读，同一个 Filter 会被并发请求共享。
type Filter interface {
	Name() string
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Preparer 由需要按请求加载外部数据的过滤器实现（例如从 Store 读取下架列表）。
// FilterNode 在逐个判断房源之前调用一次 Prepare，并用返回的 Filter 替代原过滤器。
type Preparer interface {
	Prepare(ctx context.Context, rctx *core.RecommendContext) (Filter, error)
}

// prepare 返回本次请求实际使用的过滤器列表。
func prepare(ctx context.Context, rctx *core.RecommendContext, filters []Filter, onErr func(Filter, error)) []Filter {
	out := make([]Filter, 0, len(filters))
	for _, f := range filters {
		p, ok := f.(Preparer)
		if !ok {
			out = append(out, f)
			continue
		}
		bound, err := p.Prepare(ctx, rctx)
		if err != nil {
			onErr(f, err)
			out = append(out, f)
			continue
		}
		out = append(out, bound)
	}
	return out
}
