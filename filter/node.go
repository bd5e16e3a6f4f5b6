package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/pkg/utils"
)

// FilterNode 组合多个过滤器：任一过滤器返回 true 即移除该房源，并打上 filtered 标签。
// 输出保持输入顺序。过滤器出错时保留房源并记录告警。
type FilterNode struct {
	Filters []Filter
	Logger  *zerolog.Logger
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	filters := prepare(ctx, rctx, n.Filters, func(f Filter, err error) {
		n.logger().Warn().Err(err).Str("filter", f.Name()).Msg("filter prepare failed, using static rules")
	})

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		shouldFilter := false
		filterReason := ""

		for _, f := range filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				n.logger().Warn().Err(err).Str("filter", f.Name()).Str("property_id", item.Property.ID).Msg("filter failed, keeping property")
				continue
			}
			if ok {
				shouldFilter = true
				filterReason = f.Name()
				break
			}
		}

		if shouldFilter {
			item.PutLabel("filtered", utils.Label{
				Value:  filterReason,
				Source: utils.SourceFilter,
			})
			continue
		}

		out = append(out, item)
	}

	return out, nil
}

func (n *FilterNode) logger() *zerolog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	lg := logging.Component("filter")
	return &lg
}
