package filter

import (
	"context"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述运营排除规则：表达式为 true 的房源被过滤。
type ExprFilter struct {
	expr *dsl.Expr
}

// NewExprFilter 编译表达式；表达式非法时返回错误，而不是在请求中失败。
func NewExprFilter(expr string) (*ExprFilter, error) {
	e, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{expr: e}, nil
}

func (f *ExprFilter) Name() string { return "filter.expr" }

func (f *ExprFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	return f.expr.Evaluate(item, rctx)
}
