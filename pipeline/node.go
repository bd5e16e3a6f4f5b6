package pipeline

import (
	"context"

	"github.com/rushteam/homerec/core"
)

// Kind 用于标记 Node 类型，方便观测与按阶段打点。
type Kind string

const (
	KindFilter Kind = "filter" // 过滤阶段：剔除违反硬性偏好的房源
	KindRank   Kind = "rank"   // 排序阶段：预测价格、打分、生成解释并排序
	KindReRank Kind = "rerank" // 重排阶段：在排序结果上截断
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，Filter 截断、Rank 打分排序、ReRank 截取 TopN。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// NodeBuilder 根据配置构建 Node。
type NodeBuilder func(config map[string]any) (Node, error)
