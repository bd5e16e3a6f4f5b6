// Package homerec 是房源推荐系统：价格预测 + 匹配打分 + 推荐解释 + 排序。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Filter → Rank → ReRank）
// - Labels-first: 过滤原因、价格来源等以 label 透传，便于 explain 与观测
// - 模型可降级: 价格模型获取失败或单次调用失败时使用启发式估价，推荐不会因此失败
package homerec

import (
	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/model"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/pricing"
	"github.com/rushteam/homerec/rank"
	"github.com/rushteam/homerec/scoring"
)

// 轻量 facade：便于直接 import "homerec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

type Property = core.Property
type Preferences = core.Preferences
type Result = core.Result

const (
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)

// NewRanker 从模型文件构造默认 Ranker；文件缺失或无法解析时使用启发式估价。
// currentYear 为 0 时使用当前年份。
func NewRanker(modelPath string, currentYear int) *rank.Ranker {
	return rank.NewRanker(
		pricing.NewPredictor(model.Acquire(modelPath), currentYear),
		scoring.NewScorer(currentYear),
	)
}
