package rank

import (
	"context"
	"sort"
	"strings"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/pkg/utils"
	"github.com/rushteam/homerec/pricing"
	"github.com/rushteam/homerec/reasoning"
	"github.com/rushteam/homerec/scoring"
)

// MatchNode 先为全部房源预测价格（远程模型只发一次批量请求），再逐个打分与解释，然后排序。
//   - 写入 labels：price_source、price_outcome、reasoning（价格子句）
//   - 更新 PredictedPrice / SubScores / Score / Reasoning
//   - 按 Score 降序、PredictedPrice 升序、Feed 顺序排序
type MatchNode struct {
	Predictor *pricing.Predictor
	Scorer    *scoring.Scorer
}

func (n *MatchNode) Name() string        { return "rank.match" }
func (n *MatchNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *MatchNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	prefs := rctx.Preferences

	live := make([]*core.Item, 0, len(items))
	props := make([]core.Property, 0, len(items))
	for _, it := range items {
		if it != nil {
			live = append(live, it)
			props = append(props, it.Property)
		}
	}
	prices, outcomes := n.Predictor.PredictAll(ctx, props)

	for i, it := range live {
		price, outcome := prices[i], outcomes[i]
		it.PredictedPrice = price
		it.PriceSource = outcome.Source()
		it.PutLabel("price_source", utils.Label{Value: outcome.Source(), Source: utils.SourcePricing})
		it.PutLabel("price_outcome", utils.Label{Value: outcome.String(), Source: utils.SourcePricing})

		it.Score, it.SubScores = n.Scorer.Score(it.Property, price, prefs)
		clauses := reasoning.Clauses(it.Property, price, prefs, it.SubScores, n.Scorer.CurrentYear)
		it.Reasoning = strings.Join(clauses, reasoning.Separator)
		if len(clauses) > 0 {
			it.PutLabel("reasoning", utils.Label{Value: clauses[0], Source: utils.SourceReasoning})
		}
	}

	SortItems(items)
	return items, nil
}

// SortItems 原地排序：Score 降序；同分时价格低者在前；仍相同时按 Feed 顺序（Index）。
// nil 排在最后。
func SortItems(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.PredictedPrice != b.PredictedPrice {
			return a.PredictedPrice < b.PredictedPrice
		}
		return a.Index < b.Index
	})
}
