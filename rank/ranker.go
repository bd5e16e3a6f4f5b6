package rank

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/filter"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/metrics"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/pricing"
	"github.com/rushteam/homerec/rerank"
	"github.com/rushteam/homerec/scoring"
)

// Ranker 编排一次推荐：过滤 -> 预测/打分/解释/排序 -> TopN。
//
// 每次调用都为每个房源新建 Item，输入的房源与偏好不会被修改；
// Ranker 本身只读，可被并发请求共享。
type Ranker struct {
	Predictor *pricing.Predictor
	Scorer    *scoring.Scorer

	// TopN 为 0 时使用 Config.DefaultTopN()，并且不超过 Config.MaxTopN()
	TopN   int
	Config core.RankingConfig

	// ExtraFilters 追加在偏好过滤器之后，例如 ExprFilter、BlacklistFilter
	ExtraFilters []filter.Filter
	// Diversity 非空时在 TopN 之前按地域打散
	Diversity *rerank.Diversity

	// Pipeline 非空时替代默认链路（例如从 YAML 构建）
	Pipeline *pipeline.Pipeline
	Logger   *zerolog.Logger
}

// NewRanker 使用默认配置创建 Ranker。
func NewRanker(predictor *pricing.Predictor, scorer *scoring.Scorer) *Ranker {
	return &Ranker{
		Predictor: predictor,
		Scorer:    scorer,
		Config:    &core.DefaultRankingConfig{},
	}
}

// Limit 返回本 Ranker 实际使用的 N。
func (r *Ranker) Limit() int {
	cfg := r.Config
	if cfg == nil {
		cfg = &core.DefaultRankingConfig{}
	}
	n := r.TopN
	if n <= 0 {
		n = cfg.DefaultTopN()
	}
	if limit := cfg.MaxTopN(); limit > 0 && n > limit {
		n = limit
	}
	return n
}

// DefaultPipeline 返回默认链路。
func (r *Ranker) DefaultPipeline() *pipeline.Pipeline {
	filters := append(filter.PreferenceFilters(), r.ExtraFilters...)
	nodes := []pipeline.Node{
		&filter.FilterNode{Filters: filters, Logger: r.Logger},
		&MatchNode{Predictor: r.Predictor, Scorer: r.Scorer},
	}
	if r.Diversity != nil {
		nodes = append(nodes, r.Diversity)
	}
	nodes = append(nodes, &rerank.TopNNode{N: r.Limit()})
	return &pipeline.Pipeline{Nodes: nodes}
}

// Recommend 对 properties 按 prefs 排序并返回前 N 个。
// 过滤后没有候选时返回空列表而不是错误；只有 ctx 取消或 Node 失败时返回错误。
func (r *Ranker) Recommend(ctx context.Context, properties []core.Property, prefs core.Preferences) (*core.Result, error) {
	return r.RecommendWithContext(ctx, core.NewRecommendContext(prefs), properties)
}

// RecommendWithContext 与 Recommend 相同，但使用调用方提供的请求上下文（携带 RequestID 等）。
func (r *Ranker) RecommendWithContext(ctx context.Context, rctx *core.RecommendContext, properties []core.Property) (*core.Result, error) {
	start := time.Now()

	items := make([]*core.Item, len(properties))
	for i, p := range properties {
		items[i] = core.NewItem(i, p)
	}

	pl := r.Pipeline
	if pl == nil {
		pl = r.DefaultPipeline()
	}
	out, err := pl.Run(ctx, rctx, items)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleRanker, core.ErrorCodeInternalError, "ranking failed", err)
	}
	if n := r.Limit(); len(out) > n {
		out = out[:n]
	}

	result := &core.Result{
		Recommendations: make([]core.ScoredProperty, 0, len(out)),
		TotalEvaluated:  len(properties),
		ModelUsed:       r.Predictor.ModelLoaded(),
	}
	for _, it := range out {
		if it == nil {
			continue
		}
		result.Recommendations = append(result.Recommendations, it.Scored().Rounded())
	}

	candidates := countCandidates(items)
	metrics.RecordRecommend(time.Since(start), candidates)
	r.logger().Debug().
		Str("request_id", rctx.RequestID).
		Int("evaluated", len(properties)).
		Int("candidates", candidates).
		Int("returned", len(result.Recommendations)).
		Bool("model_used", result.ModelUsed).
		Dur("elapsed", time.Since(start)).
		Msg("recommendation ranked")
	return result, nil
}

func countCandidates(items []*core.Item) int {
	n := 0
	for _, it := range items {
		if _, filtered := it.Labels["filtered"]; !filtered {
			n++
		}
	}
	return n
}

func (r *Ranker) logger() *zerolog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	lg := logging.Component("ranker")
	return &lg
}
