// Package builders 注册内置 Node 的配置构建逻辑，供 pipeline YAML 使用：
//
//	pipeline:
//	  name: homerec
//	  nodes:
//	    - type: filter.preferences
//	    - type: filter.expr
//	      config:
//	        expr: 'property.year_built < 1950'
//	    - type: rank.match
//	    - type: rerank.diversity
//	      config:
//	        key: city
//	    - type: rerank.topn
//	      config:
//	        n: 3
package builders

import (
	"fmt"

	"github.com/rushteam/homerec/config"
	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/filter"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/pkg/conv"
	"github.com/rushteam/homerec/pricing"
	"github.com/rushteam/homerec/rank"
	"github.com/rushteam/homerec/rerank"
	"github.com/rushteam/homerec/scoring"
)

func init() {
	config.Register(config.PreferencesNodeType, BuildPreferencesFilterNode)
	config.Register("filter.expr", BuildExprFilterNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// Runtime 是依赖进程内对象的 Node 所需的依赖。
type Runtime struct {
	Predictor *pricing.Predictor
	Scorer    *scoring.Scorer
	// Store 为空时 filter.blacklist 只使用配置中的 ids
	Store core.Store
}

// RegisterRuntime 注册 rank.match 与 filter.blacklist。需在模型获取之后、构建 pipeline 之前调用。
func RegisterRuntime(rt Runtime) {
	config.Register("rank.match", func(map[string]any) (pipeline.Node, error) {
		if rt.Predictor == nil || rt.Scorer == nil {
			return nil, fmt.Errorf("rank.match: predictor and scorer are required")
		}
		return &rank.MatchNode{Predictor: rt.Predictor, Scorer: rt.Scorer}, nil
	})
	config.Register("filter.blacklist", func(cfg map[string]any) (pipeline.Node, error) {
		return BuildBlacklistFilterNode(cfg, rt.Store)
	})
}

func BuildPreferencesFilterNode(map[string]any) (pipeline.Node, error) {
	return &filter.FilterNode{Filters: filter.PreferenceFilters()}, nil
}

func BuildExprFilterNode(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("filter.expr: expr not found")
	}
	f, err := filter.NewExprFilter(expr)
	if err != nil {
		return nil, fmt.Errorf("filter.expr: %w", err)
	}
	return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
}

func BuildBlacklistFilterNode(cfg map[string]any, s core.Store) (pipeline.Node, error) {
	ids := conv.SliceAnyToString(cfg["ids"])
	key := conv.ConfigGet(cfg, "key", "")
	var adapter *filter.StoreAdapter
	if key != "" {
		if s == nil {
			return nil, fmt.Errorf("filter.blacklist: key %q needs a store", key)
		}
		adapter = filter.NewStoreAdapter(s)
	}
	return &filter.FilterNode{Filters: []filter.Filter{filter.NewBlacklistFilter(ids, adapter, key)}}, nil
}

func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{
		Key:         conv.ConfigGet(cfg, "key", "city"),
		MaxPerGroup: conv.ConfigGetInt(cfg, "max_per_group", 1),
	}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	rc := &core.DefaultRankingConfig{}
	n := conv.ConfigGetInt(cfg, "n", rc.DefaultTopN())
	if n <= 0 || n > rc.MaxTopN() {
		return nil, fmt.Errorf("rerank.topn: n must be in [1, %d], got %d", rc.MaxTopN(), n)
	}
	return &rerank.TopNNode{N: n}, nil
}
