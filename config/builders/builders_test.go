package builders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/homerec/config"
	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/model"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/pricing"
	"github.com/rushteam/homerec/rank"
	"github.com/rushteam/homerec/scoring"
	"github.com/rushteam/homerec/store"
)

const pipelineYAML = `
pipeline:
  name: homerec
  nodes:
    - type: filter.preferences
    - type: filter.blacklist
      config:
        ids: ["p2"]
        key: homerec:delisted
    - type: filter.expr
      config:
        expr: 'property.city == "Miami"'
    - type: rank.match
    - type: rerank.diversity
      config:
        key: state
    - type: rerank.topn
      config:
        n: 2
`

func catalog() []core.Property {
	base := core.Property{Bedrooms: 3, Bathrooms: 2, SquareFeet: 1800, YearBuilt: 2010, SchoolRating: 8, CommuteTime: 20}
	mk := func(id, city, state string) core.Property {
		p := base
		p.ID, p.City, p.State = id, city, state
		return p
	}
	return []core.Property{
		mk("p1", "Seattle", "WA"),
		mk("p2", "Tacoma", "WA"),
		mk("p3", "Spokane", "WA"),
		mk("p4", "Miami", "FL"),
		mk("p5", "Austin", "TX"),
		mk("p6", "Denver", "CO"),
	}
}

func TestBuildPipelineFromYAML(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	require.NoError(t, s.Set(ctx, "homerec:delisted", []byte(`["p6"]`)))

	RegisterRuntime(Runtime{
		Predictor: pricing.NewPredictor(model.FallbackHandle(), 2024),
		Scorer:    scoring.NewScorer(2024),
		Store:     s,
	})

	cfg, err := pipeline.LoadFromBytes([]byte(pipelineYAML))
	require.NoError(t, err)
	require.NoError(t, config.ValidatePipelineConfig(cfg))

	p, err := cfg.BuildPipeline(config.DefaultFactory())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"filter:filter.node", "filter:filter.node", "filter:filter.node",
		"rank:rank.match", "rerank:rerank.diversity", "rerank:rerank.topn",
	}, p.Describe())

	r := rank.NewRanker(pricing.NewPredictor(model.FallbackHandle(), 2024), scoring.NewScorer(2024))
	r.Pipeline = p
	res, err := r.Recommend(ctx, catalog(), core.Preferences{Budget: 1000000})
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 2)

	states := map[string]bool{}
	for _, rec := range res.Recommendations {
		assert.NotContains(t, []string{"p2", "p4", "p6"}, rec.ID)
		states[rec.State] = true
	}
	assert.Len(t, states, 2)
}

func TestBuilders_Errors(t *testing.T) {
	_, err := BuildExprFilterNode(map[string]any{})
	assert.ErrorContains(t, err, "expr not found")

	_, err = BuildExprFilterNode(map[string]any{"expr": "property.city =="})
	assert.Error(t, err)

	_, err = BuildTopNNode(map[string]any{"n": 10})
	assert.ErrorContains(t, err, "n must be in [1, 3]")

	_, err = BuildBlacklistFilterNode(map[string]any{"key": "homerec:delisted"}, nil)
	assert.ErrorContains(t, err, "needs a store")

	n, err := BuildTopNNode(nil)
	require.NoError(t, err)
	assert.Equal(t, "rerank.topn", n.Name())
}

func TestValidatePipelineConfig_Unsupported(t *testing.T) {
	cfg, err := pipeline.LoadFromBytes([]byte("pipeline:\n  nodes:\n    - type: rank.unknown\n"))
	require.NoError(t, err)
	err = config.ValidatePipelineConfig(cfg)
	assert.ErrorContains(t, err, `unsupported node type "rank.unknown"`)
	assert.Contains(t, config.SupportedTypes(), "rerank.topn")
}

func TestValidatePipelineConfig_Stages(t *testing.T) {
	RegisterRuntime(Runtime{
		Predictor: pricing.NewPredictor(model.FallbackHandle(), 2024),
		Scorer:    scoring.NewScorer(2024),
	})

	tests := []struct {
		name  string
		types []string
		want  string
	}{
		{name: "ordered", types: []string{"filter.preferences", "rank.match", "rerank.topn"}},
		{name: "preferences then rank", types: []string{"filter.preferences", "rank.match"}},
		{name: "no preferences filter", types: []string{"rank.match", "rerank.topn"}, want: "needs a filter.preferences node before the rank node"},
		{name: "only extra filters", types: []string{"filter.expr", "rank.match"}, want: "needs a filter.preferences node"},
		{name: "empty", want: "no nodes"},
		{name: "no rank", types: []string{"filter.preferences", "rerank.topn"}, want: "exactly one rank node, found 0"},
		{name: "two ranks", types: []string{"rank.match", "rank.match"}, want: "exactly one rank node, found 2"},
		{name: "filter after rank", types: []string{"rank.match", "filter.preferences"}, want: `filter node "filter.preferences" must not follow`},
		{name: "rerank before rank", types: []string{"rerank.topn", "rank.match"}, want: `rank node "rank.match" must not follow`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &pipeline.Config{}
			for _, typ := range tt.types {
				cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, pipeline.NodeConfig{Type: typ})
			}
			err := config.ValidatePipelineConfig(cfg)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
