package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/homerec/core"
)

type dropFirst struct{}

func (dropFirst) Name() string { return "drop_first" }
func (dropFirst) Kind() Kind   { return KindFilter }
func (dropFirst) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	return items[1:], nil
}

type failing struct{}

func (failing) Name() string { return "failing" }
func (failing) Kind() Kind   { return KindRank }
func (failing) Process(context.Context, *core.RecommendContext, []*core.Item) ([]*core.Item, error) {
	return nil, errors.New("boom")
}

func items(n int) []*core.Item {
	out := make([]*core.Item, n)
	for i := range out {
		out[i] = core.NewItem(i, core.Property{})
	}
	return out
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Nodes: []Node{dropFirst{}, dropFirst{}}}
	out, err := p.Run(context.Background(), core.NewRecommendContext(core.DefaultPreferences()), items(3))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Index)
	assert.Equal(t, []string{"filter:drop_first", "filter:drop_first"}, p.Describe())
}

func TestPipeline_RunError(t *testing.T) {
	p := &Pipeline{Nodes: []Node{dropFirst{}, failing{}}}
	_, err := p.Run(context.Background(), core.NewRecommendContext(core.DefaultPreferences()), items(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node failing")
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Pipeline{Nodes: []Node{dropFirst{}}}).Run(ctx, core.NewRecommendContext(core.DefaultPreferences()), items(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfig_BuildPipeline(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
pipeline:
  name: test
  nodes:
    - type: drop
    - type: drop
      config:
        times: 1
`))
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Pipeline.Name)

	f := NewNodeFactory()
	f.Register("drop", func(map[string]any) (Node, error) { return dropFirst{}, nil })
	p, err := cfg.BuildPipeline(f)
	require.NoError(t, err)
	assert.Len(t, p.Nodes, 2)
	assert.Equal(t, "test", p.Name)

	_, err = (&Config{Pipeline: struct {
		Name  string       `yaml:"name" json:"name"`
		Nodes []NodeConfig `yaml:"nodes" json:"nodes"`
	}{Nodes: []NodeConfig{{Type: "missing"}}}}).BuildPipeline(f)
	assert.ErrorContains(t, err, "unknown node type: missing")
}

func TestLoad_ByExtension(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"p.yaml": "pipeline:\n  name: y\n  nodes:\n    - type: drop\n",
		"p.json": `{"pipeline":{"name":"j","nodes":[{"type":"drop","config":{"n":1}}]}}`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}

	y, err := Load(filepath.Join(dir, "p.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "y", y.Pipeline.Name)

	j, err := Load(filepath.Join(dir, "p.json"))
	require.NoError(t, err)
	assert.Equal(t, "j", j.Pipeline.Name)
	assert.Equal(t, float64(1), j.Pipeline.Nodes[0].Config["n"])

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read pipeline config")
}
