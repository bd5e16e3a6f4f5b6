package feed

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/homerec/core"
)

// Multi 并发读取多个 Feed，并按 Feeds 的顺序拼接结果。
// 同一 ID 出现多次时保留最先出现的一条。任一来源失败则整体失败。
type Multi struct {
	Feeds []Feed
}

// Name 形如 "multi(sqlite,mock)"。
func (m *Multi) Name() string {
	names := make([]string, len(m.Feeds))
	for i, f := range m.Feeds {
		names[i] = f.Name()
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

func (m *Multi) Properties(ctx context.Context) ([]core.Property, error) {
	results := make([][]core.Property, len(m.Feeds))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range m.Feeds {
		g.Go(func() error {
			props, err := f.Properties(gctx)
			if err != nil {
				return err
			}
			results[i] = props
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]core.Property, 0)
	for _, props := range results {
		for _, p := range props {
			if p.ID != "" {
				if _, dup := seen[p.ID]; dup {
					continue
				}
				seen[p.ID] = struct{}{}
			}
			out = append(out, p)
		}
	}
	return out, nil
}
