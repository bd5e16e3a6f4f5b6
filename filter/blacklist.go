package filter

import (
	"context"

	"github.com/rushteam/homerec/core"
)

// BlacklistFilter 过滤运营下架的房源（按房源 ID）。
// 静态 ID 来自配置；配置了 Store 与 Key 时，每个请求额外读取一次存储中的列表。
type BlacklistFilter struct {
	PropertyIDs []string
	Store       BlacklistStore
	Key         string
}

// BlacklistStore 是下架列表存储接口。
type BlacklistStore interface {
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// NewBlacklistFilter 创建一个下架过滤器，storeAdapter 可为 nil。
func NewBlacklistFilter(ids []string, storeAdapter *StoreAdapter, key string) *BlacklistFilter {
	f := &BlacklistFilter{PropertyIDs: ids, Key: key}
	if storeAdapter != nil {
		f.Store = storeAdapter
	}
	return f
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

// Prepare 合并静态 ID 与存储中的列表，返回本次请求使用的集合。
func (f *BlacklistFilter) Prepare(ctx context.Context, _ *core.RecommendContext) (Filter, error) {
	set := make(idSet, len(f.PropertyIDs))
	set.add(f.PropertyIDs)
	if f.Store != nil && f.Key != "" {
		ids, err := f.Store.GetBlacklist(ctx, f.Key)
		if err != nil {
			return nil, err
		}
		set.add(ids)
	}
	return set, nil
}

// ShouldFilter 只检查静态 ID，在未经 Prepare 时使用（例如存储不可用）。
func (f *BlacklistFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	for _, id := range f.PropertyIDs {
		if item.Property.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type idSet map[string]struct{}

func (s idSet) add(ids []string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s idSet) Name() string { return "filter.blacklist" }

func (s idSet) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := s[item.Property.ID]
	return ok, nil
}
