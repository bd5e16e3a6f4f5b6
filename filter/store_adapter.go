package filter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/homerec/core"
)

// StoreAdapter 从 core.Store 读取下架列表。
// 列表以 JSON 字符串数组存储，例如 ["prop_3","prop_7"]；key 不存在视为空列表。
type StoreAdapter struct {
	store core.Store
}

func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if core.IsStoreNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode blacklist %s from %s: %w", key, a.store.Name(), err)
	}
	return ids, nil
}
