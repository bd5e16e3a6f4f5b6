package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/homerec/core"
)

// DefaultStoreKey 是房源目录在 Store 中的默认 key。
const DefaultStoreKey = "homerec:properties"

// StoreFeed 从 core.Store（Redis / 内存）中读取 JSON 编码的房源目录。
// key 不存在时视为空目录。
type StoreFeed struct {
	Store core.Store
	Key   string
}

func NewStoreFeed(s core.Store, key string) *StoreFeed {
	if key == "" {
		key = DefaultStoreKey
	}
	return &StoreFeed{Store: s, Key: key}
}

func (f *StoreFeed) Name() string { return "store:" + f.Store.Name() }

func (f *StoreFeed) Properties(ctx context.Context) ([]core.Property, error) {
	data, err := f.Store.Get(ctx, f.Key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []core.Property{}, nil
		}
		return nil, unavailable(f.Name(), err)
	}
	props, err := decodeJSON(data)
	if err != nil {
		return nil, unavailable(f.Name(), err)
	}
	return props, nil
}

// Publish 把目录写入 Store，供其它实例读取。
func (f *StoreFeed) Publish(ctx context.Context, props []core.Property) error {
	data, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}
	return f.Store.Set(ctx, f.Key, data)
}
