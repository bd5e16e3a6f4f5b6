// Package store 提供 core.Store 的实现：MemoryStore（测试/开发）与 RedisStore（生产）。
//
// 接口定义在 core 包，Feed 与过滤器只依赖 core.Store：
//
//	var s core.Store = store.NewMemoryStore()
//	catalog := feed.NewStoreFeed(s, "homerec:properties")
package store

import "github.com/rushteam/homerec/core"

// ErrNotFound 是 core.ErrStoreNotFound 的别名，便于实现内部引用。
var ErrNotFound = core.ErrStoreNotFound

var (
	_ core.Store = (*MemoryStore)(nil)
	_ core.Store = (*RedisStore)(nil)
)
