package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rushteam/homerec/pipeline"
)

// 使用配置驱动时，需在入口处 import _ "github.com/rushteam/homerec/config/builders"
// 以触发无状态 Node（filter.preferences、filter.expr、rerank.*）的 init 注册；
// 依赖运行时对象的 Node（rank.match、filter.blacklist）由 builders.RegisterRuntime 注册。

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
type NodeBuilder = pipeline.NodeBuilder

type registry struct {
	mu       sync.RWMutex
	builders map[string]NodeBuilder
}

var defaultRegistry = &registry{builders: make(map[string]NodeBuilder)}

// Register 注册一种 Node 的构建逻辑。同名类型后注册者覆盖先注册者（RegisterRuntime 依赖这一点）。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.builders[typeName] = builder
}

func registered(typeName string) bool {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	_, ok := defaultRegistry.builders[typeName]
	return ok
}

// SupportedTypes 返回已注册的 Node 类型（排序）。
func SupportedTypes() []string {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	types := make([]string, 0, len(defaultRegistry.builders))
	for t := range defaultRegistry.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回包含当前全部注册类型的 NodeFactory（快照，之后的注册不影响它）。
func DefaultFactory() *pipeline.NodeFactory {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultRegistry.builders {
		f.Register(typeName, builder)
	}
	return f
}

// PreferencesNodeType 是按用户偏好做硬性过滤的节点类型。
const PreferencesNodeType = "filter.preferences"

// stageOf 按类型前缀判断阶段：filter.* < rank.* < rerank.*。
func stageOf(typeName string) (pipeline.Kind, int) {
	switch {
	case strings.HasPrefix(typeName, "filter."):
		return pipeline.KindFilter, 0
	case strings.HasPrefix(typeName, "rank."):
		return pipeline.KindRank, 1
	case strings.HasPrefix(typeName, "rerank."):
		return pipeline.KindReRank, 2
	default:
		return "", -1
	}
}

// ValidatePipelineConfig 在构建前校验推荐链路：
//   - 每个 node 类型都已注册
//   - 恰好一个 rank.* 节点（价格预测与打分只做一次）
//   - rank.* 之前必须有 filter.preferences，硬性偏好过滤不可省略
//   - 阶段顺序为 filter → rank → rerank
//
// 所有问题一并返回。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	var errs []error
	if len(cfg.Pipeline.Nodes) == 0 {
		return errors.New("pipeline has no nodes")
	}

	ranks, last := 0, 0
	prefsBeforeRank := false
	for i, nc := range cfg.Pipeline.Nodes {
		if nc.Type == PreferencesNodeType && ranks == 0 {
			prefsBeforeRank = true
		}
		if !registered(nc.Type) {
			errs = append(errs, fmt.Errorf("node %d: unsupported node type %q (supported: %v)", i, nc.Type, SupportedTypes()))
			continue
		}
		kind, stage := stageOf(nc.Type)
		if stage < 0 {
			continue
		}
		if kind == pipeline.KindRank {
			ranks++
		}
		if stage < last {
			errs = append(errs, fmt.Errorf("node %d: %s node %q must not follow a later stage", i, kind, nc.Type))
		}
		last = max(last, stage)
	}
	if ranks != 1 {
		errs = append(errs, fmt.Errorf("pipeline needs exactly one rank node, found %d", ranks))
	}
	if !prefsBeforeRank {
		errs = append(errs, fmt.Errorf("pipeline needs a %s node before the rank node", PreferencesNodeType))
	}
	return errors.Join(errs...)
}
