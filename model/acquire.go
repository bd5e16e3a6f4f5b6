package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/rushteam/homerec/logging"
)

// State 是进程级的模型获取状态。
type State int

const (
	// StateFallback 表示没有可用模型，所有预测走启发式公式。
	StateFallback State = iota
	// StateAcquired 表示模型已加载。
	StateAcquired
)

func (s State) String() string {
	if s == StateAcquired {
		return "acquired"
	}
	return "fallback"
}

// Handle 是启动时获取的模型句柄，构造后只读，可被并发请求共享。
type Handle struct {
	model    PriceModel
	strategy string
	source   string
}

// NewHandle 用已有模型构造 ACQUIRED 句柄。
func NewHandle(m PriceModel, strategy, source string) *Handle {
	if m == nil {
		return FallbackHandle()
	}
	return &Handle{model: m, strategy: strategy, source: source}
}

// FallbackHandle 返回 FALLBACK 状态的句柄。
func FallbackHandle() *Handle {
	return &Handle{}
}

func (h *Handle) State() State {
	if h == nil || h.model == nil {
		return StateFallback
	}
	return StateAcquired
}

// Model 返回已加载的模型；FALLBACK 状态下为 nil。
func (h *Handle) Model() PriceModel {
	if h == nil {
		return nil
	}
	return h.model
}

// Strategy 返回成功加载模型的策略名称。
func (h *Handle) Strategy() string {
	if h == nil {
		return ""
	}
	return h.strategy
}

// Source 返回模型来源（文件路径或服务地址）。
func (h *Handle) Source() string {
	if h == nil {
		return ""
	}
	return h.source
}

// Loader 按策略链从文件中获取模型。每个进程只应调用一次 Acquire。
type Loader struct {
	Strategies []Strategy
	Logger     *zerolog.Logger
}

// Acquire 使用默认策略链获取模型。
func Acquire(path string) *Handle {
	return (&Loader{}).Acquire(path)
}

// Acquire 读取 path 并依次尝试各个策略，第一个成功的结果即为最终模型。
// 文件不存在、读取失败或所有策略均失败时返回 FALLBACK 句柄，不返回错误。
func (l *Loader) Acquire(path string) *Handle {
	logger := l.logger()
	strategies := l.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}

	if path == "" {
		logger.Warn().Msg("no price model path configured, using heuristic pricing")
		return FallbackHandle()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Str("path", path).Msg("price model not found, using heuristic pricing")
		} else {
			logger.Warn().Err(err).Str("path", path).Msg("price model unreadable, using heuristic pricing")
		}
		return FallbackHandle()
	}

	for _, s := range strategies {
		logger.Debug().Str("strategy", s.Name()).Msg("attempting to load price model")
		m, err := tryLoad(s, data)
		if err != nil {
			logger.Warn().Err(err).Str("strategy", s.Name()).Msg("price model strategy failed")
			continue
		}
		logger.Info().
			Str("path", path).
			Str("strategy", s.Name()).
			Str("model", m.Name()).
			Msg("price model loaded")
		return NewHandle(m, s.Name(), path)
	}

	logger.Warn().
		Str("path", path).
		Int("strategies", len(strategies)).
		Msg("could not load price model with any strategy, using heuristic pricing")
	return FallbackHandle()
}

func (l *Loader) logger() *zerolog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	lg := logging.Component("model")
	return &lg
}

// tryLoad 执行单个策略，panic 与缺少 Predict 能力都视为失败。
func tryLoad(s Strategy, data []byte) (m PriceModel, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	m, err = s.Load(data)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("strategy %s returned an object without predict capability", s.Name())
	}
	return m, nil
}
