package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rushteam/homerec/pkg/conv"
)

// ErrNoUnderlyingModel 表示替身对象中没有找到可用的预测器。
var ErrNoUnderlyingModel = errors.New("stand-in: prediction not available, underlying model not found")

// 优先查找的嵌套模型字段名。
var underlyingKeys = []string{"model", "_model", "estimator", "_estimator", "base_estimator"}

var (
	coefKeys      = []string{"coef", "coef_", "coefficients"}
	interceptKeys = []string{"intercept", "intercept_", "bias"}
)

// 嵌套深度上限，防止异常文件导致过深递归。
const maxStandInDepth = 8

// StandIn 是未知类的结构兼容替身：保留原类名与状态数据，
// 并把 Predict 委托给在状态中找到的预测器。
type StandIn struct {
	Class string
	State map[string]any

	underlying PriceModel
}

// NewStandIn 创建替身并在 state 中查找预测器。
func NewStandIn(class string, state map[string]any) *StandIn {
	s := &StandIn{Class: class, State: state}
	s.underlying = findPredictor(state, 0)
	return s
}

func (s *StandIn) Name() string {
	if s.underlying != nil {
		return "stand-in(" + s.Class + ")/" + s.underlying.Name()
	}
	return "stand-in(" + s.Class + ")"
}

// CanPredict 报告是否找到了底层预测器。
func (s *StandIn) CanPredict() bool { return s.underlying != nil }

func (s *StandIn) Predict(features []float64) (float64, error) {
	if s.underlying == nil {
		return 0, ErrNoUnderlyingModel
	}
	return s.underlying.Predict(features)
}

// findPredictor 依次尝试：
//  1. 当前层即为系数（coef + intercept，或按名 weights + bias）
//  2. 当前层是已知估计器格式
//  3. underlyingKeys 中的嵌套对象
//  4. 其余嵌套对象（按 key 排序，保证结果确定）
func findPredictor(state map[string]any, depth int) PriceModel {
	if state == nil || depth > maxStandInDepth {
		return nil
	}
	if m := coefficientsFrom(state); m != nil {
		return m
	}
	if _, ok := state["estimator"].(string); ok {
		if m := estimatorFrom(state); m != nil {
			return m
		}
	}
	for _, key := range underlyingKeys {
		if nested, ok := state[key].(map[string]any); ok {
			if m := findPredictor(nested, depth+1); m != nil {
				return m
			}
		}
	}
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if nested, ok := state[k].(map[string]any); ok {
			if m := findPredictor(nested, depth+1); m != nil {
				return m
			}
		}
	}
	return nil
}

func coefficientsFrom(state map[string]any) PriceModel {
	intercept := 0.0
	for _, k := range interceptKeys {
		if v, ok := conv.ToFloat64(state[k]); ok {
			intercept = v
			break
		}
	}
	for _, k := range coefKeys {
		coef := conv.SliceAnyToFloat64(state[k])
		if len(coef) == NumFeatures {
			return &LinearEstimator{Coef: coef, Intercept: intercept}
		}
	}
	if raw, ok := state["weights"].(map[string]any); ok {
		m := &LinearModel{Bias: intercept, Weights: conv.MapToFloat64(raw)}
		if m.validate() == nil {
			return m
		}
	}
	return nil
}

func estimatorFrom(state map[string]any) PriceModel {
	data, err := json.Marshal(state)
	if err != nil {
		return nil
	}
	var env estimatorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	m, err := env.build()
	if err != nil {
		return nil
	}
	return m
}

func (s *StandIn) String() string {
	return fmt.Sprintf("StandIn{class=%s, predictor=%v}", s.Class, s.underlying != nil)
}
