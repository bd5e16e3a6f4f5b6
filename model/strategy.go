package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Strategy 是一种反序列化策略：把模型文件内容还原为具备 Predict 能力的对象。
// 返回错误、返回 nil 或 panic 都视为失败，由 Loader 继续尝试下一个策略。
type Strategy interface {
	Name() string
	Load(data []byte) (PriceModel, error)
}

// DefaultStrategies 返回默认的策略链（按优先级）：
//  1. estimator：严格解码已知估计器格式
//  2. stand-in：宽松解码引用了未知类的模型，用替身读取其中的数据字段
//  3. generic：不做特殊处理的通用解码
func DefaultStrategies() []Strategy {
	return []Strategy{
		&EstimatorStrategy{},
		&StandInStrategy{},
		&GenericStrategy{},
	}
}

// estimatorEnvelope 是已知估计器的序列化格式。
//
//	{"estimator": "linear_regression", "coef": [...], "intercept": 1.0}
//	{"estimator": "gradient_boosting", "init": 1.0, "learning_rate": 0.1, "trees": [...]}
type estimatorEnvelope struct {
	Estimator    string    `json:"estimator"`
	NFeaturesIn  int       `json:"n_features_in"`
	Coef         []float64 `json:"coef"`
	Intercept    float64   `json:"intercept"`
	Init         float64   `json:"init"`
	LearningRate float64   `json:"learning_rate"`
	Trees        []Tree    `json:"trees"`
}

// EstimatorStrategy 严格解码估计器格式：未知字段、未知估计器类型、特征数不符都会失败。
type EstimatorStrategy struct{}

func (s *EstimatorStrategy) Name() string { return "estimator" }

func (s *EstimatorStrategy) Load(data []byte) (PriceModel, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var env estimatorEnvelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("decode estimator: %w", err)
	}
	return env.build()
}

func (env *estimatorEnvelope) build() (PriceModel, error) {
	if env.NFeaturesIn != 0 && env.NFeaturesIn != NumFeatures {
		return nil, fmt.Errorf("estimator expects %d features, have %d", env.NFeaturesIn, NumFeatures)
	}
	switch env.Estimator {
	case "linear_regression":
		if len(env.Coef) != NumFeatures {
			return nil, fmt.Errorf("linear_regression: expected %d coefficients, got %d", NumFeatures, len(env.Coef))
		}
		return &LinearEstimator{Coef: env.Coef, Intercept: env.Intercept}, nil
	case "gradient_boosting":
		if len(env.Trees) == 0 {
			return nil, fmt.Errorf("gradient_boosting: no trees")
		}
		for i := range env.Trees {
			if err := env.Trees[i].validate(NumFeatures); err != nil {
				return nil, fmt.Errorf("gradient_boosting: tree %d: %w", i, err)
			}
		}
		lr := env.LearningRate
		if lr == 0 {
			lr = 1
		}
		return &GradientBoosting{Init: env.Init, LearningRate: lr, Trees: env.Trees}, nil
	case "":
		return nil, fmt.Errorf("missing estimator type")
	default:
		return nil, fmt.Errorf("unsupported estimator %q", env.Estimator)
	}
}

// StandInStrategy 处理引用了当前进程中不存在的类的模型文件：
//
//	{"class": "ComplexTrapModelRenamed", "state": {...}}
//
// 它不尝试重建未知行为，只用 StandIn 读取 state 中的数据字段（系数等）。
type StandInStrategy struct{}

func (s *StandInStrategy) Name() string { return "stand-in" }

func (s *StandInStrategy) Load(data []byte) (PriceModel, error) {
	var raw struct {
		Class string         `json:"class"`
		State map[string]any `json:"state"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode stand-in: %w", err)
	}
	if raw.Class == "" || raw.State == nil {
		return nil, fmt.Errorf("artifact does not reference a class with state")
	}
	standIn := NewStandIn(raw.Class, raw.State)
	if !standIn.CanPredict() {
		return nil, fmt.Errorf("stand-in for %s: no predictor found in state", raw.Class)
	}
	return standIn, nil
}

// GenericStrategy 是不做特殊处理的通用解码（YAML 是 JSON 的超集，两种格式都可读）：
//
//	bias: 50000
//	weights:
//	  square_feet: 150
type GenericStrategy struct{}

func (s *GenericStrategy) Name() string { return "generic" }

func (s *GenericStrategy) Load(data []byte) (PriceModel, error) {
	var raw struct {
		Bias    float64            `yaml:"bias"`
		Weights map[string]float64 `yaml:"weights"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode generic: %w", err)
	}
	m := &LinearModel{Bias: raw.Bias, Weights: raw.Weights}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}
