package model

import "fmt"

// LinearEstimator 是按位置存储系数的线性回归估计器：
//
//	price = Intercept + sum(Coef_i * Feature_i)
type LinearEstimator struct {
	Coef      []float64
	Intercept float64
}

func (m *LinearEstimator) Name() string { return "linear_regression" }

func (m *LinearEstimator) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Coef) {
		return 0, fmt.Errorf("linear_regression: expected %d features, got %d", len(m.Coef), len(features))
	}
	price := m.Intercept
	for i, v := range features {
		price += m.Coef[i] * v
	}
	return price, nil
}

// LinearModel 是按特征名存储权重的线性模型（回归，不做 Sigmoid 变换）。
// 未出现在 Weights 中的特征视为权重 0，不认识的特征名会在加载时被拒绝。
type LinearModel struct {
	Bias    float64
	Weights map[string]float64
}

func (m *LinearModel) Name() string { return "linear" }

func (m *LinearModel) Predict(features []float64) (float64, error) {
	if len(features) != NumFeatures {
		return 0, fmt.Errorf("linear: expected %d features, got %d", NumFeatures, len(features))
	}
	// 按 FeatureNames 顺序累加，不遍历 map
	price := m.Bias
	for i, name := range FeatureNames {
		price += m.Weights[name] * features[i]
	}
	return price, nil
}

func (m *LinearModel) validate() error {
	if len(m.Weights) == 0 {
		return fmt.Errorf("linear: no weights")
	}
	for name := range m.Weights {
		if featureIndex(name) < 0 {
			return fmt.Errorf("linear: unknown feature %q", name)
		}
	}
	return nil
}
