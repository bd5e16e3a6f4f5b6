package model

import "fmt"

// Tree 是以并行数组存储的回归树（与常见 ML 库导出的格式一致）。
// 节点 i 为叶子当且仅当 Left[i] == -1；叶子输出 Value[i]。
type Tree struct {
	Feature   []int     `json:"feature"`
	Threshold []float64 `json:"threshold"`
	Left      []int     `json:"left"`
	Right     []int     `json:"right"`
	Value     []float64 `json:"value"`
}

func (t *Tree) validate(numFeatures int) error {
	n := len(t.Value)
	if n == 0 {
		return fmt.Errorf("tree: empty")
	}
	if len(t.Feature) != n || len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n {
		return fmt.Errorf("tree: node arrays have different lengths")
	}
	for i := 0; i < n; i++ {
		if t.Left[i] == -1 {
			continue
		}
		if t.Left[i] <= i || t.Left[i] >= n || t.Right[i] <= i || t.Right[i] >= n {
			return fmt.Errorf("tree: node %d has invalid children", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= numFeatures {
			return fmt.Errorf("tree: node %d splits on unknown feature %d", i, t.Feature[i])
		}
	}
	return nil
}

// 子节点下标总是大于父节点（已在 validate 中保证），因此遍历一定终止。
func (t *Tree) predict(features []float64) float64 {
	i := 0
	for t.Left[i] != -1 {
		if features[t.Feature[i]] <= t.Threshold[i] {
			i = t.Left[i]
		} else {
			i = t.Right[i]
		}
	}
	return t.Value[i]
}

// GradientBoosting 是回归树集成估计器：
//
//	price = Init + LearningRate * sum(tree_k(features))
type GradientBoosting struct {
	Init         float64
	LearningRate float64
	Trees        []Tree
}

func (m *GradientBoosting) Name() string { return "gradient_boosting" }

func (m *GradientBoosting) Predict(features []float64) (float64, error) {
	if len(features) != NumFeatures {
		return 0, fmt.Errorf("gradient_boosting: expected %d features, got %d", NumFeatures, len(features))
	}
	sum := 0.0
	for i := range m.Trees {
		sum += m.Trees[i].predict(features)
	}
	return m.Init + m.LearningRate*sum, nil
}
