package model

import "context"

// PriceModel 是价格预测的最小抽象：输入特征向量，输出一个价格。
// 具体实现可以是本地估计器（线性回归 / GBDT）或远程 RPC 模型服务。
//
// 特征向量的顺序固定为 FeatureNames。
type PriceModel interface {
	Name() string
	Predict(features []float64) (float64, error)
}

// BatchModel 由一次调用可预测多个房源的模型实现（远程模型服务）。
// 返回值与 instances 一一对应。
type BatchModel interface {
	PriceModel
	PredictBatch(ctx context.Context, instances [][]float64) ([]float64, error)
}

// FeatureNames 是特征向量的固定顺序。
var FeatureNames = []string{
	"bedrooms",
	"bathrooms",
	"square_feet",
	"year_built",
	"zip_code",
	"lot_size",
}

// NumFeatures 是特征向量长度。
var NumFeatures = len(FeatureNames)

func featureIndex(name string) int {
	for i, n := range FeatureNames {
		if n == name {
			return i
		}
	}
	return -1
}
