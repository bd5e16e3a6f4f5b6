// Package pricing 实现价格预测：优先调用启动时获取的模型，
// 模型不可用或单次调用失败时使用确定性的启发式公式。
package pricing

import (
	"math"

	"github.com/rushteam/homerec/core"
)

// 启发式公式参数。
const (
	BasePrice        = 200000.0
	PerBedroom       = 50000.0
	PerBathroom      = 30000.0
	PerSquareFoot    = 100.0
	BaselineSqft     = 1500
	AgeDiscountRate  = 0.003
	MaxAgeDiscount   = 0.30
	MinimumPrice     = 50000.0
	locationDivision = 1000.0
)

// Heuristic 是纯函数：相同输入总是得到相同价格，不做 I/O。
//
//	price = (200000 + 50000*bedrooms + 30000*bathrooms + 100*(sqft-1500))
//	        * (1 + (zip%100)/1000)
//	        * (1 - min(0.003*age, 0.30))
//
// 结果不低于 MinimumPrice。referenceYear 用于计算房龄，
// 晚于 referenceYear 建成的房子按房龄 0 处理。
func Heuristic(p core.Property, referenceYear int) float64 {
	price := BasePrice +
		PerBedroom*float64(p.Bedrooms) +
		PerBathroom*float64(p.Bathrooms) +
		PerSquareFoot*float64(p.SquareFeet-BaselineSqft)

	if p.ZipCode > 0 {
		price *= 1 + float64(p.ZipCode%100)/locationDivision
	}

	age := referenceYear - p.YearBuilt
	if age > 0 {
		price *= 1 - math.Min(AgeDiscountRate*float64(age), MaxAgeDiscount)
	}

	return math.Max(price, MinimumPrice)
}
