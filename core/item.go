package core

import (
	"math"

	"github.com/rushteam/homerec/pkg/utils"
)

// SubScores 是匹配分的六个分项，取值范围均为 [0,100]。
type SubScores struct {
	PriceMatch   float64 `json:"price_match"`
	Bedroom      float64 `json:"bedroom"`
	SchoolRating float64 `json:"school_rating"`
	Commute      float64 `json:"commute"`
	PropertyAge  float64 `json:"property_age"`
	Amenities    float64 `json:"amenities"`
}

// Item 是推荐链路中的统一承载结构：房源、预测价格、分项分数、解释与标签。
// 每次排序都会为每个房源新建 Item，不跨请求复用。
type Item struct {
	// Index 是房源在 Feed 中的原始位置，用于最终的稳定排序。
	Index    int
	Property Property

	PredictedPrice float64
	PriceSource    string // model / heuristic
	SubScores      SubScores
	Score          float64
	Reasoning      string

	Labels map[string]utils.Label
}

func NewItem(index int, p Property) *Item {
	return &Item{
		Index:    index,
		Property: p,
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// ScoredProperty 是返回给调用方的结果：房源 + 预测价格 + 分项分数 + 匹配分 + 解释。
type ScoredProperty struct {
	Property
	PredictedPrice float64   `json:"predicted_price"`
	PriceSource    string    `json:"price_source"`
	SubScores      SubScores `json:"sub_scores"`
	MatchScore     float64   `json:"match_score"`
	Reasoning      string    `json:"reasoning"`
}

// Scored 生成对外输出的 ScoredProperty（值拷贝，与 Item 不共享状态）。
func (it *Item) Scored() ScoredProperty {
	return ScoredProperty{
		Property:       it.Property,
		PredictedPrice: it.PredictedPrice,
		PriceSource:    it.PriceSource,
		SubScores:      it.SubScores,
		MatchScore:     it.Score,
		Reasoning:      it.Reasoning,
	}
}

// Rounded 返回用于输出的副本：价格保留到分，分数保留两位小数。
// 排序在取整之前完成。
func (s ScoredProperty) Rounded() ScoredProperty {
	s.PredictedPrice = round2(s.PredictedPrice)
	s.MatchScore = round2(s.MatchScore)
	s.SubScores = SubScores{
		PriceMatch:   round2(s.SubScores.PriceMatch),
		Bedroom:      round2(s.SubScores.Bedroom),
		SchoolRating: round2(s.SubScores.SchoolRating),
		Commute:      round2(s.SubScores.Commute),
		PropertyAge:  round2(s.SubScores.PropertyAge),
		Amenities:    round2(s.SubScores.Amenities),
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Result 是一次推荐的输出及附带的元信息。
type Result struct {
	Recommendations []ScoredProperty `json:"recommendations"`
	TotalEvaluated  int              `json:"total_properties_evaluated"`
	ModelUsed       bool             `json:"model_used"`
}
