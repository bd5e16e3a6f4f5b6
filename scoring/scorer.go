// Package scoring 计算房源与买家偏好的匹配分。
//
// 匹配分是六个分项的加权和（权重固定，和为 1.0），每个分项都在 [0,100]：
//
//	match = 0.30*price_match + 0.20*bedroom + 0.15*school_rating
//	      + 0.15*commute + 0.10*property_age + 0.10*amenities
//
// 浴室数与最小面积是过滤条件，不参与打分。
package scoring

import (
	"math"
	"time"

	"github.com/rushteam/homerec/core"
)

// 分项权重。
const (
	WeightPriceMatch   = 0.30
	WeightBedroom      = 0.20
	WeightSchoolRating = 0.15
	WeightCommute      = 0.15
	WeightPropertyAge  = 0.10
	WeightAmenities    = 0.10
)

// MaxOverageRatio 是价格分降到 0 时的超预算比例：1.0 表示价格达到预算 2 倍时为 0。
const MaxOverageRatio = 1.0

// TotalAmenities 是参与计分的配套设施数量（pool, garage, garden）。
const TotalAmenities = 3

// Scorer 是无状态的打分器。CurrentYear 用于计算房龄。
type Scorer struct {
	CurrentYear int
}

// NewScorer 创建 Scorer；currentYear 为 0 时使用当前年份。
func NewScorer(currentYear int) *Scorer {
	if currentYear == 0 {
		currentYear = time.Now().Year()
	}
	return &Scorer{CurrentYear: currentYear}
}

// Score 计算匹配分与六个分项。纯函数。
func (s *Scorer) Score(p core.Property, price float64, prefs core.Preferences) (float64, core.SubScores) {
	sub := core.SubScores{
		PriceMatch:   PriceMatchScore(price, prefs.Budget),
		Bedroom:      BedroomScore(p.Bedrooms, prefs.MinBedrooms),
		SchoolRating: SchoolRatingScore(p.SchoolRating),
		Commute:      CommuteScore(p.CommuteTime),
		PropertyAge:  PropertyAgeScore(s.CurrentYear - p.YearBuilt),
		Amenities:    AmenitiesScore(len(p.Amenities())),
	}
	return Combine(sub), sub
}

// Combine 返回分项的加权和。
func Combine(sub core.SubScores) float64 {
	return WeightPriceMatch*sub.PriceMatch +
		WeightBedroom*sub.Bedroom +
		WeightSchoolRating*sub.SchoolRating +
		WeightCommute*sub.Commute +
		WeightPropertyAge*sub.PropertyAge +
		WeightAmenities*sub.Amenities
}

// OverageRatio 返回价格超出预算的比例，不超预算时为 0。
func OverageRatio(price, budget float64) float64 {
	if budget <= 0 || price <= budget {
		return 0
	}
	return (price - budget) / budget
}

// PriceMatchScore：不超预算为 100，否则按超出比例线性扣分，
// 超出 MaxOverageRatio 时为 0。
func PriceMatchScore(price, budget float64) float64 {
	if price <= budget {
		return 100
	}
	return clamp(100 * (1 - OverageRatio(price, budget)/MaxOverageRatio))
}

// BedroomScore：满足最小卧室数为 100，否则按 bedrooms/min 比例给分。
func BedroomScore(bedrooms, minBedrooms int) float64 {
	if minBedrooms <= 0 || bedrooms >= minBedrooms {
		return 100
	}
	return clamp(100 * float64(bedrooms) / float64(minBedrooms))
}

func SchoolRatingScore(rating float64) float64 {
	return clamp(rating / 10 * 100)
}

// CommuteBucket 是通勤时间的分档。
type CommuteBucket int

const (
	CommuteShort CommuteBucket = iota
	CommuteReasonable
	CommuteModerate
	CommuteLong
)

// CommuteBucketOf：<=15 / <=30 / <=45 / 其他。
func CommuteBucketOf(minutes int) CommuteBucket {
	switch {
	case minutes <= 15:
		return CommuteShort
	case minutes <= 30:
		return CommuteReasonable
	case minutes <= 45:
		return CommuteModerate
	default:
		return CommuteLong
	}
}

var commuteScores = [...]float64{
	CommuteShort:      100,
	CommuteReasonable: 80,
	CommuteModerate:   50,
	CommuteLong:       20,
}

func CommuteScore(minutes int) float64 {
	return commuteScores[CommuteBucketOf(minutes)]
}

// AgeBucket 是房龄的分档。
type AgeBucket int

const (
	AgeModern AgeBucket = iota
	AgeWellMaintained
	AgeEstablished
	AgeOlder
)

// AgeBucketOf：<=5 / <=15 / <=30 / 其他。负房龄（未来年份）按新房处理。
func AgeBucketOf(age int) AgeBucket {
	switch {
	case age <= 5:
		return AgeModern
	case age <= 15:
		return AgeWellMaintained
	case age <= 30:
		return AgeEstablished
	default:
		return AgeOlder
	}
}

var ageScores = [...]float64{
	AgeModern:         100,
	AgeWellMaintained: 80,
	AgeEstablished:    60,
	AgeOlder:          40,
}

func PropertyAgeScore(age int) float64 {
	return ageScores[AgeBucketOf(age)]
}

func AmenitiesScore(count int) float64 {
	return clamp(float64(count) / TotalAmenities * 100)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
