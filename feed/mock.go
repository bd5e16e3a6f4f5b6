package feed

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/rushteam/homerec/core"
)

// Mock 数据的取值范围（上界不含）。
const (
	DefaultMockCount = 20

	minBedrooms, maxBedrooms       = 1, 6
	minSquareFeet, maxSquareFeet   = 800, 4000
	minYearBuilt, maxYearBuilt     = 1950, 2024
	minLotSize, maxLotSize         = 3000, 15000
	minSchoolRating, maxSchoolRate = 4.0, 10.0
	minCommute, maxCommute         = 5, 60

	poolProbability   = 0.3
	garageProbability = 0.7
	gardenProbability = 0.6
)

var (
	mockZipCodes = []int{10001, 10002, 10003, 90210, 94102, 60601, 77001, 30301, 33101, 98101}
	mockCities   = []struct{ City, State string }{
		{"New York", "NY"},
		{"Los Angeles", "CA"},
		{"Chicago", "IL"},
		{"Houston", "TX"},
		{"Atlanta", "GA"},
		{"Miami", "FL"},
		{"Seattle", "WA"},
	}
	mockStreets = []string{"Main", "Oak", "Park", "Maple", "Elm"}
	mockImages  = []string{
		"https://images.unsplash.com/photo-1600607687920-4e2a09cf159d?w=800&h=600&fit=crop",
		"https://images.unsplash.com/photo-1560448204-e02f11c3d0e2?w=800&h=600&fit=crop",
		"https://images.unsplash.com/photo-1568605116820-0c0a4313b0e4?w=800&h=600&fit=crop",
		"https://images.unsplash.com/photo-1568605117026-5f8557b12d10?w=800&h=600&fit=crop",
		"https://images.unsplash.com/photo-1600596542815-ffad4c1539a9?w=800&h=600&fit=crop",
		"https://images.unsplash.com/photo-1600585154340-be6161a56a0c?w=800&h=600&fit=crop",
		"https://images.unsplash.com/photo-1600566753190-17f0baa2a6c3?w=800&h=600&fit=crop",
		"https://images.unsplash.com/photo-1600047509807-ba8f99d2cdde?w=800&h=600&fit=crop",
		"https://images.unsplash.com/photo-1600607687939-ce8a6c25118c?w=800&h=600&fit=crop",
		"https://images.unsplash.com/photo-1600607687644-c7171b42498b?w=800&h=600&fit=crop",
		"https://images.unsplash.com/photo-1600585154084-4e5fe7c39198?w=800&h=600&fit=crop",
	}
)

// MockFeed 生成模拟房源。目录在构造时按 Seed 生成一次，进程内保持不变。
type MockFeed struct {
	props []core.Property
}

// NewMockFeed 生成 count 个房源；count <= 0 时使用 DefaultMockCount。
func NewMockFeed(count int, seed int64) *MockFeed {
	if count <= 0 {
		count = DefaultMockCount
	}
	return &MockFeed{props: GenerateProperties(count, seed)}
}

func (m *MockFeed) Name() string { return "mock" }

func (m *MockFeed) Properties(context.Context) ([]core.Property, error) {
	return append([]core.Property(nil), m.props...), nil
}

// GenerateProperties 按 seed 确定性地生成房源。
func GenerateProperties(count int, seed int64) []core.Property {
	r := rand.New(rand.NewSource(seed))
	between := func(lo, hi int) int { return lo + r.Intn(hi-lo) }

	out := make([]core.Property, 0, count)
	for i := 0; i < count; i++ {
		bedrooms := between(minBedrooms, maxBedrooms)
		bathrooms := max(1, bedrooms-r.Intn(2))
		loc := mockCities[r.Intn(len(mockCities))]

		out = append(out, core.Property{
			ID:           fmt.Sprintf("%d", i+1),
			Street:       fmt.Sprintf("%d %s St", between(100, 9999), mockStreets[r.Intn(len(mockStreets))]),
			City:         loc.City,
			State:        loc.State,
			ZipCode:      mockZipCodes[r.Intn(len(mockZipCodes))],
			Bedrooms:     bedrooms,
			Bathrooms:    bathrooms,
			SquareFeet:   between(minSquareFeet, maxSquareFeet),
			YearBuilt:    between(minYearBuilt, maxYearBuilt),
			LotSize:      between(minLotSize, maxLotSize),
			PropertyType: core.PropertyTypeHouse,
			SchoolRating: math.Round((minSchoolRating+r.Float64()*(maxSchoolRate-minSchoolRating))*10) / 10,
			CommuteTime:  between(minCommute, maxCommute),
			HasPool:      r.Float64() < poolProbability,
			HasGarage:    r.Float64() < garageProbability,
			HasGarden:    r.Float64() < gardenProbability,
			ImageURL:     mockImages[i%len(mockImages)],
		})
	}
	return out
}
