package filter

import (
	"context"
	"strings"

	"github.com/rushteam/homerec/core"
)

// BathroomsFilter 过滤浴室数少于 MinBathrooms 的房源。
type BathroomsFilter struct{}

func (f *BathroomsFilter) Name() string { return "filter.bathrooms" }

func (f *BathroomsFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	return item.Property.Bathrooms < rctx.Preferences.MinBathrooms, nil
}

// SquareFeetFilter 过滤面积小于 MinSquareFeet 的房源。
type SquareFeetFilter struct{}

func (f *SquareFeetFilter) Name() string { return "filter.square_feet" }

func (f *SquareFeetFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	return item.Property.SquareFeet < rctx.Preferences.MinSquareFeet, nil
}

// LocationFilter 在 Location 非空时，过滤城市与州都不匹配的房源（忽略大小写与首尾空白）。
type LocationFilter struct{}

func (f *LocationFilter) Name() string { return "filter.location" }

func (f *LocationFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	loc := strings.TrimSpace(rctx.Preferences.Location)
	if loc == "" {
		return false, nil
	}
	return !strings.EqualFold(loc, item.Property.City) && !strings.EqualFold(loc, item.Property.State), nil
}

// PreferenceFilters 返回由买家偏好决定的全部硬性过滤器。
func PreferenceFilters() []Filter {
	return []Filter{&BathroomsFilter{}, &SquareFeetFilter{}, &LocationFilter{}}
}
