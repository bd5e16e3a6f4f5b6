package core

// PropertyTypeHouse 是当前目录中唯一的房产类型。
const PropertyTypeHouse = "House"

// Property 是 Feed 提供的房源记录，单次请求内只读。
// 下游组件（Predictor / Scorer / Reasoning / Ranker）都不能修改它。
type Property struct {
	ID           string  `json:"id" yaml:"id"`
	Street       string  `json:"address" yaml:"address"`
	City         string  `json:"city" yaml:"city"`
	State        string  `json:"state" yaml:"state"`
	ZipCode      int     `json:"zip_code" yaml:"zip_code"`
	Bedrooms     int     `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms    int     `json:"bathrooms" yaml:"bathrooms"`
	SquareFeet   int     `json:"square_feet" yaml:"square_feet"`
	YearBuilt    int     `json:"year_built" yaml:"year_built"`
	LotSize      int     `json:"lot_size" yaml:"lot_size"`
	PropertyType string  `json:"property_type" yaml:"property_type"`
	SchoolRating float64 `json:"school_rating" yaml:"school_rating"`
	CommuteTime  int     `json:"commute_time" yaml:"commute_time"`
	HasPool      bool    `json:"has_pool" yaml:"has_pool"`
	HasGarage    bool    `json:"has_garage" yaml:"has_garage"`
	HasGarden    bool    `json:"has_garden" yaml:"has_garden"`
	ImageURL     string  `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// Amenities 按固定顺序（pool, garage, garden）返回为 true 的配套设施名称。
func (p *Property) Amenities() []string {
	out := make([]string, 0, 3)
	if p.HasPool {
		out = append(out, "pool")
	}
	if p.HasGarage {
		out = append(out, "garage")
	}
	if p.HasGarden {
		out = append(out, "garden")
	}
	return out
}

// Preferences 是买家的单次请求偏好。
//
// 校验在边界层完成（service 包），核心链路假设输入合法：
//   - Budget > 0
//   - Location 为空表示不过滤
//   - MinBedrooms / MinBathrooms / MinSquareFeet >= 0
type Preferences struct {
	Budget        float64 `json:"budget" validate:"gt=0"`
	Location      string  `json:"location" validate:"max=128"`
	MinBedrooms   int     `json:"min_bedrooms" validate:"gte=0,lte=50"`
	MinBathrooms  int     `json:"min_bathrooms" validate:"gte=0,lte=50"`
	MinSquareFeet int     `json:"min_square_feet" validate:"gte=0"`
}

// 请求未显式给出时使用的默认偏好。
const (
	DefaultBudget        = 500000
	DefaultMinBedrooms   = 2
	DefaultMinBathrooms  = 1
	DefaultMinSquareFeet = 1000
)

// DefaultPreferences 返回默认偏好。
func DefaultPreferences() Preferences {
	return Preferences{
		Budget:        DefaultBudget,
		MinBedrooms:   DefaultMinBedrooms,
		MinBathrooms:  DefaultMinBathrooms,
		MinSquareFeet: DefaultMinSquareFeet,
	}
}
