// Package dsl 提供基于 CEL (Common Expression Language) 的房源表达式求值，
// 供运营配置排除规则，例如：
//
//	property.year_built < 1960 && !property.has_garage
//	property.city == "Miami" && prefs.budget < 300000.0
//	"price_source" in label && label.price_source == "heuristic"
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/rushteam/homerec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("property", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("prefs", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("label", cel.MapType(cel.StringType, cel.DynType)),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Expr 是编译后的布尔表达式，可被并发求值。
type Expr struct {
	source string
	prg    cel.Program
}

// Compile 编译表达式；表达式必须返回 bool。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if kind := ast.OutputType().Kind(); kind != types.BoolKind && kind != types.DynKind {
		return nil, fmt.Errorf("expression must return bool, got %s", ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Expr{source: expr, prg: prg}, nil
}

func (e *Expr) String() string { return e.source }

// Evaluate 对单个房源求值。
func (e *Expr) Evaluate(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据。整数字段以 int64 传入，CEL 中可直接与整数字面量比较。
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	p := item.Property
	property := map[string]any{
		"id":            p.ID,
		"address":       p.Street,
		"city":          p.City,
		"state":         p.State,
		"zip_code":      int64(p.ZipCode),
		"bedrooms":      int64(p.Bedrooms),
		"bathrooms":     int64(p.Bathrooms),
		"square_feet":   int64(p.SquareFeet),
		"year_built":    int64(p.YearBuilt),
		"lot_size":      int64(p.LotSize),
		"property_type": p.PropertyType,
		"school_rating": p.SchoolRating,
		"commute_time":  int64(p.CommuteTime),
		"has_pool":      p.HasPool,
		"has_garage":    p.HasGarage,
		"has_garden":    p.HasGarden,
	}

	prefs := map[string]any{}
	if rctx != nil {
		pr := rctx.Preferences
		prefs = map[string]any{
			"budget":          pr.Budget,
			"location":        pr.Location,
			"min_bedrooms":    int64(pr.MinBedrooms),
			"min_bathrooms":   int64(pr.MinBathrooms),
			"min_square_feet": int64(pr.MinSquareFeet),
		}
	}

	// 访问不存在的 key 会报错，需先用 "key" in label 检查存在性
	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}

	return map[string]any{
		"property": property,
		"prefs":    prefs,
		"label":    labels,
	}
}
