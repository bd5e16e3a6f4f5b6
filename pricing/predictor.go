package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/metrics"
	"github.com/rushteam/homerec/model"
)

// Outcome 是单次预测的结果，与进程级的 model.State 相互独立。
type Outcome int

const (
	// OutcomeHeuristic：进程处于 FALLBACK，直接使用启发式公式。
	OutcomeHeuristic Outcome = iota
	// OutcomeSuccess：使用了模型输出。
	OutcomeSuccess
	// OutcomeDegraded：模型调用失败，本次降级为启发式公式。
	OutcomeDegraded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDegraded:
		return "degraded"
	default:
		return "heuristic"
	}
}

// Source 返回价格来源（model / heuristic），用于输出。
func (o Outcome) Source() string {
	if o == OutcomeSuccess {
		return "model"
	}
	return "heuristic"
}

// Predictor 对外保证总是返回有限且非负的价格，从不返回错误。
// 它只读取 Handle，可被并发请求共享。
type Predictor struct {
	Handle *model.Handle
	// ReferenceYear 是启发式公式计算房龄的基准年份。
	ReferenceYear int
	Logger        *zerolog.Logger
}

// NewPredictor 创建 Predictor；referenceYear 为 0 时使用当前年份。
func NewPredictor(h *model.Handle, referenceYear int) *Predictor {
	if referenceYear == 0 {
		referenceYear = time.Now().Year()
	}
	if h == nil {
		h = model.FallbackHandle()
	}
	return &Predictor{Handle: h, ReferenceYear: referenceYear}
}

// ModelLoaded 报告进程是否持有可用模型。
func (p *Predictor) ModelLoaded() bool {
	return p.Handle.State() == model.StateAcquired
}

// FeatureVector 按固定顺序构造特征向量：
// bedrooms, bathrooms, square_feet, year_built, zip_code, lot_size。
func FeatureVector(prop core.Property) []float64 {
	return []float64{
		float64(prop.Bedrooms),
		float64(prop.Bathrooms),
		float64(prop.SquareFeet),
		float64(prop.YearBuilt),
		float64(prop.ZipCode),
		float64(prop.LotSize),
	}
}

// Predict 返回价格与本次预测的结果。
func (p *Predictor) Predict(prop core.Property) (float64, Outcome) {
	m := p.Handle.Model()
	if m == nil {
		metrics.RecordPrediction(OutcomeHeuristic.String())
		return Heuristic(prop, p.ReferenceYear), OutcomeHeuristic
	}

	price, err := invoke(m, FeatureVector(prop))
	if err != nil {
		p.logger().Warn().
			Err(err).
			Str("property_id", prop.ID).
			Str("model", m.Name()).
			Msg("price model invocation failed, using heuristic for this property")
		metrics.RecordPrediction(OutcomeDegraded.String())
		return Heuristic(prop, p.ReferenceYear), OutcomeDegraded
	}
	metrics.RecordPrediction(OutcomeSuccess.String())
	return price, OutcomeSuccess
}

// PredictAll 为一批房源预测价格，结果与 props 一一对应。
// 模型实现了 model.BatchModel 时只调用一次 PredictBatch；整批失败时全部降级，
// 单个价格不合法时只降级该房源。其他模型逐个调用 Predict。
func (p *Predictor) PredictAll(ctx context.Context, props []core.Property) ([]float64, []Outcome) {
	prices := make([]float64, len(props))
	outcomes := make([]Outcome, len(props))

	bm, ok := p.Handle.Model().(model.BatchModel)
	if !ok || len(props) == 0 {
		for i, prop := range props {
			prices[i], outcomes[i] = p.Predict(prop)
		}
		return prices, outcomes
	}

	features := make([][]float64, len(props))
	for i, prop := range props {
		features[i] = FeatureVector(prop)
	}
	raw, err := invokeBatch(ctx, bm, features)
	if err != nil {
		p.logger().Warn().
			Err(err).
			Int("properties", len(props)).
			Str("model", bm.Name()).
			Msg("price model batch failed, using heuristic for this pass")
	}
	for i, prop := range props {
		if err == nil {
			verr := checkPrice(raw[i])
			if verr == nil {
				prices[i], outcomes[i] = raw[i], OutcomeSuccess
				metrics.RecordPrediction(OutcomeSuccess.String())
				continue
			}
			p.logger().Warn().Err(verr).Str("property_id", prop.ID).Str("model", bm.Name()).
				Msg("price model invocation failed, using heuristic for this property")
		}
		prices[i], outcomes[i] = Heuristic(prop, p.ReferenceYear), OutcomeDegraded
		metrics.RecordPrediction(OutcomeDegraded.String())
	}
	return prices, outcomes
}

// invoke 调用模型并校验输出；panic、NaN/Inf 与负数都视为失败。
func invoke(m model.PriceModel, features []float64) (price float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			price, err = 0, fmt.Errorf("model panicked: %v", r)
		}
	}()
	price, err = m.Predict(features)
	if err != nil {
		return 0, err
	}
	if err := checkPrice(price); err != nil {
		return 0, err
	}
	return price, nil
}

func invokeBatch(ctx context.Context, m model.BatchModel, features [][]float64) (prices []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			prices, err = nil, fmt.Errorf("model panicked: %v", r)
		}
	}()
	prices, err = m.PredictBatch(ctx, features)
	if err != nil {
		return nil, err
	}
	if len(prices) != len(features) {
		return nil, fmt.Errorf("model returned %d prices for %d properties", len(prices), len(features))
	}
	return prices, nil
}

func checkPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("model returned non-finite price %v", price)
	}
	if price < 0 {
		return fmt.Errorf("model returned negative price %v", price)
	}
	return nil
}

func (p *Predictor) logger() *zerolog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	lg := logging.Component("pricing")
	return &lg
}
