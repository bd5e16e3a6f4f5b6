package pricing

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/model"
)

func sampleProperty() core.Property {
	return core.Property{
		ID:         "prop_1",
		City:       "Chicago",
		State:      "IL",
		ZipCode:    60601,
		Bedrooms:   3,
		Bathrooms:  2,
		SquareFeet: 2000,
		YearBuilt:  2010,
		LotSize:    5000,
	}
}

func TestHeuristic(t *testing.T) {
	p := sampleProperty()
	// 200000 + 150000 + 60000 + 50000 = 460000, *1.001, *(1-0.042)
	want := 460000 * 1.001 * (1 - 0.003*14)
	assert.InDelta(t, want, Heuristic(p, 2024), 1e-6)
	assert.Equal(t, Heuristic(p, 2024), Heuristic(p, 2024))
}

func TestHeuristic_Monotonic(t *testing.T) {
	base := sampleProperty()

	bigger := base
	bigger.SquareFeet += 500
	assert.Greater(t, Heuristic(bigger, 2024), Heuristic(base, 2024))

	moreBeds := base
	moreBeds.Bedrooms++
	assert.Greater(t, Heuristic(moreBeds, 2024), Heuristic(base, 2024))

	newer := base
	newer.YearBuilt = 2020
	assert.Greater(t, Heuristic(newer, 2024), Heuristic(base, 2024))
}

func TestHeuristic_Bounds(t *testing.T) {
	tiny := core.Property{Bedrooms: 0, Bathrooms: 0, SquareFeet: 100, YearBuilt: 1900}
	assert.Equal(t, MinimumPrice, Heuristic(tiny, 2024))

	ancient := sampleProperty()
	ancient.YearBuilt = 1800
	veryOld := sampleProperty()
	veryOld.YearBuilt = 1900
	assert.Equal(t, Heuristic(ancient, 2024), Heuristic(veryOld, 2024), "age discount is capped")

	future := sampleProperty()
	future.YearBuilt = 2030
	noZip := sampleProperty()
	noZip.ZipCode = 0
	noZip.YearBuilt = 2024
	assert.InDelta(t, 460000*1.001, Heuristic(future, 2024), 1e-6)
	assert.InDelta(t, 460000.0, Heuristic(noZip, 2024), 1e-6)
}

type fakeModel struct {
	price float64
	err   error
	panic bool
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Predict([]float64) (float64, error) {
	if f.panic {
		panic("index out of range")
	}
	return f.price, f.err
}

func TestPredictor_Outcomes(t *testing.T) {
	prop := sampleProperty()
	heuristic := Heuristic(prop, 2024)

	tests := []struct {
		name        string
		handle      *model.Handle
		wantPrice   float64
		wantOutcome Outcome
		wantLog     string
	}{
		{name: "fallback handle", handle: model.FallbackHandle(), wantPrice: heuristic, wantOutcome: OutcomeHeuristic},
		{name: "model success", handle: model.NewHandle(&fakeModel{price: 412345}, "estimator", "x"), wantPrice: 412345, wantOutcome: OutcomeSuccess},
		{name: "model error", handle: model.NewHandle(&fakeModel{err: errors.New("shape mismatch")}, "estimator", "x"), wantPrice: heuristic, wantOutcome: OutcomeDegraded, wantLog: "shape mismatch"},
		{name: "model panic", handle: model.NewHandle(&fakeModel{panic: true}, "estimator", "x"), wantPrice: heuristic, wantOutcome: OutcomeDegraded, wantLog: "panicked"},
		{name: "nan", handle: model.NewHandle(&fakeModel{price: math.NaN()}, "estimator", "x"), wantPrice: heuristic, wantOutcome: OutcomeDegraded, wantLog: "non-finite"},
		{name: "inf", handle: model.NewHandle(&fakeModel{price: math.Inf(1)}, "estimator", "x"), wantPrice: heuristic, wantOutcome: OutcomeDegraded, wantLog: "non-finite"},
		{name: "negative", handle: model.NewHandle(&fakeModel{price: -1}, "estimator", "x"), wantPrice: heuristic, wantOutcome: OutcomeDegraded, wantLog: "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			lg := logging.NewTestLogger(&buf)
			p := NewPredictor(tt.handle, 2024)
			p.Logger = &lg

			price, outcome := p.Predict(prop)
			assert.Equal(t, tt.wantOutcome, outcome)
			assert.InDelta(t, tt.wantPrice, price, 1e-6)
			assert.False(t, math.IsNaN(price) || math.IsInf(price, 0))
			assert.GreaterOrEqual(t, price, 0.0)
			if tt.wantLog != "" {
				assert.Contains(t, buf.String(), tt.wantLog)
			}
		})
	}
}

func TestPredictor_DegradationIsPerCall(t *testing.T) {
	m := &fakeModel{err: errors.New("transient")}
	p := NewPredictor(model.NewHandle(m, "estimator", "x"), 2024)
	lg := logging.NewTestLogger(&bytes.Buffer{})
	p.Logger = &lg

	_, outcome := p.Predict(sampleProperty())
	require.Equal(t, OutcomeDegraded, outcome)

	m.err, m.price = nil, 300000
	price, outcome := p.Predict(sampleProperty())
	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Equal(t, 300000.0, price)
	assert.True(t, p.ModelLoaded())
}

func TestPredictor_CorruptedArtifactUsesHeuristic(t *testing.T) {
	var buf bytes.Buffer
	lg := logging.NewTestLogger(&buf)
	h := (&model.Loader{Logger: &lg}).Acquire(t.TempDir())

	p := NewPredictor(h, 2024)
	price, outcome := p.Predict(sampleProperty())
	assert.Equal(t, OutcomeHeuristic, outcome)
	assert.Equal(t, Heuristic(sampleProperty(), 2024), price)
	assert.False(t, p.ModelLoaded())
}

func TestFeatureVector(t *testing.T) {
	assert.Equal(t, []float64{3, 2, 2000, 2010, 60601, 5000}, FeatureVector(sampleProperty()))
	assert.Len(t, FeatureVector(core.Property{}), model.NumFeatures)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "degraded", OutcomeDegraded.String())
	assert.Equal(t, "heuristic", OutcomeHeuristic.String())
	assert.Equal(t, "model", OutcomeSuccess.Source())
	assert.Equal(t, "heuristic", OutcomeDegraded.Source())
}

type fakeBatchModel struct {
	fakeModel
	calls  int
	prices []float64
	err    error
}

func (f *fakeBatchModel) PredictBatch(_ context.Context, instances [][]float64) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.prices[:min(len(f.prices), len(instances))], nil
}

func TestPredictor_PredictAll(t *testing.T) {
	a, b, c := sampleProperty(), sampleProperty(), sampleProperty()
	b.ID, b.Bedrooms = "prop_2", 4
	c.ID, c.SquareFeet = "prop_3", 1200
	props := []core.Property{a, b, c}

	tests := []struct {
		name         string
		model        *fakeBatchModel
		wantOutcomes []Outcome
		wantLog      string
	}{
		{
			name:         "one batch call",
			model:        &fakeBatchModel{prices: []float64{400000, 500000, 300000}},
			wantOutcomes: []Outcome{OutcomeSuccess, OutcomeSuccess, OutcomeSuccess},
		},
		{
			name:         "batch error degrades the pass",
			model:        &fakeBatchModel{err: errors.New("deadline exceeded")},
			wantOutcomes: []Outcome{OutcomeDegraded, OutcomeDegraded, OutcomeDegraded},
			wantLog:      "batch failed",
		},
		{
			name:         "short response degrades the pass",
			model:        &fakeBatchModel{prices: []float64{400000}},
			wantOutcomes: []Outcome{OutcomeDegraded, OutcomeDegraded, OutcomeDegraded},
			wantLog:      "returned 1 prices for 3 properties",
		},
		{
			name:         "bad price degrades one property",
			model:        &fakeBatchModel{prices: []float64{400000, math.NaN(), 300000}},
			wantOutcomes: []Outcome{OutcomeSuccess, OutcomeDegraded, OutcomeSuccess},
			wantLog:      "non-finite",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			lg := logging.NewTestLogger(&buf)
			p := NewPredictor(model.NewHandle(tt.model, "rpc", "x"), 2024)
			p.Logger = &lg

			prices, outcomes := p.PredictAll(context.Background(), props)
			assert.Equal(t, 1, tt.model.calls)
			assert.Equal(t, tt.wantOutcomes, outcomes)
			for i, o := range outcomes {
				if o == OutcomeDegraded {
					assert.Equal(t, Heuristic(props[i], 2024), prices[i])
				} else {
					assert.Equal(t, tt.model.prices[i], prices[i])
				}
			}
			if tt.wantLog != "" {
				assert.Contains(t, buf.String(), tt.wantLog)
			}
		})
	}
}

func TestPredictor_PredictAllWithoutBatch(t *testing.T) {
	props := []core.Property{sampleProperty(), sampleProperty()}

	prices, outcomes := NewPredictor(model.NewHandle(&fakeModel{price: 333000}, "estimator", "x"), 2024).PredictAll(context.Background(), props)
	assert.Equal(t, []float64{333000, 333000}, prices)
	assert.Equal(t, []Outcome{OutcomeSuccess, OutcomeSuccess}, outcomes)

	prices, outcomes = NewPredictor(model.FallbackHandle(), 2024).PredictAll(context.Background(), props)
	assert.Equal(t, []Outcome{OutcomeHeuristic, OutcomeHeuristic}, outcomes)
	assert.Equal(t, Heuristic(props[0], 2024), prices[0])
}
