package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandIn_FindPredictor(t *testing.T) {
	tests := []struct {
		name      string
		state     map[string]any
		wantModel string
		wantPrice float64
	}{
		{
			name:      "coefficients at top level",
			state:     map[string]any{"coef": []any{1.0, 1.0, 1.0, 0.0, 0.0, 0.0}, "bias": 10.0},
			wantModel: "linear_regression",
			wantPrice: 10 + 3 + 2 + 2000,
		},
		{
			name: "named weights under _estimator",
			state: map[string]any{
				"_estimator": map[string]any{
					"intercept_": 1000.0,
					"weights":    map[string]any{"bathrooms": 500.0},
				},
			},
			wantModel: "linear",
			wantPrice: 2000,
		},
		{
			name: "estimator envelope nested under an arbitrary key",
			state: map[string]any{
				"meta": map[string]any{"trained": "2023"},
				"pipeline": map[string]any{
					"estimator": "linear_regression",
					"coef":      []any{0.0, 0.0, 0.0, 0.0, 0.0, 1.0},
					"intercept": 0.0,
				},
			},
			wantModel: "linear_regression",
			wantPrice: 5000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStandIn("ComplexTrapModelRenamed", tt.state)
			require.True(t, s.CanPredict())
			assert.Contains(t, s.Name(), tt.wantModel)

			price, err := s.Predict(sampleFeatures)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantPrice, price, 1e-6)
		})
	}
}

func TestStandIn_NoPredictor(t *testing.T) {
	s := NewStandIn("ComplexTrapModelRenamed", map[string]any{
		"coef":  []any{1.0, "two"},
		"notes": "retrained weekly",
	})
	assert.False(t, s.CanPredict())

	_, err := s.Predict(sampleFeatures)
	assert.ErrorIs(t, err, ErrNoUnderlyingModel)
	assert.Equal(t, "StandIn{class=ComplexTrapModelRenamed, predictor=false}", s.String())
}

func TestStandIn_DepthLimit(t *testing.T) {
	state := map[string]any{"coef": []any{1.0, 1.0, 1.0, 1.0, 1.0, 1.0}}
	for i := 0; i < maxStandInDepth+2; i++ {
		state = map[string]any{"model": state}
	}
	assert.False(t, NewStandIn("Deep", state).CanPredict())
}
