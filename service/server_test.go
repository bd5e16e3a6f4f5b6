package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/feed"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/model"
	"github.com/rushteam/homerec/pricing"
	"github.com/rushteam/homerec/rank"
	"github.com/rushteam/homerec/scoring"
)

type brokenFeed struct{}

func (brokenFeed) Name() string { return "broken" }
func (brokenFeed) Properties(context.Context) ([]core.Property, error) {
	return nil, core.WrapDomainError(core.ModuleFeed, core.ErrorCodeUnavailable, "feed broken unavailable", errors.New("dial tcp: refused"))
}

func newTestServer(t *testing.T, f feed.Feed) (*Server, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	lg := logging.NewTestLogger(&buf)
	r := rank.NewRanker(pricing.NewPredictor(model.FallbackHandle(), 2024), scoring.NewScorer(2024))
	s := NewServer(r, f)
	s.Logger = &lg
	return s, &buf
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, feed.NewMockFeed(5, 1))
	rec := do(t, s.Routes(), http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","model_loaded":false}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRecommend(t *testing.T) {
	s, logs := newTestServer(t, feed.NewMockFeed(0, 42))
	rec := do(t, s.Routes(), http.MethodPost, "/api/recommend", `{"preferences":{"budget":600000,"min_bedrooms":2}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success         bool                  `json:"success"`
		Recommendations []core.ScoredProperty `json:"recommendations"`
		Total           int                   `json:"total_properties_evaluated"`
		ModelUsed       bool                  `json:"model_used"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, feed.DefaultMockCount, resp.Total)
	assert.False(t, resp.ModelUsed)
	assert.LessOrEqual(t, len(resp.Recommendations), 3)
	for _, r := range resp.Recommendations {
		assert.Equal(t, "heuristic", r.PriceSource)
		assert.NotEmpty(t, r.Reasoning)
		assert.GreaterOrEqual(t, r.Bathrooms, core.DefaultMinBathrooms)
		assert.GreaterOrEqual(t, r.SquareFeet, core.DefaultMinSquareFeet)
	}
	assert.Contains(t, logs.String(), `"endpoint":"/api/recommend"`)
}

func TestRecommend_RequestIDPropagates(t *testing.T) {
	s, _ := newTestServer(t, feed.NewMockFeed(3, 1))
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(`{"preferences":{}}`))
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestRecommend_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "No data provided"},
		{"malformed", `{"preferences":`, "malformed request body"},
		{"zero budget", `{"preferences":{"budget":0}}`, "budget must be greater than 0"},
		{"negative bedrooms", `{"preferences":{"min_bedrooms":-1}}`, "min_bedrooms must be at least 0"},
		{"wrong type", `{"preferences":{"budget":"lots"}}`, "malformed request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, feed.NewMockFeed(3, 1))
			rec := do(t, s.Routes(), http.MethodPost, "/api/recommend", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, core.ErrorCodeInvalidInput, resp.Code)
			assert.Contains(t, resp.Error, tt.want)
		})
	}
}

func TestRecommend_FeedUnavailable(t *testing.T) {
	s, logs := newTestServer(t, brokenFeed{})
	rec := do(t, s.Routes(), http.MethodPost, "/api/recommend", `{"preferences":{}}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), core.ErrorCodeUnavailable)
	assert.Contains(t, logs.String(), "request failed")
}

func TestProperties(t *testing.T) {
	s, _ := newTestServer(t, feed.NewMockFeed(4, 7))
	rec := do(t, s.Routes(), http.MethodGet, "/api/properties", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp propertiesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 4, resp.Count)
	assert.Len(t, resp.Properties, 4)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, feed.NewMockFeed(2, 1))
	h := s.Routes()
	do(t, h, http.MethodGet, "/api/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "homerec_api_requests_total")
}

func TestPreferencesInput_Resolve(t *testing.T) {
	budget, loc, beds := 750000.0, "  Miami ", 0
	prefs, err := PreferencesInput{Budget: &budget, Location: &loc, MinBedrooms: &beds}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, core.Preferences{
		Budget:        750000,
		Location:      "Miami",
		MinBedrooms:   0,
		MinBathrooms:  core.DefaultMinBathrooms,
		MinSquareFeet: core.DefaultMinSquareFeet,
	}, prefs)

	prefs, err = PreferencesInput{}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, core.DefaultPreferences(), prefs)
}
