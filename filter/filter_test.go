package filter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/store"
)

func catalog() []*core.Item {
	props := []core.Property{
		{ID: "a", City: "Seattle", State: "WA", Bathrooms: 2, SquareFeet: 1800, YearBuilt: 2001, HasGarage: true},
		{ID: "b", City: "Miami", State: "FL", Bathrooms: 1, SquareFeet: 900, YearBuilt: 1955},
		{ID: "c", City: "Atlanta", State: "GA", Bathrooms: 0, SquareFeet: 2400, YearBuilt: 2015},
		{ID: "d", City: "seattle", State: "WA", Bathrooms: 3, SquareFeet: 3000, YearBuilt: 1952},
	}
	items := make([]*core.Item, len(props))
	for i, p := range props {
		items[i] = core.NewItem(i, p)
	}
	return items
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Property.ID)
	}
	return out
}

func TestFilterNode_Preferences(t *testing.T) {
	tests := []struct {
		name  string
		prefs core.Preferences
		want  []string
	}{
		{name: "defaults", prefs: core.DefaultPreferences(), want: []string{"a", "d"}},
		{name: "no constraints", prefs: core.Preferences{Budget: 1}, want: []string{"a", "b", "c", "d"}},
		{name: "location by city", prefs: core.Preferences{Budget: 1, Location: "SEATTLE"}, want: []string{"a", "d"}},
		{name: "location by state", prefs: core.Preferences{Budget: 1, Location: " fl "}, want: []string{"b"}},
		{name: "location unknown", prefs: core.Preferences{Budget: 1, Location: "Boston"}, want: []string{}},
		{name: "min bathrooms", prefs: core.Preferences{Budget: 1, MinBathrooms: 2}, want: []string{"a", "d"}},
		{name: "min square feet", prefs: core.Preferences{Budget: 1, MinSquareFeet: 2400}, want: []string{"c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &FilterNode{Filters: PreferenceFilters()}
			out, err := node.Process(context.Background(), core.NewRecommendContext(tt.prefs), catalog())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(out))
		})
	}
}

func TestFilterNode_LabelsFiltered(t *testing.T) {
	items := catalog()
	node := &FilterNode{Filters: PreferenceFilters()}
	_, err := node.Process(context.Background(), core.NewRecommendContext(core.DefaultPreferences()), items)
	require.NoError(t, err)
	assert.Equal(t, "filter.bathrooms", items[1].Labels["filtered"].Value)
	assert.Equal(t, "filter.bathrooms", items[2].Labels["filtered"].Value)
	_, filtered := items[0].Labels["filtered"]
	assert.False(t, filtered)
}

func TestExprFilter(t *testing.T) {
	f, err := NewExprFilter(`property.year_built < 1960 && !property.has_garage`)
	require.NoError(t, err)

	node := &FilterNode{Filters: []Filter{f}}
	out, err := node.Process(context.Background(), core.NewRecommendContext(core.DefaultPreferences()), catalog())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, ids(out))

	_, err = NewExprFilter(`property.year_built <`)
	assert.Error(t, err)
}

func TestExprFilter_EvalErrorKeepsProperty(t *testing.T) {
	f, err := NewExprFilter(`label.missing == "x"`)
	require.NoError(t, err)

	var buf bytes.Buffer
	lg := logging.NewTestLogger(&buf)
	node := &FilterNode{Filters: []Filter{f}, Logger: &lg}
	out, err := node.Process(context.Background(), core.NewRecommendContext(core.DefaultPreferences()), catalog())
	require.NoError(t, err)
	assert.Len(t, out, 4)
	assert.Contains(t, buf.String(), "filter failed")
}

func TestBlacklistFilter(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	require.NoError(t, s.Set(ctx, "homerec:delisted", []byte(`["c"]`)))

	f := NewBlacklistFilter([]string{"a"}, NewStoreAdapter(s), "homerec:delisted")
	out, err := (&FilterNode{Filters: []Filter{f}}).Process(ctx, core.NewRecommendContext(core.DefaultPreferences()), catalog())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d"}, ids(out))

	missing := NewBlacklistFilter(nil, NewStoreAdapter(s), "homerec:absent")
	bound, err := missing.Prepare(ctx, nil)
	require.NoError(t, err)
	filtered, err := bound.ShouldFilter(ctx, nil, catalog()[0])
	require.NoError(t, err)
	assert.False(t, filtered)
}

type countingStore struct {
	calls int
	ids   []string
	err   error
}

func (c *countingStore) GetBlacklist(context.Context, string) ([]string, error) {
	c.calls++
	return c.ids, c.err
}

func TestBlacklistFilter_PreparedOncePerRequest(t *testing.T) {
	tests := []struct {
		name    string
		store   *countingStore
		want    []string
		warning bool
	}{
		{name: "store list", store: &countingStore{ids: []string{"d"}}, want: []string{"b", "c"}},
		{name: "store down keeps static ids", store: &countingStore{err: errors.New("connection refused")}, want: []string{"b", "c", "d"}, warning: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			lg := logging.NewTestLogger(&buf)
			f := &BlacklistFilter{PropertyIDs: []string{"a"}, Store: tt.store, Key: "homerec:delisted"}
			node := &FilterNode{Filters: []Filter{f}, Logger: &lg}

			out, err := node.Process(context.Background(), core.NewRecommendContext(core.DefaultPreferences()), catalog())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(out))
			assert.Equal(t, 1, tt.store.calls)
			assert.Equal(t, tt.warning, strings.Contains(buf.String(), "filter prepare failed"))
		})
	}
}

func TestStoreAdapter_BadJSON(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	require.NoError(t, s.Set(ctx, "homerec:delisted", []byte(`{"not":"a list"}`)))

	_, err := NewStoreAdapter(s).GetBlacklist(ctx, "homerec:delisted")
	assert.ErrorContains(t, err, "decode blacklist homerec:delisted")
}
