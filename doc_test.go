package homerec

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRanker_MissingModel(t *testing.T) {
	r := NewRanker(filepath.Join(t.TempDir(), "price_model.pkl"), 2024)

	props := []Property{
		{ID: "a", City: "Austin", State: "TX", Bedrooms: 3, Bathrooms: 2, SquareFeet: 1600, YearBuilt: 2015, SchoolRating: 7, CommuteTime: 12},
		{ID: "b", City: "Austin", State: "TX", Bedrooms: 1, Bathrooms: 1, SquareFeet: 700, YearBuilt: 1960, SchoolRating: 5, CommuteTime: 40},
	}
	res, err := r.Recommend(context.Background(), props, Preferences{Budget: 450000, MinBedrooms: 2, MinSquareFeet: 1000})
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, "a", res.Recommendations[0].ID)
	assert.False(t, res.ModelUsed)
}
