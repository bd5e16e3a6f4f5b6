package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/rushteam/homerec/service"
)

var recommendFlags struct {
	budget        float64
	location      string
	minBedrooms   int
	minBathrooms  int
	minSquareFeet int
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Print recommendations for the given preferences as JSON",
	Example: `  homerec recommend --budget 650000 --location Seattle --min-bedrooms 3
  HOMEREC_FEED_SOURCE=sqlite HOMEREC_FEED_SQLITE_PATH=listings.db homerec recommend`,
	RunE: runRecommend,
}

func init() {
	f := recommendCmd.Flags()
	f.Float64Var(&recommendFlags.budget, "budget", 0, "maximum budget in dollars")
	f.StringVar(&recommendFlags.location, "location", "", "city or state (case-insensitive)")
	f.IntVar(&recommendFlags.minBedrooms, "min-bedrooms", 0, "minimum bedrooms")
	f.IntVar(&recommendFlags.minBathrooms, "min-bathrooms", 0, "minimum bathrooms")
	f.IntVar(&recommendFlags.minSquareFeet, "min-square-feet", 0, "minimum square feet")
	rootCmd.AddCommand(recommendCmd)
}

// preferencesFromFlags 只采用显式给出的 flag，其余字段使用默认偏好。
func preferencesFromFlags(cmd *cobra.Command) service.PreferencesInput {
	var in service.PreferencesInput
	flags := cmd.Flags()
	if flags.Changed("budget") {
		in.Budget = &recommendFlags.budget
	}
	if flags.Changed("location") {
		in.Location = &recommendFlags.location
	}
	if flags.Changed("min-bedrooms") {
		in.MinBedrooms = &recommendFlags.minBedrooms
	}
	if flags.Changed("min-bathrooms") {
		in.MinBathrooms = &recommendFlags.minBathrooms
	}
	if flags.Changed("min-square-feet") {
		in.MinSquareFeet = &recommendFlags.minSquareFeet
	}
	return in
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	prefs, err := preferencesFromFlags(cmd).Resolve()
	if err != nil {
		return err
	}

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	props, err := a.feed.Properties(cmd.Context())
	if err != nil {
		return err
	}
	result, err := a.ranker.Recommend(cmd.Context(), props, prefs)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
