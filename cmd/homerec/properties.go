package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/homerec/feed"
)

var importPath string

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "Print the property catalog as JSON",
	RunE:  runProperties,
}

// importCmd 把 JSON/YAML 文件或 mock 目录写入配置的 sqlite / redis Feed。
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a catalog file (or the mock catalog) into the configured sqlite or redis feed",
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importPath, "from", "", "JSON or YAML catalog file (default: mock catalog)")
	propertiesCmd.AddCommand(importCmd)
	rootCmd.AddCommand(propertiesCmd)
}

func runProperties(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	props, err := a.feed.Properties(cmd.Context())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(props)
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var src feed.Feed = feed.NewMockFeed(a.cfg.Feed.Count, a.cfg.Feed.Seed)
	if importPath != "" {
		src = &feed.FileFeed{Path: importPath}
	}
	props, err := src.Properties(ctx)
	if err != nil {
		return err
	}

	target := importTarget(a.feed)
	switch dst := target.(type) {
	case *feed.SQLiteFeed:
		err = dst.UpsertMany(ctx, props)
	case *feed.StoreFeed:
		err = dst.Publish(ctx, props)
	default:
		return fmt.Errorf("feed %s does not accept imports", a.feed.Name())
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d properties into %s\n", len(props), target.Name())
	return nil
}

// importTarget 返回第一个可写入的 Feed；多来源时按 feed.source 的顺序查找。
func importTarget(f feed.Feed) feed.Feed {
	m, ok := f.(*feed.Multi)
	if !ok {
		return f
	}
	for _, sub := range m.Feeds {
		switch sub.(type) {
		case *feed.SQLiteFeed, *feed.StoreFeed:
			return sub
		}
	}
	return f
}
