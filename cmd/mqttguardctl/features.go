package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mqttguard/internal/domain/feature"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Print the canonical feature order",
	Long: `Print the 24 packet-header features in the column order the model
expects, with their kinds. Training pipelines must emit columns in this order.`,
	Args: cobra.NoArgs,
	RunE: runFeatures,
}

func runFeatures(cmd *cobra.Command, _ []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "# schema %s\n", feature.SchemaVersion)
	for i, f := range feature.Fields() {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", i, f.Name(), f.Kind())
	}
	return tw.Flush()
}
