package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mqttguard/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "mqttguardctl",
	Short: "mqttguardctl - offline tooling for the mqttguard classifier",
	Long: `mqttguardctl inspects random forest artifacts and runs predictions
locally, using the same feature schema and validation as the HTTP service.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("mqttguardctl version " + version.String() + "\n")
	rootCmd.AddCommand(featuresCmd, inspectCmd, predictCmd)
}
