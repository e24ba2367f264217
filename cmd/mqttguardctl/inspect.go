package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mqttguard/internal/model/forest"
)

var (
	inspectModel  string
	inspectStrict bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Validate a model artifact and print its summary",
	Long: `Load a random forest artifact (.json or .json.gz), validate its structure
and print a JSON summary.

Examples:
  mqttguardctl inspect --model models/random_forest.json
  mqttguardctl inspect --model rf.json.gz --strict`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectModel, "model", "", "Path to the model artifact")
	inspectCmd.Flags().BoolVar(&inspectStrict, "strict", true, "Also require the artifact to match the feature schema")
	_ = inspectCmd.MarkFlagRequired("model")
}

func runInspect(cmd *cobra.Command, _ []string) error {
	f, err := forest.Load(inspectModel)
	if err != nil {
		return err
	}
	if inspectStrict {
		if err := f.CheckSchema(); err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(f.Summary(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
