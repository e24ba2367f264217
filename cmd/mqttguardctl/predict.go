package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mqttguard/internal/model/forest"
	predictuc "github.com/kailas-cloud/mqttguard/internal/usecase/predict"
)

var (
	predictModel  string
	predictRecord string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Classify a single header record",
	Long: `Run one prediction locally. The record is a JSON object with all 24
features, read from a file or from stdin when --record is "-".

Examples:
  mqttguardctl predict --model models/random_forest.json --record packet.json
  cat packet.json | mqttguardctl predict --model models/random_forest.json --record -`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictModel, "model", "", "Path to the model artifact")
	predictCmd.Flags().StringVar(&predictRecord, "record", "-", "Path to the JSON record, or - for stdin")
	_ = predictCmd.MarkFlagRequired("model")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	f, err := forest.Load(predictModel)
	if err != nil {
		return err
	}
	if err := f.CheckSchema(); err != nil {
		return err
	}

	body, err := readRecord(cmd, predictRecord)
	if err != nil {
		return err
	}

	res, err := predictuc.New(f).Predict(cmd.Context(), body)
	if err != nil {
		return err
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]int{"random_forest": res.Label})
}

func readRecord(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		body, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return body, nil
	}
	body, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	return body, nil
}
