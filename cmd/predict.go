package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/trafficd/config"
	"github.com/kilianp07/trafficd/core/inference"
	"github.com/kilianp07/trafficd/core/schema"
	"github.com/kilianp07/trafficd/infra/logger"
	"github.com/kilianp07/trafficd/infra/model"
)

var inputPath string

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run a single prediction from a JSON feature file",
	RunE:  predictOnce,
}

func init() {
	predictCmd.Flags().StringVarP(&inputPath, "input", "i", "", "JSON file with feature values (defaults apply when omitted)")
	rootCmd.AddCommand(predictCmd)
}

func predictOnce(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pred, err := model.Load(cfg.Model.Path)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	raw := map[string]any{}
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parse input: %w", err)
		}
	}
	rec, err := schema.Validate(raw)
	if err != nil {
		return err
	}

	eng := inference.NewEngine(pred, logger.New("predict-command"))
	res, err := eng.Predict(rec)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
