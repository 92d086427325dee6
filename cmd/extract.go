package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/survey-cli/internal/pipeline"
)

var (
	extractRunID  string
	extractOutput string
	extractModel  string
	extractNoDB   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract survey questions from a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		filePath := args[0]

		if err := cfg.Validate("extract"); err != nil {
			return err
		}

		runID := extractRunID
		if runID == "" {
			runID = uuid.New().String()
		}

		if extractModel != "" {
			cfg.Anthropic.SonnetModel = extractModel
		}

		var p *pipeline.Pipeline
		if extractNoDB {
			p = pipeline.New(cfg, nil, newAnthropicClient())
		} else {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			p = pipeline.New(cfg, st, newAnthropicClient())
		}

		result, err := p.Run(ctx, filePath, runID)
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		if !result.Success {
			zap.L().Error("extraction failed",
				zap.String("file", filePath),
				zap.String("error", result.Error),
			)
		}

		out := os.Stdout
		if extractOutput != "" {
			f, err := os.Create(extractOutput)
			if err != nil {
				return eris.Wrap(err, "extract: create output file")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return eris.Wrap(err, "extract: encode result")
		}

		fmt.Fprintf(os.Stderr, "run %s: %d questions, %d LLM calls\n",
			result.RunID, len(result.Questions), result.Metrics.LLMCalls)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractRunID, "run-id", "", "run identifier (default: generated)")
	extractCmd.Flags().StringVar(&extractOutput, "output", "", "write result JSON to file instead of stdout")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "override the extraction model")
	extractCmd.Flags().BoolVar(&extractNoDB, "no-db", false, "skip run persistence")
	rootCmd.AddCommand(extractCmd)
}
