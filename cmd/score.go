package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/survey-cli/internal/score"
)

var scoreCmd = &cobra.Command{
	Use:   "score <run-id> <file-key>",
	Short: "Score a run's extracted questions against stored ground truth",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "score")
		}
		if run.Result == nil || len(run.Result.Questions) == 0 {
			return eris.Errorf("score: run %s has no extracted questions", args[0])
		}

		truth, err := st.GetGroundTruth(ctx, args[1])
		if err != nil {
			return eris.Wrap(err, "score")
		}

		threshold, _ := cmd.Flags().GetFloat64("threshold")
		report := score.Compare(run.Result.Questions, truth, threshold)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Printf("Run %s vs ground truth %q\n\n", truncateID(run.ID), args[1])
		fmt.Printf("  Extracted:  %d\n", len(run.Result.Questions))
		fmt.Printf("  Expected:   %d\n", len(truth))
		fmt.Printf("  Matched:    %d\n", len(report.Matches))
		fmt.Printf("  Missed:     %d\n", len(report.Missed))
		fmt.Printf("  Spurious:   %d\n\n", len(report.Spurious))
		fmt.Printf("  Precision:  %.3f\n", report.Precision)
		fmt.Printf("  Recall:     %.3f\n", report.Recall)
		fmt.Printf("  F1:         %.3f\n", report.F1)

		if len(report.Missed) > 0 {
			fmt.Println("\nMissed questions:")
			for _, m := range report.Missed {
				fmt.Printf("  - %s\n", m.Text)
			}
		}

		return nil
	},
}

func init() {
	scoreCmd.Flags().Float64("threshold", score.DefaultThreshold, "similarity threshold for a match")
	scoreCmd.Flags().Bool("json", false, "emit the full report as JSON")
	rootCmd.AddCommand(scoreCmd)
}
