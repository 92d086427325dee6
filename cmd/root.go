package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/survey-cli/internal/config"
	"github.com/sells-group/survey-cli/internal/store"
	"github.com/sells-group/survey-cli/pkg/anthropic"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "survey-cli",
	Short: "Survey question extraction pipeline",
	Long:  "Extracts structured survey questions from spreadsheet files via a multi-stage Claude pipeline, resolves cross-question dependencies, and scores results against ground truth.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens and migrates the run database.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// newAnthropicClient builds the SDK-backed client from config.
func newAnthropicClient() anthropic.Client {
	return anthropic.NewClient(
		cfg.Anthropic.Key,
		cfg.Anthropic.MaxRetries,
		time.Duration(cfg.Anthropic.TimeoutSecs)*time.Second,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
