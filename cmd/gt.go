package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/survey-cli/internal/model"
)

var gtCmd = &cobra.Command{
	Use:   "gt",
	Short: "Manage ground-truth question sets",
	Long:  "Import and export expected question lists used for scoring extraction accuracy.",
}

// gtFile is the YAML document shape for ground-truth files.
type gtFile struct {
	FileKey   string                   `yaml:"file_key"`
	Questions []model.GroundTruthEntry `yaml:"questions"`
}

// -- gt import --

var gtImportCmd = &cobra.Command{
	Use:   "import <ground-truth.yaml>",
	Short: "Import a ground-truth YAML file into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "gt import: read file")
		}

		var doc gtFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return eris.Wrap(err, "gt import: parse yaml")
		}

		if doc.FileKey == "" {
			doc.FileKey = fileKeyFromPath(args[0])
		}
		if len(doc.Questions) == 0 {
			return eris.New("gt import: no questions in file")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.SaveGroundTruth(ctx, doc.FileKey, doc.Questions); err != nil {
			return eris.Wrap(err, "gt import")
		}

		zap.L().Info("ground truth imported",
			zap.String("file_key", doc.FileKey),
			zap.Int("questions", len(doc.Questions)),
		)
		fmt.Fprintf(os.Stderr, "Imported %d questions for %q\n", len(doc.Questions), doc.FileKey)
		return nil
	},
}

// -- gt export --

var gtExportCmd = &cobra.Command{
	Use:   "export <file-key>",
	Short: "Export a stored ground-truth set as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		entries, err := st.GetGroundTruth(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "gt export")
		}

		out, err := yaml.Marshal(gtFile{FileKey: args[0], Questions: entries})
		if err != nil {
			return eris.Wrap(err, "gt export: marshal yaml")
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			_, err = os.Stdout.Write(out)
			return err
		}
		return os.WriteFile(output, out, 0o644)
	},
}

func init() {
	gtExportCmd.Flags().String("output", "", "write YAML to file instead of stdout")

	gtCmd.AddCommand(gtImportCmd)
	gtCmd.AddCommand(gtExportCmd)
	rootCmd.AddCommand(gtCmd)
}

// fileKeyFromPath derives a ground-truth key from a file path: the base
// name without extension.
func fileKeyFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
