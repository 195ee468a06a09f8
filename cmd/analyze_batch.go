package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/KaramelBytes/reviewlens/internal/loader"
	"github.com/KaramelBytes/reviewlens/internal/utils"
	"github.com/spf13/cobra"
)

var (
	abFlags analyzeFlags
	abQuiet bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files, one run directory per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		s, err := abFlags.settings(cmd)
		if err != nil {
			return err
		}
		root := abFlags.outputDir
		if root == "" {
			root, err = uniqueDir(cfg.OutputDir, "batch-"+time.Now().Format("20060102-150405"))
			if err != nil {
				return err
			}
		}
		if err := utils.EnsureDir(root); err != nil {
			return fmt.Errorf("create output root: %w", err)
		}

		out := cmd.OutOrStdout()
		total := len(files)
		var failed []string
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			name := utils.SafeName(path)
			dir, err := uniqueDir(root, name)
			if err != nil {
				return err
			}
			if filepath.Base(dir) != name && !abQuiet {
				fmt.Fprintf(out, "⚠ Detected existing run for %s, writing to %s to avoid overwrite.\n", name, filepath.Base(dir))
			}
			m, err := runAnalysis(path, dir, s)
			if err != nil {
				// one bad file does not stop the batch
				log().WithError(err).WithField("input", path).Error("analysis failed")
				fmt.Fprintf(out, "✗ %s: %v\n", path, err)
				failed = append(failed, path)
				continue
			}
			if !abQuiet {
				printRun(out, m)
			}
		}
		fmt.Fprintf(out, "✓ Analyzed %d/%d files into %s\n", total-len(failed), total, root)
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d files failed", len(failed), total)
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, drops duplicates and files no
// loader can read, and returns them sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok || !loader.Supported(m) {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abFlags.register(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abFlags.outputDir, "output-dir", "o", "", "root directory for the per-file runs (default: <output_dir>/batch-<timestamp>)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
