package cmd

import (
	"fmt"

	"github.com/KaramelBytes/reviewlens/internal/run"
	"github.com/spf13/cobra"
)

var listRoot string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List analysis runs under the output root",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := listRoot
		if root == "" {
			root = cfg.OutputDir
		}
		runs, err := run.List(root)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		for _, m := range runs {
			fmt.Fprintf(out, "- %s  %s  %s (%d rows, %d findings, %d artifacts)\n",
				m.StartedAt.Local().Format("2006-01-02 15:04"), shortID(m.ID), m.Input, m.Rows, m.Findings, len(m.Artifacts))
			if len(m.Warnings) > 0 {
				fmt.Fprintf(out, "    %d warning(s), see %s\n", len(m.Warnings), m.Dir())
			}
		}
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listRoot, "output-root", "", "directory holding run directories, e.g. a batch root (default: config output_dir)")
}
