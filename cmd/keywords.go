package cmd

import (
	"fmt"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	kwFile string
	kwYAML bool
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Print the effective positive and negative keyword dictionaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := kwFile
		if path == "" {
			path = cfg.KeywordsFile
		}
		d := analysis.DefaultDictionaries()
		if path != "" {
			var err error
			if d, err = analysis.LoadDictionaries(path); err != nil {
				return err
			}
		}
		out := cmd.OutOrStdout()
		if kwYAML {
			// Output is a valid --keywords file.
			b, err := yaml.Marshal(d)
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			_, err = out.Write(b)
			return err
		}
		source := "built-in"
		if path != "" {
			source = path
		}
		fmt.Fprintf(out, "Keyword dictionaries (%s)\n", source)
		fmt.Fprintf(out, "\nPositive (%d):\n", len(d.Positive))
		for _, kw := range d.Positive {
			fmt.Fprintf(out, "  - %s: %s\n", kw.Term, kw.Description)
		}
		fmt.Fprintf(out, "\nNegative (%d):\n", len(d.Negative))
		for _, kw := range d.Negative {
			fmt.Fprintf(out, "  - %s: %s\n", kw.Term, kw.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keywordsCmd)
	keywordsCmd.Flags().StringVar(&kwFile, "keywords", "", "YAML dictionary file (default: config keywords_file)")
	keywordsCmd.Flags().BoolVar(&kwYAML, "yaml", false, "print as YAML usable with --keywords")
}
