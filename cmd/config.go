package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/reviewlens/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set reviewlens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		if cfg.KeywordsFile != "" {
			fmt.Fprintf(out, "keywords_file: %s\n", cfg.KeywordsFile)
		}
		fmt.Fprintf(out, "charts: %t\n", cfg.Charts)
		fmt.Fprintf(out, "json_export: %t\n", cfg.JSONExport)
		fmt.Fprintf(out, "xlsx_export: %t\n", cfg.XLSXExport)
		fmt.Fprintf(out, "top_n: %d\n", cfg.TopN)
		if cfg.MaxRows > 0 {
			fmt.Fprintf(out, "max_rows: %d\n", cfg.MaxRows)
		}
		fmt.Fprintf(out, "concentration_threshold: %.3f\n", cfg.ConcentrationThreshold)
		fmt.Fprintf(out, "burst_growth_threshold: %.3f\n", cfg.BurstGrowthThreshold)
		fmt.Fprintf(out, "missing_rate_threshold: %.3f\n", cfg.MissingRateThreshold)
		fmt.Fprintf(out, "good_rating_floor: %.1f\n", cfg.GoodRatingFloor)
		fmt.Fprintf(out, "bad_rating_ceiling: %.1f\n", cfg.BadRatingCeiling)
		fmt.Fprintf(out, "polarization_threshold: %.3f\n", cfg.PolarizationThreshold)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "output_dir":
			cfg.OutputDir = val
		case "log_level":
			switch lv := strings.ToLower(val); lv {
			case "debug", "info", "warn", "warning", "error":
				cfg.LogLevel = lv
			default:
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
		case "log_format":
			switch strings.ToLower(val) {
			case "text", "json":
				cfg.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		case "keywords_file":
			cfg.KeywordsFile = val
		case "charts", "json_export", "xlsx_export":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for %s: %v", key, val)
			}
			switch key {
			case "charts":
				cfg.Charts = b
			case "json_export":
				cfg.JSONExport = b
			default:
				cfg.XLSXExport = b
			}
		case "top_n", "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			if key == "top_n" {
				cfg.TopN = i
			} else {
				cfg.MaxRows = i
			}
		case "concentration_threshold", "missing_rate_threshold", "polarization_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 || f > 1 {
				return fmt.Errorf("invalid share for %s: %v (use 0..1)", key, val)
			}
			switch key {
			case "concentration_threshold":
				cfg.ConcentrationThreshold = f
			case "missing_rate_threshold":
				cfg.MissingRateThreshold = f
			default:
				cfg.PolarizationThreshold = f
			}
		case "burst_growth_threshold", "good_rating_floor", "bad_rating_ceiling":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for %s: %v", key, val)
			}
			switch key {
			case "burst_growth_threshold":
				cfg.BurstGrowthThreshold = f
			case "good_rating_floor":
				cfg.GoodRatingFloor = f
			default:
				cfg.BadRatingCeiling = f
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
