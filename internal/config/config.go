package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const dirName = ".reviewlens"

// Global configuration structure.
type Global struct {
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format"`
	KeywordsFile string `mapstructure:"keywords_file" yaml:"keywords_file"`

	// Outputs
	Charts     bool `mapstructure:"charts" yaml:"charts"`
	JSONExport bool `mapstructure:"json_export" yaml:"json_export"`
	XLSXExport bool `mapstructure:"xlsx_export" yaml:"xlsx_export"`
	TopN       int  `mapstructure:"top_n" yaml:"top_n"`

	// Loading
	MaxRows int `mapstructure:"max_rows" yaml:"max_rows"`

	// Thresholds
	ConcentrationThreshold float64 `mapstructure:"concentration_threshold" yaml:"concentration_threshold"`
	BurstGrowthThreshold   float64 `mapstructure:"burst_growth_threshold" yaml:"burst_growth_threshold"`
	MissingRateThreshold   float64 `mapstructure:"missing_rate_threshold" yaml:"missing_rate_threshold"`
	GoodRatingFloor        float64 `mapstructure:"good_rating_floor" yaml:"good_rating_floor"`
	BadRatingCeiling       float64 `mapstructure:"bad_rating_ceiling" yaml:"bad_rating_ceiling"`
	PolarizationThreshold  float64 `mapstructure:"polarization_threshold" yaml:"polarization_threshold"`
}

// Dir returns ~/.reviewlens.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.reviewlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Defaults returns the built-in configuration used before the file and env
// are applied. OutputDir is ~/.reviewlens/runs, or .reviewlens/runs relative
// to the working directory when the home directory cannot be resolved.
func Defaults() Global {
	out := filepath.Join(dirName, "runs")
	if dir, err := Dir(); err == nil {
		out = filepath.Join(dir, "runs")
	}
	return Global{
		OutputDir:              out,
		LogLevel:               "info",
		LogFormat:              "text",
		Charts:                 true,
		JSONExport:             true,
		TopN:                   10,
		ConcentrationThreshold: 0.70,
		BurstGrowthThreshold:   2.0,
		MissingRateThreshold:   0.30,
		GoodRatingFloor:        4.0,
		BadRatingCeiling:       2.0,
		PolarizationThreshold:  0.60,
	}
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("REVIEWLENS")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("output_dir", "")
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("keywords_file", d.KeywordsFile)
	v.SetDefault("charts", d.Charts)
	v.SetDefault("json_export", d.JSONExport)
	v.SetDefault("xlsx_export", d.XLSXExport)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("concentration_threshold", d.ConcentrationThreshold)
	v.SetDefault("burst_growth_threshold", d.BurstGrowthThreshold)
	v.SetDefault("missing_rate_threshold", d.MissingRateThreshold)
	v.SetDefault("good_rating_floor", d.GoodRatingFloor)
	v.SetDefault("bad_rating_ceiling", d.BadRatingCeiling)
	v.SetDefault("polarization_threshold", d.PolarizationThreshold)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	return &c, nil
}
