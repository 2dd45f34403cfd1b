package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	Format    string `mapstructure:"format"`
}

func (config ExportConfig) validate() error {

	if config.OutputDir == "" {
		return fmt.Errorf("missing variable: output_dir")
	}

	switch config.Format {
	case "csv", "json", "both":
		return nil
	default:
		return fmt.Errorf("unknown export format: %s", config.Format)
	}
}

func (config ExportConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("export.output_dir", "CSV_OUTPUT_DIR")
}
