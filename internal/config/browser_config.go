package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type BrowserConfig struct {
	Headless      bool   `mapstructure:"headless"`
	TimeoutMs     int    `mapstructure:"timeout_ms"`
	BaseURL       string `mapstructure:"base_url"`
	SessionFile   string `mapstructure:"session_file"`
	ScreenshotDir string `mapstructure:"screenshot_dir"`
}

func (config BrowserConfig) validate() error {

	if config.TimeoutMs <= 0 {
		return fmt.Errorf("timeout_ms must be greater than zero, got %d", config.TimeoutMs)
	}

	if config.BaseURL == "" {
		return fmt.Errorf("missing variable: base_url")
	}

	if config.SessionFile == "" {
		return fmt.Errorf("missing variable: session_file")
	}

	return nil
}

func (config BrowserConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("browser.headless", "HEADLESS"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("browser.timeout_ms", "BROWSER_TIMEOUT"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("browser.session_file", "SESSION_FILE"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
