package config

import (
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger"`
	Browser BrowserConfig `mapstructure:"browser"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	Export  ExportConfig  `mapstructure:"export"`
	DB      DBConfig      `mapstructure:"db"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	if value, _ := os.LookupEnv("MODE"); value == "test" {
		configFile = "../../configs/config.yaml"
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	viper.SetConfigFile(file)
	viper.AutomaticEnv()

	viper.SetDefault("MODE", "release")
	setDefaults()

	err := bindEnvironmentVariables()
	if err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("browser.headless", true)
	viper.SetDefault("browser.timeout_ms", 30000)
	viper.SetDefault("browser.base_url", "https://internshala.com")
	viper.SetDefault("browser.session_file", "playwright_session.json")
	viper.SetDefault("limits.requests_per_minute", 30)
	viper.SetDefault("limits.max_concurrent", 3)
	viper.SetDefault("scraper.sessions", 1)
	viper.SetDefault("export.output_dir", "./exports")
	viper.SetDefault("export.format", "csv")
	viper.SetDefault("db.archive_expiration_days", 30)
}

func bindEnvironmentVariables() error {
	var errs []error

	browser, limits, scraper := BrowserConfig{}, LimitsConfig{}, ScraperConfig{}
	export, db, logger := ExportConfig{}, DBConfig{}, LoggerConfig{}

	if err := browser.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("BrowserConfig: %w", err))
	}

	if err := limits.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("LimitsConfig: %w", err))
	}

	if err := scraper.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("ScraperConfig: %w", err))
	}

	if err := export.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("ExportConfig: %w", err))
	}

	if err := db.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.Browser.validate(); err != nil {
		errs = append(errs, fmt.Errorf("BrowserConfig: %w", err))
	}

	if err := config.Limits.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LimitsConfig: %w", err))
	}

	if err := config.Scraper.validate(); err != nil {
		errs = append(errs, fmt.Errorf("ScraperConfig: %w", err))
	}

	if err := config.Export.validate(); err != nil {
		errs = append(errs, fmt.Errorf("ExportConfig: %w", err))
	}

	if err := config.DB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}

func createMultiError(errs []error) error {
	return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
}
