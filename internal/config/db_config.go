package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type DBConfig struct {
	ConnectionString      string `mapstructure:"connection_string"`
	ArchiveExpirationDays int    `mapstructure:"archive_expiration_days"`
}

func (config DBConfig) validate() error {

	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}

	if config.ArchiveExpirationDays <= 0 {
		return fmt.Errorf("archive_expiration_days must be greater than zero, got %d", config.ArchiveExpirationDays)
	}

	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("db.connection_string", "DB_CONNECTION_STRING")
}
