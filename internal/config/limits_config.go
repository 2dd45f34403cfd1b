package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type LimitsConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"gte=1,lte=600"`
	MaxConcurrent     int `mapstructure:"max_concurrent" validate:"gte=1,lte=32"`
}

func (config LimitsConfig) validate() error {
	return validator.New().Struct(config)
}

func (config LimitsConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("limits.requests_per_minute", "REQUESTS_PER_MINUTE"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("limits.max_concurrent", "CONCURRENT_REQUESTS"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
