package config

import (
	"fmt"
	"github.com/spf13/viper"
	"strings"
)

type MessagesConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	ConversationLimit int  `mapstructure:"conversation_limit"`
	PerConversation   int  `mapstructure:"per_conversation"`
	IncludeSent       bool `mapstructure:"include_sent"`
	IncludeReceived   bool `mapstructure:"include_received"`
	SinceDays         int  `mapstructure:"since_days"`
}

type SearchConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	Keywords         []string `mapstructure:"keywords"`
	Locations        []string `mapstructure:"locations"`
	Mode             string   `mapstructure:"mode"`
	Categories       []string `mapstructure:"categories"`
	CompanyTypes     []string `mapstructure:"company_types"`
	StipendMin       float64  `mapstructure:"stipend_min"`
	ExcludeUnpaid    bool     `mapstructure:"exclude_unpaid"`
	PostedWithinDays int      `mapstructure:"posted_within_days"`
	DurationWeeks    int      `mapstructure:"duration_weeks"`
	PartTime         bool     `mapstructure:"part_time"`
	WithJobOffer     bool     `mapstructure:"with_job_offer"`
	Limit            int      `mapstructure:"limit"`
	EnrichDetails    bool     `mapstructure:"enrich_details"`
}

type ScraperConfig struct {
	Email        string         `mapstructure:"email"`
	Password     string         `mapstructure:"password"`
	Sessions     int            `mapstructure:"sessions"`
	LogoutOnExit bool           `mapstructure:"logout_on_exit"`
	Messages     MessagesConfig `mapstructure:"messages"`
	Search       SearchConfig   `mapstructure:"search"`
}

func (config ScraperConfig) validate() error {

	var missingFields []string

	if config.Email == "" {
		missingFields = append(missingFields, "email")
	}

	if config.Password == "" {
		missingFields = append(missingFields, "password")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	if config.Sessions <= 0 {
		return fmt.Errorf("sessions must be greater than zero, got %d", config.Sessions)
	}

	return nil
}

func (config ScraperConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("scraper.email", "INTERNSHALA_EMAIL"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("scraper.password", "INTERNSHALA_PASSWORD"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
