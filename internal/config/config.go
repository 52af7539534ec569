/**
 * @description
 * This package handles the configuration management for the platform. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the platform binaries.
// These values are loaded from environment variables.
type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	RedisURL             string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	EventExchange        string `mapstructure:"EVENT_EXCHANGE"`

	JWTSecret      string `mapstructure:"JWT_SECRET"`
	JWTExpiryHours int    `mapstructure:"JWT_EXPIRY_HOURS"`
	BcryptCost     int    `mapstructure:"BCRYPT_COST"`

	// Rate limits for the mutating investment endpoints, per user per minute.
	SubscribeRateLimitPerMinute  int `mapstructure:"SUBSCRIBE_RATE_LIMIT_PER_MINUTE"`
	ContributeRateLimitPerMinute int `mapstructure:"CONTRIBUTE_RATE_LIMIT_PER_MINUTE"`
	DepositRateLimitPerMinute    int `mapstructure:"DEPOSIT_RATE_LIMIT_PER_MINUTE"`

	// Referral welcome grant applied on the first credited deposit of a
	// referred account (amounts in cents).
	ReferralDepositThreshold int64 `mapstructure:"REFERRAL_DEPOSIT_THRESHOLD"`
	ReferralWelcomeBonus     int64 `mapstructure:"REFERRAL_WELCOME_BONUS"`

	// Cron schedules for the scheduler binary.
	ContributionJobSchedule string `mapstructure:"CONTRIBUTION_JOB_SCHEDULE"`
	MaturityJobSchedule     string `mapstructure:"MATURITY_JOB_SCHEDULE"`
	DepositExpiryJobSchedule string `mapstructure:"DEPOSIT_EXPIRY_JOB_SCHEDULE"`
	DepositExpiryHours       int    `mapstructure:"DEPOSIT_EXPIRY_HOURS"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "creyp:rate_limit")
	viper.SetDefault("EVENT_EXCHANGE", "investment_events")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("BCRYPT_COST", 10)
	viper.SetDefault("SUBSCRIBE_RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("CONTRIBUTE_RATE_LIMIT_PER_MINUTE", 30)
	viper.SetDefault("DEPOSIT_RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("REFERRAL_DEPOSIT_THRESHOLD", 100000) // $1,000
	viper.SetDefault("REFERRAL_WELCOME_BONUS", 10000)      // $100
	viper.SetDefault("CONTRIBUTION_JOB_SCHEDULE", "0 2 * * *")
	viper.SetDefault("MATURITY_JOB_SCHEDULE", "30 2 * * *")
	viper.SetDefault("DEPOSIT_EXPIRY_JOB_SCHEDULE", "*/30 * * * *")
	viper.SetDefault("DEPOSIT_EXPIRY_HOURS", 24)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("EVENT_EXCHANGE")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("JWT_EXPIRY_HOURS")
	_ = viper.BindEnv("BCRYPT_COST")
	_ = viper.BindEnv("SUBSCRIBE_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("CONTRIBUTE_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("DEPOSIT_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("REFERRAL_DEPOSIT_THRESHOLD")
	_ = viper.BindEnv("REFERRAL_WELCOME_BONUS")
	_ = viper.BindEnv("CONTRIBUTION_JOB_SCHEDULE")
	_ = viper.BindEnv("MATURITY_JOB_SCHEDULE")
	_ = viper.BindEnv("DEPOSIT_EXPIRY_JOB_SCHEDULE")
	_ = viper.BindEnv("DEPOSIT_EXPIRY_HOURS")

	// Reading the .env file is optional; environment variables may be the only source.
	if readErr := viper.ReadInConfig(); readErr != nil {
		if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
			// A malformed file is still a hard error.
			if !strings.Contains(readErr.Error(), "no such file") {
				return config, readErr
			}
		}
	}

	err = viper.Unmarshal(&config)
	return
}
