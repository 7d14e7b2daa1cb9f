package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for one crosspost site deployment.
// Tags use mapstructure for Viper unmarshalling; every key can also be set
// through the environment.
type Config struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"` // empty means in-memory session cache
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogPretty   bool   `mapstructure:"LOG_PRETTY"`

	// SiteName is this deployment's human-readable name, used when
	// remapping remote error messages into locally-meaningful ones.
	SiteName string `mapstructure:"SITE_NAME"`

	// CrosspostBaseURL is the remote site's base URL, e.g.
	// "https://forum.example.org". Empty disables outbound crossposting.
	CrosspostBaseURL string `mapstructure:"CROSSPOST_BASE_URL"`

	// CrosspostSigningSecret is the symmetric secret shared out-of-band
	// between the two site operators. May legitimately be unset on
	// deployments that do not crosspost; the token service reports a
	// configuration error at use time.
	CrosspostSigningSecret string `mapstructure:"CROSSPOST_SIGNING_SECRET"`

	// CrosspostTimeoutMS bounds every outbound cross-site call.
	CrosspostTimeoutMS int `mapstructure:"CROSSPOST_TIMEOUT_MS"`

	SessionTTLHour int `mapstructure:"SESSION_TTL_HOUR"`
}

// CrosspostTimeout returns the outbound call timeout as a duration.
func (c *Config) CrosspostTimeout() time.Duration {
	return time.Duration(c.CrosspostTimeoutMS) * time.Millisecond
}

// LoadConfig reads configuration from file, environment variables, and
// defaults, in that order of increasing precedence for env vars.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/crosspost/")
	v.AddConfigPath("$HOME/.crosspost")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/crosspost_dev")
	v.SetDefault("MONGO_DB_NAME", "crosspost_dev")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("SITE_NAME", "")
	v.SetDefault("CROSSPOST_BASE_URL", "")
	v.SetDefault("CROSSPOST_SIGNING_SECRET", "")
	v.SetDefault("CROSSPOST_TIMEOUT_MS", 15000)
	v.SetDefault("SESSION_TTL_HOUR", 720)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
