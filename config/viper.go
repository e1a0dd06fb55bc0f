package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. HTTPHEAD_LIMITS_MAX_HEADER_COUNT.
const EnvPrefix = "HTTPHEAD"

// SetDefaults registers every default value in v, so that the keys are known to
// viper even when no config file is present (required for env overrides to apply).
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("limits.max_start_line_bytes", d.Limits.MaxStartLineBytes)
	v.SetDefault("limits.max_header_name_bytes", d.Limits.MaxHeaderNameBytes)
	v.SetDefault("limits.max_header_value_bytes", d.Limits.MaxHeaderValueBytes)
	v.SetDefault("limits.max_header_count", d.Limits.MaxHeaderCount)
	v.SetDefault("limits.max_total_header_bytes", d.Limits.MaxTotalHeaderBytes)
	v.SetDefault("limits.allowed_versions", d.Limits.AllowedVersions)

	v.SetDefault("net.addr", d.NET.Addr)
	v.SetDefault("net.read_buffer_size", d.NET.ReadBufferSize)
	v.SetDefault("net.read_timeout", d.NET.ReadTimeout)
	v.SetDefault("net.accept_rate", d.NET.AcceptRate)
	v.SetDefault("net.accept_burst", d.NET.AcceptBurst)
	v.SetDefault("net.max_body_size", d.NET.MaxBodySize)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)
	v.SetDefault("logger.service_name", d.Logger.ServiceName)
	v.SetDefault("logger.add_source", d.Logger.AddSource)
	v.SetDefault("logger.log_file", d.Logger.LogFile)
	v.SetDefault("logger.max_size", d.Logger.MaxSize)
	v.SetDefault("logger.max_backups", d.Logger.MaxBackups)
	v.SetDefault("logger.max_age", d.Logger.MaxAge)
	v.SetDefault("logger.compress", d.Logger.Compress)
}

// NewViper returns a viper instance with defaults and environment overrides set up.
// If file is empty, ./httphead.yaml is looked up and its absence isn't an error.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// has no default, so AutomaticEnv alone wouldn't surface it to Unmarshal
	_ = v.BindEnv("limits.allowed_methods")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("httphead")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return v, nil
}

// FromViper decodes and validates the configuration.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// viper has no way to express "unset" for a list, so an absent key decodes as an
	// empty slice. Bring it back to nil, which means "any method".
	if len(cfg.Limits.AllowedMethods) == 0 {
		cfg.Limits.AllowedMethods = nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Load is NewViper followed by FromViper.
func Load(file string) (*Config, error) {
	v, err := NewViper(file)
	if err != nil {
		return nil, err
	}

	return FromViper(v)
}
