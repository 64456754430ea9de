// Package config loads the settlement node's runtime configuration and
// its genesis file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	API      APIServerConfig `mapstructure:"api"      yaml:"api"`
	Metrics  MetricsConfig   `mapstructure:"metrics"  yaml:"metrics"`
	Log      LogConfig       `mapstructure:"log"      yaml:"log"`
	Chain    ChainConfig     `mapstructure:"chain"    yaml:"chain"`
	Verifier VerifierConfig  `mapstructure:"verifier" yaml:"verifier"`
}

// APIServerConfig holds HTTP API server configuration
type APIServerConfig struct {
	ListenAddr        string        `mapstructure:"listen_addr"         yaml:"listen_addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"        yaml:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"       yaml:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"        yaml:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"    yaml:"max_header_bytes"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" env:"METRICS_ENABLED"`
	Path    string `mapstructure:"path"    yaml:"path"    env:"METRICS_PATH"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  env:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty" env:"LOG_PRETTY"`
}

// ChainConfig points the node at its genesis file.
type ChainConfig struct {
	GenesisPath string `mapstructure:"genesis_path" yaml:"genesis_path" env:"CHAIN_GENESIS_PATH"`
}

// VerifierConfig selects the bundle proof verifier.
type VerifierConfig struct {
	// Type is "aggregation" or "sgx".
	Type string `mapstructure:"type" yaml:"type" env:"VERIFIER_TYPE"`

	// VerifyingKey is the hex-encoded aggregation verifying key.
	VerifyingKey string `mapstructure:"verifying_key" yaml:"verifying_key" env:"VERIFIER_VK"`

	// AttestedSigners are the hex addresses accepted by the SGX verifier.
	AttestedSigners []string `mapstructure:"attested_signers" yaml:"attested_signers"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.listen_addr", ":8081")
	v.SetDefault("api.read_header_timeout", "5s")
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "30s")
	v.SetDefault("api.idle_timeout", "120s")
	v.SetDefault("api.max_header_bytes", 1048576)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("chain.genesis_path", "settlement-app/configs/genesis.yaml")

	v.SetDefault("verifier.type", "aggregation")
	v.SetDefault("verifier.verifying_key", "")
	v.SetDefault("verifier.attested_signers", []string{})
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.ListenAddr) == "" {
		return fmt.Errorf("api.listen_addr is required")
	}
	if strings.TrimSpace(c.Chain.GenesisPath) == "" {
		return fmt.Errorf("chain.genesis_path is required")
	}

	switch c.Verifier.Type {
	case "aggregation":
		if strings.TrimSpace(c.Verifier.VerifyingKey) == "" {
			return fmt.Errorf("verifier.verifying_key is required for the aggregation verifier")
		}
	case "sgx":
		if len(c.Verifier.AttestedSigners) == 0 {
			return fmt.Errorf("verifier.attested_signers is required for the sgx verifier")
		}
	default:
		return fmt.Errorf("verifier.type must be aggregation or sgx, got %q", c.Verifier.Type)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		API: APIServerConfig{
			ListenAddr:        ":8081",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
		Chain: ChainConfig{
			GenesisPath: "settlement-app/configs/genesis.yaml",
		},
		Verifier: VerifierConfig{
			Type: "aggregation",
		},
	}
}
