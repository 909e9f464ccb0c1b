package telemetry

import (
	"fmt"
	"os"
	"strings"

	servertypes "github.com/cosmos/cosmos-sdk/server/types"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Keys of the [dex-telemetry] section of app.toml.
const (
	FlagEnabled           = "dex-telemetry.enabled"
	FlagOTLPEndpoint      = "dex-telemetry.otlp-endpoint"
	FlagSampleRate        = "dex-telemetry.sample-rate"
	FlagEnvironment       = "dex-telemetry.environment"
	FlagPrometheusEnabled = "dex-telemetry.prometheus-enabled"

	envPrefix = "SDEX"
)

// DefaultConfig returns tracing disabled with a full sample rate.
func DefaultConfig() Config {
	return Config{
		SampleRate:  1,
		Environment: "local",
	}
}

// ConfigFromAppOptions reads the telemetry config from application options,
// keeping the defaults for unset keys.
func ConfigFromAppOptions(opts servertypes.AppOptions, chainID string) Config {
	cfg := DefaultConfig()
	cfg.ChainID = chainID
	if v := opts.Get(FlagEnabled); v != nil {
		cfg.Enabled = cast.ToBool(v)
	}
	if v := opts.Get(FlagOTLPEndpoint); v != nil {
		cfg.OTLPEndpoint = cast.ToString(v)
	}
	if v := opts.Get(FlagSampleRate); v != nil {
		cfg.SampleRate = cast.ToFloat64(v)
	}
	if v := opts.Get(FlagEnvironment); v != nil {
		cfg.Environment = cast.ToString(v)
	}
	if v := opts.Get(FlagPrometheusEnabled); v != nil {
		cfg.PrometheusEnabled = cast.ToBool(v)
	}
	return cfg
}

// LoadConfig reads the telemetry config from an app.toml file. Environment
// variables such as SDEX_DEX_TELEMETRY_ENABLED override the file.
func LoadConfig(path, chainID string) (Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read telemetry config %s: %w", path, err)
		}
	}

	cfg := ConfigFromAppOptions(v, chainID)
	if cfg.Enabled {
		if err := validateConfig(cfg); err != nil {
			return Config{}, fmt.Errorf("invalid telemetry config: %w", err)
		}
	}
	return cfg, nil
}
