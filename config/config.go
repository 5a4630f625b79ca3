// Package config loads the bench profile: everything that describes the
// fixed measurement setup rather than a single sweep, so it lives in a
// config file instead of command line flags.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the bench profile.
type Config struct {
	Serial SerialConfig
	Sweep  SweepConfig
	Scope  ScopeConfig
	Meter  MeterConfig
	Output OutputConfig
}

// SerialConfig holds the DUT serial link setup.
type SerialConfig struct {
	Baud int
}

// SweepConfig holds sweep timing not exposed as flags.
type SweepConfig struct {
	Settle time.Duration
}

// ScopeConfig holds the oscilloscope acquisition setup.
type ScopeConfig struct {
	Channel      int
	Coupling     string
	Scale        float64
	TriggerLevel float64
	TimeScale    float64
	Timeout      time.Duration
}

// MeterConfig holds the power sensor setup. Offset compensates the coupler
// and attenuator path between the DUT and the sensor.
type MeterConfig struct {
	Offset       float64
	AverageCount int
	Timeout      time.Duration
}

// OutputConfig holds artifact placement.
type OutputConfig struct {
	Dir string
}

// Load reads the bench profile from defaults, an optional powersweep.yaml
// in the working directory or ~/.config/powersweep, and POWERSWEEP_*
// environment variables, in increasing precedence.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("serial.baud", 9600)
	v.SetDefault("sweep.settle", "1s")
	v.SetDefault("scope.channel", 1)
	v.SetDefault("scope.coupling", "DC")
	v.SetDefault("scope.scale", 0.1)
	v.SetDefault("scope.trigger_level", 0.1)
	v.SetDefault("scope.time_scale", 0.001)
	v.SetDefault("scope.timeout", "10s")
	v.SetDefault("meter.offset", 0.0)
	v.SetDefault("meter.average_count", 4)
	v.SetDefault("meter.timeout", "10s")
	v.SetDefault("output.dir", "sweeps")

	v.SetConfigName("powersweep")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/powersweep")

	// The config file is optional, only real read errors count.
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	v.SetEnvPrefix("POWERSWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	cfg.Serial.Baud = v.GetInt("serial.baud")
	cfg.Sweep.Settle = v.GetDuration("sweep.settle")
	cfg.Scope.Channel = v.GetInt("scope.channel")
	cfg.Scope.Coupling = v.GetString("scope.coupling")
	cfg.Scope.Scale = v.GetFloat64("scope.scale")
	cfg.Scope.TriggerLevel = v.GetFloat64("scope.trigger_level")
	cfg.Scope.TimeScale = v.GetFloat64("scope.time_scale")
	cfg.Scope.Timeout = v.GetDuration("scope.timeout")
	cfg.Meter.Offset = v.GetFloat64("meter.offset")
	cfg.Meter.AverageCount = v.GetInt("meter.average_count")
	cfg.Meter.Timeout = v.GetDuration("meter.timeout")
	cfg.Output.Dir = v.GetString("output.dir")

	return cfg, nil
}
