// Package config holds the runtime settings shared by the wavelength
// commands.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr               string `env:"WAVELENGTH_ADDR"`
	PublicURL          string `env:"WAVELENGTH_PUBLIC_URL"`
	ClueSeconds        int    `env:"WAVELENGTH_CLUE_SECONDS"`
	EstimateSeconds    int    `env:"WAVELENGTH_ESTIMATE_SECONDS"`
	EstimateThrottleMS int    `env:"WAVELENGTH_ESTIMATE_THROTTLE_MS"`
	Scoring            string `env:"WAVELENGTH_SCORING"`
	MinParticipants    int    `env:"WAVELENGTH_MIN_PARTICIPANTS"`
	MaxParticipants    int    `env:"WAVELENGTH_MAX_PARTICIPANTS"`
	PowerUps           bool   `env:"WAVELENGTH_POWER_UPS"`
	CustomCard         string `env:"WAVELENGTH_CUSTOM_CARD"`
	DatabaseURL        string `env:"DATABASE_URL"`
	DBMaxOpenConns     int    `env:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns     int    `env:"DB_MAX_IDLE_CONNS"`
	RendezvousURL      string `env:"WAVELENGTH_RENDEZVOUS_URL"`
	OTelEndpoint       string `env:"WAVELENGTH_OTEL_ENDPOINT"`
	OTelEnabled        bool   `env:"WAVELENGTH_OTEL_ENABLED"`
	Verbose            bool   `env:"WAVELENGTH_VERBOSE"`
}

func Default() Config {
	return Config{
		Addr:               ":8080",
		ClueSeconds:        240,
		EstimateSeconds:    240,
		EstimateThrottleMS: 30,
		Scoring:            "shared",
		MinParticipants:    2,
		MaxParticipants:    8,
		PowerUps:           true,
		DBMaxOpenConns:     10,
		DBMaxIdleConns:     10,
		OTelEnabled:        true,
	}
}

// Load overlays environment variables on Default. Unset variables keep
// their default.
func Load() (Config, error) {
	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.ClueSeconds <= 0 {
		errs = append(errs, errors.New("clue seconds must be positive"))
	}
	if c.EstimateSeconds <= 0 {
		errs = append(errs, errors.New("estimate seconds must be positive"))
	}
	if c.EstimateThrottleMS < 0 {
		errs = append(errs, errors.New("estimate throttle must not be negative"))
	}
	if c.MinParticipants < 2 {
		errs = append(errs, errors.New("at least two participants are required"))
	}
	if c.MaxParticipants < c.MinParticipants {
		errs = append(errs, fmt.Errorf("max participants %d is below min %d", c.MaxParticipants, c.MinParticipants))
	}
	switch strings.ToLower(c.Scoring) {
	case "shared", "presenter":
	default:
		errs = append(errs, fmt.Errorf("unknown scoring mode %q", c.Scoring))
	}
	return errors.Join(errs...)
}

func (c Config) ClueTimeout() time.Duration {
	return time.Duration(c.ClueSeconds) * time.Second
}

func (c Config) EstimateTimeout() time.Duration {
	return time.Duration(c.EstimateSeconds) * time.Second
}

func (c Config) EstimateThrottle() time.Duration {
	return time.Duration(c.EstimateThrottleMS) * time.Millisecond
}
