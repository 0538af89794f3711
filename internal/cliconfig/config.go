package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/certship/internal/domain"
	"github.com/bft-labs/certship/pkg/certship"
)

// Defaults for the CLI-only settings.
const (
	DefaultTag           = "certship"
	DefaultBatchSize     = 100
	DefaultFlushInterval = time.Second
	DefaultLogLevel      = "info"
	StdinInput           = "-"
)

// Config holds CLI configuration for certship.
type Config struct {
	EndpointURL             string
	CertPath                string
	KeyPath                 string
	VerifyServerCertificate bool
	OpenTimeout             time.Duration
	ReadTimeout             time.Duration

	Input            string
	Tag              string
	BatchSize        int
	FlushInterval    time.Duration
	MetricsFile      string
	WatchCredentials bool
	LogLevel         string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		CertPath:         certship.DefaultCertPath,
		KeyPath:          certship.DefaultKeyPath,
		OpenTimeout:      certship.DefaultOpenTimeout,
		ReadTimeout:      certship.DefaultReadTimeout,
		Input:            StdinInput,
		Tag:              DefaultTag,
		BatchSize:        DefaultBatchSize,
		FlushInterval:    DefaultFlushInterval,
		WatchCredentials: true,
		LogLevel:         DefaultLogLevel,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := domain.ParseEndpoint(c.EndpointURL); err != nil {
		return err
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("open-timeout must be positive")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read-timeout must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be positive")
	}
	if c.FlushInterval < 0 {
		return fmt.Errorf("flush-interval must not be negative")
	}
	if c.Tag == "" {
		c.Tag = DefaultTag
	}
	if c.Input == "" {
		c.Input = StdinInput
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	return nil
}

// Library returns the library configuration for the forwarder.
func (c Config) Library() certship.Config {
	return certship.Config{
		EndpointURL:             c.EndpointURL,
		CertPath:                c.CertPath,
		KeyPath:                 c.KeyPath,
		VerifyServerCertificate: c.VerifyServerCertificate,
		OpenTimeout:             c.OpenTimeout,
		ReadTimeout:             c.ReadTimeout,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int for environment variables.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool for environment variables.
// Accepts the forms strconv.ParseBool does.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}
