package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations so TOML and YAML
// files can spell them as "30s".
type FileConfig struct {
	EndpointURL             string `toml:"endpoint_url" yaml:"endpoint_url"`
	CertPath                string `toml:"cert_path" yaml:"cert_path"`
	KeyPath                 string `toml:"key_path" yaml:"key_path"`
	VerifyServerCertificate *bool  `toml:"verify_server_certificate" yaml:"verify_server_certificate"`
	OpenTimeout             string `toml:"open_timeout" yaml:"open_timeout"`
	ReadTimeout             string `toml:"read_timeout" yaml:"read_timeout"`
	Input                   string `toml:"input" yaml:"input"`
	Tag                     string `toml:"tag" yaml:"tag"`
	BatchSize               int    `toml:"batch_size" yaml:"batch_size"`
	FlushInterval           string `toml:"flush_interval" yaml:"flush_interval"`
	MetricsFile             string `toml:"metrics_file" yaml:"metrics_file"`
	WatchCredentials        *bool  `toml:"watch_credentials" yaml:"watch_credentials"`
	LogLevel                string `toml:"log_level" yaml:"log_level"`
}

// LoadFileConfig reads a config file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.certship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".certship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint-url", fc.EndpointURL, &cfg.EndpointURL)
	s.setString("cert-path", fc.CertPath, &cfg.CertPath)
	s.setString("key-path", fc.KeyPath, &cfg.KeyPath)
	s.setString("input", fc.Input, &cfg.Input)
	s.setString("tag", fc.Tag, &cfg.Tag)
	s.setString("metrics-file", fc.MetricsFile, &cfg.MetricsFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("open-timeout", fc.OpenTimeout, &cfg.OpenTimeout); err != nil {
		return err
	}
	if err := s.setDuration("read-timeout", fc.ReadTimeout, &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-interval", fc.FlushInterval, &cfg.FlushInterval); err != nil {
		return err
	}

	s.setInt("batch-size", fc.BatchSize, &cfg.BatchSize)

	s.setBool("verify-server-certificate", fc.VerifyServerCertificate, &cfg.VerifyServerCertificate)
	s.setBool("watch-credentials", fc.WatchCredentials, &cfg.WatchCredentials)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
