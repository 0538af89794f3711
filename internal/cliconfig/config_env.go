package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (CERTSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint-url", os.Getenv("CERTSHIP_ENDPOINT_URL"), &cfg.EndpointURL)
	s.setString("cert-path", os.Getenv("CERTSHIP_CERT_PATH"), &cfg.CertPath)
	s.setString("key-path", os.Getenv("CERTSHIP_KEY_PATH"), &cfg.KeyPath)
	s.setString("input", os.Getenv("CERTSHIP_INPUT"), &cfg.Input)
	s.setString("tag", os.Getenv("CERTSHIP_TAG"), &cfg.Tag)
	s.setString("metrics-file", os.Getenv("CERTSHIP_METRICS_FILE"), &cfg.MetricsFile)
	s.setString("log-level", os.Getenv("CERTSHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("open-timeout", os.Getenv("CERTSHIP_OPEN_TIMEOUT"), &cfg.OpenTimeout); err != nil {
		return err
	}
	if err := s.setDuration("read-timeout", os.Getenv("CERTSHIP_READ_TIMEOUT"), &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-interval", os.Getenv("CERTSHIP_FLUSH_INTERVAL"), &cfg.FlushInterval); err != nil {
		return err
	}

	if err := s.setIntFromString("batch-size", os.Getenv("CERTSHIP_BATCH_SIZE"), &cfg.BatchSize); err != nil {
		return err
	}

	if err := s.setBoolFromString("verify-server-certificate", os.Getenv("CERTSHIP_VERIFY_SERVER_CERTIFICATE"), &cfg.VerifyServerCertificate); err != nil {
		return err
	}
	return s.setBoolFromString("watch-credentials", os.Getenv("CERTSHIP_WATCH_CREDENTIALS"), &cfg.WatchCredentials)
}
