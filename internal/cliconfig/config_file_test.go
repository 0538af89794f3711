package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				EndpointURL:             "https://file.example.com/api",
				CertPath:                "/file/oms.crt",
				KeyPath:                 "/file/oms.key",
				VerifyServerCertificate: &trueVal,
				OpenTimeout:             "15s",
				ReadTimeout:             "45s",
				Input:                   "records.ndjson",
				Tag:                     "file.tag",
				BatchSize:               10,
				FlushInterval:           "2s",
				MetricsFile:             "certship.prom",
				WatchCredentials:        &falseVal,
				LogLevel:                "warn",
			},
			changed: map[string]bool{},
			initial: Config{WatchCredentials: true},
			expected: Config{
				EndpointURL:             "https://file.example.com/api",
				CertPath:                "/file/oms.crt",
				KeyPath:                 "/file/oms.key",
				VerifyServerCertificate: true,
				OpenTimeout:             15 * time.Second,
				ReadTimeout:             45 * time.Second,
				Input:                   "records.ndjson",
				Tag:                     "file.tag",
				BatchSize:               10,
				FlushInterval:           2 * time.Second,
				MetricsFile:             "certship.prom",
				WatchCredentials:        false,
				LogLevel:                "warn",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				EndpointURL: "https://file.example.com",
				Tag:         "file.tag",
			},
			changed:  map[string]bool{"endpoint-url": true},
			initial:  Config{EndpointURL: "https://flag.example.com", Tag: "flag.tag"},
			expected: Config{EndpointURL: "https://flag.example.com", Tag: "file.tag"},
		},
		{
			name:       "empty values leave defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    Config{Tag: "default", BatchSize: 100, WatchCredentials: true},
			expected:   Config{Tag: "default", BatchSize: 100, WatchCredentials: true},
		},
		{
			name:       "invalid duration",
			fileConfig: FileConfig{ReadTimeout: "a minute"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("ApplyFileConfig() =\n%+v\nwant\n%+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "config.toml",
			content: `endpoint_url = "https://ingest.example.com/api"
cert_path = "/etc/certship/oms.crt"
verify_server_certificate = true
open_timeout = "10s"
batch_size = 50
`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `endpoint_url: https://ingest.example.com/api
cert_path: /etc/certship/oms.crt
verify_server_certificate: true
open_timeout: 10s
batch_size: 50
`,
		},
		{
			name: "yml",
			file: "config.yml",
			content: `endpoint_url: "https://ingest.example.com/api"
cert_path: "/etc/certship/oms.crt"
verify_server_certificate: true
open_timeout: "10s"
batch_size: 50
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			fc, err := LoadFileConfig(path)
			if err != nil {
				t.Fatalf("LoadFileConfig() error = %v", err)
			}
			if fc.EndpointURL != "https://ingest.example.com/api" {
				t.Errorf("EndpointURL = %q", fc.EndpointURL)
			}
			if fc.CertPath != "/etc/certship/oms.crt" {
				t.Errorf("CertPath = %q", fc.CertPath)
			}
			if fc.VerifyServerCertificate == nil || !*fc.VerifyServerCertificate {
				t.Errorf("VerifyServerCertificate = %v", fc.VerifyServerCertificate)
			}
			if fc.OpenTimeout != "10s" || fc.BatchSize != 50 {
				t.Errorf("OpenTimeout = %q, BatchSize = %d", fc.OpenTimeout, fc.BatchSize)
			}
			if fc.WatchCredentials != nil {
				t.Errorf("WatchCredentials = %v, want unset", *fc.WatchCredentials)
			}
		})
	}
}

func TestLoadFileConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFileConfig(filepath.Join(dir, "missing.toml")); !os.IsNotExist(err) {
		t.Errorf("missing file error = %v, want not-exist", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("endpoint_url = [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFileConfig(bad)
	if err == nil || !strings.Contains(err.Error(), "bad.toml") {
		t.Errorf("malformed file error = %v, want it to name the file", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := DefaultConfigPath(); got != filepath.Join("/home/tester", ".certship", "config.toml") {
		t.Errorf("DefaultConfigPath() = %q", got)
	}
}

func TestFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x")
	if FileExists(path) {
		t.Error("FileExists() = true before write")
	}
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("FileExists() = false after write")
	}
}
