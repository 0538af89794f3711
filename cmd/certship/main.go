package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/certship/internal/cliconfig"
)

const helpDescription = `
Forward newline-delimited JSON records to an HTTPS ingestion endpoint,
authenticating with a client certificate.

Highlights:
  - One POST per record, in input order; failures are logged and dropped.
  - Loads oms.crt/oms.key lazily and picks them up as soon as they appear.
  - Configure via file (TOML or YAML), CERTSHIP_* environment, or flags.
  - Optional Prometheus textfile output for delivery counters.
`

var exampleUsage = strings.TrimSpace(`
  tail -F /var/log/app.ndjson | certship run --endpoint-url https://ingest.example.com/api
  certship run --config /etc/certship/config.yaml --input records.ndjson --tag app.logs
  certship probe --endpoint-url https://ingest.example.com
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the configuration shared by all subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

func main() {
	c := &cli{cfg: cliconfig.DefaultConfig()}
	c.log = cliconfig.Logger(c.cfg.LogLevel)

	root := &cobra.Command{
		Use:           "certship",
		Short:         "Forward structured records to an HTTPS endpoint over mutual TLS",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgPath, "config", "", "path to config file, TOML or YAML (default: $HOME/.certship/config.toml)")
	pf.StringVar(&c.cfg.EndpointURL, "endpoint-url", c.cfg.EndpointURL, "https URL records are posted to")
	pf.StringVar(&c.cfg.CertPath, "cert-path", c.cfg.CertPath, "client certificate (PEM)")
	pf.StringVar(&c.cfg.KeyPath, "key-path", c.cfg.KeyPath, "client private key (PEM)")
	pf.BoolVar(&c.cfg.VerifyServerCertificate, "verify-server-certificate", c.cfg.VerifyServerCertificate, "verify the server certificate chain and hostname")
	pf.DurationVar(&c.cfg.OpenTimeout, "open-timeout", c.cfg.OpenTimeout, "connect and TLS handshake timeout")
	pf.DurationVar(&c.cfg.ReadTimeout, "read-timeout", c.cfg.ReadTimeout, "response timeout")
	pf.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&c.cfg.MetricsFile, "metrics-file", c.cfg.MetricsFile, "write Prometheus text metrics to this file (optional)")
	pf.BoolVar(&c.cfg.WatchCredentials, "watch-credentials", c.cfg.WatchCredentials, "load credentials as soon as they appear on disk")

	root.AddCommand(newRunCmd(c), newProbeCmd(c))

	if err := root.Execute(); err != nil {
		c.log.Error().Err(err).Msg("certship")
		os.Exit(1)
	}
}

// load resolves the effective configuration: defaults, then the config
// file, then CERTSHIP_* variables, with explicitly set flags winning over
// all of them. It also rebuilds the logger at the configured level.
func (c *cli) load(cmd *cobra.Command) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	} else if c.cfgPath != "" {
		return fmt.Errorf("config file %s not found", c.cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.log = cliconfig.Logger(c.cfg.LogLevel)
	c.log.Info().Interface("config", c.cfg).Msg("configuration")
	return nil
}
