package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/certship/internal/adapters/fs"
	"github.com/bft-labs/certship/internal/app"
	"github.com/bft-labs/certship/pkg/certship"
	logpkg "github.com/bft-labs/certship/pkg/log"
	"github.com/bft-labs/certship/plugins/credwatcher"
)

func newRunCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Read NDJSON records and forward each one to the endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			in, closeInput, err := openInput(c.cfg.Input)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer closeInput()

			return c.forward(ctx, in)
		},
	}

	cmd.Flags().StringVar(&c.cfg.Input, "input", c.cfg.Input, `NDJSON input file ("-" for stdin)`)
	cmd.Flags().StringVar(&c.cfg.Tag, "tag", c.cfg.Tag, "tag attached to every record in logs and events")
	cmd.Flags().IntVar(&c.cfg.BatchSize, "batch-size", c.cfg.BatchSize, "records per emission")
	cmd.Flags().DurationVar(&c.cfg.FlushInterval, "flush-interval", c.cfg.FlushInterval, "emit a partial batch after this long (0 waits for a full batch)")
	return cmd
}

// textFunc adapts a render function to fs.TextWriter.
type textFunc func(io.Writer) error

func (f textFunc) WriteText(w io.Writer) error { return f(w) }

// forward runs the forwarder over in until EOF or until ctx is canceled.
// Pending records are still emitted on the way out.
func (c *cli) forward(ctx context.Context, in io.Reader) error {
	cfg := c.cfg
	log := c.log

	opts := []certship.Option{certship.WithLogger(logpkg.NewZerologAdapterWithLogger(log))}
	if cfg.WatchCredentials {
		opts = append(opts, credwatcher.WithDefaultCredentialWatcher())
	}
	f, err := certship.New(cfg.Library(), opts...)
	if err != nil {
		return fmt.Errorf("create forwarder: %w", err)
	}
	if err := f.Start(ctx); err != nil {
		return fmt.Errorf("start forwarder: %w", err)
	}

	var metricsFile *fs.MetricsFile
	if cfg.MetricsFile != "" {
		metricsFile = fs.NewMetricsFile(cfg.MetricsFile)
	}
	publish := func() {
		if metricsFile == nil {
			return
		}
		if err := metricsFile.Write(textFunc(f.WriteMetrics)); err != nil {
			log.Warn().Err(err).Str("path", metricsFile.Path()).Msg("failed to write metrics file")
		}
	}

	entries, readErr := readEntries(ctx, newRecordReader(in, log))

	batcher := app.NewBatcher(cfg.BatchSize, cfg.FlushInterval)
	emit := func(ctx context.Context) {
		res := f.Emit(ctx, cfg.Tag, batcher.Take(), nil)
		log.Debug().
			Int("delivered", res.Delivered).
			Int("failed", res.Failed).
			Int("skipped", res.Skipped).
			Msg("emitted batch")
		publish()
	}

	var tick <-chan time.Time
	if cfg.FlushInterval > 0 {
		ticker := time.NewTicker(cfg.FlushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	publish()

loop:
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("received signal, stopping...")
			break loop
		case e, ok := <-entries:
			if !ok {
				break loop
			}
			if batcher.Add(e) {
				emit(ctx)
			}
		case <-tick:
			if batcher.Due() {
				emit(ctx)
			}
		}
	}

	if batcher.HasPending() {
		drainCtx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
		emit(drainCtx)
		cancel()
	}

	shutdownErr := f.Shutdown()
	publish()

	stats := f.Stats()
	log.Info().
		Int64("delivered", stats.Delivered).
		Int64("failed", stats.Failed).
		Int64("skipped", stats.Skipped).
		Msg("forwarder stopped")

	var inputErr error
	select {
	case inputErr = <-readErr:
	default:
	}
	return errors.Join(inputErr, shutdownErr)
}

// readEntries pumps entries from r until EOF or ctx is done. The entries
// channel is closed when reading stops; a read failure is reported on the
// error channel before that.
func readEntries(ctx context.Context, r *recordReader) (<-chan certship.Entry, <-chan error) {
	entries := make(chan certship.Entry)
	errc := make(chan error, 1)

	go func() {
		defer close(entries)
		for {
			e, err := r.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					errc <- fmt.Errorf("read input: %w", err)
				}
				return
			}
			select {
			case entries <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return entries, errc
}
