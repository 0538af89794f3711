package app

import (
	"context"
	"time"

	"github.com/bft-labs/certship/internal/domain"
	"github.com/bft-labs/certship/internal/ports"
)

// DeliveryEmitter is notified about every entry of a processed batch.
type DeliveryEmitter interface {
	OnDelivered(tag string, entry domain.Entry, outcome domain.Outcome, duration time.Duration)
	OnFailed(tag string, entry domain.Entry, outcome domain.Outcome)
	OnSkipped(tag string, entry domain.Entry)
}

// Processor delivers the entries of a batch one by one.
type Processor struct {
	builder    *RequestBuilder
	dispatcher ports.Dispatcher
	logger     ports.Logger
	emitter    DeliveryEmitter
}

// NewProcessor creates a processor. emitter may be nil.
func NewProcessor(builder *RequestBuilder, dispatcher ports.Dispatcher, logger ports.Logger, emitter DeliveryEmitter) *Processor {
	return &Processor{
		builder:    builder,
		dispatcher: dispatcher,
		logger:     logger,
		emitter:    emitter,
	}
}

// ProcessBatch delivers every non-empty entry in host order and tallies the
// results. A failed entry never stops the rest of the batch.
//
// A canceled context still walks the whole batch: each remaining dispatch
// fails fast and is counted as failed.
func (p *Processor) ProcessBatch(ctx context.Context, tag string, batch domain.Batch) domain.BatchResult {
	var result domain.BatchResult

	for _, entry := range batch {
		if entry.Record.Empty() {
			result.Skipped++
			if p.emitter != nil {
				p.emitter.OnSkipped(tag, entry)
			}
			continue
		}

		req, err := p.builder.Build(entry.Record)
		if err != nil {
			p.logger.Error("failed to serialize record",
				ports.Tag(tag),
				ports.Time("time", entry.Time),
				ports.Err(err),
			)
			result.Failed++
			if p.emitter != nil {
				p.emitter.OnFailed(tag, entry, domain.Outcome{Summary: domain.NoResponse, Err: err})
			}
			continue
		}

		start := time.Now()
		outcome := p.dispatcher.Send(ctx, req)
		if !outcome.Success {
			result.Failed++
			if p.emitter != nil {
				p.emitter.OnFailed(tag, entry, outcome)
			}
			continue
		}

		result.Delivered++
		p.logger.Debug("sent record",
			ports.Tag(tag),
			ports.Time("time", entry.Time),
		)
		if p.emitter != nil {
			p.emitter.OnDelivered(tag, entry, outcome, time.Since(start))
		}
	}

	return result
}
