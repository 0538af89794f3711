package certship

import (
	"time"

	"github.com/bft-labs/certship/internal/app"
	"github.com/bft-labs/certship/internal/domain"
	"github.com/bft-labs/certship/internal/metrics"
)

// EventHandler receives notifications about forwarder activity.
// Methods are called synchronously from Start, Shutdown and Emit, so
// implementations should return quickly.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnDeliverySuccess(DeliverySuccessEvent)
	OnDeliveryFailure(DeliveryFailureEvent)
	OnRecordSkipped(RecordSkippedEvent)
}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// DeliverySuccessEvent describes a record acknowledged with a 2xx response.
type DeliverySuccessEvent struct {
	Tag        string
	Time       time.Time
	StatusCode int
	Duration   time.Duration
}

// DeliveryFailureEvent describes a record that could not be delivered.
// StatusCode is zero when no response was received.
type DeliveryFailureEvent struct {
	Tag        string
	Time       time.Time
	StatusCode int
	Summary    string
	Err        error
}

// RecordSkippedEvent describes an empty record dropped without a request.
type RecordSkippedEvent struct {
	Tag  string
	Time time.Time
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to
// override only the events you care about.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)         {}
func (BaseEventHandler) OnDeliverySuccess(DeliverySuccessEvent) {}
func (BaseEventHandler) OnDeliveryFailure(DeliveryFailureEvent) {}
func (BaseEventHandler) OnRecordSkipped(RecordSkippedEvent)     {}

// observer feeds internal callbacks into metrics and the user's handler.
type observer struct {
	handler EventHandler
	metrics *metrics.Metrics
}

func (o *observer) OnStateChange(previous, current app.State, reason string) {
	if o.handler == nil {
		return
	}
	o.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (o *observer) OnDelivered(tag string, entry domain.Entry, outcome domain.Outcome, d time.Duration) {
	o.metrics.RecordDelivered(time.Now().Unix())
	if o.handler == nil {
		return
	}
	o.handler.OnDeliverySuccess(DeliverySuccessEvent{
		Tag:        tag,
		Time:       entry.Time,
		StatusCode: outcome.StatusCode,
		Duration:   d,
	})
}

func (o *observer) OnFailed(tag string, entry domain.Entry, outcome domain.Outcome) {
	o.metrics.RecordFailed()
	if o.handler == nil {
		return
	}
	o.handler.OnDeliveryFailure(DeliveryFailureEvent{
		Tag:        tag,
		Time:       entry.Time,
		StatusCode: outcome.StatusCode,
		Summary:    outcome.Summary,
		Err:        outcome.Err,
	})
}

func (o *observer) OnSkipped(tag string, entry domain.Entry) {
	o.metrics.RecordSkipped()
	if o.handler == nil {
		return
	}
	o.handler.OnRecordSkipped(RecordSkippedEvent{Tag: tag, Time: entry.Time})
}

var (
	_ app.StateEmitter    = (*observer)(nil)
	_ app.DeliveryEmitter = (*observer)(nil)
)
