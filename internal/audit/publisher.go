package audit

import (
	"context"
	"log/slog"
	"time"

	"mindlog/pkg/requestcontext"
)

// Sink receives audit events for durable storage or forwarding.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher buffers events on a channel so emitting never blocks a login
// request on the sink. A full buffer drops the event with a log line rather
// than stalling auth traffic.
type Publisher struct {
	logger *slog.Logger
	inbox  chan Event
}

// NewPublisher constructs a Publisher with the given buffer size.
func NewPublisher(logger *slog.Logger, buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		logger: logger,
		inbox:  make(chan Event, buffer),
	}
}

// Emit enqueues an audit event, stamping timestamp and request metadata from
// the context when absent.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
	}
}

// Run drains the inbox into the sink until the context is canceled. Sink
// failures are logged and the worker keeps going; audit must never take the
// login path down with it.
func (p *Publisher) Run(ctx context.Context, sink Sink) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-p.inbox:
			if err := sink.Append(ctx, event); err != nil {
				p.logger.Error("audit append failed", "action", event.Action, "error", err)
			}
		}
	}
}
