package printing

import (
	"context"
	"time"

	"github.com/orderdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Transport delivers rendered bill content to a physical printer. Print
// blocks for the duration of the attempt and honors ctx cancellation;
// a timed-out attempt counts as failed.
type Transport interface {
	Print(ctx context.Context, content, printerName string) error
}

// SimulatedTransport stands in for a real printer driver. It sleeps for
// a configured latency and then succeeds or fails deterministically,
// which is enough to exercise the full print lifecycle end to end.
type SimulatedTransport struct {
	latency time.Duration
	fail    bool
	logger  *zap.Logger
}

// SimulatedTransportOption is a functional option for configuring the transport
type SimulatedTransportOption func(*SimulatedTransport)

// WithLatency sets the simulated print duration
func WithLatency(latency time.Duration) SimulatedTransportOption {
	return func(t *SimulatedTransport) {
		t.latency = latency
	}
}

// WithFailure makes every print attempt fail
func WithFailure(fail bool) SimulatedTransportOption {
	return func(t *SimulatedTransport) {
		t.fail = fail
	}
}

// WithTransportLogger sets the logger for the transport
func WithTransportLogger(logger *zap.Logger) SimulatedTransportOption {
	return func(t *SimulatedTransport) {
		t.logger = logger
	}
}

// NewSimulatedTransport creates a simulated printer transport
func NewSimulatedTransport(opts ...SimulatedTransportOption) *SimulatedTransport {
	t := &SimulatedTransport{
		latency: 2 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Print simulates sending content to a printer
func (t *SimulatedTransport) Print(ctx context.Context, content, printerName string) error {
	timer := time.NewTimer(t.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if t.fail {
		return shared.NewDomainError("PRINTER_ERROR", "Printer rejected the job")
	}

	t.logger.Debug("printed bill",
		zap.String("printer_name", printerName),
		zap.Int("content_bytes", len(content)),
	)
	return nil
}

// Ensure SimulatedTransport implements Transport
var _ Transport = (*SimulatedTransport)(nil)
