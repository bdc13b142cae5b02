package ado

import (
	"io"
	"log/slog"
)

// CallEvent records metadata about a single REST call attempt.
type CallEvent struct {
	Method    string
	Path      string
	Status    int
	Attempt   int
	LatencyMs int64
	Err       error
}

// Observer receives events about REST calls for logging.
type Observer interface {
	OnCall(event CallEvent)
}

// LogObserver writes call events to an io.Writer.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
}

func (o *LogObserver) OnCall(event CallEvent) {
	attrs := []any{
		"method", event.Method,
		"path", event.Path,
		"status", event.Status,
		"attempt", event.Attempt,
		"latency_ms", event.LatencyMs,
	}
	if event.Err != nil {
		o.logger.Warn("ado_call", append(attrs, "error", event.Err.Error())...)
		return
	}
	o.logger.Debug("ado_call", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCall(CallEvent) {}
