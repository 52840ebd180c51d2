package reel

import (
	"context"

	"github.com/Digital-Creators-Team/lucky-draw-module/errors"
	"github.com/rs/zerolog"
)

// Reporter receives every failure of a reel. Implementations must not block.
type Reporter interface {
	Report(ctx context.Context, err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, err error)

func (f ReporterFunc) Report(ctx context.Context, err error) { f(ctx, err) }

// LogReporter writes failures to the logger attached to ctx, or to Logger
// when ctx carries none.
type LogReporter struct {
	Logger zerolog.Logger
}

func (r LogReporter) Report(ctx context.Context, err error) {
	logger := &r.Logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		logger = l
	}

	code := errors.GetCode(err)
	event := logger.Warn()
	if code == errors.ErrCallbackPanic || code == errors.ErrMissingDisplaySurface {
		event = logger.Error()
	}
	event.Err(err).Int("error_code", code).Msg("Spin failed")
}

// Event types published to an Observer.
const (
	EventSpinStarted   = "spin.started"
	EventSpinCompleted = "spin.completed"
	EventSpinFailed    = "spin.failed"
	EventNamesChanged  = "names.changed"
)

// Event describes one lifecycle step of a reel.
type Event struct {
	Type      string   `json:"type"`
	ReelCode  string   `json:"reel_code"`
	Result    *Result  `json:"result,omitempty"`
	Names     []string `json:"names,omitempty"`
	Error     string   `json:"error,omitempty"`
	ErrorCode int      `json:"error_code,omitempty"`
}

// Observer is notified of lifecycle events after the matching callback has run.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }
