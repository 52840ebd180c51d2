package provider

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/pkg/providers"
	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
	"github.com/rs/zerolog"
)

const defaultDeliveryTimeout = 10 * time.Second

// Dispatcher is a reel.Observer that forwards lifecycle events to event
// providers and mirrors name list changes into a name provider.
//
// Delivery runs in the background so a slow broker or webhook never holds
// up a spin. Wait blocks until queued deliveries finish. Name saves of one
// reel are written one at a time and a save superseded by a newer list is
// dropped, so the stored list is always the last one set.
type Dispatcher struct {
	names   providers.NameProvider
	events  []providers.EventProvider
	timeout time.Duration
	logger  zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.Mutex
	savers map[string]*nameSaver
}

// nameSaver orders the name saves of one reel.
type nameSaver struct {
	mu     sync.Mutex
	latest atomic.Uint64
}

// NewDispatcher creates a dispatcher. names may be nil.
func NewDispatcher(names providers.NameProvider, events []providers.EventProvider, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		names:   names,
		events:  events,
		timeout: defaultDeliveryTimeout,
		logger:  logger.With().Str("component", "dispatcher").Logger(),
		savers:  make(map[string]*nameSaver),
	}
}

// Observe implements reel.Observer.
func (d *Dispatcher) Observe(ctx context.Context, ev reel.Event) {
	ctx = context.WithoutCancel(ctx)
	out := providers.NewReelEvent(ev)

	if ev.Type == reel.EventNamesChanged && d.names != nil {
		saver, seq := d.nextSave(ev.ReelCode)
		d.run(ctx, func(ctx context.Context) {
			d.saveNames(ctx, saver, seq, ev.ReelCode, ev.Names)
		})
	}

	for _, p := range d.events {
		p := p
		d.run(ctx, func(ctx context.Context) {
			if err := p.Publish(ctx, out); err != nil {
				d.logger.Warn().Err(err).Str("type", out.Type).Msg("Event delivery failed")
			}
		})
	}
}

func (d *Dispatcher) nextSave(reelCode string) (*nameSaver, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	saver, ok := d.savers[reelCode]
	if !ok {
		saver = &nameSaver{}
		d.savers[reelCode] = saver
	}
	return saver, saver.latest.Add(1)
}

func (d *Dispatcher) saveNames(ctx context.Context, saver *nameSaver, seq uint64, reelCode string, names []string) {
	saver.mu.Lock()
	defer saver.mu.Unlock()
	if saver.latest.Load() != seq {
		d.logger.Debug().Str("reel_code", reelCode).Uint64("seq", seq).Msg("Skipping superseded name list")
		return
	}
	if err := d.names.SaveNames(ctx, reelCode, names); err != nil {
		d.logger.Error().Err(err).Str("reel_code", reelCode).Msg("Failed to save name list")
	}
}

func (d *Dispatcher) run(ctx context.Context, fn func(context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until every queued delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Restore loads the saved list of r, if any, and applies it. It reports
// whether a saved list was found.
func (d *Dispatcher) Restore(ctx context.Context, r *reel.Reel) (bool, error) {
	if d.names == nil {
		return false, nil
	}
	names, ok, err := d.names.LoadNames(ctx, r.Code())
	if err != nil || !ok {
		return false, err
	}
	r.SetNamesContext(ctx, names)
	return true, nil
}
