package reel

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/errors"
	"github.com/Digital-Creators-Team/lucky-draw-module/logging"
	"github.com/Digital-Creators-Team/lucky-draw-module/prize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options holds the collaborators of a Reel. Zero values fall back to
// defaults: the shared random source, a LogReporter on Logger, real timers.
type Options struct {
	Logger   zerolog.Logger
	Reporter Reporter
	Observer Observer
	Draw     prize.Draw
	// After replaces time.After for the grace pause.
	After func(time.Duration) <-chan time.Time
	// OnState is called on every state change.
	OnState func(State)
	// Guard is shared by reels drawing on the same surface. Nil gives the
	// reel a guard of its own.
	Guard *SpinGuard
}

// Result describes one finished spin.
type Result struct {
	SpinID     string        `json:"spin_id"`
	State      State         `json:"state"`
	Winner     *prize.Prize  `json:"winner,omitempty"`
	Filler     []prize.Prize `json:"-"`
	Transition Transition    `json:"transition"`
	Operator   *Operator     `json:"operator,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Reel draws a winner from a weighted pool and reveals it on a Surface.
//
// One Reel runs at most one spin at a time, and so does every group of reels
// sharing a SpinGuard. A Spin issued while another holds the guard is
// rejected with errors.SpinInProgress.
type Reel struct {
	code     string
	store    *Store
	surface  Surface
	logger   zerolog.Logger
	reporter Reporter
	observer Observer
	draw     prize.Draw
	after    func(time.Duration) <-chan time.Time
	onState  func(State)

	guard    *SpinGuard
	spinning atomic.Bool
	mu       sync.RWMutex
	state    State
	last     *Result
}

// New validates cfg and builds a Reel bound to surface. A nil surface is
// accepted; every spin on it fails with errors.MissingDisplaySurface.
func New(cfg Config, surface Surface, opts Options) (*Reel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidPrizePool, "invalid reel configuration")
	}

	logger := logging.WithComponent(opts.Logger, "reel")
	if cfg.Code != "" {
		logger = logging.WithReelCode(logger, cfg.Code)
	}

	r := &Reel{
		code:     cfg.Code,
		store:    NewStore(cfg),
		surface:  surface,
		logger:   logger,
		reporter: opts.Reporter,
		observer: opts.Observer,
		draw:     opts.Draw,
		after:    opts.After,
		onState:  opts.OnState,
		guard:    opts.Guard,
	}
	if isNilSurface(surface) {
		r.surface = nil
	}
	if r.guard == nil {
		r.guard = NewSpinGuard()
	}
	if r.reporter == nil {
		r.reporter = LogReporter{Logger: logger}
	}
	if r.draw == nil {
		r.draw = prize.DefaultDraw
	}
	if r.after == nil {
		r.after = time.After
	}
	return r, nil
}

// Code returns the reel code from its configuration.
func (r *Reel) Code() string { return r.code }

// Store exposes the configuration store.
func (r *Reel) Store() *Store { return r.store }

// Surface returns the bound surface, possibly nil.
func (r *Reel) Surface() Surface { return r.surface }

// State returns the current phase. Between spins it is Idle.
func (r *Reel) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// LastResult returns the outcome of the most recent spin that got past the
// single flight guard, or nil.
func (r *Reel) LastResult() *Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return nil
	}
	cp := *r.last
	return &cp
}

// Spinning reports whether a spin is in flight.
func (r *Reel) Spinning() bool {
	return r.spinning.Load()
}

// Names returns a copy of the candidate list.
func (r *Reel) Names() []string {
	return r.store.Names()
}

// SetNames replaces the candidate list, clears the surface and fires
// OnNameListChanged once.
func (r *Reel) SetNames(names []string) {
	r.SetNamesContext(context.Background(), names)
}

// SetNamesContext is SetNames with a context for the observer.
func (r *Reel) SetNamesContext(ctx context.Context, names []string) {
	r.store.SetNames(names)
	if r.surface != nil {
		r.surface.ClearChildren()
	}
	r.invoke(ctx, "on_name_list_changed", r.store.Callbacks().OnNameListChanged)
	r.logger.Debug().Int("count", len(names)).Msg("Name list replaced")
	r.notify(ctx, Event{Type: EventNamesChanged, Names: r.store.Names()})
}

// ShouldRemoveWinnerFromNameList reports the configured flag. The flag is
// stored only; the draw never consumes the name list.
func (r *Reel) ShouldRemoveWinnerFromNameList() bool {
	return r.store.RemoveWinner()
}

// SetShouldRemoveWinnerFromNameList updates the stored flag.
func (r *Reel) SetShouldRemoveWinnerFromNameList(v bool) {
	r.store.SetRemoveWinner(v)
}

// Spin runs one spin and reports whether the winner was revealed.
func (r *Reel) Spin(ctx context.Context) bool {
	_, err := r.SpinResult(ctx)
	return err == nil
}

// SpinResult runs one spin to completion and returns its outcome.
//
// ctx supplies values only. A spin is never aborted once it passes the guard,
// so cancellation of ctx is ignored. Every failure is passed to the Reporter
// and returned as an *errors.AppError.
func (r *Reel) SpinResult(ctx context.Context) (Result, error) {
	ctx = context.WithoutCancel(ctx)
	res := Result{
		SpinID:    uuid.NewString(),
		Operator:  OperatorFromContext(ctx),
		StartedAt: time.Now(),
	}
	logger := logging.WithSpinID(r.logger, res.SpinID)
	ctx = logger.WithContext(ctx)

	if !r.guard.TryAcquire() {
		res.State = Failed
		res.FinishedAt = time.Now()
		r.reporter.Report(ctx, errors.SpinInProgress)
		return res, errors.SpinInProgress
	}
	r.spinning.Store(true)
	defer r.guard.Release()
	defer r.spinning.Store(false)

	r.setState(Idle)
	defer r.setState(Idle)

	fail := func(err *errors.AppError) (Result, error) {
		r.setState(Failed)
		res.State = Failed
		res.FinishedAt = time.Now()
		r.remember(res)
		r.reporter.Report(ctx, err)
		snapshot := res
		r.notify(ctx, Event{Type: EventSpinFailed, Result: &snapshot, Error: err.Error(), ErrorCode: err.Code})
		return res, err
	}

	if len(r.store.Names()) == 0 {
		return fail(errors.EmptyNameList)
	}

	r.setState(Selecting)
	pool := r.store.Prizes()
	winner, ok := prize.Select(pool, r.draw)
	if !ok {
		return fail(errors.NoSelection.WithDebug("%d prizes, total weight %v", len(pool), pool.TotalWeight()))
	}
	if r.surface == nil {
		return fail(errors.MissingDisplaySurface.WithDebug("no surface bound to reel %q", r.code))
	}
	res.Winner = &winner

	// Animate before on_spin_start: a refusal leaves the surface untouched.
	n := r.store.MaxReelItems()
	res.Transition = Transition{
		Offset:     ScrollOffset(n, r.surface.ItemHeight()),
		Duration:   AnimationDuration(n),
		Easing:     EaseInOut,
		Iterations: 1,
	}
	anim := r.surface.Animate(res.Transition)
	if anim == nil {
		return fail(errors.MissingDisplaySurface.WithDebug("surface of reel %q cannot animate", r.code))
	}

	callbacks := r.store.Callbacks()
	r.invoke(ctx, "on_spin_start", callbacks.OnSpinStart)
	started := res
	r.notify(ctx, Event{Type: EventSpinStarted, Result: &started})

	r.setState(Animating)
	res.Filler = prize.BuildFiller(pool, prize.FillerLength)
	r.surface.ClearChildren()
	for _, item := range res.Filler {
		r.surface.AppendChild(item.Name)
	}

	anim.Play()
	<-anim.Done()
	<-r.after(GracePeriod)

	r.setState(Revealing)
	r.surface.ClearChildren()
	r.surface.AppendChild(winner.Name)

	r.invoke(ctx, "on_spin_end", callbacks.OnSpinEnd)
	r.setState(Completed)
	res.State = Completed
	res.FinishedAt = time.Now()
	r.remember(res)

	logger.Info().
		Str("winner", winner.Name).
		Dur("duration", res.FinishedAt.Sub(res.StartedAt)).
		Msg("Spin completed")
	completed := res
	r.notify(ctx, Event{Type: EventSpinCompleted, Result: &completed})

	return res, nil
}

func (r *Reel) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
	if r.onState != nil {
		r.onState(s)
	}
}

func (r *Reel) remember(res Result) {
	r.mu.Lock()
	r.last = &res
	r.mu.Unlock()
}

// invoke runs a user callback, turning a panic into a reported error.
func (r *Reel) invoke(ctx context.Context, name string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.reporter.Report(ctx, errors.NewWithDebug(errors.ErrCallbackPanic, "callback panicked",
				fmt.Sprintf("%s: %v", name, rec)))
		}
	}()
	fn()
}

func (r *Reel) notify(ctx context.Context, ev Event) {
	if r.observer == nil {
		return
	}
	ev.ReelCode = r.code
	r.observer.Observe(ctx, ev)
}

// isNilSurface catches a typed nil pointer stored in the interface.
func isNilSurface(s Surface) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
