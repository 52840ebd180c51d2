package game

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Digital-Creators-Team/lucky-draw-module/prize"
	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
	"github.com/Digital-Creators-Team/lucky-draw-module/surface"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Entry is one hosted reel with the surface its viewers follow.
type Entry struct {
	Config    *ReelConfig
	Reel      *reel.Reel
	Broadcast *surface.Broadcast
}

// BuildOptions are shared by every reel a Registry builds.
type BuildOptions struct {
	Logger    zerolog.Logger
	Observer  reel.Observer
	Reporter  reel.Reporter
	Draw      prize.Draw
	Callbacks reel.Callbacks
	// TimeScale speeds up or slows down headless animations. Zero means 1.
	TimeScale float64
	// Buffer is the per viewer frame buffer of each surface hub.
	Buffer int
}

// Registry hosts reels by code. Reels naming the same container share one
// surface and one spin guard, so at most one of them spins at a time.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	surfaces *surface.Registry
	guards   map[string]*reel.SpinGuard
	opts     BuildOptions
}

// NewRegistry creates an empty registry.
func NewRegistry(opts BuildOptions) *Registry {
	if opts.Buffer <= 0 {
		opts.Buffer = 128
	}
	return &Registry{
		entries:  make(map[string]*Entry),
		surfaces: surface.NewRegistry(),
		guards:   make(map[string]*reel.SpinGuard),
		opts:     opts,
	}
}

// Surfaces exposes the selector lookup used when reels are built.
func (r *Registry) Surfaces() reel.SurfaceResolver {
	return r.surfaces
}

// Add builds a reel from cfg and hosts it under cfg.Code.
func (r *Registry) Add(cfg *ReelConfig) (*Entry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[cfg.Code]; exists {
		return nil, fmt.Errorf("reel %q already registered", cfg.Code)
	}

	b := r.resolve(cfg)
	rl, err := reel.New(cfg.ToReel(r.opts.Callbacks), b, reel.Options{
		Logger:   r.opts.Logger,
		Reporter: r.opts.Reporter,
		Observer: r.opts.Observer,
		Draw:     r.opts.Draw,
		Guard:    r.guard(cfg.ReelContainer),
	})
	if err != nil {
		return nil, err
	}

	entry := &Entry{Config: cfg, Reel: rl, Broadcast: b}
	r.entries[cfg.Code] = entry
	return entry, nil
}

// resolve returns the broadcast surface of cfg's container, creating it on
// first use. Callers hold r.mu.
func (r *Registry) resolve(cfg *ReelConfig) *surface.Broadcast {
	if s, ok := r.surfaces.Resolve(cfg.ReelContainer); ok {
		if b, ok := s.(*surface.Broadcast); ok {
			return b
		}
	}
	inner := surface.NewMemory(surface.MemoryConfig{
		ItemHeight: cfg.ItemHeight,
		TimeScale:  r.opts.TimeScale,
	})
	hub := surface.NewHub(r.opts.Buffer, r.opts.Logger.With().Str("reel_container", cfg.ReelContainer).Logger())
	b := surface.NewBroadcast(cfg.ReelContainer, inner, hub)
	r.surfaces.Register(cfg.ReelContainer, b)
	return b
}

// guard returns the spin guard of container. Callers hold r.mu.
func (r *Registry) guard(container string) *reel.SpinGuard {
	g, ok := r.guards[container]
	if !ok {
		g = reel.NewSpinGuard()
		r.guards[container] = g
	}
	return g
}

// AddAll adds every config, stopping at the first failure.
func (r *Registry) AddAll(cfgs []*ReelConfig) error {
	for _, cfg := range cfgs {
		if _, err := r.Add(cfg); err != nil {
			return fmt.Errorf("reel %q: %w", cfg.Code, err)
		}
	}
	return nil
}

// Get returns the entry hosted under code.
func (r *Registry) Get(code string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[code]
	return e, ok
}

// Codes returns the hosted reel codes in sorted order.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	codes := lo.Keys(r.entries)
	r.mu.RUnlock()
	sort.Strings(codes)
	return codes
}

// Reels returns the hosted reels ordered by code.
func (r *Registry) Reels() []*reel.Reel {
	codes := r.Codes()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.FilterMap(codes, func(code string, _ int) (*reel.Reel, bool) {
		e, ok := r.entries[code]
		if !ok {
			return nil, false
		}
		return e.Reel, true
	})
}

// Has reports whether code is hosted.
func (r *Registry) Has(code string) bool {
	_, ok := r.Get(code)
	return ok
}
