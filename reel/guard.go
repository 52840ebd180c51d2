package reel

import "sync/atomic"

// SpinGuard admits one spin at a time. Reels drawing on the same surface
// must share one guard.
type SpinGuard struct {
	busy atomic.Bool
}

// NewSpinGuard creates an idle guard.
func NewSpinGuard() *SpinGuard {
	return &SpinGuard{}
}

// TryAcquire takes the guard, reporting false when a spin already holds it.
func (g *SpinGuard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release frees the guard.
func (g *SpinGuard) Release() {
	g.busy.Store(false)
}

// Busy reports whether a spin holds the guard.
func (g *SpinGuard) Busy() bool {
	return g.busy.Load()
}
