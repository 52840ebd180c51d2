package reel

import (
	"fmt"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/prize"
)

const (
	// DefaultMaxReelItems is used when Config.MaxReelItems is zero.
	DefaultMaxReelItems = 30
	// StepDuration is the animation time spent per reel item.
	StepDuration = 100 * time.Millisecond
	// GracePeriod separates the end of the scroll from the reveal.
	GracePeriod = 100 * time.Millisecond
)

// Callbacks are fired synchronously at fixed points of the lifecycle.
// Any of them may be nil.
type Callbacks struct {
	OnSpinStart       func()
	OnSpinEnd         func()
	OnNameListChanged func()
}

// Config is fixed at construction.
type Config struct {
	// Code identifies the reel in logs and events.
	Code string
	// SurfaceSelector locates the display surface.
	SurfaceSelector string
	Prizes          prize.Pool
	MaxReelItems    int
	// RemoveWinner defaults to true when nil. It has no effect on the draw.
	RemoveWinner *bool
	Names        []string
	Callbacks    Callbacks
}

// Validate checks the required fields.
func (c Config) Validate() error {
	if c.SurfaceSelector == "" {
		return fmt.Errorf("surface selector is required")
	}
	if c.Prizes == nil {
		return fmt.Errorf("prize pool is required")
	}
	if err := c.Prizes.Validate(); err != nil {
		return fmt.Errorf("invalid prize pool: %w", err)
	}
	if c.MaxReelItems < 0 {
		return fmt.Errorf("max reel items must be positive, got %d", c.MaxReelItems)
	}
	return nil
}

func (c Config) maxReelItems() int {
	if c.MaxReelItems == 0 {
		return DefaultMaxReelItems
	}
	return c.MaxReelItems
}

func (c Config) removeWinner() bool {
	if c.RemoveWinner == nil {
		return true
	}
	return *c.RemoveWinner
}

// AnimationDuration is the scroll time for n reel items.
func AnimationDuration(n int) time.Duration {
	return time.Duration(n) * StepDuration
}

// ScrollOffset is the distance travelled to bring item n-1 into view.
func ScrollOffset(n int, itemHeight float64) float64 {
	return float64(n-1) * itemHeight
}
