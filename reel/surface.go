package reel

import "time"

// Easing names the pacing curve of a transition.
type Easing string

const (
	EaseInOut Easing = "ease-in-out"
	Linear    Easing = "linear"
)

// Transition describes a vertical scroll of the reel from rest.
type Transition struct {
	// Offset is the distance scrolled upwards, in item height units of the surface.
	Offset     float64       `json:"offset"`
	Duration   time.Duration `json:"duration"`
	Easing     Easing        `json:"easing"`
	Iterations int           `json:"iterations"`
}

// AnimationController drives one transition on a surface.
//
// Done is closed once the transition finishes or is cancelled. Play must be
// called at most once; Cancel may be called at any time and is idempotent.
type AnimationController interface {
	Play()
	Cancel()
	Done() <-chan struct{}
}

// Surface is the rendering target of a reel: an ordered list of child items
// plus a timed transition primitive.
type Surface interface {
	ClearChildren()
	AppendChild(label string)
	Children() []string
	// ItemHeight is the height of one rendered child.
	ItemHeight() float64
	// Animate prepares a transition. It returns nil when the surface cannot
	// animate.
	Animate(t Transition) AnimationController
}

// SurfaceResolver locates a surface by selector.
type SurfaceResolver interface {
	Resolve(selector string) (Surface, bool)
}
