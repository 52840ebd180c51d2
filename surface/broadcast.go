package surface

import (
	"context"
	"sync"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Frame types sent to reel viewers.
const (
	FrameSnapshot     = "snapshot"
	FrameClear        = "clear"
	FrameAppend       = "append"
	FrameAnimate      = "animate"
	FrameAnimationEnd = "animation_end"
)

// Frame is one visual mutation of a surface.
type Frame struct {
	Type       string           `json:"type"`
	Selector   string           `json:"selector"`
	Label      string           `json:"label,omitempty"`
	Children   []string         `json:"children,omitempty"`
	Transition *reel.Transition `json:"transition,omitempty"`
	DurationMs int64            `json:"duration_ms,omitempty"`
	Timestamp  int64            `json:"timestamp"`
}

// Hub fans frames out to every listener. Slow listeners drop frames.
type Hub struct {
	mu     sync.RWMutex
	buffer int
	subs   map[string]chan Frame
	logger zerolog.Logger
}

// NewHub creates a hub whose listeners buffer up to buffer frames.
func NewHub(buffer int, logger zerolog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		buffer: buffer,
		subs:   make(map[string]chan Frame),
		logger: logger.With().Str("component", "surface-hub").Logger(),
	}
}

// Send publishes a frame without blocking.
func (h *Hub) Send(f Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- f:
		default:
			h.logger.Warn().Str("sub_id", id).Str("frame", f.Type).Msg("Listener buffer full, dropping frame")
		}
	}
}

// Listen returns a channel of frames plus a cancel function. The channel is
// closed after cancel or when ctx ends.
func (h *Hub) Listen(ctx context.Context) (<-chan Frame, context.CancelFunc) {
	listenerCtx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()
	ch := make(chan Frame, h.buffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		<-listenerCtx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
		close(ch)
	}()

	return ch, cancel
}

// Listeners returns the number of active listeners.
func (h *Hub) Listeners() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast mirrors every mutation of an inner surface to a Hub.
type Broadcast struct {
	selector string
	inner    reel.Surface
	hub      *Hub
}

// NewBroadcast wraps inner. Frames are tagged with selector.
func NewBroadcast(selector string, inner reel.Surface, hub *Hub) *Broadcast {
	return &Broadcast{selector: selector, inner: inner, hub: hub}
}

// Hub returns the hub frames are published to.
func (b *Broadcast) Hub() *Hub { return b.hub }

// Snapshot describes the current children, for newly connected viewers.
func (b *Broadcast) Snapshot() Frame {
	return b.frame(Frame{Type: FrameSnapshot, Children: b.inner.Children()})
}

func (b *Broadcast) ClearChildren() {
	b.inner.ClearChildren()
	b.hub.Send(b.frame(Frame{Type: FrameClear}))
}

func (b *Broadcast) AppendChild(label string) {
	b.inner.AppendChild(label)
	b.hub.Send(b.frame(Frame{Type: FrameAppend, Label: label}))
}

func (b *Broadcast) Children() []string { return b.inner.Children() }

func (b *Broadcast) ItemHeight() float64 { return b.inner.ItemHeight() }

func (b *Broadcast) Animate(t reel.Transition) reel.AnimationController {
	inner := b.inner.Animate(t)
	if inner == nil {
		return nil
	}
	return &broadcastAnimation{owner: b, inner: inner, transition: t}
}

func (b *Broadcast) frame(f Frame) Frame {
	f.Selector = b.selector
	f.Timestamp = time.Now().UnixMilli()
	return f
}

type broadcastAnimation struct {
	owner      *Broadcast
	inner      reel.AnimationController
	transition reel.Transition
	once       sync.Once
}

func (a *broadcastAnimation) Play() {
	a.once.Do(func() {
		t := a.transition
		a.owner.hub.Send(a.owner.frame(Frame{
			Type:       FrameAnimate,
			Transition: &t,
			DurationMs: t.Duration.Milliseconds(),
		}))
		a.inner.Play()
		go func() {
			<-a.inner.Done()
			a.owner.hub.Send(a.owner.frame(Frame{Type: FrameAnimationEnd}))
		}()
	})
}

func (a *broadcastAnimation) Cancel() { a.inner.Cancel() }

func (a *broadcastAnimation) Done() <-chan struct{} { return a.inner.Done() }
