package surface

import (
	"sync"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
)

// DefaultItemHeight is used when a Memory surface is built without one.
const DefaultItemHeight = 80

// MemoryConfig configures a Memory surface.
type MemoryConfig struct {
	ItemHeight float64
	// TimeScale multiplies every transition duration. Zero means 1.
	TimeScale float64
	// Static surfaces refuse to animate.
	Static bool
}

// Memory is a headless surface. Children live in a slice and transitions run
// on a timer for their full duration.
type Memory struct {
	mu          sync.Mutex
	cfg         MemoryConfig
	children    []string
	offset      float64
	mutations   int
	transitions []reel.Transition
}

// NewMemory creates a headless surface.
func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.ItemHeight <= 0 {
		cfg.ItemHeight = DefaultItemHeight
	}
	if cfg.TimeScale <= 0 {
		cfg.TimeScale = 1
	}
	return &Memory{cfg: cfg}
}

func (m *Memory) ClearChildren() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children = m.children[:0]
	m.offset = 0
	m.mutations++
}

func (m *Memory) AppendChild(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children = append(m.children, label)
	m.mutations++
}

func (m *Memory) Children() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.children))
	copy(out, m.children)
	return out
}

func (m *Memory) ItemHeight() float64 {
	return m.cfg.ItemHeight
}

func (m *Memory) Animate(t reel.Transition) reel.AnimationController {
	if m.cfg.Static {
		return nil
	}
	m.mu.Lock()
	m.transitions = append(m.transitions, t)
	m.mu.Unlock()

	d := time.Duration(float64(t.Duration) * m.cfg.TimeScale)
	return NewTimerAnimation(d, func() {
		m.mu.Lock()
		m.offset = t.Offset
		m.mu.Unlock()
	})
}

// Offset is the current scroll position.
func (m *Memory) Offset() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offset
}

// Mutations counts child list changes since creation.
func (m *Memory) Mutations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mutations
}

// Transitions returns every transition requested so far.
func (m *Memory) Transitions() []reel.Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]reel.Transition, len(m.transitions))
	copy(out, m.transitions)
	return out
}

// TimerAnimation completes after a fixed duration once played.
type TimerAnimation struct {
	duration time.Duration
	onFinish func()

	mu       sync.Mutex
	timer    *time.Timer
	played   bool
	finished sync.Once
	done     chan struct{}
}

// NewTimerAnimation returns a controller that closes Done d after Play.
// onFinish runs once when the transition ends normally.
func NewTimerAnimation(d time.Duration, onFinish func()) *TimerAnimation {
	return &TimerAnimation{
		duration: d,
		onFinish: onFinish,
		done:     make(chan struct{}),
	}
}

func (a *TimerAnimation) Play() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.played {
		return
	}
	a.played = true
	a.timer = time.AfterFunc(a.duration, func() { a.finish(true) })
}

func (a *TimerAnimation) Cancel() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()
	a.finish(false)
}

func (a *TimerAnimation) Done() <-chan struct{} {
	return a.done
}

func (a *TimerAnimation) finish(completed bool) {
	a.finished.Do(func() {
		if completed && a.onFinish != nil {
			a.onFinish()
		}
		close(a.done)
	})
}

// Registry maps selectors to surfaces.
type Registry struct {
	mu       sync.RWMutex
	surfaces map[string]reel.Surface
}

func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[string]reel.Surface)}
}

func (r *Registry) Register(selector string, s reel.Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaces[selector] = s
}

// Resolve implements reel.SurfaceResolver.
func (r *Registry) Resolve(selector string) (reel.Surface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surfaces[selector]
	return s, ok
}
