package reel

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/errors"
	"github.com/Digital-Creators-Team/lucky-draw-module/prize"
)

// journal records surface mutations and callbacks in call order.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(e string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

func (j *journal) index(e string) int {
	for i, got := range j.list() {
		if got == e {
			return i
		}
	}
	return -1
}

type fakeAnimation struct {
	once    sync.Once
	release chan struct{}
	done    chan struct{}
	onPlay  func()
}

func (a *fakeAnimation) Play() {
	a.onPlay()
	go func() {
		if a.release != nil {
			<-a.release
		}
		a.once.Do(func() { close(a.done) })
	}()
}

func (a *fakeAnimation) Cancel() { a.once.Do(func() { close(a.done) }) }

func (a *fakeAnimation) Done() <-chan struct{} { return a.done }

type fakeSurface struct {
	log         *journal
	mu          sync.Mutex
	children    []string
	mutations   int
	itemHeight  float64
	static      bool
	release     chan struct{}
	played      chan struct{}
	playOnce    sync.Once
	transitions []Transition
}

func newFakeSurface(log *journal) *fakeSurface {
	return &fakeSurface{log: log, itemHeight: 50, played: make(chan struct{})}
}

func (s *fakeSurface) ClearChildren() {
	s.mu.Lock()
	s.children = nil
	s.mutations++
	s.mu.Unlock()
	s.log.add("clear")
}

func (s *fakeSurface) AppendChild(label string) {
	s.mu.Lock()
	s.children = append(s.children, label)
	s.mutations++
	s.mu.Unlock()
	s.log.add("append:" + label)
}

func (s *fakeSurface) Children() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.children...)
}

func (s *fakeSurface) ItemHeight() float64 { return s.itemHeight }

func (s *fakeSurface) Animate(t Transition) AnimationController {
	if s.static {
		return nil
	}
	s.mu.Lock()
	s.transitions = append(s.transitions, t)
	s.mu.Unlock()
	return &fakeAnimation{
		release: s.release,
		done:    make(chan struct{}),
		onPlay: func() {
			s.log.add("play")
			s.playOnce.Do(func() { close(s.played) })
		},
	}
}

func (s *fakeSurface) mutationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutations
}

type recordingReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingReporter) Report(_ context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recordingReporter) codes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.errs))
	for _, err := range r.errs {
		out = append(out, errors.GetCode(err))
	}
	return out
}

type harness struct {
	reel     *Reel
	surface  *fakeSurface
	log      *journal
	reporter *recordingReporter
	waits    []time.Duration
	states   []State
	draws    int
	mu       sync.Mutex
}

func newHarness(t *testing.T, cfg Config, drawValue float64) *harness {
	t.Helper()
	h := &harness{log: &journal{}, reporter: &recordingReporter{}}
	h.surface = newFakeSurface(h.log)

	if cfg.SurfaceSelector == "" {
		cfg.SurfaceSelector = "#reel"
	}
	if cfg.Callbacks.OnSpinStart == nil {
		cfg.Callbacks.OnSpinStart = func() { h.log.add("on_spin_start") }
	}
	if cfg.Callbacks.OnSpinEnd == nil {
		cfg.Callbacks.OnSpinEnd = func() { h.log.add("on_spin_end") }
	}
	if cfg.Callbacks.OnNameListChanged == nil {
		cfg.Callbacks.OnNameListChanged = func() { h.log.add("on_name_list_changed") }
	}

	r, err := New(cfg, h.surface, Options{
		Reporter: h.reporter,
		Draw: func() float64 {
			h.mu.Lock()
			h.draws++
			h.mu.Unlock()
			return drawValue
		},
		After: func(d time.Duration) <-chan time.Time {
			h.mu.Lock()
			h.waits = append(h.waits, d)
			h.mu.Unlock()
			ch := make(chan time.Time, 1)
			ch <- time.Now()
			return ch
		},
		OnState: func(s State) {
			h.mu.Lock()
			h.states = append(h.states, s)
			h.mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Failed to create reel: %v", err)
	}
	h.reel = r
	return h
}

func (h *harness) stateTrace() []State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]State(nil), h.states...)
}

var evenPool = prize.Pool{{Name: "A", Probability: 50}, {Name: "B", Probability: 50}}

func TestSpin_PicksWinnerByDraw(t *testing.T) {
	tests := []struct {
		name string
		draw float64
		want string
	}{
		{name: "draw 0.3 lands on A", draw: 0.3, want: "A"},
		{name: "draw 0.6 lands on B", draw: 0.6, want: "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Config{Prizes: evenPool, Names: []string{"alice"}}, tt.draw)

			res, err := h.reel.SpinResult(context.Background())
			if err != nil {
				t.Fatalf("expected spin to succeed, got %v", err)
			}
			if res.Winner == nil || res.Winner.Name != tt.want {
				t.Fatalf("expected winner %s, got %+v", tt.want, res.Winner)
			}
			if res.State != Completed {
				t.Errorf("expected state completed, got %s", res.State)
			}
			children := h.surface.Children()
			if len(children) != 1 || children[0] != tt.want {
				t.Errorf("expected surface to show only %s, got %v", tt.want, children)
			}
		})
	}
}

func TestSpin_EmptyPoolFailsWithoutMutation(t *testing.T) {
	h := newHarness(t, Config{Prizes: prize.Pool{}, Names: []string{"x"}}, 0.5)

	if h.reel.Spin(context.Background()) {
		t.Fatal("expected spin to fail on empty pool")
	}
	if n := h.surface.mutationCount(); n != 0 {
		t.Errorf("expected no surface mutation, got %d", n)
	}
	if entries := h.log.list(); len(entries) != 0 {
		t.Errorf("expected no callbacks or mutations, got %v", entries)
	}
	if codes := h.reporter.codes(); len(codes) != 1 || codes[0] != errors.ErrNoSelection {
		t.Errorf("expected one NoSelection report, got %v", codes)
	}
}

func TestSpin_AllZeroWeightsFails(t *testing.T) {
	h := newHarness(t, Config{Prizes: prize.Pool{{Name: "A"}, {Name: "B"}}, Names: []string{"x"}}, 0.5)

	_, err := h.reel.SpinResult(context.Background())
	if !stderrors.Is(err, errors.NoSelection) {
		t.Fatalf("expected NoSelection, got %v", err)
	}
}

func TestSpin_EmptyNameListFailsBeforeSelection(t *testing.T) {
	h := newHarness(t, Config{Prizes: prize.Pool{{Name: "A", Probability: 100}}}, 0.5)

	_, err := h.reel.SpinResult(context.Background())
	if !stderrors.Is(err, errors.EmptyNameList) {
		t.Fatalf("expected EmptyNameList, got %v", err)
	}
	if h.draws != 0 {
		t.Errorf("expected no draw before the name guard, got %d", h.draws)
	}
	if n := h.surface.mutationCount(); n != 0 {
		t.Errorf("expected no surface mutation, got %d", n)
	}
	if entries := h.log.list(); len(entries) != 0 {
		t.Errorf("expected no callbacks, got %v", entries)
	}

	want := []State{Idle, Failed, Idle}
	got := h.stateTrace()
	if len(got) != len(want) {
		t.Fatalf("expected states %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("state %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if h.reel.State() != Idle {
		t.Errorf("expected idle after spin, got %s", h.reel.State())
	}
	if last := h.reel.LastResult(); last == nil || last.State != Failed {
		t.Errorf("expected last result failed, got %+v", last)
	}
}

func TestSpin_TransitionGeometry(t *testing.T) {
	tests := []struct {
		name         string
		maxReelItems int
		wantDuration time.Duration
		wantOffset   float64
	}{
		{name: "ten items", maxReelItems: 10, wantDuration: 1000 * time.Millisecond, wantOffset: 450},
		{name: "default", maxReelItems: 0, wantDuration: 3000 * time.Millisecond, wantOffset: 29 * 50},
		{name: "one item", maxReelItems: 1, wantDuration: 100 * time.Millisecond, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Config{Prizes: evenPool, Names: []string{"x"}, MaxReelItems: tt.maxReelItems}, 0.1)

			res, err := h.reel.SpinResult(context.Background())
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			tr := res.Transition
			if tr.Duration != tt.wantDuration {
				t.Errorf("expected duration %v, got %v", tt.wantDuration, tr.Duration)
			}
			if tr.Offset != tt.wantOffset {
				t.Errorf("expected offset %v, got %v", tt.wantOffset, tr.Offset)
			}
			if tr.Easing != EaseInOut || tr.Iterations != 1 {
				t.Errorf("expected one ease-in-out iteration, got %+v", tr)
			}
			if len(h.waits) != 1 || h.waits[0] != GracePeriod {
				t.Errorf("expected a single %v grace wait, got %v", GracePeriod, h.waits)
			}
		})
	}
}

func TestSpin_LifecycleOrder(t *testing.T) {
	pool := prize.Pool{{Name: "A", Probability: 1}, {Name: "B", Probability: 1}, {Name: "C", Probability: 1}}
	h := newHarness(t, Config{Prizes: pool, Names: []string{"x"}}, 0.9)

	if !h.reel.Spin(context.Background()) {
		t.Fatal("expected spin to succeed")
	}

	entries := h.log.list()
	if entries[0] != "on_spin_start" {
		t.Fatalf("expected on_spin_start before any mutation, got %v", entries[:3])
	}
	if entries[len(entries)-1] != "on_spin_end" {
		t.Errorf("expected on_spin_end last, got %s", entries[len(entries)-1])
	}
	if entries[len(entries)-2] != "append:C" || entries[len(entries)-3] != "clear" {
		t.Errorf("expected reveal as clear then append:C, got %v", entries[len(entries)-3:])
	}

	appends := 0
	play := h.log.index("play")
	for i, e := range entries[:play] {
		if len(e) > 7 && e[:7] == "append:" {
			if e[7:] != pool[appends%len(pool)].Name {
				t.Errorf("filler %d at %d: expected %s, got %s", appends, i, pool[appends%len(pool)].Name, e[7:])
			}
			appends++
		}
	}
	if appends != prize.FillerLength {
		t.Errorf("expected %d filler items before play, got %d", prize.FillerLength, appends)
	}

	want := []State{Idle, Selecting, Animating, Revealing, Completed, Idle}
	got := h.stateTrace()
	if len(got) != len(want) {
		t.Fatalf("expected states %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("state %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSpin_MissingSurface(t *testing.T) {
	t.Run("nil surface", func(t *testing.T) {
		rep := &recordingReporter{}
		called := false
		r, err := New(Config{
			SurfaceSelector: "#missing",
			Prizes:          evenPool,
			Names:           []string{"x"},
			Callbacks:       Callbacks{OnSpinStart: func() { called = true }},
		}, nil, Options{Reporter: rep})
		if err != nil {
			t.Fatalf("Failed to create reel: %v", err)
		}
		if r.Spin(context.Background()) {
			t.Fatal("expected spin to fail without surface")
		}
		if called {
			t.Error("expected no callback without surface")
		}
		if codes := rep.codes(); len(codes) != 1 || codes[0] != errors.ErrMissingDisplaySurface {
			t.Errorf("expected MissingDisplaySurface, got %v", codes)
		}
	})

	t.Run("surface without animation", func(t *testing.T) {
		h := newHarness(t, Config{Prizes: evenPool, Names: []string{"x"}}, 0.1)
		h.surface.static = true

		_, err := h.reel.SpinResult(context.Background())
		if !stderrors.Is(err, errors.MissingDisplaySurface) {
			t.Fatalf("expected MissingDisplaySurface, got %v", err)
		}
		if h.log.index("on_spin_start") != -1 || h.log.index("on_spin_end") != -1 {
			t.Errorf("expected no spin callbacks, got %v", h.log.list())
		}
		if n := h.surface.mutationCount(); n != 0 {
			t.Errorf("expected surface untouched, got %d mutations", n)
		}
		if c := h.surface.Children(); len(c) != 0 {
			t.Errorf("expected no leftover children, got %d", len(c))
		}
	})

	t.Run("typed nil surface", func(t *testing.T) {
		rep := &recordingReporter{}
		var s *fakeSurface
		r, err := New(Config{SurfaceSelector: "#typed", Prizes: evenPool, Names: []string{"x"}}, s, Options{Reporter: rep})
		if err != nil {
			t.Fatalf("Failed to create reel: %v", err)
		}
		if r.Spin(context.Background()) {
			t.Fatal("expected spin to fail on typed nil surface")
		}
		if codes := rep.codes(); len(codes) != 1 || codes[0] != errors.ErrMissingDisplaySurface {
			t.Errorf("expected MissingDisplaySurface, got %v", codes)
		}
	})
}

func TestSpin_RejectsConcurrentSpin(t *testing.T) {
	h := newHarness(t, Config{Prizes: evenPool, Names: []string{"x"}}, 0.1)
	h.surface.release = make(chan struct{})

	first := make(chan bool)
	go func() { first <- h.reel.Spin(context.Background()) }()

	select {
	case <-h.surface.played:
	case <-time.After(2 * time.Second):
		t.Fatal("first spin never started animating")
	}

	before := h.surface.mutationCount()
	_, err := h.reel.SpinResult(context.Background())
	if !stderrors.Is(err, errors.SpinInProgress) {
		t.Fatalf("expected SpinInProgress, got %v", err)
	}
	if h.surface.mutationCount() != before {
		t.Error("expected rejected spin not to touch the surface")
	}
	if h.reel.State() != Animating {
		t.Errorf("expected first spin still animating, got %s", h.reel.State())
	}

	close(h.surface.release)
	select {
	case ok := <-first:
		if !ok {
			t.Error("expected first spin to succeed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first spin never finished")
	}

	if h.reel.Spinning() {
		t.Error("expected guard to be released")
	}
}

func TestSpin_SharedGuard(t *testing.T) {
	guard := NewSpinGuard()
	s := newFakeSurface(&journal{})
	r, err := New(Config{SurfaceSelector: "#shared", Prizes: evenPool, Names: []string{"x"}}, s, Options{
		Reporter: &recordingReporter{},
		Guard:    guard,
	})
	if err != nil {
		t.Fatalf("Failed to create reel: %v", err)
	}

	if !guard.TryAcquire() {
		t.Fatal("expected idle guard")
	}
	if _, err := r.SpinResult(context.Background()); !stderrors.Is(err, errors.SpinInProgress) {
		t.Fatalf("expected SpinInProgress while guard is held, got %v", err)
	}
	if s.mutationCount() != 0 {
		t.Error("expected rejected spin not to touch the surface")
	}
	if r.Spinning() {
		t.Error("expected reel not to report spinning for a foreign spin")
	}

	guard.Release()
	if !r.Spin(context.Background()) {
		t.Fatal("expected spin to succeed once the guard is free")
	}
	if guard.Busy() {
		t.Error("expected guard released after spin")
	}
}

func TestSpin_IgnoresCancelledContext(t *testing.T) {
	h := newHarness(t, Config{Prizes: evenPool, Names: []string{"x"}}, 0.1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if !h.reel.Spin(ctx) {
		t.Error("expected spin to run to completion despite cancelled context")
	}
}

func TestSpin_CallbackPanicIsReported(t *testing.T) {
	h := newHarness(t, Config{
		Prizes:    evenPool,
		Names:     []string{"x"},
		Callbacks: Callbacks{OnSpinStart: func() { panic("boom") }},
	}, 0.1)

	if !h.reel.Spin(context.Background()) {
		t.Fatal("expected spin to survive a panicking callback")
	}
	if codes := h.reporter.codes(); len(codes) != 1 || codes[0] != errors.ErrCallbackPanic {
		t.Errorf("expected one CallbackPanic report, got %v", codes)
	}
}

func TestSpin_CarriesOperator(t *testing.T) {
	h := newHarness(t, Config{Prizes: evenPool, Names: []string{"x"}}, 0.1)
	ctx := WithOperator(context.Background(), NewOperator("u-1", "host"))

	res, err := h.reel.SpinResult(ctx)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.Operator == nil || res.Operator.ID != "u-1" {
		t.Errorf("expected operator u-1, got %+v", res.Operator)
	}
}

func TestSetNames(t *testing.T) {
	h := newHarness(t, Config{Prizes: evenPool}, 0.1)
	h.surface.AppendChild("stale")

	names := []string{"alice", "bob"}
	h.reel.SetNames(names)
	names[0] = "mallory"

	got := h.reel.Names()
	if len(got) != 2 || got[0] != "alice" {
		t.Errorf("expected stored copy [alice bob], got %v", got)
	}
	got[1] = "eve"
	if h.reel.Names()[1] != "bob" {
		t.Error("expected Names to return a copy")
	}
	if len(h.surface.Children()) != 0 {
		t.Errorf("expected surface cleared, got %v", h.surface.Children())
	}

	h.reel.SetNames(nil)
	count := 0
	for _, e := range h.log.list() {
		if e == "on_name_list_changed" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected callback once per call, got %d", count)
	}
	if h.reel.Spin(context.Background()) {
		t.Error("expected spin to fail after clearing names")
	}
}

func TestRemoveWinnerFlag(t *testing.T) {
	h := newHarness(t, Config{Prizes: evenPool, Names: []string{"x"}}, 0.1)
	if !h.reel.ShouldRemoveWinnerFromNameList() {
		t.Error("expected remove winner to default to true")
	}

	h.reel.SetShouldRemoveWinnerFromNameList(false)
	if h.reel.ShouldRemoveWinnerFromNameList() {
		t.Error("expected flag to be false after set")
	}

	if !h.reel.Spin(context.Background()) {
		t.Fatal("expected spin to succeed")
	}
	h.reel.SetShouldRemoveWinnerFromNameList(true)
	if !h.reel.Spin(context.Background()) {
		t.Fatal("expected spin to succeed")
	}
	if names := h.reel.Names(); len(names) != 1 || names[0] != "x" {
		t.Errorf("expected name list untouched by spins, got %v", names)
	}

	off := false
	r, err := New(Config{SurfaceSelector: "#r", Prizes: evenPool, RemoveWinner: &off}, nil, Options{})
	if err != nil {
		t.Fatalf("Failed to create reel: %v", err)
	}
	if r.ShouldRemoveWinnerFromNameList() {
		t.Error("expected configured false to be kept")
	}
}

func TestObserverEvents(t *testing.T) {
	var mu sync.Mutex
	var types []string
	r, err := New(Config{SurfaceSelector: "#r", Code: "office", Prizes: evenPool}, newFakeSurface(&journal{}), Options{
		Observer: ObserverFunc(func(_ context.Context, ev Event) {
			mu.Lock()
			defer mu.Unlock()
			if ev.ReelCode != "office" {
				t.Errorf("expected reel code office, got %s", ev.ReelCode)
			}
			types = append(types, ev.Type)
		}),
		Reporter: &recordingReporter{},
		After: func(time.Duration) <-chan time.Time {
			ch := make(chan time.Time, 1)
			ch <- time.Now()
			return ch
		},
	})
	if err != nil {
		t.Fatalf("Failed to create reel: %v", err)
	}

	r.Spin(context.Background())
	r.SetNames([]string{"x"})
	r.Spin(context.Background())

	want := []string{EventSpinFailed, EventNamesChanged, EventSpinStarted, EventSpinCompleted}
	mu.Lock()
	defer mu.Unlock()
	if len(types) != len(want) {
		t.Fatalf("expected events %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], types[i])
		}
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{SurfaceSelector: "#r", Prizes: evenPool}},
		{name: "empty pool is allowed", cfg: Config{SurfaceSelector: "#r", Prizes: prize.Pool{}}},
		{name: "missing selector", cfg: Config{Prizes: evenPool}, wantErr: true},
		{name: "missing prizes", cfg: Config{SurfaceSelector: "#r"}, wantErr: true},
		{name: "negative weight", cfg: Config{SurfaceSelector: "#r", Prizes: prize.Pool{{Name: "A", Probability: -1}}}, wantErr: true},
		{name: "negative max items", cfg: Config{SurfaceSelector: "#r", Prizes: evenPool, MaxReelItems: -3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, nil, Options{})
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestState_TextRoundTrip(t *testing.T) {
	for s := Idle; s <= Failed; s++ {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d) failed: %v", s, err)
		}
		var got State
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) failed: %v", text, err)
		}
		if got != s {
			t.Errorf("expected %s, got %s", s, got)
		}
	}

	var s State
	if err := s.UnmarshalText([]byte("spinning")); err == nil {
		t.Error("expected error for unknown state")
	}
}
