package reel

import (
	"sync"

	"github.com/Digital-Creators-Team/lucky-draw-module/prize"
)

// Store holds the mutable configuration of a reel: the candidate names, the
// prize pool and the behaviour flags.
type Store struct {
	mu           sync.RWMutex
	names        []string
	prizes       prize.Pool
	maxReelItems int
	removeWinner bool
	callbacks    Callbacks
}

// NewStore copies cfg into a new store.
func NewStore(cfg Config) *Store {
	return &Store{
		names:        cloneNames(cfg.Names),
		prizes:       cfg.Prizes.Clone(),
		maxReelItems: cfg.maxReelItems(),
		removeWinner: cfg.removeWinner(),
		callbacks:    cfg.Callbacks,
	}
}

// SetNames replaces the list wholesale.
func (s *Store) SetNames(names []string) {
	cp := cloneNames(names)
	s.mu.Lock()
	s.names = cp
	s.mu.Unlock()
}

// Names returns a copy of the current list.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNames(s.names)
}

// Prizes returns a snapshot of the pool.
func (s *Store) Prizes() prize.Pool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prizes.Clone()
}

func (s *Store) MaxReelItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxReelItems
}

func (s *Store) RemoveWinner() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.removeWinner
}

func (s *Store) SetRemoveWinner(v bool) {
	s.mu.Lock()
	s.removeWinner = v
	s.mu.Unlock()
}

// Callbacks never change after construction.
func (s *Store) Callbacks() Callbacks {
	return s.callbacks
}

func cloneNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
