package prize

import (
	"math/rand/v2"
	"sync"
)

// Draw returns a uniform value in [0,1).
type Draw func() float64

// DefaultDraw uses the runtime's shared generator.
func DefaultDraw() float64 {
	return rand.Float64()
}

// NewSeededDraw returns a reproducible source, safe for concurrent use.
func NewSeededDraw(seed uint64) Draw {
	var mu sync.Mutex
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64()
	}
}

// Select picks one prize with probability weight/total.
//
// The draw is scaled by the total weight and the pool is walked in order,
// returning the first prize whose running total is strictly greater than the
// scaled value. A zero weight prize can therefore never win, and an empty or
// all-zero pool yields false.
func Select(pool Pool, draw Draw) (Prize, bool) {
	if draw == nil {
		draw = DefaultDraw
	}

	total := pool.TotalWeight()
	target := draw() * total

	var accumulated float64
	for _, item := range pool {
		accumulated += item.Probability
		if target < accumulated {
			return item, true
		}
	}
	return Prize{}, false
}
