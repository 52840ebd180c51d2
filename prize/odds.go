package prize

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Odd is the exact share of one prize in its pool.
type Odd struct {
	Name   string          `json:"name"`
	Weight decimal.Decimal `json:"weight"`
	Chance decimal.Decimal `json:"chance"`
}

// Odds returns weight/total per prize, rounded to places decimals.
// A pool with no positive weight gives every prize a zero chance.
func Odds(pool Pool, places int32) []Odd {
	total := lo.Reduce(pool, func(acc decimal.Decimal, item Prize, _ int) decimal.Decimal {
		return acc.Add(decimal.NewFromFloat(item.Probability))
	}, decimal.Zero)

	return lo.Map(pool, func(item Prize, _ int) Odd {
		weight := decimal.NewFromFloat(item.Probability)
		chance := decimal.Zero
		if total.IsPositive() {
			chance = weight.DivRound(total, places+2).Round(places)
		}
		return Odd{Name: item.Name, Weight: weight, Chance: chance}
	})
}

// Tally counts how often each name won over a series of draws.
type Tally struct {
	Draws  int
	Misses int
	Counts map[string]int
}

// Simulate runs Select n times and counts the winners.
func Simulate(pool Pool, draw Draw, n int) Tally {
	t := Tally{Draws: n, Counts: make(map[string]int, len(pool))}
	for range n {
		winner, ok := Select(pool, draw)
		if !ok {
			t.Misses++
			continue
		}
		t.Counts[winner.Name]++
	}
	return t
}

// Share returns the observed frequency of name, rounded to places decimals.
func (t Tally) Share(name string, places int32) decimal.Decimal {
	if t.Draws == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(t.Counts[name])).
		DivRound(decimal.NewFromInt(int64(t.Draws)), places)
}
