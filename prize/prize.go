package prize

import (
	"fmt"

	"github.com/samber/lo"
)

// FillerLength is the number of items rendered on the reel before the reveal.
const FillerLength = 40

// Prize is one entry of a weighted pool.
// Probability is a relative weight, the pool does not need to sum to 100.
type Prize struct {
	Name        string  `mapstructure:"name" json:"name"`
	Probability float64 `mapstructure:"probability" json:"probability"`
}

// Pool is an ordered list of prizes. Order is the tie-break for selection
// and the cycling order for the filler sequence.
type Pool []Prize

// TotalWeight returns the sum of all weights in the pool.
func (p Pool) TotalWeight() float64 {
	return lo.SumBy(p, func(item Prize) float64 { return item.Probability })
}

// Names returns the prize names in pool order.
func (p Pool) Names() []string {
	return lo.Map(p, func(item Prize, _ int) string { return item.Name })
}

// Clone returns a copy that does not share the backing array.
func (p Pool) Clone() Pool {
	if p == nil {
		return nil
	}
	out := make(Pool, len(p))
	copy(out, p)
	return out
}

// Validate rejects negative weights and unnamed prizes.
func (p Pool) Validate() error {
	for i, item := range p {
		if item.Probability < 0 {
			return fmt.Errorf("prize %d (%q) has negative probability %v", i, item.Name, item.Probability)
		}
		if item.Name == "" {
			return fmt.Errorf("prize %d has no name", i)
		}
	}
	return nil
}

// Selectable reports whether Select can ever return a prize from this pool.
func (p Pool) Selectable() bool {
	return p.TotalWeight() > 0
}
