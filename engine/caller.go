package engine

import "math/rand"

// Call is one drawn number with its display letter and position in the
// draw sequence.
type Call struct {
	Number int    `json:"number"`
	Letter string `json:"letter"`
	Index  int    `json:"index"`
}

// caller holds the pre-shuffled draw order for one game. Shuffling the
// whole 1..75 pool up front guarantees termination in at most 75 draws
// with no rejection sampling. The room serializes access, so no lock
// here.
type caller struct {
	order []int
	next  int
}

func newCaller(rng *rand.Rand) *caller {
	nums := make([]int, MaxBingoNumber)
	for i := range nums {
		nums[i] = i + 1
	}
	rng.Shuffle(len(nums), func(i, j int) { nums[i], nums[j] = nums[j], nums[i] })
	return &caller{order: nums}
}

// draw returns the next number in the sequence, or ok=false once all 75
// have been called.
func (c *caller) draw() (Call, bool) {
	if c.next >= len(c.order) {
		return Call{}, false
	}
	n := c.order[c.next]
	call := Call{Number: n, Letter: Letter(n), Index: c.next}
	c.next++
	return call, true
}

func (c *caller) exhausted() bool {
	return c.next >= len(c.order)
}
