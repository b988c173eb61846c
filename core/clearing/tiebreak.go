package clearing

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/meritorder/core/market"
)

// TieBreaker produces a secondary sort key per order for one product
// group. Keys are consulted only when limit prices are equal and are
// drawn fresh on every call, so strategies decide whether equal-price
// ordering is deterministic.
type TieBreaker interface {
	Keys(orders []*market.Order) []float64
}

// RandomTieBreak breaks price ties with an independent random draw per
// order per call. This is the production default: it is fair across
// sessions but makes the output ordering of equal-price orders
// non-deterministic. Draws are serialized so the strategy stays safe if
// products are ever matched concurrently.
type RandomTieBreak struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomTieBreak returns a time-seeded random tie-break.
func NewRandomTieBreak() *RandomTieBreak {
	return NewSeededTieBreak(time.Now().UnixNano())
}

// NewSeededTieBreak returns a random tie-break with a fixed seed.
func NewSeededTieBreak(seed int64) *RandomTieBreak {
	return &RandomTieBreak{rng: rand.New(rand.NewSource(seed))}
}

func (t *RandomTieBreak) Keys(orders []*market.Order) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]float64, len(orders))
	for i := range keys {
		keys[i] = t.rng.Float64()
	}
	return keys
}

// SubmissionTieBreak orders equal-price orders by their position in the
// submitted orderbook. Deterministic; meant for tests and replays.
type SubmissionTieBreak struct{}

func (SubmissionTieBreak) Keys(orders []*market.Order) []float64 {
	keys := make([]float64, len(orders))
	for i := range keys {
		keys[i] = float64(i)
	}
	return keys
}

// LexicalTieBreak orders equal-price orders by order ID.
type LexicalTieBreak struct{}

func (LexicalTieBreak) Keys(orders []*market.Order) []float64 {
	idx := make([]int, len(orders))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return orders[idx[a]].ID < orders[idx[b]].ID
	})
	keys := make([]float64, len(orders))
	for rank, i := range idx {
		keys[i] = float64(rank)
	}
	return keys
}

// NewTieBreaker returns the strategy registered under the given name.
// An empty name selects the random default.
func NewTieBreaker(name string) (TieBreaker, error) {
	switch name {
	case "", "random":
		return NewRandomTieBreak(), nil
	case "submission":
		return SubmissionTieBreak{}, nil
	case "lexical":
		return LexicalTieBreak{}, nil
	}
	return nil, fmt.Errorf("unknown tie-break strategy %s", name)
}
