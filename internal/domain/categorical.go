package domain

import (
	"fmt"
	"math/rand"
)

// StratifiedPool hands out labels in an exact global ratio. The pool holds
// each label as many times as its ratio entry and is shuffled once; item i
// gets pool[i mod len(pool)], which fixes the overall distribution while
// decorrelating labels from generation order.
type StratifiedPool[T any] struct {
	pool []T
}

// NewStratifiedPool builds and shuffles a pool holding ratio[i] copies of
// labels[i].
func NewStratifiedPool[T any](rng *rand.Rand, labels []T, ratio []int) (*StratifiedPool[T], error) {
	if len(labels) != len(ratio) {
		return nil, fmt.Errorf("%w: %d labels for %d ratio entries", ErrInvalidArgument, len(labels), len(ratio))
	}

	size := 0
	for i, r := range ratio {
		if r < 0 {
			return nil, fmt.Errorf("%w: ratio entry %d is negative", ErrInvalidArgument, i)
		}
		size += r
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: empty pool", ErrInvalidArgument)
	}

	pool := make([]T, 0, size)
	for i, label := range labels {
		for range ratio[i] {
			pool = append(pool, label)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	return &StratifiedPool[T]{pool: pool}, nil
}

// At returns the label for the i-th item, wrapping around the pool.
func (p *StratifiedPool[T]) At(i int) T {
	return p.pool[i%len(p.pool)]
}

// Len is the pool size.
func (p *StratifiedPool[T]) Len() int {
	return len(p.pool)
}

// WeightedChoice draws one item with probability proportional to its weight.
// Weights must be non-negative with a positive sum; callers pass fixed
// catalogs, so a violation panics.
func WeightedChoice[T any](rng *rand.Rand, items []T, weights []float64) T {
	if len(items) == 0 || len(items) != len(weights) {
		panic("domain: WeightedChoice needs one weight per item")
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		panic("domain: WeightedChoice needs a positive weight sum")
	}

	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return items[i]
		}
		r -= w
	}
	return items[len(items)-1]
}

// Choice draws one item uniformly.
func Choice[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}
