package domain_test

import (
	"math/rand"
	"testing"

	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStratifiedPool_ExactRatio(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool, err := domain.NewStratifiedPool(rng, []string{"a", "b", "c"}, []int{850, 100, 50})
	require.NoError(t, err)
	assert.Equal(t, 1000, pool.Len())

	counts := map[string]int{}
	for i := range 5000 {
		counts[pool.At(i)]++
	}
	assert.Equal(t, map[string]int{"a": 4250, "b": 500, "c": 250}, counts)
}

func TestStratifiedPool_Shuffled(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool, err := domain.NewStratifiedPool(rng, []int{0, 1}, []int{500, 500})
	require.NoError(t, err)

	// An unshuffled pool would hold every 0 before every 1.
	firstHalfOnes := 0
	for i := range 500 {
		firstHalfOnes += pool.At(i)
	}
	assert.Greater(t, firstHalfOnes, 100)
	assert.Less(t, firstHalfOnes, 400)
}

func TestStratifiedPool_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := domain.NewStratifiedPool(rng, []string{"a"}, []int{1, 2})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = domain.NewStratifiedPool(rng, []string{"a", "b"}, []int{0, 0})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = domain.NewStratifiedPool(rng, []string{"a"}, []int{-1})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestWeightedChoice(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	counts := map[string]int{}
	for range 10_000 {
		counts[domain.WeightedChoice(rng, []string{"x", "y", "z"}, []float64{4, 2, 0})]++
	}
	assert.Zero(t, counts["z"])
	assert.InDelta(t, 2.0, float64(counts["x"])/float64(counts["y"]), 0.2)
}

func TestWeightedChoice_PanicsOnBadWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	assert.Panics(t, func() { domain.WeightedChoice(rng, []int{1, 2}, []float64{1}) })
	assert.Panics(t, func() { domain.WeightedChoice(rng, []int{1}, []float64{0}) })
}

func TestChoice(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	seen := map[int]bool{}
	for range 200 {
		seen[domain.Choice(rng, domain.Wattages)] = true
	}
	assert.Len(t, seen, len(domain.Wattages))
}
