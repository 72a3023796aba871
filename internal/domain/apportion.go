package domain

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidArgument marks inputs that violate a generator precondition.
var ErrInvalidArgument = errors.New("invalid argument")

// Apportion splits total across buckets in proportion to weights. Each bucket
// starts at max(1, floor(total*w/Σw)); a shortfall is then handed out one
// unit at a time to the heaviest buckets first, cycling through all buckets if
// needed. When the floor of one overshoots total, the surplus is taken back
// from the lightest buckets that still hold more than one unit.
//
// The result always sums to total and every count is at least one. Empty or
// negative weights, a zero weight sum, and a total below the bucket count are
// rejected with ErrInvalidArgument.
func Apportion(total int, weights []int) ([]int, error) {
	k := len(weights)
	if k == 0 {
		return nil, fmt.Errorf("%w: no buckets", ErrInvalidArgument)
	}
	if total < k {
		return nil, fmt.Errorf("%w: total %d is below bucket count %d", ErrInvalidArgument, total, k)
	}

	var sum int64
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("%w: weight %d is negative", ErrInvalidArgument, i)
		}
		sum += int64(w)
	}
	if sum == 0 {
		return nil, fmt.Errorf("%w: weights sum to zero", ErrInvalidArgument)
	}

	counts := make([]int, k)
	allocated := 0
	for i, w := range weights {
		counts[i] = max(1, int(int64(total)*int64(w)/sum))
		allocated += counts[i]
	}

	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(weights[b], weights[a])
	})

	for i := 0; allocated < total; i++ {
		counts[order[i%k]]++
		allocated++
	}

	// Overshoot only comes from the floor of one, so buckets above one exist
	// whenever allocated > total >= k.
	for i := k - 1; allocated > total; i-- {
		if i < 0 {
			i = k - 1
		}
		if b := order[i]; counts[b] > 1 {
			counts[b]--
			allocated--
		}
	}

	return counts, nil
}
