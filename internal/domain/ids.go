package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// NeighborhoodID formats the n-th neighborhood identifier, e.g. NH-007.
func NeighborhoodID(n int) string { return fmt.Sprintf("NH-%03d", n) }

// LightID formats the n-th street light identifier, e.g. SL-0042.
func LightID(n int) string { return fmt.Sprintf("SL-%04d", n) }

// SupplierID formats the n-th supplier identifier, e.g. SUP-003.
func SupplierID(n int) string { return fmt.Sprintf("SUP-%03d", n) }

// IDNumber extracts the numeric suffix of an identifier such as SL-0042.
func IDNumber(id string) (int, error) {
	_, num, ok := strings.Cut(id, "-")
	if !ok {
		return 0, fmt.Errorf("identifier %q has no numeric suffix", id)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, fmt.Errorf("identifier %q: %w", id, err)
	}
	return n, nil
}
