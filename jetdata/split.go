package jetdata

import (
	"fmt"
	"math"
	"math/rand"
)

// Splits lists the valid split names. train, valid and test are disjoint
// contiguous blocks of the permuted row range; all is the entire range.
var Splits = []string{"train", "valid", "test", "all"}

const fractionSumTolerance = 1e-9

func validSplit(split string) bool {
	for _, s := range Splits {
		if s == split {
			return true
		}
	}
	return false
}

// validateFractions rejects negative fractions and sums above one. Sums
// below one are allowed: the remainder is folded into the test split (see
// SplitBounds), never silently dropped.
func validateFractions(fraction [3]float64) error {
	sum := 0.0
	for _, f := range fraction {
		if f < 0 {
			return fmt.Errorf("%w: negative fraction %v", ErrInvalidFraction, fraction)
		}
		sum += f
	}
	if sum > 1+fractionSumTolerance {
		return fmt.Errorf("%w: fractions %v sum to %v > 1", ErrInvalidFraction, fraction, sum)
	}
	return nil
}

// SplitBounds computes the [lcut, rcut) index range of the named split over
// n permuted rows. Cut points use round-half-away-from-zero on fraction*n:
// train is [0, round(fTrain*n)), valid runs to round((fTrain+fValid)*n), and
// test is everything to the right of valid — so when the fractions sum to
// less than one the remainder lands in test. "all" is always [0, n).
func SplitBounds(n int, split string, fraction [3]float64) (lcut, rcut int, err error) {
	if !validSplit(split) {
		return 0, 0, fmt.Errorf("%w: %q (valid: %v)", ErrInvalidSplit, split, Splits)
	}
	if err := validateFractions(fraction); err != nil {
		return 0, 0, err
	}
	c0 := int(math.Round(fraction[0] * float64(n)))
	c1 := int(math.Round((fraction[0] + fraction[1]) * float64(n)))
	switch split {
	case "train":
		return 0, c0, nil
	case "valid":
		return c0, c1, nil
	case "test":
		return c1, n, nil
	default: // "all"
		return 0, n, nil
	}
}

// SplitPermutation draws the full-length row permutation used before split
// slicing. The generator is seeded solely from seed, so every call with the
// same (n, seed) yields the same permutation — that is what keeps separate
// invocations for different split names mutually consistent.
func SplitPermutation(n int, seed int64) []int {
	return rand.New(rand.NewSource(seed)).Perm(n)
}
