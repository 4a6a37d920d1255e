package icadtone

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// toneID builds a kind-prefixed, ordinal tone_id, per spec.md §3.
func toneID(kind string, ordinal int) string {
	return fmt.Sprintf("%s-%d", kind, ordinal+1)
}

// median returns the median of vals: the middle value for an odd length
// (via gonum's empirical quantile estimator), the mean of the two middle
// values for an even length. Returns 0 for an empty slice. vals is sorted
// in place.
func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	if n := len(vals); n%2 == 0 {
		return (vals[n/2-1] + vals[n/2]) / 2
	}
	return stat.Quantile(0.5, stat.Empirical, vals, nil)
}

// quantile returns the p-quantile (0..1) of vals using gonum's empirical
// estimator. Returns 0 for an empty slice. vals is sorted in place.
func quantile(p float64, vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	return stat.Quantile(p, stat.Empirical, vals, nil)
}

// isStable reports whether every nonzero frequency in freqs lies within
// +/- bwHz of med. Used uniformly by every detector to decide whether a
// group's frequency content is "stable" enough to participate in that
// detector's pattern (spec.md §9: one stability policy, applied
// everywhere).
func isStable(freqs []float64, med, bwHz float64) bool {
	if med <= 0 {
		return false
	}
	any := false
	for _, f := range freqs {
		if f == 0 {
			continue
		}
		any = true
		if f < med-bwHz || f > med+bwHz {
			return false
		}
	}
	return any
}

// zeroRatio returns the fraction of freqs that are exactly zero.
func zeroRatio(freqs []float64) float64 {
	if len(freqs) == 0 {
		return 1
	}
	zero := 0
	for _, f := range freqs {
		if f == 0 {
			zero++
		}
	}
	return float64(zero) / float64(len(freqs))
}
