// Package tree induces classification trees over categorical records using
// entropy and information gain, ID3 style.
//
// Splits are binary. A feature with exactly two distinct values at a node
// sends one value each way; a feature with more values sends its first
// observed value left and every other value right. Gains are still scored
// over the full multiway partition, so the chosen feature is the one ID3
// would choose.
package tree

import (
	"math"

	"github.com/YuminosukeSato/pgmkit/core/parallel"
)

// Record maps feature names to categorical values. Booleans are encoded as
// "true" and "false".
type Record = map[string]string

// gainEpsilon absorbs rounding noise when deciding a split is useless.
const gainEpsilon = 1e-12

// parallelFeatureThreshold is the candidate count above which split
// scoring fans out across goroutines.
const parallelFeatureThreshold = 16

// classCounts returns the distinct target values in order of first
// appearance together with their counts.
func classCounts(records []Record, target string) ([]string, map[string]int) {
	var order []string
	counts := make(map[string]int)
	for _, r := range records {
		c := r[target]
		if _, seen := counts[c]; !seen {
			order = append(order, c)
		}
		counts[c]++
	}
	return order, counts
}

// Entropy is the Shannon entropy, in bits, of the empirical distribution of
// target over records. The entropy of no records is 0.
func Entropy(records []Record, target string) float64 {
	if len(records) == 0 {
		return 0
	}
	order, counts := classCounts(records, target)
	return entropyOf(order, counts, len(records))
}

func entropyOf(order []string, counts map[string]int, total int) float64 {
	var h float64
	for _, c := range order {
		p := float64(counts[c]) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// partition groups records by their value of feature. Values are returned
// in order of first appearance.
func partition(records []Record, feature string) ([]string, map[string][]Record) {
	var values []string
	groups := make(map[string][]Record)
	for _, r := range records {
		v := r[feature]
		if _, seen := groups[v]; !seen {
			values = append(values, v)
		}
		groups[v] = append(groups[v], r)
	}
	return values, groups
}

// InformationGain is the entropy of target over records minus the
// size-weighted entropy of each group obtained by partitioning on every
// distinct value of feature.
func InformationGain(records []Record, feature, target string) float64 {
	if len(records) == 0 {
		return 0
	}
	values, groups := partition(records, feature)
	total := float64(len(records))

	remainder := 0.0
	for _, v := range values {
		g := groups[v]
		remainder += float64(len(g)) / total * Entropy(g, target)
	}
	return Entropy(records, target) - remainder
}

// FindBestSplit returns the feature with the highest information gain.
// Ties go to the feature listed first. When no feature has a positive gain
// it returns "" and 0.
func FindBestSplit(records []Record, features []string, target string) (string, float64) {
	gains := make([]float64, len(features))
	parallel.ForEach(len(features), parallelFeatureThreshold, func(i int) {
		gains[i] = InformationGain(records, features[i], target)
	})

	best, bestGain := "", 0.0
	for i, g := range gains {
		if g > gainEpsilon && g > bestGain {
			best, bestGain = features[i], g
		}
	}
	return best, bestGain
}
