// Package classify groups attribute values into natural-breaks classes and
// maps values to choropleth colors.
package classify

import (
	"math"
	"sort"
)

// Ckmeans partitions values into at most k clusters minimizing the total
// within-cluster sum of squared deviations (optimal 1-D k-means). Clusters
// are contiguous runs of the sorted input, returned in ascending order.
//
// k is reduced to the number of distinct values, so fewer than k clusters
// come back when the input has fewer distinct values. Empty input or k < 1
// returns nil.
func Ckmeans(values []float64, k int) [][]float64 {
	n := len(values)
	if n == 0 || k < 1 {
		return nil
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	// Cluster the distinct values weighted by multiplicity so a run of equal
	// values is never split between two classes.
	uniq, counts := runs(sorted)
	m := len(uniq)
	if k > m {
		k = m
	}
	if k == 1 {
		return [][]float64{sorted}
	}

	// Prefix sums shifted by the median keep the sums small.
	shift := sorted[n/2]
	weight := make([]float64, m+1)
	sum := make([]float64, m+1)
	sumSq := make([]float64, m+1)
	for i, v := range uniq {
		w := float64(counts[i])
		d := v - shift
		weight[i+1] = weight[i] + w
		sum[i+1] = sum[i] + w*d
		sumSq[i+1] = sumSq[i] + w*d*d
	}
	// ssq is the sum of squared deviations of uniq[j..i] inclusive.
	ssq := func(j, i int) float64 {
		w := weight[i+1] - weight[j]
		s := sum[i+1] - sum[j]
		c := sumSq[i+1] - sumSq[j] - s*s/w
		if c < 0 {
			return 0
		}
		return c
	}

	cost := make([][]float64, k)
	back := make([][]int, k)
	for q := range cost {
		cost[q] = make([]float64, m)
		back[q] = make([]int, m)
	}
	for i := 0; i < m; i++ {
		cost[0][i] = ssq(0, i)
	}

	for q := 1; q < k; q++ {
		for i := q; i < m; i++ {
			best := math.Inf(1)
			bestJ := q
			// The last cluster is uniq[j..i]; earlier clusters need at
			// least one value each.
			for j := i; j >= q; j-- {
				c := cost[q-1][j-1] + ssq(j, i)
				if c < best {
					best = c
					bestJ = j
				}
			}
			cost[q][i] = best
			back[q][i] = bestJ
		}
	}

	// offset[i] is the index in sorted of the first copy of uniq[i].
	offset := make([]int, m+1)
	for i, c := range counts {
		offset[i+1] = offset[i] + c
	}

	clusters := make([][]float64, k)
	right := m - 1
	for q := k - 1; q >= 0; q-- {
		left := 0
		if q > 0 {
			left = back[q][right]
		}
		clusters[q] = sorted[offset[left]:offset[right+1]]
		right = left - 1
	}
	return clusters
}

// runs collapses sorted into its distinct values and their counts.
func runs(sorted []float64) ([]float64, []int) {
	var uniq []float64
	var counts []int
	for i, v := range sorted {
		if i > 0 && v == sorted[i-1] {
			counts[len(counts)-1]++
			continue
		}
		uniq = append(uniq, v)
		counts = append(counts, 1)
	}
	return uniq, counts
}

// Breaks returns the class breakpoints for values clustered into k classes:
// each cluster's minimum except the lowest, strictly increasing. With at
// least k distinct values the result has k-1 entries.
func Breaks(values []float64, k int) []float64 {
	clusters := Ckmeans(values, k)
	if len(clusters) < 2 {
		return nil
	}
	breaks := make([]float64, 0, len(clusters)-1)
	for _, c := range clusters[1:] {
		m := c[0]
		if len(breaks) > 0 && m <= breaks[len(breaks)-1] {
			continue
		}
		breaks = append(breaks, m)
	}
	return breaks
}
