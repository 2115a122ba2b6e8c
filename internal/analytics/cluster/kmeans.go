// Package cluster implements seeded k-means with k-means++ seeding and the
// silhouette score used for model selection.
package cluster

import (
	"math"
	"math/rand"
)

const (
	maxIterations = 300
	restarts      = 10
)

// KMeans partitions rows into k clusters. The same seed always produces the
// same assignment: restarts run off a single seeded source and the best
// inertia wins. k is clamped to the number of rows.
func KMeans(rows [][]float64, k int, seed int64) []int {
	n := len(rows)
	labels := make([]int, n)
	if n == 0 || k <= 1 {
		return labels
	}
	if k > n {
		k = n
	}
	rng := rand.New(rand.NewSource(seed))
	bestInertia := math.Inf(1)
	best := make([]int, n)
	for r := 0; r < restarts; r++ {
		lab, inertia := runOnce(rows, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			copy(best, lab)
		}
	}
	copy(labels, best)
	return labels
}

func runOnce(rows [][]float64, k int, rng *rand.Rand) ([]int, float64) {
	centers := plusPlusInit(rows, k, rng)
	n := len(rows)
	labels := make([]int, n)
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, row := range rows {
			c := nearest(row, centers)
			if c != labels[i] {
				labels[i] = c
				changed = true
			}
		}
		centers = recompute(rows, labels, k, centers)
		if !changed && iter > 0 {
			break
		}
	}
	var inertia float64
	for i, row := range rows {
		inertia += sqDist(row, centers[labels[i]])
	}
	return labels, inertia
}

// plusPlusInit seeds centers with k-means++: each next center is drawn with
// probability proportional to its squared distance from the nearest chosen
// center.
func plusPlusInit(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	centers = append(centers, rows[rng.Intn(len(rows))])
	d2 := make([]float64, len(rows))
	for len(centers) < k {
		var total float64
		for i, row := range rows {
			d2[i] = sqDist(row, centers[0])
			for _, c := range centers[1:] {
				if d := sqDist(row, c); d < d2[i] {
					d2[i] = d
				}
			}
			total += d2[i]
		}
		if total == 0 {
			// all remaining points coincide with a center
			centers = append(centers, rows[rng.Intn(len(rows))])
			continue
		}
		target := rng.Float64() * total
		var acc float64
		pick := len(rows) - 1
		for i, d := range d2 {
			acc += d
			if acc >= target {
				pick = i
				break
			}
		}
		centers = append(centers, rows[pick])
	}
	return centers
}

func recompute(rows [][]float64, labels []int, k int, prev [][]float64) [][]float64 {
	dim := len(rows[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, row := range rows {
		c := labels[i]
		counts[c]++
		for j, x := range row {
			sums[c][j] += x
		}
	}
	centers := make([][]float64, k)
	for c := range centers {
		if counts[c] == 0 {
			centers[c] = prev[c] // empty cluster keeps its old center
			continue
		}
		centers[c] = sums[c]
		for j := range centers[c] {
			centers[c][j] /= float64(counts[c])
		}
	}
	return centers
}

func nearest(row []float64, centers [][]float64) int {
	best, bestD := 0, math.Inf(1)
	for c, center := range centers {
		if d := sqDist(row, center); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func dist(a, b []float64) float64 { return math.Sqrt(sqDist(a, b)) }

// Silhouette computes the mean silhouette coefficient of a labeling.
// Requires at least 2 distinct labels; returns 0 otherwise. Singleton
// clusters contribute a coefficient of 0, matching the standard definition.
func Silhouette(rows [][]float64, labels []int) float64 {
	n := len(rows)
	if n < 2 {
		return 0
	}
	sizes := make(map[int]int)
	for _, l := range labels {
		sizes[l]++
	}
	if len(sizes) < 2 {
		return 0
	}
	var total float64
	for i := range rows {
		sumByLabel := make(map[int]float64)
		for j := range rows {
			if i == j {
				continue
			}
			sumByLabel[labels[j]] += dist(rows[i], rows[j])
		}
		own := labels[i]
		if sizes[own] == 1 {
			continue // silhouette of a singleton is 0
		}
		a := sumByLabel[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for l, s := range sumByLabel {
			if l == own {
				continue
			}
			if avg := s / float64(sizes[l]); avg < b {
				b = avg
			}
		}
		den := math.Max(a, b)
		if den > 0 {
			total += (b - a) / den
		}
	}
	return total / float64(n)
}

// CountDistinct returns the number of distinct labels.
func CountDistinct(labels []int) int {
	seen := make(map[int]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}
