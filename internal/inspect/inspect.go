package inspect

import "sort"

// minPagesForFiltering: below this, quartiles are too noisy to trust
// and all pages count toward the average.
const minPagesForFiltering = 10

// Report summarizes a document's geometry for the inspect tool.
// AvgWidth/AvgHeight are representative page dimensions in points:
// covers and fold-outs are excluded by quartile filtering on long
// documents, so the numbers reflect the body of the book.
type Report struct {
	PageCount int
	AvgWidth  float64
	AvgHeight float64
}

// Summarize computes representative page dimensions from per-page
// sizes. Outlier filtering only kicks in at minPagesForFiltering
// pages.
func Summarize(widths, heights []float64) Report {
	report := Report{PageCount: len(widths)}
	if len(widths) == 0 {
		return report
	}

	filteredWidths := widths
	filteredHeights := heights
	if len(widths) >= minPagesForFiltering {
		filteredWidths = FilterOutliers(widths)
		filteredHeights = FilterOutliers(heights)
	}

	report.AvgWidth = mean(filteredWidths)
	report.AvgHeight = mean(filteredHeights)
	return report
}

// FilterOutliers drops values outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
// Fewer than four values pass through untouched: there are no
// quartiles to speak of.
func FilterOutliers(data []float64) []float64 {
	if len(data) < 4 {
		return data
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 1)
	q3 := quantile(sorted, 3)
	iqr := q3 - q1

	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	var kept []float64
	for _, v := range data {
		if v >= lower && v <= upper {
			kept = append(kept, v)
		}
	}
	return kept
}

// quantile returns the k-th quartile (k in 1..3) of sorted data using
// the exclusive method: the cut point for k/4 sits at (n+1)*k/4, with
// linear interpolation between neighbors.
func quantile(sorted []float64, k int) float64 {
	n := len(sorted)
	h := float64(n+1) * float64(k) / 4.0

	j := int(h)
	if j < 1 {
		return sorted[0]
	}
	if j >= n {
		return sorted[n-1]
	}

	g := h - float64(j)
	return sorted[j-1] + g*(sorted[j]-sorted[j-1])
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}
