package bar

import "math"

// Canny threshold bounds.
const (
	cannyLowFactor  = 0.66
	cannyHighFactor = 1.33
	cannyMin        = 10
	cannyMax        = 255
)

// AutoCannyThresholds derives hysteresis thresholds from the median grey
// level: [0.66×median, 1.33×median] clamped to [10, 255].
func AutoCannyThresholds(median float64) (lower, upper float64) {
	lower = math.Floor(math.Max(cannyMin, cannyLowFactor*median))
	upper = math.Floor(math.Min(cannyMax, cannyHighFactor*median))
	if lower > cannyMax {
		lower = cannyMax
	}
	if upper < cannyMin {
		upper = cannyMin
	}
	return lower, upper
}

// MedianIntensity returns the median of 8-bit grey samples using a histogram.
// For an even count it averages the two middle values.
func MedianIntensity(gray []byte) float64 {
	n := len(gray)
	if n == 0 {
		return 0
	}
	var hist [256]int
	for _, v := range gray {
		hist[v]++
	}
	lo := valueAtRank(hist[:], (n-1)/2)
	hi := valueAtRank(hist[:], n/2)
	return (float64(lo) + float64(hi)) / 2
}

func valueAtRank(hist []int, rank int) int {
	seen := 0
	for v, c := range hist {
		seen += c
		if seen > rank {
			return v
		}
	}
	return len(hist) - 1
}

// RowDensity counts non-zero pixels per row over the first rows of a
// row-major single-channel edge map.
func RowDensity(edges []byte, width, rows int) []float64 {
	if width <= 0 || rows <= 0 {
		return nil
	}
	if max := len(edges) / width; rows > max {
		rows = max
	}
	out := make([]float64, rows)
	for y := 0; y < rows; y++ {
		row := edges[y*width : (y+1)*width]
		var n float64
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
		out[y] = n
	}
	return out
}

// ROIRows is the number of rows searched for a given image height.
func ROIRows(height int, fraction float64) int {
	if fraction <= 0 || fraction > 1 {
		fraction = 0.65
	}
	return int(float64(height) * fraction)
}
