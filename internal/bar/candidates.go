package bar

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Segment is a detected line segment in ROI pixel coordinates.
type Segment struct {
	X1, Y1, X2, Y2 int
}

// EdgeFrame is the pixel-level evidence extracted from one image.
type EdgeFrame struct {
	Width     int // image width (px)
	Height    int // image height (px)
	ROIHeight int // rows searched, from the top

	// Segments from the probabilistic line transform over the ROI.
	Segments []Segment
	// RowDensity holds the count of edge pixels per ROI row.
	RowDensity []float64
}

// Candidate is one possible bar row, normalised by image height.
type Candidate struct {
	Row   float64
	Score float64
}

// Scoring parameters.
const (
	// MaxRowDeltaPx is the largest |Δy| a segment may have to count as horizontal.
	MaxRowDeltaPx = 8
	// MinLengthFraction is the minimum segment length as a fraction of image width.
	MinLengthFraction = 0.35
	// minPositionScore floors the position bonus near the bottom of the ROI.
	minPositionScore = 0.2
	// positionFalloff stretches the position bonus over the ROI.
	positionFalloff = 1.2
	// projectionMinSize is the shortest projection worth searching.
	projectionMinSize = 5
	// projectionPeakFraction is the share of the maximum a projection peak must exceed.
	projectionPeakFraction = 0.1
	// projectionKernel is the Gaussian kernel length used to smooth the projection.
	projectionKernel = 9
	// BinSize is the clustering bin height, normalised (~1% of image height).
	BinSize = 0.01
)

// ScoringConfig tunes segment filtering.
type ScoringConfig struct {
	MaxRowDeltaPx     int
	MinLengthFraction float64
}

// DefaultScoringConfig returns the stock segment filter.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{MaxRowDeltaPx: MaxRowDeltaPx, MinLengthFraction: MinLengthFraction}
}

// ScoreSegments keeps near-horizontal segments at least MinLengthFraction of
// the image wide and scores them by length × a bonus that favours rows near
// the top of the ROI.
func ScoreSegments(ef EdgeFrame, cfg ScoringConfig) []Candidate {
	if ef.Height <= 0 || ef.Width <= 0 {
		return nil
	}
	roi := ef.ROIHeight
	if roi < 1 {
		roi = 1
	}
	minLength := float64(ef.Width) * cfg.MinLengthFraction

	var out []Candidate
	for _, s := range ef.Segments {
		dy := s.Y2 - s.Y1
		if dy < 0 {
			dy = -dy
		}
		if dy > cfg.MaxRowDeltaPx {
			continue
		}
		length := math.Abs(float64(s.X2 - s.X1))
		if length < minLength {
			continue
		}
		yAvg := float64(s.Y1+s.Y2) / 2.0
		yNorm := yAvg / float64(roi)
		position := math.Max(minPositionScore, 1.0-yNorm/positionFalloff)
		out = append(out, Candidate{
			Row:   yAvg / float64(ef.Height),
			Score: length * position,
		})
	}
	return out
}

// ProjectionPeak is the fallback used when no segment survives: it smooths the
// per-row edge density and returns the densest row.
func ProjectionPeak(ef EdgeFrame) (Candidate, bool) {
	if ef.Height <= 0 || len(ef.RowDensity) <= projectionMinSize {
		return Candidate{}, false
	}
	smoothed := gaussianSmooth(ef.RowDensity, projectionKernel)
	idx := floats.MaxIdx(smoothed)
	peak := smoothed[idx]
	if peak <= 0 || peak <= projectionPeakFraction*floats.Max(smoothed) {
		return Candidate{}, false
	}
	return Candidate{Row: float64(idx) / float64(ef.Height), Score: peak}, true
}

// SelectBest clusters candidates into BinSize row bins and returns the
// score-weighted mean row of the bin with the highest total score.
func SelectBest(cands []Candidate) (float64, bool) {
	switch len(cands) {
	case 0:
		return 0, false
	case 1:
		return cands[0].Row, true
	}

	type bin struct {
		total    float64
		weighted float64
	}
	bins := make(map[int]*bin)
	for _, c := range cands {
		key := int(c.Row / BinSize)
		b, ok := bins[key]
		if !ok {
			b = &bin{}
			bins[key] = b
		}
		b.total += c.Score
		b.weighted += c.Row * c.Score
	}

	// Walk bins in row order so ties resolve to the higher bar.
	keys := make([]int, 0, len(bins))
	for k := range bins {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	bestRow := cands[0].Row
	bestScore := -1.0
	for _, k := range keys {
		b := bins[k]
		if b.total > bestScore {
			bestScore = b.total
			bestRow = b.weighted / math.Max(b.total, 1e-6)
		}
	}
	return bestRow, true
}

// gaussianSmooth convolves xs with a normalised Gaussian kernel of the given
// odd length, replicating edge samples at the borders.
func gaussianSmooth(xs []float64, size int) []float64 {
	if size < 3 {
		return append([]float64(nil), xs...)
	}
	half := size / 2
	// Same sigma OpenCV derives for a kernel of this size.
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	kernel := make([]float64, size)
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)

	out := make([]float64, len(xs))
	last := len(xs) - 1
	for i := range xs {
		var acc float64
		for k, w := range kernel {
			j := i + k - half
			if j < 0 {
				j = 0
			} else if j > last {
				j = last
			}
			acc += w * xs[j]
		}
		out[i] = acc
	}
	return out
}
