package bar

import (
	"image"
	"time"

	"github.com/banshee-data/reps.report/internal/monitoring"
)

// EdgeSource turns an image into edge evidence.
type EdgeSource interface {
	Extract(img image.Image) (EdgeFrame, error)
}

// Config holds detector tuning.
type Config struct {
	// MaxAge is how long the last smoothed row is reported after detections stop.
	MaxAge time.Duration
	// Smoothing is the EMA weight on history, in [0,1).
	Smoothing float64
	Scoring   ScoringConfig
}

// DefaultConfig returns the stock detector tuning.
func DefaultConfig() Config {
	return Config{
		MaxAge:    600 * time.Millisecond,
		Smoothing: 0.7,
		Scoring:   DefaultScoringConfig(),
	}
}

// Detector is a stateful bar-row estimator. It is not safe for concurrent use.
type Detector struct {
	cfg    Config
	source EdgeSource

	lastRow  float64
	lastTime float64
	hasRow   bool
	lost     bool
}

// NewDetector creates a detector reading pixels through source. source may be
// nil when the caller feeds EdgeFrames to Observe directly.
func NewDetector(cfg Config, source EdgeSource) *Detector {
	if cfg.Smoothing < 0 || cfg.Smoothing >= 1 {
		cfg.Smoothing = DefaultConfig().Smoothing
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultConfig().MaxAge
	}
	if cfg.Scoring.MaxRowDeltaPx <= 0 && cfg.Scoring.MinLengthFraction <= 0 {
		cfg.Scoring = DefaultScoringConfig()
	}
	return &Detector{cfg: cfg, source: source}
}

// Update extracts edges from img and advances the estimate. ts is the frame
// timestamp in seconds. A failed extraction counts as a frame without
// candidates.
func (d *Detector) Update(img image.Image, ts float64) (float64, bool) {
	if d.source == nil || img == nil {
		return d.Observe(EdgeFrame{}, ts)
	}
	ef, err := d.source.Extract(img)
	if err != nil {
		monitoring.Logf("bar: edge extraction failed: %v", err)
		return d.Observe(EdgeFrame{}, ts)
	}
	return d.Observe(ef, ts)
}

// Observe advances the estimate from pre-extracted edge evidence.
func (d *Detector) Observe(ef EdgeFrame, ts float64) (float64, bool) {
	cands := ScoreSegments(ef, d.cfg.Scoring)
	if len(cands) == 0 {
		if c, ok := ProjectionPeak(ef); ok {
			cands = append(cands, c)
		}
	}
	if row, ok := SelectBest(cands); ok {
		return d.accept(row, ts), true
	}
	return d.remembered(ts)
}

// ObserveRow advances the estimate from an externally measured row, e.g. a
// bar position stored with a recording.
func (d *Detector) ObserveRow(row float64, ts float64) (float64, bool) {
	return d.accept(row, ts), true
}

// Miss advances time without a detection.
func (d *Detector) Miss(ts float64) (float64, bool) {
	return d.remembered(ts)
}

// Last returns the most recent smoothed row regardless of age.
func (d *Detector) Last() (float64, bool) {
	return d.lastRow, d.hasRow
}

// Reset clears all memory.
func (d *Detector) Reset() {
	d.lastRow = 0
	d.lastTime = 0
	d.hasRow = false
	d.lost = false
}

func (d *Detector) accept(row, ts float64) float64 {
	if d.hasRow {
		row = d.lastRow*d.cfg.Smoothing + row*(1-d.cfg.Smoothing)
	}
	if d.lost {
		monitoring.Logf("bar: reacquired at row %.3f", row)
	}
	d.lastRow = row
	d.lastTime = ts
	d.hasRow = true
	d.lost = false
	return row
}

func (d *Detector) remembered(ts float64) (float64, bool) {
	if !d.hasRow {
		return 0, false
	}
	if ts-d.lastTime <= d.cfg.MaxAge.Seconds() {
		return d.lastRow, true
	}
	if !d.lost {
		monitoring.Logf("bar: lost after %.2fs without detection", ts-d.lastTime)
		d.lost = true
	}
	return 0, false
}
