// Package calibration derives a person's resting geometry before form checks
// can start.
package calibration

import (
	"math"
	"sort"
	"time"

	"github.com/banshee-data/reps.report/internal/monitoring"
	"github.com/banshee-data/reps.report/internal/pose"
)

// MinTorsoLength floors the calibrated torso length so it can be divided by.
const MinTorsoLength = 1e-5

// DefaultDuration is the observation window.
const DefaultDuration = 3 * time.Second

// Result is the frozen baseline handed to a counter.
type Result struct {
	TopElbowAngle float64 // degrees, averaged over both arms
	ShoulderYTop  float64 // mean shoulder row at rest
	HipYTop       float64 // mean hip row at rest
	TorsoLength   float64 // left shoulder to left hip
}

var requiredJoints = []pose.Joint{
	pose.LeftShoulder, pose.RightShoulder,
	pose.LeftElbow, pose.RightElbow,
	pose.LeftWrist, pose.RightWrist,
	pose.LeftHip, pose.RightHip,
}

// Passive accumulates frames for a fixed window and reports the median of
// each series once the window has elapsed.
type Passive struct {
	duration float64 // seconds

	started bool
	start   float64

	elbowAngles  []float64
	shoulderYs   []float64
	hipYs        []float64
	torsoLengths []float64
}

// NewPassive returns a calibrator observing for d (DefaultDuration when d <= 0).
func NewPassive(d time.Duration) *Passive {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Passive{duration: d.Seconds()}
}

// Reset discards all samples and the start time.
func (p *Passive) Reset() {
	p.started = false
	p.start = 0
	p.elbowAngles = p.elbowAngles[:0]
	p.shoulderYs = p.shoulderYs[:0]
	p.hipYs = p.hipYs[:0]
	p.torsoLengths = p.torsoLengths[:0]
}

// Samples returns the number of accepted frames.
func (p *Passive) Samples() int {
	return len(p.elbowAngles)
}

// Progress returns the elapsed share of the window at ts, in [0,1].
func (p *Passive) Progress(ts float64) float64 {
	if !p.started {
		return 0
	}
	return math.Min(1, math.Max(0, (ts-p.start)/p.duration))
}

// Update feeds one frame. ok is false until the window has elapsed since the
// first accepted frame, and on any frame missing the required joints.
func (p *Passive) Update(f *pose.Frame) (res Result, ok bool) {
	if f == nil || !f.Valid {
		return Result{}, false
	}
	lm := f.Raw
	if !lm.Has(requiredJoints...) {
		return Result{}, false
	}
	if !p.started {
		p.started = true
		p.start = f.Timestamp
	}

	ls, _ := lm.Get(pose.LeftShoulder)
	rs, _ := lm.Get(pose.RightShoulder)
	le, _ := lm.Get(pose.LeftElbow)
	re, _ := lm.Get(pose.RightElbow)
	lw, _ := lm.Get(pose.LeftWrist)
	rw, _ := lm.Get(pose.RightWrist)
	lh, _ := lm.Get(pose.LeftHip)
	rh, _ := lm.Get(pose.RightHip)

	elbow := (pose.Angle(ls, le, lw) + pose.Angle(rs, re, rw)) / 2
	p.elbowAngles = append(p.elbowAngles, elbow)
	p.shoulderYs = append(p.shoulderYs, (ls.Y+rs.Y)/2)
	p.hipYs = append(p.hipYs, (lh.Y+rh.Y)/2)
	p.torsoLengths = append(p.torsoLengths, pose.Distance(ls, lh))

	if f.Timestamp-p.start < p.duration {
		return Result{}, false
	}

	res = Result{
		TopElbowAngle: Median(p.elbowAngles),
		ShoulderYTop:  Median(p.shoulderYs),
		HipYTop:       Median(p.hipYs),
		TorsoLength:   math.Max(Median(p.torsoLengths), MinTorsoLength),
	}
	monitoring.Logf("calibration: %d samples, elbow=%.1f shoulder_y=%.3f hip_y=%.3f torso=%.3f",
		len(p.elbowAngles), res.TopElbowAngle, res.ShoulderYTop, res.HipYTop, res.TorsoLength)
	return res, true
}

// Median returns the middle value of xs, averaging the two middle values for
// an even count. It returns 0 for an empty slice and does not modify xs.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
