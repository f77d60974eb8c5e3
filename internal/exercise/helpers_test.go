package exercise

import (
	"math"
	"math/rand"

	"github.com/banshee-data/reps.report/internal/monitoring"
	"github.com/banshee-data/reps.report/internal/pose"
)

func init() {
	monitoring.SetLogger(nil)
}

type pts map[pose.Joint][2]float64

// frameAt builds a valid frame from image coordinates. Every listed joint is
// fully visible.
func frameAt(ts float64, points pts) *pose.Frame {
	dets := make([]pose.Detection, 0, len(points))
	for j, p := range points {
		dets = append(dets, pose.Detection{Joint: j, Landmark: pose.Landmark{X: p[0], Y: p[1], Visibility: 1}})
	}
	f := pose.NewFrame(ts, 640, 480, dets, 0.5)
	return &f
}

func noBody(ts float64) *pose.Frame {
	f := pose.NewFrame(ts, 640, 480, nil, 0.5)
	return &f
}

// bend places a joint on the perpendicular bisector of a and c so that the
// angle at it is deg degrees. The joint is offset towards +x.
func bend(a, c [2]float64, deg float64) [2]float64 {
	mx, my := (a[0]+c[0])/2, (a[1]+c[1])/2
	dx, dy := c[0]-a[0], c[1]-a[1]
	half := math.Hypot(dx, dy) / 2
	h := half / math.Tan(deg*math.Pi/360)
	// Unit normal to a->c, pointing to +x for a vertical segment.
	nx, ny := -dy/(2*half), dx/(2*half)
	if nx < 0 {
		nx, ny = -nx, -ny
	}
	return [2]float64{mx + nx*h, my + ny*h}
}

// randomFrames returns a reproducible stream of noisy frames and bar lines.
func randomFrames(seed int64, n int) ([]*pose.Frame, []BarLine) {
	rng := rand.New(rand.NewSource(seed))
	frames := make([]*pose.Frame, n)
	bars := make([]BarLine, n)
	ts := 0.0
	for i := 0; i < n; i++ {
		ts += 1.0 / 30
		if rng.Float64() < 0.05 {
			frames[i] = noBody(ts)
		} else {
			var dets []pose.Detection
			for j := pose.Joint(0); j < pose.NumJoints; j++ {
				if rng.Float64() < 0.1 {
					continue
				}
				dets = append(dets, pose.Detection{Joint: j, Landmark: pose.Landmark{
					X:          rng.Float64(),
					Y:          rng.Float64(),
					Z:          rng.Float64()*0.6 - 0.3,
					Visibility: 1,
				}})
			}
			f := pose.NewFrame(ts, 640, 480, dets, 0.5)
			frames[i] = &f
		}
		if rng.Float64() < 0.7 {
			bars[i] = BarAt(rng.Float64())
		}
	}
	return frames, bars
}
