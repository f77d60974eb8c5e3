// Package report turns a replayed session into a timeline: summary numbers,
// an interactive HTML chart and a static PNG.
package report

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/reps.report/internal/exercise"
	"github.com/banshee-data/reps.report/internal/session"
)

// Point is one replayed frame.
type Point struct {
	T        float64
	Reps     int
	Rejected int
	Phase    exercise.Phase
	Valid    bool // a body was detected
	Warnings int
	BarY     float64
	BarFound bool
}

// Trace is the per-frame history of one exercise.
type Trace struct {
	Exercise string
	Points   []Point
}

// Add appends a session snapshot. valid is the frame's pose validity.
func (tr *Trace) Add(snap session.Snapshot, valid bool) {
	if tr.Exercise == "" {
		tr.Exercise = snap.Exercise
	}
	tr.Points = append(tr.Points, Point{
		T:        snap.Timestamp,
		Reps:     snap.RepCount,
		Rejected: snap.Rejected,
		Phase:    snap.Phase,
		Valid:    valid,
		Warnings: len(snap.Warnings),
		BarY:     snap.BarY,
		BarFound: snap.BarFound,
	})
}

// Phases returns the distinct phases in order of first appearance and the
// index of each point's phase in that list.
func (tr *Trace) Phases() (names []exercise.Phase, index []int) {
	seen := make(map[exercise.Phase]int)
	index = make([]int, len(tr.Points))
	for i, p := range tr.Points {
		k, ok := seen[p.Phase]
		if !ok {
			k = len(names)
			seen[p.Phase] = k
			names = append(names, p.Phase)
		}
		index[i] = k
	}
	return names, index
}

// Summary holds aggregate numbers for a trace.
type Summary struct {
	Frames        int
	Duration      float64 // seconds between first and last frame
	MeanInterval  float64 // seconds
	IntervalSD    float64
	ValidRatio    float64
	Reps          int
	Rejected      int
	PhaseChanges  int
	WarningFrames int
	BarRatio      float64 // share of frames with a bar line
}

// Summarize computes the Summary of tr. Interval statistics need at least two
// frames and are zero otherwise.
func Summarize(tr Trace) Summary {
	n := len(tr.Points)
	s := Summary{Frames: n}
	if n == 0 {
		return s
	}

	valid := make([]float64, n)
	bar := make([]float64, n)
	for i, p := range tr.Points {
		if p.Valid {
			valid[i] = 1
		}
		if p.BarFound {
			bar[i] = 1
		}
		if p.Warnings > 0 {
			s.WarningFrames++
		}
		if i > 0 && p.Phase != tr.Points[i-1].Phase {
			s.PhaseChanges++
		}
	}
	s.ValidRatio = stat.Mean(valid, nil)
	s.BarRatio = stat.Mean(bar, nil)

	last := tr.Points[n-1]
	s.Reps = last.Reps
	s.Rejected = last.Rejected
	s.Duration = last.T - tr.Points[0].T

	if n >= 2 {
		gaps := make([]float64, n-1)
		for i := 1; i < n; i++ {
			gaps[i-1] = tr.Points[i].T - tr.Points[i-1].T
		}
		s.MeanInterval, s.IntervalSD = stat.MeanStdDev(gaps, nil)
		if math.IsNaN(s.IntervalSD) {
			s.IntervalSD = 0
		}
	}
	return s
}
