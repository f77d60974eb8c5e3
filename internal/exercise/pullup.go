package exercise

import (
	"math"

	"github.com/banshee-data/reps.report/internal/pose"
)

// Grip selects the pull-up variant.
type Grip int

const (
	Overhand  Grip = iota // pull-up
	Underhand             // chin-up
)

// PullUpConfig holds the bar-relative margins, all in normalised rows.
type PullUpConfig struct {
	ChinAboveBar  float64 // nose must be this far above the bar
	BottomReset   float64 // nose must drop this far below the bar
	GripWidthMin  float64 // minimum wrist distance in shoulder widths
	MaxFaceDepth  float64 // shoulder z minus nose z above this is too close
	WristBarDelta float64 // wrists within this of the bar count as holding it
	NarrowGripMax float64 // chin-up warning above this many shoulder widths
}

// DefaultPullUpConfig returns the standard margins.
func DefaultPullUpConfig() PullUpConfig {
	return PullUpConfig{
		ChinAboveBar:  0.015,
		BottomReset:   0.08,
		GripWidthMin:  0.15,
		MaxFaceDepth:  0.15,
		WristBarDelta: 0.08,
		NarrowGripMax: 1.4,
	}
}

const (
	warnUpperBodyHidden = "Upper body not visible"
	warnWiderGrip       = "Wider grip for pull-ups"
	warnMoveBack        = "Move back from camera"
	warnWristsOnBar     = "Keep wrists on the bar"
	warnNarrowerGrip    = "Narrower grip for chin-ups"
)

var pullUpJoints = []pose.Joint{
	pose.Nose,
	pose.LeftWrist, pose.RightWrist,
	pose.LeftShoulder, pose.RightShoulder,
}

// PullUp counts chin-over-bar cycles. It needs a visible bar line; without
// one it reports WAITING_BAR and makes no progress.
type PullUp struct {
	machine
	grip Grip
	cfg  PullUpConfig
}

func NewPullUp(name string, grip Grip, cfg PullUpConfig) *PullUp {
	return &PullUp{machine: newMachine(name, PhaseWaitingBar), grip: grip, cfg: cfg}
}

func (p *PullUp) Reset() { p.resetMachine() }

func (p *PullUp) Update(f *pose.Frame, bar BarLine) State {
	if invalid(f) {
		return p.frozen(WarnNoPose)
	}
	if !bar.Visible {
		return State{RepCount: p.reps, Phase: PhaseWaitingBar, Warnings: []string{WarnBarNotFound}, RepValid: true}
	}
	js := f.Raw
	if !js.Has(pullUpJoints...) {
		return p.frozen(warnUpperBodyHidden)
	}

	nose, _ := js.Get(pose.Nose)
	ls, _ := js.Get(pose.LeftShoulder)
	rs, _ := js.Get(pose.RightShoulder)
	wristDist := span(js, pose.LeftWrist, pose.RightWrist)
	shoulderWidth := pose.Distance(ls, rs)
	shoulderZ := (ls.Z + rs.Z) / 2
	wristY := meanY(js, pose.LeftWrist, pose.RightWrist)

	var warnings []string
	if wristDist < p.cfg.GripWidthMin*floorScale(shoulderWidth) {
		warnings = append(warnings, warnWiderGrip)
	}

	depthOK := shoulderZ-nose.Z <= p.cfg.MaxFaceDepth
	onBar := math.Abs(wristY-bar.Y) <= p.cfg.WristBarDelta
	chinAbove := bar.Y-nose.Y > p.cfg.ChinAboveBar && depthOK && onBar
	chinBelow := nose.Y-bar.Y > p.cfg.BottomReset

	switch p.phase {
	case PhaseWaitingBar, PhaseDown:
		if chinAbove {
			p.phase = PhaseUp
		}
	case PhaseUp:
		if chinBelow {
			p.reps++
			p.phase = PhaseDown
		}
	}

	if !depthOK {
		warnings = append(warnings, warnMoveBack)
	}
	if !onBar {
		warnings = append(warnings, warnWristsOnBar)
	}
	if p.grip == Underhand && wristDist > shoulderWidth*p.cfg.NarrowGripMax {
		warnings = append(warnings, warnNarrowerGrip)
	}
	return p.state(warnings)
}
