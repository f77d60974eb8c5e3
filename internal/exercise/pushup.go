package exercise

import (
	"math"

	"github.com/banshee-data/reps.report/internal/calibration"
	"github.com/banshee-data/reps.report/internal/monitoring"
	"github.com/banshee-data/reps.report/internal/pose"
)

// Push-up constants. Angles are in degrees, drops in calibrated torso
// lengths and velocities in normalised rows per second.
const (
	pushUpMinBottom    = 40.0
	pushUpBottomSpan   = 80.0
	pushUpMinDrop      = 0.25
	pushUpHipTolerance = 0.25
	pushUpTopDrop      = 0.1
	pushUpStartDrop    = 0.05
	pushUpStartMargin  = 10.0
	pushUpRiseMargin   = 5.0
	pushUpTopTolerance = 5.0
	pushUpLowerMargin  = 10.0
	pushUpRiseVelocity = -0.02
	pushUpBadHipFrames = 5
	warnArmsShoulders  = "Arms/shoulders not visible"
	warnHipsStable     = "Keep hips stable"
	warnHipsUnchecked  = "Hips not visible (stability not checked)"
	warnRepNotCounted  = "Rep not counted"
)

// PushUpThresholds are derived from a calibration result.
type PushUpThresholds struct {
	TopElbowAngle    float64
	BottomElbowAngle float64
	MinShoulderDrop  float64
	HipTolerance     float64
	TopDropTolerance float64
}

// ThresholdsFor derives push-up thresholds from a calibration. The bottom
// angle sits 80 degrees below the calibrated top, floored at 40.
func ThresholdsFor(c calibration.Result) PushUpThresholds {
	return PushUpThresholds{
		TopElbowAngle:    c.TopElbowAngle,
		BottomElbowAngle: math.Max(pushUpMinBottom, c.TopElbowAngle-pushUpBottomSpan),
		MinShoulderDrop:  pushUpMinDrop,
		HipTolerance:     pushUpHipTolerance,
		TopDropTolerance: pushUpTopDrop,
	}
}

var pushUpJoints = []pose.Joint{
	pose.LeftShoulder, pose.RightShoulder,
	pose.LeftElbow, pose.RightElbow,
	pose.LeftWrist, pose.RightWrist,
}

// PushUp counts TOP -> DOWN -> BOTTOM -> UP -> TOP cycles of the mean elbow
// angle. It stays in CALIBRATING until SetCalibration is called, either by
// the caller or by its own passive calibrator. A rep during which the hips
// sagged for five consecutive frames is rejected instead of counted.
type PushUp struct {
	machine
	calibrator *calibration.Passive

	calibrated bool
	cal        calibration.Result
	th         PushUpThresholds

	repValid     bool
	badHipFrames int
	rejected     int

	hasLast  bool
	lastY    float64
	lastTime float64
}

// NewPushUp returns a push-up counter. When calibrator is non-nil the
// counter feeds it every frame until it completes.
func NewPushUp(name string, calibrator *calibration.Passive) *PushUp {
	return &PushUp{
		machine:    newMachine(name, PhaseCalibrating),
		calibrator: calibrator,
		repValid:   true,
	}
}

// SetCalibration installs the baselines and moves the counter to TOP.
func (p *PushUp) SetCalibration(c calibration.Result) {
	c.TorsoLength = math.Max(c.TorsoLength, calibration.MinTorsoLength)
	p.cal = c
	p.th = ThresholdsFor(c)
	p.calibrated = true
	p.phase = PhaseTop
	p.repValid = true
}

// Calibrated reports whether SetCalibration has been called since the last
// reset.
func (p *PushUp) Calibrated() bool { return p.calibrated }

// Thresholds returns the active thresholds; they are zero before
// calibration.
func (p *PushUp) Thresholds() PushUpThresholds { return p.th }

func (p *PushUp) Reset() {
	p.resetMachine()
	if p.calibrator != nil {
		p.calibrator.Reset()
	}
	p.calibrated = false
	p.cal = calibration.Result{}
	p.th = PushUpThresholds{}
	p.repValid = true
	p.badHipFrames = 0
	p.rejected = 0
	p.hasLast = false
	p.lastY, p.lastTime = 0, 0
}

func (p *PushUp) snapshot(warnings []string) State {
	return State{
		RepCount: p.reps,
		Phase:    p.phase,
		Warnings: warnings,
		RepValid: p.repValid,
		Rejected: p.rejected,
	}
}

func (p *PushUp) Update(f *pose.Frame, _ BarLine) State {
	if invalid(f) {
		// A missed frame does not count against the rep in progress.
		st := p.snapshot([]string{WarnNoPose})
		st.RepValid = true
		return st
	}
	if !p.calibrated {
		if p.calibrator == nil {
			return p.snapshot([]string{WarnCalibrating})
		}
		res, ok := p.calibrator.Update(f)
		if !ok {
			return p.snapshot([]string{WarnCalibrating})
		}
		p.SetCalibration(res)
	}

	js := f.Raw
	if !js.Has(pushUpJoints...) {
		return p.snapshot([]string{warnArmsShoulders})
	}

	ls, _ := js.Get(pose.LeftShoulder)
	rs, _ := js.Get(pose.RightShoulder)
	le, _ := js.Get(pose.LeftElbow)
	re, _ := js.Get(pose.RightElbow)
	lw, _ := js.Get(pose.LeftWrist)
	rw, _ := js.Get(pose.RightWrist)

	elbow := (pose.Angle(ls, le, lw) + pose.Angle(rs, re, rw)) / 2
	shoulderY := (ls.Y + rs.Y) / 2
	drop := (shoulderY - p.cal.ShoulderYTop) / p.cal.TorsoLength

	var velocity float64
	var haveVelocity bool
	if p.hasLast {
		velocity, haveVelocity = pose.Velocity(p.lastY, p.lastTime, shoulderY, f.Timestamp)
	}
	p.hasLast = true
	p.lastY, p.lastTime = shoulderY, f.Timestamp

	var warnings []string
	if js.Has(pose.LeftHip, pose.RightHip) {
		deviation := math.Abs(meanY(js, pose.LeftHip, pose.RightHip)-p.cal.HipYTop) / p.cal.TorsoLength
		if deviation > p.th.HipTolerance {
			p.badHipFrames++
		} else {
			p.badHipFrames = 0
		}
		if p.badHipFrames >= pushUpBadHipFrames {
			warnings = append(warnings, warnHipsStable)
			p.repValid = false
		}
	} else {
		warnings = append(warnings, warnHipsUnchecked)
	}

	th := p.th
	switch p.phase {
	case PhaseTop:
		if elbow < th.TopElbowAngle-pushUpStartMargin && drop > pushUpStartDrop {
			p.phase = PhaseDown
			p.repValid = true
			p.badHipFrames = 0
		}
	case PhaseDown:
		if elbow <= th.BottomElbowAngle && drop >= th.MinShoulderDrop {
			p.phase = PhaseBottom
		}
	case PhaseBottom:
		if haveVelocity && velocity < pushUpRiseVelocity && elbow > th.BottomElbowAngle+pushUpRiseMargin {
			p.phase = PhaseUp
		}
	case PhaseUp:
		if elbow >= th.TopElbowAngle-pushUpTopTolerance && drop <= th.TopDropTolerance {
			if p.repValid {
				p.reps++
			} else {
				p.rejected++
				warnings = append(warnings, warnRepNotCounted)
				monitoring.Logf("%s: rep rejected for unstable hips (%d rejected)", p.name, p.rejected)
			}
			p.phase = PhaseTop
		}
	}

	if (p.phase == PhaseDown || p.phase == PhaseBottom) && elbow > th.BottomElbowAngle+pushUpLowerMargin {
		warnings = append(warnings, warnGoLower)
	}
	return p.snapshot(warnings)
}
