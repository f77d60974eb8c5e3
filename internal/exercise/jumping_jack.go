package exercise

import (
	"time"

	"github.com/banshee-data/reps.report/internal/calibration"
	"github.com/banshee-data/reps.report/internal/monitoring"
	"github.com/banshee-data/reps.report/internal/pose"
)

const (
	warnBodyPartial   = "Body not fully visible"
	warnRaiseArms     = "Raise arms higher"
	warnSpreadLegs    = "Spread legs wider"
	defaultHipWidth   = 0.2
	armsDownFactor    = 0.15
	legsTogetherSlack = 0.2
	debounceFrames    = 2
)

// DefaultJackCalibration is the stationary window used to learn the
// jumping-jack baselines.
const DefaultJackCalibration = 2 * time.Second

var jackJoints = []pose.Joint{
	pose.LeftShoulder, pose.RightShoulder,
	pose.LeftWrist, pose.RightWrist,
	pose.LeftHip, pose.RightHip,
	pose.LeftAnkle, pose.RightAnkle,
}

// JackConfig scales the jumping-jack thresholds by the calibrated hip width.
type JackConfig struct {
	ArmRaiseFactor  float64
	LegSpreadFactor float64
	Calibration     time.Duration
}

// JumpingJack counts CLOSED -> OPEN -> CLOSED cycles after learning the
// standing stance for Calibration of frame time. Each transition must hold
// for two consecutive frames.
type JumpingJack struct {
	machine
	cfg JackConfig

	calibrated bool
	calStart   float64
	calStarted bool
	hipWidths  []float64
	ankleDists []float64

	hipWidth      float64
	baseAnkle     float64
	armRaiseDelta float64
	legSpread     float64

	openFrames  int
	closeFrames int
}

// NewJumpingJack returns a counter in the CALIBRATING phase. A zero
// Calibration falls back to DefaultJackCalibration.
func NewJumpingJack(name string, cfg JackConfig) *JumpingJack {
	if cfg.Calibration <= 0 {
		cfg.Calibration = DefaultJackCalibration
	}
	return &JumpingJack{machine: newMachine(name, PhaseCalibrating), cfg: cfg}
}

func (j *JumpingJack) Reset() {
	cfg := j.cfg
	name := j.name
	*j = JumpingJack{machine: newMachine(name, PhaseCalibrating), cfg: cfg}
}

// Calibrated reports whether the stance baselines have been learned.
func (j *JumpingJack) Calibrated() bool { return j.calibrated }

func (j *JumpingJack) Update(f *pose.Frame, _ BarLine) State {
	if invalid(f) {
		return j.frozen(WarnNoPose)
	}
	js := f.Raw
	if !js.Has(jackJoints...) {
		return j.frozen(warnBodyPartial)
	}

	hipWidth := span(js, pose.LeftHip, pose.RightHip)
	ankleDist := span(js, pose.LeftAnkle, pose.RightAnkle)

	if !j.calibrated {
		if !j.calibrate(f.Timestamp, hipWidth, ankleDist) {
			return j.frozen(WarnCalibrating)
		}
	}

	shoulderY := meanY(js, pose.LeftShoulder, pose.RightShoulder)
	wristY := meanY(js, pose.LeftWrist, pose.RightWrist)

	armsUp := shoulderY-wristY >= j.armRaiseDelta
	armsDown := wristY-shoulderY >= armsDownFactor*j.hipWidth
	legsApart := ankleDist >= j.baseAnkle+j.legSpread
	legsTogether := ankleDist <= j.baseAnkle+legsTogetherSlack*j.hipWidth

	switch j.phase {
	case PhaseClosed:
		if armsUp && legsApart {
			j.openFrames++
		} else {
			j.openFrames = 0
		}
		if j.openFrames >= debounceFrames {
			j.phase = PhaseOpen
			j.openFrames = 0
		}
	case PhaseOpen:
		if armsDown && legsTogether {
			j.closeFrames++
		} else {
			j.closeFrames = 0
		}
		if j.closeFrames >= debounceFrames {
			j.phase = PhaseClosed
			j.closeFrames = 0
			j.reps++
		}
	}

	var warnings []string
	if j.phase == PhaseOpen {
		if !armsUp {
			warnings = append(warnings, warnRaiseArms)
		}
		if !legsApart {
			warnings = append(warnings, warnSpreadLegs)
		}
	}
	return j.state(warnings)
}

// calibrate accumulates stance samples and reports whether the window has
// completed on this frame.
func (j *JumpingJack) calibrate(ts, hipWidth, ankleDist float64) bool {
	if !j.calStarted {
		j.calStarted = true
		j.calStart = ts
	}
	j.hipWidths = append(j.hipWidths, hipWidth)
	j.ankleDists = append(j.ankleDists, ankleDist)
	if ts-j.calStart < j.cfg.Calibration.Seconds() {
		return false
	}

	j.hipWidth = calibration.Median(j.hipWidths)
	if j.hipWidth < minScale {
		j.hipWidth = defaultHipWidth
	}
	j.baseAnkle = calibration.Median(j.ankleDists)
	j.armRaiseDelta = j.cfg.ArmRaiseFactor * j.hipWidth
	j.legSpread = j.cfg.LegSpreadFactor * j.hipWidth
	j.calibrated = true
	j.phase = PhaseClosed
	j.hipWidths, j.ankleDists = nil, nil
	monitoring.Logf("%s calibrated: hip width %.3f, ankle baseline %.3f", j.name, j.hipWidth, j.baseAnkle)
	return true
}

// span is the distance between two joints that are known to be present.
func span(js pose.Joints, a, b pose.Joint) float64 {
	la, _ := js.Get(a)
	lb, _ := js.Get(b)
	return pose.Distance(la, lb)
}

func meanY(js pose.Joints, a, b pose.Joint) float64 {
	la, _ := js.Get(a)
	lb, _ := js.Get(b)
	return (la.Y + lb.Y) / 2
}

func meanX(js pose.Joints, a, b pose.Joint) float64 {
	la, _ := js.Get(a)
	lb, _ := js.Get(b)
	return (la.X + lb.X) / 2
}
