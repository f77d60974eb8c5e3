package exercise

import (
	"github.com/banshee-data/reps.report/internal/pose"
)

const (
	warnLiftKnee    = "Lift knee higher"
	warnArmsHidden  = "Arms not visible"
	warnTorsoHidden = "Torso not visible"
	warnBendFurther = "Bend further"
)

// KneeRaise counts knee lifts measured as (hip.y - knee.y) over the leg
// length seen on the first frame.
type KneeRaise struct {
	machine
	swing     swing
	legLength float64
}

// NewKneeRaise counts a rep when the lift reaches raise and then falls back
// to lower.
func NewKneeRaise(name string, raise, lower float64) *KneeRaise {
	return &KneeRaise{
		machine: newMachine(name, PhaseDown),
		swing:   swing{rest: PhaseDown, active: PhaseUp, enter: raise, exit: lower},
	}
}

func (k *KneeRaise) Reset() {
	k.resetMachine()
	k.legLength = 0
}

func (k *KneeRaise) Update(f *pose.Frame, _ BarLine) State {
	if invalid(f) {
		return k.frozen(WarnNoPose)
	}
	hip, knee, ankle, ok := f.Raw.Side(pose.LeftLeg)
	if !ok {
		return k.frozen(warnLegsHidden)
	}
	if k.legLength == 0 {
		k.legLength = floorScale(pose.Distance(hip, ankle))
	}
	lift := (hip.Y - knee.Y) / k.legLength
	k.swing.step(&k.machine, lift)

	var warnings []string
	if k.phase == PhaseUp && lift < k.swing.enter*0.85 {
		warnings = append(warnings, warnLiftKnee)
	}
	return k.state(warnings)
}

// LegSpread counts lateral leg openings measured as the ankle distance gain
// over the first frame, in hip widths.
type LegSpread struct {
	machine
	swing     swing
	baselined bool
	hipWidth  float64
	baseAnkle float64
}

// NewLegSpread counts a rep when the spread reaches spread and closes back
// to close.
func NewLegSpread(name string, spread, close float64) *LegSpread {
	return &LegSpread{
		machine: newMachine(name, PhaseClosed),
		swing:   swing{rest: PhaseClosed, active: PhaseOpen, enter: spread, exit: close},
	}
}

func (l *LegSpread) Reset() {
	l.resetMachine()
	l.baselined = false
	l.hipWidth, l.baseAnkle = 0, 0
}

func (l *LegSpread) Update(f *pose.Frame, _ BarLine) State {
	if invalid(f) {
		return l.frozen(WarnNoPose)
	}
	js := f.Raw
	if !js.Has(pose.LeftHip, pose.RightHip, pose.LeftAnkle, pose.RightAnkle) {
		return l.frozen(warnLegsHidden)
	}
	ankleDist := span(js, pose.LeftAnkle, pose.RightAnkle)
	if !l.baselined {
		l.baselined = true
		l.hipWidth = floorScale(span(js, pose.LeftHip, pose.RightHip))
		l.baseAnkle = ankleDist
	}
	spread := (ankleDist - l.baseAnkle) / l.hipWidth
	l.swing.step(&l.machine, spread)

	var warnings []string
	if l.phase == PhaseOpen && spread < l.swing.enter*0.8 {
		warnings = append(warnings, warnSpreadLegs)
	}
	return l.state(warnings)
}

// ArmRaise counts both wrists rising above the shoulders and returning
// below them, in shoulder widths from the first frame.
type ArmRaise struct {
	machine
	swing         swing
	shoulderWidth float64
}

// NewArmRaise counts a rep when the wrists rise raise shoulder widths above
// the shoulder line and then drop lower widths below it.
func NewArmRaise(name string, raise, lower float64) *ArmRaise {
	return &ArmRaise{
		machine: newMachine(name, PhaseDown),
		swing:   swing{rest: PhaseDown, active: PhaseUp, enter: raise, exit: -lower},
	}
}

func (a *ArmRaise) Reset() {
	a.resetMachine()
	a.shoulderWidth = 0
}

func (a *ArmRaise) Update(f *pose.Frame, _ BarLine) State {
	if invalid(f) {
		return a.frozen(WarnNoPose)
	}
	js := f.Raw
	if !js.Has(pose.LeftShoulder, pose.RightShoulder, pose.LeftWrist, pose.RightWrist) {
		return a.frozen(warnArmsHidden)
	}
	if a.shoulderWidth == 0 {
		a.shoulderWidth = floorScale(span(js, pose.LeftShoulder, pose.RightShoulder))
	}
	lift := (meanY(js, pose.LeftShoulder, pose.RightShoulder) - meanY(js, pose.LeftWrist, pose.RightWrist)) / a.shoulderWidth
	a.swing.step(&a.machine, lift)

	var warnings []string
	if a.phase == PhaseUp && lift < a.swing.enter*0.8 {
		warnings = append(warnings, warnRaiseArms)
	}
	return a.state(warnings)
}

// TorsoBend counts sideways bends measured as the horizontal offset between
// the shoulder and hip centres, in shoulder widths from the first frame.
type TorsoBend struct {
	machine
	swing         swing
	shoulderWidth float64
}

// NewTorsoBend counts a rep when the offset reaches bend and returns to
// back.
func NewTorsoBend(name string, bend, back float64) *TorsoBend {
	return &TorsoBend{
		machine: newMachine(name, PhaseCenter),
		swing:   swing{rest: PhaseCenter, active: PhaseBend, enter: bend, exit: back},
	}
}

func (t *TorsoBend) Reset() {
	t.resetMachine()
	t.shoulderWidth = 0
}

func (t *TorsoBend) Update(f *pose.Frame, _ BarLine) State {
	if invalid(f) {
		return t.frozen(WarnNoPose)
	}
	js := f.Raw
	if !js.Has(pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip) {
		return t.frozen(warnTorsoHidden)
	}
	if t.shoulderWidth == 0 {
		t.shoulderWidth = floorScale(span(js, pose.LeftShoulder, pose.RightShoulder))
	}
	offset := meanX(js, pose.LeftShoulder, pose.RightShoulder) - meanX(js, pose.LeftHip, pose.RightHip)
	if offset < 0 {
		offset = -offset
	}
	bend := offset / t.shoulderWidth
	t.swing.step(&t.machine, bend)

	var warnings []string
	if t.phase == PhaseBend && bend < t.swing.enter*0.85 {
		warnings = append(warnings, warnBendFurther)
	}
	return t.state(warnings)
}
