package exercise

import (
	"github.com/banshee-data/reps.report/internal/pose"
)

const (
	warnLegsHidden = "Legs not visible"
	warnGoLower    = "Go lower"
)

// KneeBendConfig parameterises squat and lunge variants. Hip drop is the
// hip's downward travel from the first frame divided by the initial hip to
// ankle distance.
type KneeBendConfig struct {
	TopKneeAngle    float64 // degrees, standing
	BottomKneeAngle float64 // degrees, deepest required bend
	HipDropMin      float64 // required drop at the bottom
	StartDrop       float64 // drop that starts a descent
}

// Standard knee-bend constants.
const (
	DefaultTopKneeAngle = 165.0
	DefaultStartDrop    = 0.08
	kneeRiseMargin      = 5.0
	kneeTopTolerance    = 5.0
	kneeLowerMargin     = 10.0
	hipReturnDrop       = 0.05
)

// KneeBend counts TOP -> DOWN -> BOTTOM -> UP -> TOP cycles of a leg chain.
// Squats and lunges share this machine with different thresholds.
type KneeBend struct {
	machine
	cfg KneeBendConfig

	baselined bool
	hipYTop   float64
	legLength float64
}

// NewKneeBend returns a knee-bend counter. Zero TopKneeAngle and StartDrop
// take the standard values.
func NewKneeBend(name string, cfg KneeBendConfig) *KneeBend {
	if cfg.TopKneeAngle == 0 {
		cfg.TopKneeAngle = DefaultTopKneeAngle
	}
	if cfg.StartDrop == 0 {
		cfg.StartDrop = DefaultStartDrop
	}
	return &KneeBend{machine: newMachine(name, PhaseTop), cfg: cfg}
}

func (k *KneeBend) Reset() {
	k.resetMachine()
	k.baselined = false
	k.hipYTop, k.legLength = 0, 0
}

func (k *KneeBend) Update(f *pose.Frame, _ BarLine) State {
	if invalid(f) {
		return k.frozen(WarnNoPose)
	}
	hip, knee, ankle, ok := f.Raw.Side(pose.LeftLeg)
	if !ok {
		return k.frozen(warnLegsHidden)
	}

	angle := pose.Angle(hip, knee, ankle)
	if !k.baselined {
		k.baselined = true
		k.hipYTop = hip.Y
		k.legLength = floorScale(pose.Distance(hip, ankle))
	}
	drop := (hip.Y - k.hipYTop) / k.legLength

	c := k.cfg
	switch k.phase {
	case PhaseTop:
		if angle < c.TopKneeAngle && drop > c.StartDrop {
			k.phase = PhaseDown
		}
	case PhaseDown:
		if angle <= c.BottomKneeAngle && drop >= c.HipDropMin {
			k.phase = PhaseBottom
		}
	case PhaseBottom:
		if angle > c.BottomKneeAngle+kneeRiseMargin {
			k.phase = PhaseUp
		}
	case PhaseUp:
		if angle >= c.TopKneeAngle-kneeTopTolerance && drop <= hipReturnDrop {
			k.reps++
			k.phase = PhaseTop
		}
	}

	var warnings []string
	if (k.phase == PhaseDown || k.phase == PhaseBottom) && angle > c.BottomKneeAngle+kneeLowerMargin {
		warnings = append(warnings, warnGoLower)
	}
	return k.state(warnings)
}
