package exercise

import (
	"github.com/banshee-data/reps.report/internal/pose"
)

// Sit-up thresholds, in degrees at the hip and torso lengths of hip rise.
const (
	SitUpDownAngle = 35.0
	SitUpUpAngle   = 70.0
	SitUpMinRaise  = 0.18
	sitUpLowRaise  = 0.05
)

const (
	warnLieBack = "Lie back further"
	warnComeUp  = "Come up higher"
)

// SitUp counts DOWN -> UP -> DOWN cycles of the knee-hip-shoulder angle
// combined with the hip's rise over its first observed row.
type SitUp struct {
	machine
	baselined   bool
	hipYBase    float64
	torsoLength float64
}

func NewSitUp(name string) *SitUp {
	return &SitUp{machine: newMachine(name, PhaseDown)}
}

func (s *SitUp) Reset() {
	s.resetMachine()
	s.baselined = false
	s.hipYBase, s.torsoLength = 0, 0
}

func (s *SitUp) Update(f *pose.Frame, _ BarLine) State {
	if invalid(f) {
		return s.frozen(WarnNoPose)
	}
	shoulder, hip, knee, ok := f.Raw.Side(pose.LeftTorso)
	if !ok {
		return s.frozen(warnTorsoHidden)
	}
	if !s.baselined {
		s.baselined = true
		s.hipYBase = hip.Y
		s.torsoLength = floorScale(pose.Distance(shoulder, hip))
	}

	rise := (s.hipYBase - hip.Y) / s.torsoLength
	angle := pose.Angle(knee, hip, shoulder)

	switch s.phase {
	case PhaseDown:
		if angle >= SitUpUpAngle && rise >= SitUpMinRaise {
			s.phase = PhaseUp
		}
	case PhaseUp:
		if angle <= SitUpDownAngle && rise <= sitUpLowRaise {
			s.reps++
			s.phase = PhaseDown
		}
	}

	var warnings []string
	if s.phase == PhaseDown && angle > SitUpDownAngle+10 {
		warnings = append(warnings, warnLieBack)
	}
	if s.phase == PhaseUp && angle < SitUpUpAngle-5 {
		warnings = append(warnings, warnComeUp)
	}
	return s.state(warnings)
}
