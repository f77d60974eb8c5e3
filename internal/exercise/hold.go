package exercise

import (
	"fmt"
	"math"

	"github.com/banshee-data/reps.report/internal/pose"
)

const warnBodyHidden = "Body not visible"

// HoldCondition decides whether a posture is currently being held.
type HoldCondition interface {
	// Chain is the joint triple the condition measures. The mirrored chain
	// is used when this one is not fully visible.
	Chain() pose.Chain
	// Holding reports whether js satisfies the posture.
	Holding(js pose.Joints) bool
}

// AngleCondition holds while the angle at the middle joint of a chain stays
// within [Min, Max]. With MinExclusive set the lower bound is strict.
type AngleCondition struct {
	Joints       pose.Chain
	Min, Max     float64
	MinExclusive bool
}

// Above returns a condition satisfied by any angle strictly greater than min.
func Above(c pose.Chain, min float64) AngleCondition {
	return AngleCondition{Joints: c, Min: min, Max: math.Inf(1), MinExclusive: true}
}

// Between returns a condition satisfied by angles in [min, max].
func Between(c pose.Chain, min, max float64) AngleCondition {
	return AngleCondition{Joints: c, Min: min, Max: max}
}

func (a AngleCondition) Chain() pose.Chain { return a.Joints }

func (a AngleCondition) Holding(js pose.Joints) bool {
	p, q, r, ok := js.Side(a.Joints)
	if !ok {
		return false
	}
	angle := pose.Angle(p, q, r)
	if a.MinExclusive {
		if angle <= a.Min {
			return false
		}
	} else if angle < a.Min {
		return false
	}
	return angle <= a.Max
}

// HoldCounter counts a rep each time a posture is held for a minimum time.
//
// READY -> HOLDING when the condition becomes true, HOLDING -> COUNTED once
// it has stayed true for the hold duration, and either of those back to
// READY when the condition breaks.
type HoldCounter struct {
	machine
	cond  HoldCondition
	hold  float64
	start float64
}

// NewHold builds a hold counter that needs cond to stay true for
// holdSeconds of frame time.
func NewHold(name string, cond HoldCondition, holdSeconds float64) *HoldCounter {
	return &HoldCounter{
		machine: newMachine(name, PhaseReady),
		cond:    cond,
		hold:    holdSeconds,
	}
}

func (h *HoldCounter) Reset() {
	h.resetMachine()
	h.start = 0
}

func (h *HoldCounter) Update(f *pose.Frame, _ BarLine) State {
	if invalid(f) {
		return h.frozen(WarnNoPose)
	}
	c := h.cond.Chain()
	if !f.Raw.HasChain(c) && !f.Raw.HasChain(c.Mirror()) {
		return h.frozen(warnBodyHidden)
	}

	now := f.Timestamp
	holding := h.cond.Holding(f.Raw)

	switch h.phase {
	case PhaseReady:
		if holding {
			h.phase = PhaseHolding
			h.start = now
		}
	case PhaseHolding:
		if !holding {
			h.phase = PhaseReady
		} else if now-h.start >= h.hold {
			h.reps++
			h.phase = PhaseCounted
		}
	case PhaseCounted:
		if !holding {
			h.phase = PhaseReady
		}
	}

	var warnings []string
	if h.phase == PhaseHolding {
		remaining := h.hold - (now - h.start)
		if remaining < 0 {
			remaining = 0
		}
		warnings = append(warnings, fmt.Sprintf("Hold %.1fs", remaining))
	}
	return h.state(warnings)
}
