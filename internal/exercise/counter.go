package exercise

import (
	"math"

	"github.com/banshee-data/reps.report/internal/pose"
)

// Phase is a named state in an exercise's repetition cycle.
type Phase string

const (
	PhaseReady       Phase = "READY"
	PhaseHolding     Phase = "HOLDING"
	PhaseCounted     Phase = "COUNTED"
	PhaseDown        Phase = "DOWN"
	PhaseUp          Phase = "UP"
	PhaseClosed      Phase = "CLOSED"
	PhaseOpen        Phase = "OPEN"
	PhaseCenter      Phase = "CENTER"
	PhaseBend        Phase = "BEND"
	PhaseTop         Phase = "TOP"
	PhaseBottom      Phase = "BOTTOM"
	PhaseCalibrating Phase = "CALIBRATING"
	PhaseWaitingBar  Phase = "WAITING_BAR"
)

// Warnings shared by several counters.
const (
	WarnNoPose      = "No pose detected"
	WarnCalibrating = "Calibrating..."
	WarnBarNotFound = "Bar not found"
)

// minScale floors body-scale baselines before they are divided by.
const minScale = 1e-5

// State is the per-tick output of a counter.
type State struct {
	RepCount int
	Phase    Phase
	Warnings []string
	// RepValid is false while the in-progress rep has a form violation that
	// will stop it from being counted.
	RepValid bool
	// Rejected counts completed reps that were not counted because of a
	// form violation.
	Rejected int
}

// BarLine is the optional bar position handed to bar-based counters.
type BarLine struct {
	Y       float64 // normalised row, 0 = top of frame
	Visible bool
}

// NoBar is passed by callers that have no bar estimate.
var NoBar = BarLine{}

// BarAt returns a visible bar line at row y.
func BarAt(y float64) BarLine {
	return BarLine{Y: y, Visible: true}
}

// Counter is the contract every exercise state machine satisfies.
type Counter interface {
	// Name is a stable snake_case identifier, e.g. "jumping_jack".
	Name() string
	// Update consumes one frame and returns the resulting state. It is the
	// only mutator.
	Update(f *pose.Frame, bar BarLine) State
	// Reset clears the rep count, phase, baselines and debounce counters.
	Reset()
}

// machine holds the fields every counter carries.
type machine struct {
	name    string
	initial Phase
	phase   Phase
	reps    int
}

func newMachine(name string, initial Phase) machine {
	return machine{name: name, initial: initial, phase: initial}
}

func (m *machine) Name() string { return m.name }

func (m *machine) resetMachine() {
	m.phase = m.initial
	m.reps = 0
}

// state snapshots the machine with the given warnings and a valid rep.
func (m *machine) state(warnings []string) State {
	return State{RepCount: m.reps, Phase: m.phase, Warnings: warnings, RepValid: true}
}

// frozen reports the unchanged machine with a single warning.
func (m *machine) frozen(warning string) State {
	return m.state([]string{warning})
}

// invalid reports whether f carries no usable body.
func invalid(f *pose.Frame) bool {
	return f == nil || !f.Valid
}

func floorScale(v float64) float64 {
	return math.Max(v, minScale)
}
