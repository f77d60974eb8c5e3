package exercise

// swing is the two-phase hysteresis shared by the raise, spread and bend
// counters: rest -> active when the metric reaches enter, active -> rest
// (counting one rep) when it falls to exit.
type swing struct {
	rest, active Phase
	enter, exit  float64
}

func (s swing) step(m *machine, v float64) {
	switch m.phase {
	case s.rest:
		if v >= s.enter {
			m.phase = s.active
		}
	case s.active:
		if v <= s.exit {
			m.reps++
			m.phase = s.rest
		}
	}
}
