// Package exercise holds the per-exercise repetition state machines.
//
// Every counter consumes one pose.Frame per tick (plus the bar line for
// bar-based exercises) and returns a State snapshot. Counters never return
// errors: missing bodies, hidden joints, a missing bar, unfinished
// calibration and form violations are all reported through the phase,
// warnings and rep-validity flag of the returned State.
//
// Counters are not safe for concurrent use. The driver owns exactly one
// active counter and calls Reset on it when the user switches exercise.
package exercise
