package pose

import "math"

// minRayLength is the shortest ray Angle will measure; anything shorter is
// treated as degenerate.
const minRayLength = 1e-6

// minElapsed is the shortest time step Velocity will divide by.
const minElapsed = 1e-6

// Distance is the Euclidean distance between a and b on (x, y). Depth is
// ignored.
func Distance(a, b Landmark) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Angle returns the angle at vertex b between rays b→a and b→c, in degrees
// within [0, 180]. A ray shorter than 1e-6 yields 0.
func Angle(a, b, c Landmark) float64 {
	bax, bay := a.X-b.X, a.Y-b.Y
	bcx, bcy := c.X-b.X, c.Y-b.Y

	magBA := math.Hypot(bax, bay)
	magBC := math.Hypot(bcx, bcy)
	if magBA < minRayLength || magBC < minRayLength {
		return 0.0
	}
	cos := (bax*bcx + bay*bcy) / (magBA * magBC)
	cos = math.Max(-1.0, math.Min(1.0, cos))
	return math.Acos(cos) * 180.0 / math.Pi
}

// VerticalDelta returns a.Y - b.Y. Positive means a is lower on screen.
func VerticalDelta(a, b Landmark) float64 {
	return a.Y - b.Y
}

// Velocity is the rate of change of a scalar between two samples. ok is
// false when the elapsed time is at most 1e-6 s.
func Velocity(prevVal, prevTime, currVal, currTime float64) (v float64, ok bool) {
	dt := currTime - prevTime
	if dt <= minElapsed {
		return 0, false
	}
	return (currVal - prevVal) / dt, true
}

// Midpoint returns the average of a and b, keeping the lower visibility.
func Midpoint(a, b Landmark) Landmark {
	return Landmark{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Z:          (a.Z + b.Z) / 2,
		Visibility: math.Min(a.Visibility, b.Visibility),
	}
}
