package pose

// Landmark is a single body keypoint estimate. X and Y are normalised image
// coordinates in [0,1] (y grows downwards) or body-centred coordinates when
// taken from Frame.Normalized. Z is the estimator's relative depth.
type Landmark struct {
	X          float64
	Y          float64
	Z          float64
	Visibility float64
}

// Joints maps every Joint to an optional Landmark. The zero value has no
// joints present. Joints is a value type; With returns a modified copy.
type Joints struct {
	points  [NumJoints]Landmark
	present uint64
}

// Get returns the landmark for j and whether it is present.
func (js Joints) Get(j Joint) (Landmark, bool) {
	if !j.Valid() || js.present&(1<<uint(j)) == 0 {
		return Landmark{}, false
	}
	return js.points[j], true
}

// Has reports whether every listed joint is present.
func (js Joints) Has(joints ...Joint) bool {
	for _, j := range joints {
		if !j.Valid() || js.present&(1<<uint(j)) == 0 {
			return false
		}
	}
	return true
}

// HasChain reports whether all three chain joints are present.
func (js Joints) HasChain(c Chain) bool {
	return js.Has(c.A, c.B, c.C)
}

// Count returns the number of present joints.
func (js Joints) Count() int {
	n := 0
	for p := js.present; p != 0; p &= p - 1 {
		n++
	}
	return n
}

// With returns a copy of js with j set to lm.
func (js Joints) With(j Joint, lm Landmark) Joints {
	if !j.Valid() {
		return js
	}
	js.points[j] = lm
	js.present |= 1 << uint(j)
	return js
}

// Without returns a copy of js with j marked absent.
func (js Joints) Without(j Joint) Joints {
	if !j.Valid() {
		return js
	}
	js.points[j] = Landmark{}
	js.present &^= 1 << uint(j)
	return js
}

// Each calls fn for every present joint in enumeration order.
func (js Joints) Each(fn func(Joint, Landmark)) {
	for j := Joint(0); j < NumJoints; j++ {
		if js.present&(1<<uint(j)) != 0 {
			fn(j, js.points[j])
		}
	}
}

// Either returns j if present, otherwise its mirror if present.
func (js Joints) Either(j Joint) (Landmark, bool) {
	if lm, ok := js.Get(j); ok {
		return lm, true
	}
	return js.Get(j.Mirror())
}

// Side returns the landmarks of c, preferring the chain as given and falling
// back to its mirror. ok is false when neither side is fully visible.
func (js Joints) Side(c Chain) (a, b, cc Landmark, ok bool) {
	for _, chain := range [2]Chain{c, c.Mirror()} {
		if js.HasChain(chain) {
			a, _ = js.Get(chain.A)
			b, _ = js.Get(chain.B)
			cc, _ = js.Get(chain.C)
			return a, b, cc, true
		}
	}
	return Landmark{}, Landmark{}, Landmark{}, false
}

// Frame is one timestamped snapshot of all tracked landmarks. It is produced
// once per camera frame and must not be modified after it is handed to a
// counter.
type Frame struct {
	Timestamp  float64 // monotonic seconds
	Width      int
	Height     int
	Raw        Joints // image-normalised coordinates
	Normalized Joints // body-centred, scale-normalised coordinates
	Valid      bool   // false when no body was detected
}

// Detection is a landmark as reported by the estimator, before the
// visibility threshold is applied.
type Detection struct {
	Joint    Joint
	Landmark Landmark
}

// NewFrame builds a Frame from raw detections. Detections whose visibility is
// below minVisibility are recorded as absent. A nil or empty detection list
// yields an invalid frame.
func NewFrame(ts float64, width, height int, detections []Detection, minVisibility float64) Frame {
	f := Frame{Timestamp: ts, Width: width, Height: height}
	if len(detections) == 0 {
		return f
	}
	f.Valid = true
	for _, d := range detections {
		if d.Landmark.Visibility < minVisibility {
			continue
		}
		f.Raw = f.Raw.With(d.Joint, d.Landmark)
	}
	f.Normalized = Normalize(f.Raw)
	return f
}

// Normalize re-expresses raw in a body-centred frame: the origin is the hip
// centre and coordinates are divided by the shoulder width (hip width when a
// shoulder is missing). When either hip is missing raw is returned unchanged.
func Normalize(raw Joints) Joints {
	lh, okL := raw.Get(LeftHip)
	rh, okR := raw.Get(RightHip)
	if !okL || !okR {
		return raw
	}
	cx := (lh.X + rh.X) / 2
	cy := (lh.Y + rh.Y) / 2

	var scale float64
	ls, okLS := raw.Get(LeftShoulder)
	rs, okRS := raw.Get(RightShoulder)
	if okLS && okRS {
		scale = abs(ls.X - rs.X)
	} else {
		scale = abs(lh.X - rh.X)
	}
	if scale < 1e-5 {
		scale = 1.0
	}

	var out Joints
	raw.Each(func(j Joint, lm Landmark) {
		out = out.With(j, Landmark{
			X:          (lm.X - cx) / scale,
			Y:          (lm.Y - cy) / scale,
			Z:          lm.Z / scale,
			Visibility: lm.Visibility,
		})
	})
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
