package pose

// History maintains a sliding window of recent frames.
type History struct {
	frames   []Frame
	capacity int
	head     int // Points to next write position
	size     int // Current number of frames stored
}

// NewHistory creates a history buffer with the specified capacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 90 // Default
	}
	return &History{
		frames:   make([]Frame, capacity),
		capacity: capacity,
	}
}

// Add stores a new frame, overwriting the oldest if at capacity.
func (h *History) Add(f Frame) {
	h.frames[h.head] = f
	h.head = (h.head + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
}

// Len returns the number of frames stored.
func (h *History) Len() int { return h.size }

// Clear drops all frames.
func (h *History) Clear() {
	h.head = 0
	h.size = 0
}

// previous returns the frame n steps back from the most recent; n=1 is the
// most recent.
func (h *History) previous(n int) (Frame, bool) {
	if n < 1 || n > h.size {
		return Frame{}, false
	}
	idx := (h.head - n + h.capacity) % h.capacity
	return h.frames[idx], true
}

// Latest returns the most recently added frame.
func (h *History) Latest() (Frame, bool) {
	return h.previous(1)
}

// LatestValid returns the most recent frame in which a body was detected.
func (h *History) LatestValid() (Frame, bool) {
	for n := 1; n <= h.size; n++ {
		f, _ := h.previous(n)
		if f.Valid {
			return f, true
		}
	}
	return Frame{}, false
}

// Recent returns up to count frames, oldest first.
func (h *History) Recent(count int) []Frame {
	if count <= 0 {
		return nil
	}
	if count > h.size {
		count = h.size
	}
	out := make([]Frame, 0, count)
	for n := count; n >= 1; n-- {
		f, _ := h.previous(n)
		out = append(out, f)
	}
	return out
}

// Window returns the frames whose timestamp is within seconds of the most
// recent frame, oldest first.
func (h *History) Window(seconds float64) []Frame {
	latest, ok := h.Latest()
	if !ok {
		return nil
	}
	var out []Frame
	for n := h.size; n >= 1; n-- {
		f, _ := h.previous(n)
		if latest.Timestamp-f.Timestamp <= seconds {
			out = append(out, f)
		}
	}
	return out
}
