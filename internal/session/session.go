// Package session drives one exercise counter at a time from a stream of
// pose frames. It owns the exercise catalogue, the bar detector and a short
// pose history, and turns each counter State into a display Snapshot.
package session

import (
	"image"

	"github.com/banshee-data/reps.report/internal/bar"
	"github.com/banshee-data/reps.report/internal/exercise"
	"github.com/banshee-data/reps.report/internal/metrics"
	"github.com/banshee-data/reps.report/internal/monitoring"
	"github.com/banshee-data/reps.report/internal/pose"
	"github.com/banshee-data/reps.report/internal/registry"
)

// Config holds the display and history settings.
type Config struct {
	// WarningLimit caps the warnings carried by a Snapshot. Zero hides them.
	WarningLimit  int
	HistoryLength int
}

// DefaultConfig matches config/tuning.defaults.json.
func DefaultConfig() Config {
	return Config{WarningLimit: 3, HistoryLength: 120}
}

// Snapshot is what a front end renders after each frame.
type Snapshot struct {
	Exercise   string
	View       registry.View
	RepCount   int
	Phase      exercise.Phase
	Warnings   []string
	RepValid   bool
	Rejected   int
	BarY       float64
	BarFound   bool
	Motivation string
	// SinceValid is the frame time since the last valid pose, or -1 when
	// none has been seen.
	SinceValid float64
	Timestamp  float64
}

// Session is not safe for concurrent use.
type Session struct {
	cfg      Config
	entries  []registry.Entry
	selected int
	detector *bar.Detector
	history  *pose.History
	metrics  *metrics.Manager

	lastReps     int
	lastRejected int
}

// New returns a session with the first entry selected. m may be nil.
func New(entries []registry.Entry, detector *bar.Detector, cfg Config, m *metrics.Manager) *Session {
	if detector == nil {
		detector = bar.NewDetector(bar.DefaultConfig(), nil)
	}
	return &Session{
		cfg:      cfg,
		entries:  entries,
		detector: detector,
		history:  pose.NewHistory(cfg.HistoryLength),
		metrics:  m,
	}
}

func (s *Session) Entries() []registry.Entry { return s.entries }

// Index returns the selected entry index.
func (s *Session) Index() int { return s.selected }

// Current returns the selected entry.
func (s *Session) Current() registry.Entry { return s.entries[s.selected] }

// History exposes the recent pose frames.
func (s *Session) History() *pose.History { return s.history }

// Select switches to entry i. Both the outgoing and incoming counters and
// the bar detector are reset. It returns false for an out-of-range index.
func (s *Session) Select(i int) bool {
	if i < 0 || i >= len(s.entries) {
		return false
	}
	prev := s.entries[s.selected]
	monitoring.Logf("session: switching from %s (%d reps) to %s", prev.Name, s.lastReps, s.entries[i].Name)
	prev.Counter.Reset()
	s.selected = i
	s.entries[i].Counter.Reset()
	s.detector.Reset()
	s.lastReps, s.lastRejected = 0, 0
	s.metrics.Switched()
	return true
}

// SelectName selects the entry matching name (see registry.Find).
func (s *Session) SelectName(name string) bool {
	i, ok := registry.Find(s.entries, name)
	if !ok {
		return false
	}
	return s.Select(i)
}

// Process advances the session with a pose frame and the camera image it
// came from. img is only examined for bar exercises and may be nil.
func (s *Session) Process(f *pose.Frame, img image.Image) Snapshot {
	f = s.orBlank(f)
	line := exercise.NoBar
	if s.Current().UsesBar {
		if y, ok := s.detector.Update(img, f.Timestamp); ok {
			line = exercise.BarAt(y)
		}
	}
	return s.step(f, line)
}

// ProcessRow advances the session with a pre-measured bar row, smoothing it
// through the detector. found=false counts as a frame without a detection.
func (s *Session) ProcessRow(f *pose.Frame, row float64, found bool) Snapshot {
	f = s.orBlank(f)
	line := exercise.NoBar
	if s.Current().UsesBar {
		var y float64
		var ok bool
		if found {
			y, ok = s.detector.ObserveRow(row, f.Timestamp)
		} else {
			y, ok = s.detector.Miss(f.Timestamp)
		}
		if ok {
			line = exercise.BarAt(y)
		}
	}
	return s.step(f, line)
}

// ProcessWithBar advances the session with an already smoothed bar line,
// bypassing the detector.
func (s *Session) ProcessWithBar(f *pose.Frame, line exercise.BarLine) Snapshot {
	return s.step(s.orBlank(f), line)
}

// orBlank stands in a frame without a body for a nil f, stamped with the
// latest timestamp seen.
func (s *Session) orBlank(f *pose.Frame) *pose.Frame {
	if f != nil {
		return f
	}
	var ts float64
	if last, ok := s.history.Latest(); ok {
		ts = last.Timestamp
	}
	return &pose.Frame{Timestamp: ts}
}

func (s *Session) step(f *pose.Frame, line exercise.BarLine) Snapshot {
	entry := s.Current()
	s.history.Add(*f)

	st := entry.Counter.Update(f, line)

	name := entry.Counter.Name()
	s.metrics.ObserveFrame(name, f.Valid)
	s.metrics.AddReps(name, st.RepCount-s.lastReps, st.Rejected-s.lastRejected)
	s.metrics.AddWarnings(name, len(st.Warnings))
	if entry.UsesBar {
		s.metrics.SetBarDetected(line.Visible)
	}
	s.lastReps, s.lastRejected = st.RepCount, st.Rejected

	warnings := st.Warnings
	if len(warnings) > s.cfg.WarningLimit {
		warnings = warnings[:s.cfg.WarningLimit]
	}

	since := -1.0
	if lv, ok := s.history.LatestValid(); ok {
		since = f.Timestamp - lv.Timestamp
	}

	return Snapshot{
		Exercise:   entry.Name,
		View:       entry.View,
		RepCount:   st.RepCount,
		Phase:      st.Phase,
		Warnings:   warnings,
		RepValid:   st.RepValid,
		Rejected:   st.Rejected,
		BarY:       line.Y,
		BarFound:   line.Visible,
		Motivation: Motivation(f.Timestamp),
		SinceValid: since,
		Timestamp:  f.Timestamp,
	}
}
