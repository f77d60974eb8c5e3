// Package registry is the static catalogue of supported exercises. Each
// entry pairs a display name with a configured counter and the camera view
// the counter expects.
package registry

import (
	"strings"
	"time"
	"unicode"

	"github.com/banshee-data/reps.report/internal/calibration"
	"github.com/banshee-data/reps.report/internal/exercise"
	"github.com/banshee-data/reps.report/internal/pose"
)

// View is the recommended camera placement for an exercise.
type View string

const (
	Front View = "Front"
	Side  View = "Side"
	Bar   View = "Bar"
)

// Entry is one catalogue row.
type Entry struct {
	Name    string
	Counter exercise.Counter
	View    View
	UsesBar bool
}

// Options carries the runtime-tunable durations; everything else is fixed
// per entry.
type Options struct {
	JackCalibration   time.Duration
	PushUpCalibration time.Duration
}

// DefaultOptions returns the standard calibration windows.
func DefaultOptions() Options {
	return Options{
		JackCalibration:   exercise.DefaultJackCalibration,
		PushUpCalibration: calibration.DefaultDuration,
	}
}

// Slug turns a display name into the snake_case counter name, e.g.
// "Pull-Up" -> "pull_up".
func Slug(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if underscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			underscore = false
			b.WriteRune(r)
			continue
		}
		underscore = true
	}
	return b.String()
}

// Entries builds a fresh catalogue. Every call returns new counter
// instances.
func Entries(opts Options) []Entry {
	jack := func(name string, arm, leg float64) Entry {
		return Entry{Name: name, View: Front, Counter: exercise.NewJumpingJack(Slug(name), exercise.JackConfig{
			ArmRaiseFactor:  arm,
			LegSpreadFactor: leg,
			Calibration:     opts.JackCalibration,
		})}
	}
	knee := func(name string, view View, bottom, drop float64) Entry {
		return Entry{Name: name, View: view, Counter: exercise.NewKneeBend(Slug(name), exercise.KneeBendConfig{
			BottomKneeAngle: bottom,
			HipDropMin:      drop,
		})}
	}
	spread := func(name string, open, close float64) Entry {
		return Entry{Name: name, View: Front, Counter: exercise.NewLegSpread(Slug(name), open, close)}
	}
	kneeUp := func(name string, view View, up, down float64) Entry {
		return Entry{Name: name, View: view, Counter: exercise.NewKneeRaise(Slug(name), up, down)}
	}
	arms := func(name string, up, down float64) Entry {
		return Entry{Name: name, View: Front, Counter: exercise.NewArmRaise(Slug(name), up, down)}
	}
	torso := func(name string, out, back float64) Entry {
		return Entry{Name: name, View: Front, Counter: exercise.NewTorsoBend(Slug(name), out, back)}
	}
	hold := func(name string, cond exercise.HoldCondition, seconds float64) Entry {
		return Entry{Name: name, View: Side, Counter: exercise.NewHold(Slug(name), cond, seconds)}
	}
	bar := func(name string, grip exercise.Grip) Entry {
		return Entry{Name: name, View: Bar, UsesBar: true,
			Counter: exercise.NewPullUp(Slug(name), grip, exercise.DefaultPullUpConfig())}
	}

	return []Entry{
		jack("Jumping Jack", 0.6, 0.7),
		knee("Squat", Front, 95, 0.18),
		bar("Pull-Up", exercise.Overhand),
		bar("Chin-Up", exercise.Underhand),
		{Name: "Sit-Up", View: Side, Counter: exercise.NewSitUp("sit_up")},
		{Name: "Push-Up", View: Side,
			Counter: exercise.NewPushUp("push_up", calibration.NewPassive(opts.PushUpCalibration))},

		// Standing cardio and arms.
		jack("Step Jack", 0.45, 0.5),
		jack("Half Jack", 0.35, 0.4),
		spread("Seal Jack", 0.6, 0.2),
		spread("Side Steps", 0.35, 0.15),
		kneeUp("High Knees", Front, 0.42, 0.15),
		kneeUp("Marching", Front, 0.25, 0.12),
		arms("Arm Raises", 0.35, 0.15),
		arms("Overhead Raises", 0.55, 0.2),
		arms("Lateral Raises", 0.25, 0.12),
		torso("Side Bends", 0.22, 0.08),

		knee("Wide Squat", Front, 100, 0.2),
		knee("Narrow Squat", Front, 95, 0.16),
		knee("Half Squat", Front, 120, 0.12),
		knee("Pulse Squat", Front, 110, 0.15),
		knee("Jump Squat", Front, 100, 0.18),

		knee("Forward Lunge", Side, 95, 0.18),
		knee("Reverse Lunge", Side, 95, 0.18),
		knee("Split Squat", Side, 100, 0.16),
		knee("Side Lunge", Front, 105, 0.16),

		// Ground and core holds.
		hold("Plank Hold", exercise.Above(pose.LeftTorso, 160), 2.0),
		hold("Side Plank Hold", exercise.Above(pose.LeftTorso, 155), 2.0),
		hold("Wall Sit Hold", exercise.Between(pose.LeftLeg, 80, 110), 2.5),
		hold("Glute Bridge", exercise.Above(pose.LeftTorso, 155), 1.5),
		hold("Hip Hinge", exercise.Between(pose.LeftTorso, 60, 110), 1.0),
		kneeUp("Knee Tucks", Side, 0.3, 0.12),

		spread("Skater Steps", 0.5, 0.2),
		torso("Toe Touches", 0.28, 0.1),
		arms("Arm Pulses", 0.2, 0.08),
		jack("Fast Jacks", 0.5, 0.6),
		jack("Slow Jacks", 0.7, 0.75),
		jack("Low Jacks", 0.35, 0.5),
		jack("Power Jacks", 0.75, 0.85),
		knee("Box Squat", Side, 100, 0.2),
		knee("Tempo Squat", Front, 105, 0.18),
		hold("Split Squat Hold", exercise.Between(pose.LeftLeg, 80, 115), 2.0),
	}
}

// Find returns the index of the entry whose name or slug matches name,
// ignoring case.
func Find(entries []Entry, name string) (int, bool) {
	want := Slug(name)
	for i, e := range entries {
		if Slug(e.Name) == want {
			return i, true
		}
	}
	return -1, false
}

// Names lists the display names in catalogue order.
func Names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
