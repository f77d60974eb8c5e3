package session

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/reps.report/internal/bar"
	"github.com/banshee-data/reps.report/internal/exercise"
	"github.com/banshee-data/reps.report/internal/metrics"
	"github.com/banshee-data/reps.report/internal/monitoring"
	"github.com/banshee-data/reps.report/internal/pose"
	"github.com/banshee-data/reps.report/internal/registry"
)

func init() {
	monitoring.SetLogger(nil)
}

func frame(ts float64, points map[pose.Joint][2]float64) *pose.Frame {
	var dets []pose.Detection
	for j, p := range points {
		dets = append(dets, pose.Detection{Joint: j, Landmark: pose.Landmark{X: p[0], Y: p[1], Visibility: 1}})
	}
	f := pose.NewFrame(ts, 640, 480, dets, 0.5)
	return &f
}

func blank(ts float64) *pose.Frame {
	f := pose.NewFrame(ts, 640, 480, nil, 0.5)
	return &f
}

func hang(ts, noseY float64) *pose.Frame {
	return frame(ts, map[pose.Joint][2]float64{
		pose.Nose:          {0.5, noseY},
		pose.LeftShoulder:  {0.4, noseY + 0.1},
		pose.RightShoulder: {0.6, noseY + 0.1},
		pose.LeftWrist:     {0.35, 0.3},
		pose.RightWrist:    {0.65, 0.3},
	})
}

func newSession(t *testing.T, m *metrics.Manager) *Session {
	t.Helper()
	s := New(registry.Entries(registry.DefaultOptions()), bar.NewDetector(bar.DefaultConfig(), nil), DefaultConfig(), m)
	require.Equal(t, "Jumping Jack", s.Current().Name)
	return s
}

func TestSelect(t *testing.T) {
	s := newSession(t, nil)

	assert.False(t, s.Select(-1))
	assert.False(t, s.Select(len(s.Entries())))
	assert.True(t, s.SelectName("pull-up"))
	assert.Equal(t, "Pull-Up", s.Current().Name)
	assert.Equal(t, registry.Bar, s.Current().View)
	assert.False(t, s.SelectName("burpee"))
	assert.Equal(t, 2, s.Index())
}

func TestPullUpThroughRows(t *testing.T) {
	s := newSession(t, nil)
	require.True(t, s.SelectName("Pull-Up"))

	snap := s.ProcessRow(hang(0, 0.5), 0.3, true)
	assert.True(t, snap.BarFound)
	assert.InDelta(t, 0.3, snap.BarY, 1e-9)
	assert.Equal(t, exercise.PhaseWaitingBar, snap.Phase)

	snap = s.ProcessRow(hang(0.1, 0.28), 0.3, true)
	assert.Equal(t, exercise.PhaseUp, snap.Phase)

	// A missed detection inside the memory window keeps the bar.
	snap = s.ProcessRow(hang(0.2, 0.39), 0, false)
	assert.True(t, snap.BarFound)
	assert.Equal(t, 1, snap.RepCount)

	// Past the window the bar is gone.
	snap = s.ProcessRow(hang(1.0, 0.39), 0, false)
	assert.False(t, snap.BarFound)
	assert.Equal(t, exercise.PhaseWaitingBar, snap.Phase)
	assert.Equal(t, []string{exercise.WarnBarNotFound}, snap.Warnings)
	assert.Equal(t, 1, snap.RepCount)
}

func TestSelectResetsCounterAndBar(t *testing.T) {
	s := newSession(t, nil)
	require.True(t, s.SelectName("Pull-Up"))
	s.ProcessRow(hang(0, 0.28), 0.3, true)
	snap := s.ProcessRow(hang(0.1, 0.39), 0.3, true)
	require.Equal(t, 1, snap.RepCount)

	require.True(t, s.SelectName("Squat"))
	require.True(t, s.SelectName("Pull-Up"))
	_, ok := s.detector.Last()
	assert.False(t, ok)

	snap = s.ProcessRow(hang(0.2, 0.5), 0, false)
	assert.Zero(t, snap.RepCount)
	assert.False(t, snap.BarFound)
}

func TestNonBarExerciseIgnoresRows(t *testing.T) {
	s := newSession(t, nil)
	require.True(t, s.SelectName("Squat"))
	snap := s.ProcessRow(blank(0), 0.3, true)
	assert.False(t, snap.BarFound)
	_, ok := s.detector.Last()
	assert.False(t, ok)
}

func TestProcessWithoutImage(t *testing.T) {
	s := newSession(t, nil)
	require.True(t, s.SelectName("Chin-Up"))
	snap := s.Process(hang(0, 0.5), nil)
	assert.False(t, snap.BarFound)
	assert.Equal(t, []string{exercise.WarnBarNotFound}, snap.Warnings)
}

func TestNilFrameIsNoPose(t *testing.T) {
	s := newSession(t, nil)
	require.True(t, s.SelectName("Chin-Up"))
	s.ProcessRow(hang(1, 0.5), 0.3, true)

	for _, snap := range []Snapshot{
		s.ProcessRow(nil, 0.3, true),
		s.Process(nil, nil),
		s.ProcessWithBar(nil, exercise.NoBar),
	} {
		assert.Contains(t, snap.Warnings, exercise.WarnNoPose)
		assert.Equal(t, 1.0, snap.Timestamp)
		assert.Zero(t, snap.RepCount)
	}
	assert.Equal(t, 4, s.History().Len())
}

func TestWarningLimit(t *testing.T) {
	entries := []registry.Entry{{
		Name:    "Pull-Up",
		View:    registry.Bar,
		UsesBar: true,
		Counter: exercise.NewPullUp("pull_up", exercise.Overhand, exercise.DefaultPullUpConfig()),
	}}
	// Too close, narrow grip, wrists off the bar: three warnings.
	f := frame(0, map[pose.Joint][2]float64{
		pose.Nose:          {0.5, 0.5},
		pose.LeftShoulder:  {0.4, 0.6},
		pose.RightShoulder: {0.6, 0.6},
		pose.LeftWrist:     {0.5, 0.8},
		pose.RightWrist:    {0.501, 0.8},
	})
	nose, _ := f.Raw.Get(pose.Nose)
	nose.Z = -0.5
	f.Raw = f.Raw.With(pose.Nose, nose)

	full := New(entries, nil, Config{WarningLimit: 5}, nil).ProcessWithBar(f, exercise.BarAt(0.3))
	require.Len(t, full.Warnings, 3)

	entries[0].Counter.Reset()
	capped := New(entries, nil, Config{WarningLimit: 2}, nil).ProcessWithBar(f, exercise.BarAt(0.3))
	assert.Equal(t, full.Warnings[:2], capped.Warnings)

	entries[0].Counter.Reset()
	hidden := New(entries, nil, Config{}, nil).ProcessWithBar(f, exercise.BarAt(0.3))
	assert.Empty(t, hidden.Warnings)
}

func TestSinceValid(t *testing.T) {
	s := newSession(t, nil)
	assert.Equal(t, -1.0, s.ProcessWithBar(blank(0), exercise.NoBar).SinceValid)

	s.ProcessWithBar(hang(1, 0.5), exercise.NoBar)
	snap := s.ProcessWithBar(blank(1.5), exercise.NoBar)
	assert.InDelta(t, 0.5, snap.SinceValid, 1e-9)
	assert.Equal(t, 3, s.History().Len())
}

func TestMotivation(t *testing.T) {
	tests := map[float64]string{
		0:    "Keep going!",
		1.9:  "You got this!",
		5.2:  "Focus and breathe.",
		6.0:  "Keep going!",
		-1.0: "Focus and breathe.",
	}
	for ts, want := range tests {
		assert.Equal(t, want, Motivation(ts), "ts=%v", ts)
	}

	s := newSession(t, nil)
	assert.Equal(t, "Great pace!", s.ProcessWithBar(blank(3.4), exercise.NoBar).Motivation)
}

func TestMetrics(t *testing.T) {
	m := metrics.NewTestManager()
	s := newSession(t, m)
	require.True(t, s.SelectName("Pull-Up"))

	s.ProcessRow(hang(0, 0.28), 0.3, true)
	s.ProcessRow(hang(0.1, 0.39), 0.3, true)
	s.ProcessRow(blank(0.2), 0.3, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterSwitches))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterFrames.WithLabelValues("pull_up", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterFrames.WithLabelValues("pull_up", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterReps.WithLabelValues("pull_up")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GaugeBarDetected))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterWarnings.WithLabelValues("pull_up")))
}
