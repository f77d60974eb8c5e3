package exercise

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/reps.report/internal/calibration"
	"github.com/banshee-data/reps.report/internal/pose"
)

func allCounters() map[string]func() Counter {
	return map[string]func() Counter{
		"plank_hold": func() Counter { return NewHold("plank_hold", Above(pose.LeftTorso, 160), 2) },
		"jumping_jack": func() Counter {
			return NewJumpingJack("jumping_jack", JackConfig{ArmRaiseFactor: 0.6, LegSpreadFactor: 0.7})
		},
		"squat":      func() Counter { return NewKneeBend("squat", KneeBendConfig{BottomKneeAngle: 95, HipDropMin: 0.18}) },
		"knee_raise": func() Counter { return NewKneeRaise("knee_raise", 0.35, 0.12) },
		"leg_spread": func() Counter { return NewLegSpread("leg_spread", 0.6, 0.2) },
		"arm_raise":  func() Counter { return NewArmRaise("arm_raise", 0.45, 0.15) },
		"torso_bend": func() Counter { return NewTorsoBend("torso_bend", 0.25, 0.08) },
		"situp":      func() Counter { return NewSitUp("situp") },
		"pullup":     func() Counter { return NewPullUp("pullup", Overhand, DefaultPullUpConfig()) },
		"chinup":     func() Counter { return NewPullUp("chinup", Underhand, DefaultPullUpConfig()) },
		"pushup":     func() Counter { return NewPushUp("pushup", calibration.NewPassive(time.Second)) },
	}
}

func TestCountNeverDecreases(t *testing.T) {
	t.Parallel()
	frames, bars := randomFrames(7, 600)
	for name, mk := range allCounters() {
		t.Run(name, func(t *testing.T) {
			c := mk()
			prev := 0
			for i, f := range frames {
				st := c.Update(f, bars[i])
				require.GreaterOrEqual(t, st.RepCount, prev, "frame %d", i)
				require.LessOrEqual(t, st.RepCount-prev, 1, "frame %d", i)
				prev = st.RepCount
			}
		})
	}
}

func TestInvalidFrameIsNoOp(t *testing.T) {
	t.Parallel()
	frames, bars := randomFrames(11, 400)
	for name, mk := range allCounters() {
		t.Run(name, func(t *testing.T) {
			plain, noisy := mk(), mk()
			for i, f := range frames {
				if !f.Valid {
					continue
				}
				before := noisy.Update(noBody(f.Timestamp), bars[i])
				assert.Equal(t, []string{WarnNoPose}, before.Warnings)
				assert.True(t, before.RepValid, "frame %d", i)
				assert.Equal(t, plain.Update(f, bars[i]), noisy.Update(f, bars[i]), "frame %d", i)
			}
		})
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	t.Parallel()
	frames, bars := randomFrames(3, 300)
	for name, mk := range allCounters() {
		t.Run(name, func(t *testing.T) {
			fresh := mk()
			used := mk()
			for i, f := range frames {
				used.Update(f, bars[i])
			}
			used.Reset()
			used.Reset()

			blank := noBody(0)
			assert.Equal(t, fresh.Update(blank, NoBar), used.Update(blank, NoBar))
			assert.Zero(t, used.Update(blank, NoBar).RepCount)

			for i, f := range frames {
				require.Equal(t, fresh.Update(f, bars[i]), used.Update(f, bars[i]), "frame %d", i)
			}
		})
	}
}

func TestNoPoseWarning(t *testing.T) {
	t.Parallel()
	for name, mk := range allCounters() {
		t.Run(name, func(t *testing.T) {
			st := mk().Update(noBody(1), BarAt(0.3))
			assert.Equal(t, []string{WarnNoPose}, st.Warnings)
			assert.True(t, st.RepValid)
			assert.Zero(t, st.RepCount)

			st = mk().Update(nil, NoBar)
			assert.Equal(t, []string{WarnNoPose}, st.Warnings)
		})
	}
}

func TestNames(t *testing.T) {
	t.Parallel()
	for name, mk := range allCounters() {
		assert.Equal(t, name, mk().Name())
	}
}
