package exercise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/reps.report/internal/pose"
)

func jackFrame(ts float64, armsUp, legsApart bool) *pose.Frame {
	wristY := 0.5
	if armsUp {
		wristY = 0.1
	}
	ankleL, ankleR := 0.45, 0.55
	if legsApart {
		ankleL, ankleR = 0.3, 0.7
	}
	return frameAt(ts, pts{
		pose.LeftShoulder:  {0.38, 0.3},
		pose.RightShoulder: {0.62, 0.3},
		pose.LeftWrist:     {0.3, wristY},
		pose.RightWrist:    {0.7, wristY},
		pose.LeftHip:       {0.4, 0.55},
		pose.RightHip:      {0.6, 0.55},
		pose.LeftAnkle:     {ankleL, 0.9},
		pose.RightAnkle:    {ankleR, 0.9},
	})
}

// calibratedJack returns a jumping-jack counter after two seconds of standing
// frames at 30 fps, and the next timestamp.
func calibratedJack(t *testing.T) (*JumpingJack, float64) {
	t.Helper()
	c := NewJumpingJack("jumping_jack", JackConfig{ArmRaiseFactor: 0.6, LegSpreadFactor: 0.7})
	var st State
	for i := 0; i <= 60; i++ {
		st = c.Update(jackFrame(float64(i)/30, false, false), NoBar)
		if i < 60 {
			require.Equal(t, PhaseCalibrating, st.Phase, "frame %d", i)
			require.Equal(t, []string{WarnCalibrating}, st.Warnings)
		}
	}
	require.True(t, c.Calibrated())
	require.Equal(t, PhaseClosed, st.Phase)
	return c, 61.0 / 30
}

func TestJumpingJackCountsOneCycle(t *testing.T) {
	t.Parallel()
	c, ts := calibratedJack(t)
	step := func(up, apart bool) State {
		st := c.Update(jackFrame(ts, up, apart), NoBar)
		ts += 1.0 / 30
		return st
	}

	assert.Equal(t, PhaseClosed, step(true, true).Phase)
	assert.Equal(t, PhaseOpen, step(true, true).Phase)
	assert.Equal(t, PhaseOpen, step(false, false).Phase)
	st := step(false, false)
	assert.Equal(t, PhaseClosed, st.Phase)
	assert.Equal(t, 1, st.RepCount)
}

func TestJumpingJackIgnoresSingleFrameNoise(t *testing.T) {
	t.Parallel()
	c, ts := calibratedJack(t)
	step := func(up, apart bool) State {
		st := c.Update(jackFrame(ts, up, apart), NoBar)
		ts += 1.0 / 30
		return st
	}

	step(true, true)
	assert.Equal(t, PhaseClosed, step(false, false).Phase)
	assert.Equal(t, PhaseClosed, step(true, true).Phase)

	assert.Equal(t, PhaseOpen, step(true, true).Phase)
	step(false, false)
	st := step(true, true)
	assert.Equal(t, PhaseOpen, st.Phase)
	assert.Zero(t, st.RepCount)
}

func TestJumpingJackOpenWarnings(t *testing.T) {
	t.Parallel()
	c, ts := calibratedJack(t)
	c.Update(jackFrame(ts, true, true), NoBar)
	c.Update(jackFrame(ts+0.03, true, true), NoBar)

	st := c.Update(jackFrame(ts+0.06, false, true), NoBar)
	assert.Equal(t, PhaseOpen, st.Phase)
	assert.Equal(t, []string{warnRaiseArms}, st.Warnings)

	st = c.Update(jackFrame(ts+0.09, true, false), NoBar)
	assert.Equal(t, []string{warnSpreadLegs}, st.Warnings)
}

func TestJumpingJackCalibrationWaitsForFullBody(t *testing.T) {
	t.Parallel()
	c := NewJumpingJack("jumping_jack", JackConfig{ArmRaiseFactor: 0.6, LegSpreadFactor: 0.7})

	partial := frameAt(0, pts{pose.LeftShoulder: {0.4, 0.3}})
	st := c.Update(partial, NoBar)
	assert.Equal(t, []string{warnBodyPartial}, st.Warnings)

	// The window starts at the first complete frame, not the first frame.
	for i := 0; i < 60; i++ {
		st = c.Update(jackFrame(5+float64(i)/30, false, false), NoBar)
	}
	assert.Equal(t, PhaseCalibrating, st.Phase)
	st = c.Update(jackFrame(7, false, false), NoBar)
	assert.Equal(t, PhaseClosed, st.Phase)
}
