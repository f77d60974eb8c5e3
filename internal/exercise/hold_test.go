package exercise

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/reps.report/internal/pose"
)

func plankPose(ts float64, straight bool) *pose.Frame {
	knee := [2]float64{0.8, 0.52}
	if !straight {
		knee = [2]float64{0.7, 0.7}
	}
	return frameAt(ts, pts{
		pose.LeftShoulder: {0.2, 0.5},
		pose.LeftHip:      {0.5, 0.5},
		pose.LeftKnee:     knee,
	})
}

func TestHoldCountsAfterDuration(t *testing.T) {
	t.Parallel()
	c := NewHold("plank_hold", Above(pose.LeftTorso, 160), 2)

	tests := []struct {
		ts       float64
		straight bool
		phase    Phase
		reps     int
		warnings []string
	}{
		{0, true, PhaseHolding, 0, []string{"Hold 2.0s"}},
		{0.5, true, PhaseHolding, 0, []string{"Hold 1.5s"}},
		{1.9, true, PhaseHolding, 0, []string{"Hold 0.1s"}},
		{2.0, true, PhaseCounted, 1, nil},
		{2.5, true, PhaseCounted, 1, nil},
		{3.0, false, PhaseReady, 1, nil},
		{3.5, true, PhaseHolding, 1, []string{"Hold 2.0s"}},
		{4.0, false, PhaseReady, 1, nil},
		{4.5, true, PhaseHolding, 1, []string{"Hold 2.0s"}},
		{6.5, true, PhaseCounted, 2, nil},
	}
	for _, tt := range tests {
		st := c.Update(plankPose(tt.ts, tt.straight), NoBar)
		assert.Equal(t, tt.phase, st.Phase, "t=%.1f", tt.ts)
		assert.Equal(t, tt.reps, st.RepCount, "t=%.1f", tt.ts)
		assert.Equal(t, tt.warnings, st.Warnings, "t=%.1f", tt.ts)
	}
}

func TestHoldBodyHidden(t *testing.T) {
	t.Parallel()
	c := NewHold("plank_hold", Above(pose.LeftTorso, 160), 2)
	st := c.Update(frameAt(0, pts{pose.LeftShoulder: {0.2, 0.5}}), NoBar)
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, []string{warnBodyHidden}, st.Warnings)
}

func TestAngleCondition(t *testing.T) {
	t.Parallel()
	squatting := frameAt(0, pts{
		pose.RightHip:   {0.3, 0.5},
		pose.RightKnee:  {0.5, 0.5},
		pose.RightAnkle: {0.5, 0.8},
	}).Raw

	tests := map[string]struct {
		cond AngleCondition
		want bool
	}{
		"wall sit range":        {Between(pose.LeftLeg, 80, 110), true},
		"range too deep":        {Between(pose.LeftLeg, 95, 110), false},
		"range inclusive":       {Between(pose.LeftLeg, 90, 90.5), true},
		"above":                 {Above(pose.LeftLeg, 60), true},
		"above rejects smaller": {Above(pose.LeftLeg, 91), false},
		"missing chain fails":   {Between(pose.LeftArm, 0, 180), false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Holding(squatting))
		})
	}
}
