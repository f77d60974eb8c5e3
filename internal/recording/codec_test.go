package recording

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/reps.report/internal/pose"
)

func sample(ts float64, bar bool) Sample {
	dets := []pose.Detection{
		{Joint: pose.Nose, Landmark: pose.Landmark{X: 0.5, Y: 0.2, Z: -0.1, Visibility: 0.99}},
		{Joint: pose.LeftShoulder, Landmark: pose.Landmark{X: 0.4, Y: 0.35, Visibility: 0.9}},
		{Joint: pose.RightShoulder, Landmark: pose.Landmark{X: 0.6, Y: 0.35, Visibility: 0.9}},
		{Joint: pose.LeftHip, Landmark: pose.Landmark{X: 0.45, Y: 0.6, Visibility: 0.8}},
		{Joint: pose.RightHip, Landmark: pose.Landmark{X: 0.55, Y: 0.6, Visibility: 0.8}},
	}
	s := Sample{Frame: pose.NewFrame(ts, 1280, 720, dets, 0.5)}
	if bar {
		s.BarY, s.BarFound = 0.31, true
	}
	return s
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	in := []Sample{
		sample(0.0, false),
		sample(1.0/30, true),
		{Frame: pose.NewFrame(2.0/30, 1280, 720, nil, 0.5)},
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, s := range in {
		require.NoError(t, enc.Encode(s))
	}
	assert.Equal(t, len(in), strings.Count(buf.String(), "\n"))

	out, err := ReadAll(&buf, 0.5)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i], out[i], "sample %d", i)
	}
}

func TestWireFormat(t *testing.T) {
	t.Parallel()

	b, err := Marshal(sample(1.5, true))
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, `"t":1.5`)
	assert.Contains(t, s, `"w":1280`)
	assert.Contains(t, s, `"valid":true`)
	assert.Contains(t, s, `"bar_y":0.31`)
	assert.Contains(t, s, `"nose":[0.5,0.2,-0.1,0.99]`)

	b, err = Marshal(Sample{Frame: pose.NewFrame(2, 640, 480, nil, 0.5)})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "landmarks")
	assert.NotContains(t, string(b), "bar_y")
}

func TestDecodeAppliesVisibilityThreshold(t *testing.T) {
	t.Parallel()

	line := `{"t":0.1,"w":640,"h":480,"valid":true,"landmarks":{` +
		`"left_hip":[0.4,0.6,0,0.9],"right_hip":[0.6,0.6,0,0.9],` +
		`"left_knee":[0.4,0.8,0,0.3],"tail_tip":[0.4,0.95,0,0.9]}}`
	s, err := Unmarshal([]byte(line), 0.5)
	require.NoError(t, err)

	assert.True(t, s.Frame.Valid)
	assert.True(t, s.Frame.Raw.Has(pose.LeftHip, pose.RightHip))
	assert.False(t, s.Frame.Raw.Has(pose.LeftKnee), "low-visibility landmark must be absent")
	assert.Equal(t, 2, s.Frame.Raw.Count(), "unknown names are skipped")

	hip, ok := s.Frame.Normalized.Get(pose.LeftHip)
	require.True(t, ok)
	assert.InDelta(t, -0.5, hip.X, 1e-9, "normalised by hip width without shoulders")
	assert.False(t, s.BarFound)
}

func TestDecodeValidWithoutTrackedLandmarks(t *testing.T) {
	t.Parallel()

	s, err := Unmarshal([]byte(`{"t":3,"w":640,"h":480,"valid":true}`), 0.5)
	require.NoError(t, err)
	assert.True(t, s.Frame.Valid)
	assert.Zero(t, s.Frame.Raw.Count())
}

func TestDecoderSkipsBlankLinesAndReportsLine(t *testing.T) {
	t.Parallel()

	input := "\n" + `{"t":0,"w":1,"h":1,"valid":false}` + "\n  \n" + `{"t":`
	d := NewDecoder(strings.NewReader(input), 0.5)

	s, err := d.Next()
	require.NoError(t, err)
	assert.False(t, s.Frame.Valid)

	_, err = d.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}

func TestDecoderEOF(t *testing.T) {
	t.Parallel()

	d := NewDecoder(strings.NewReader(""), 0.5)
	_, err := d.Next()
	assert.ErrorIs(t, err, io.EOF)
}
