// Package recording reads and writes pose-frame streams. A stream is either a
// JSON-lines file or a recording in a SQLite store; both carry the raw
// estimator output so a session can be replayed frame for frame.
package recording

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/reps.report/internal/pose"
)

// maxLineBytes bounds a single encoded frame.
const maxLineBytes = 1 << 20

// Sample is one replayable input: the pose frame and, when the camera image
// was searched for a bar, the measured bar row.
type Sample struct {
	Frame    pose.Frame
	BarY     float64 // normalised row
	BarFound bool
}

// record is the wire form of a Sample.
type record struct {
	T         float64               `json:"t"`
	W         int                   `json:"w"`
	H         int                   `json:"h"`
	Valid     bool                  `json:"valid"`
	BarY      *float64              `json:"bar_y,omitempty"`
	Landmarks map[string][4]float64 `json:"landmarks,omitempty"`
}

func toRecord(s Sample) record {
	r := record{
		T:     s.Frame.Timestamp,
		W:     s.Frame.Width,
		H:     s.Frame.Height,
		Valid: s.Frame.Valid,
	}
	if s.BarFound {
		y := s.BarY
		r.BarY = &y
	}
	if s.Frame.Valid && s.Frame.Raw.Count() > 0 {
		r.Landmarks = make(map[string][4]float64, s.Frame.Raw.Count())
		s.Frame.Raw.Each(func(j pose.Joint, lm pose.Landmark) {
			r.Landmarks[j.String()] = [4]float64{lm.X, lm.Y, lm.Z, lm.Visibility}
		})
	}
	return r
}

// fromRecord rebuilds the frame through pose.NewFrame so the visibility
// threshold and normalisation are applied exactly as for live input.
// Unknown landmark names are skipped.
func fromRecord(r record, minVisibility float64) Sample {
	var dets []pose.Detection
	if r.Valid {
		dets = make([]pose.Detection, 0, len(r.Landmarks))
		for name, v := range r.Landmarks {
			j, ok := pose.ParseJoint(name)
			if !ok {
				continue
			}
			dets = append(dets, pose.Detection{
				Joint:    j,
				Landmark: pose.Landmark{X: v[0], Y: v[1], Z: v[2], Visibility: v[3]},
			})
		}
	}
	f := pose.NewFrame(r.T, r.W, r.H, dets, minVisibility)
	if r.Valid && len(dets) == 0 {
		// A body was reported without any recognised landmarks.
		f.Valid = true
	}
	s := Sample{Frame: f}
	if r.BarY != nil {
		s.BarY = *r.BarY
		s.BarFound = true
	}
	return s
}

// Marshal encodes one sample as a single JSON object without a newline.
func Marshal(s Sample) ([]byte, error) {
	b, err := json.Marshal(toRecord(s))
	if err != nil {
		return nil, fmt.Errorf("marshal frame at t=%.3f: %w", s.Frame.Timestamp, err)
	}
	return b, nil
}

// Unmarshal decodes one JSON object produced by Marshal.
func Unmarshal(data []byte, minVisibility float64) (Sample, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return Sample{}, fmt.Errorf("unmarshal frame: %w", err)
	}
	return fromRecord(r, minVisibility), nil
}

// Encoder writes samples as JSON lines.
type Encoder struct {
	enc *json.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

// Encode writes s followed by a newline.
func (e *Encoder) Encode(s Sample) error {
	if err := e.enc.Encode(toRecord(s)); err != nil {
		return fmt.Errorf("encode frame at t=%.3f: %w", s.Frame.Timestamp, err)
	}
	return nil
}

// Decoder reads a JSON-lines stream. Blank lines are ignored.
type Decoder struct {
	sc            *bufio.Scanner
	minVisibility float64
	line          int
}

// NewDecoder returns a decoder that drops landmarks below minVisibility.
func NewDecoder(r io.Reader, minVisibility float64) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Decoder{sc: sc, minVisibility: minVisibility}
}

// Next returns the next sample, or io.EOF when the stream is exhausted.
func (d *Decoder) Next() (Sample, error) {
	for d.sc.Scan() {
		d.line++
		data := d.sc.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		s, err := Unmarshal(data, d.minVisibility)
		if err != nil {
			return Sample{}, fmt.Errorf("line %d: %w", d.line, err)
		}
		return s, nil
	}
	if err := d.sc.Err(); err != nil {
		return Sample{}, fmt.Errorf("line %d: %w", d.line+1, err)
	}
	return Sample{}, io.EOF
}

// ReadAll decodes every sample in r.
func ReadAll(r io.Reader, minVisibility float64) ([]Sample, error) {
	d := NewDecoder(r, minVisibility)
	var out []Sample
	for {
		s, err := d.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
}
