package pose

import "fmt"

// Joint identifies one of the 33 body landmarks reported by the pose source.
// The numeric values follow the landmark order of the upstream estimator.
type Joint int

const (
	Nose Joint = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex

	// NumJoints is the size of the joint vocabulary.
	NumJoints
)

var jointNames = [NumJoints]string{
	"nose",
	"left_eye_inner",
	"left_eye",
	"left_eye_outer",
	"right_eye_inner",
	"right_eye",
	"right_eye_outer",
	"left_ear",
	"right_ear",
	"mouth_left",
	"mouth_right",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"left_pinky",
	"right_pinky",
	"left_index",
	"right_index",
	"left_thumb",
	"right_thumb",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
	"left_ankle",
	"right_ankle",
	"left_heel",
	"right_heel",
	"left_foot_index",
	"right_foot_index",
}

var jointsByName = func() map[string]Joint {
	m := make(map[string]Joint, NumJoints)
	for i, name := range jointNames {
		m[name] = Joint(i)
	}
	return m
}()

// String returns the snake_case landmark name, e.g. "left_shoulder".
func (j Joint) String() string {
	if j < 0 || j >= NumJoints {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// Valid reports whether j is inside the vocabulary.
func (j Joint) Valid() bool {
	return j >= 0 && j < NumJoints
}

// ParseJoint looks up a joint by its snake_case name.
func ParseJoint(name string) (Joint, bool) {
	j, ok := jointsByName[name]
	return j, ok
}

// Mirror returns the same landmark on the opposite side of the body.
// Joints on the midline (nose) map to themselves.
func (j Joint) Mirror() Joint {
	switch {
	case j == Nose:
		return j
	case j == MouthLeft:
		return MouthRight
	case j == MouthRight:
		return MouthLeft
	case j >= LeftEyeInner && j <= LeftEyeOuter:
		return j + 3
	case j >= RightEyeInner && j <= RightEyeOuter:
		return j - 3
	case j >= LeftEar && j <= RightFootIndex:
		// Remaining landmarks alternate left/right starting at LeftEar.
		if (j-LeftEar)%2 == 0 {
			return j + 1
		}
		return j - 1
	}
	return j
}

// Chain is an ordered joint triple A-B-C with B as the vertex, e.g.
// shoulder-hip-knee. It is the unit most exercise angles are measured on.
type Chain struct {
	A, B, C Joint
}

// Mirror returns the chain on the opposite side of the body.
func (c Chain) Mirror() Chain {
	return Chain{A: c.A.Mirror(), B: c.B.Mirror(), C: c.C.Mirror()}
}

// Joints returns the chain members in order.
func (c Chain) Joints() []Joint {
	return []Joint{c.A, c.B, c.C}
}

// Common left-side chains. Use Mirror for the right side.
var (
	LeftLeg   = Chain{A: LeftHip, B: LeftKnee, C: LeftAnkle}
	LeftTorso = Chain{A: LeftShoulder, B: LeftHip, C: LeftKnee}
	LeftArm   = Chain{A: LeftShoulder, B: LeftElbow, C: LeftWrist}
)
