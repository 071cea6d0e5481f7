package robot

import "fmt"

// Heading is an absolute direction on the maze grid.
type Heading uint8

const (
	Up Heading = iota
	Right
	Down
	Left
)

// Headings lists the four headings in bitmask order (Up=1, Right=2, Down=4, Left=8).
var Headings = [4]Heading{Up, Right, Down, Left}

var headingNames = [4]string{"up", "right", "down", "left"}

var headingDeltas = [4]Position{
	Up:    {X: 0, Y: 1},
	Right: {X: 1, Y: 0},
	Down:  {X: 0, Y: -1},
	Left:  {X: -1, Y: 0},
}

// String returns the lowercase heading name
func (h Heading) String() string {
	if int(h) < len(headingNames) {
		return headingNames[h]
	}
	return fmt.Sprintf("heading(%d)", uint8(h))
}

// Valid reports whether h is one of the four canonical headings
func (h Heading) Valid() bool {
	return h <= Left
}

// Left returns the heading 90 degrees counterclockwise from h
func (h Heading) Left() Heading { return (h + 3) % 4 }

// Right returns the heading 90 degrees clockwise from h
func (h Heading) Right() Heading { return (h + 1) % 4 }

// Reverse returns the opposite heading
func (h Heading) Reverse() Heading { return (h + 2) % 4 }

// Bit returns the passability bit for h
func (h Heading) Bit() Openings { return Openings(1) << h }

// Delta returns the unit step taken when moving along h
func (h Heading) Delta() Position { return headingDeltas[h] }

// Sensors returns the absolute directions covered by the left, front and
// right sensors when facing h.
func (h Heading) Sensors() [3]Heading {
	return [3]Heading{h.Left(), h, h.Right()}
}

// Rotate applies r to h. Values other than -90, 0 and +90 leave h unchanged.
func (h Heading) Rotate(r Rotation) Heading {
	switch r {
	case RotateLeft:
		return h.Left()
	case RotateRight:
		return h.Right()
	default:
		return h
	}
}

// RotationTo returns the rotation that turns h to face target, found among
// the three sensor slots. The second result is false when target is behind h.
func (h Heading) RotationTo(target Heading) (Rotation, bool) {
	for slot, dir := range h.Sensors() {
		if dir == target {
			return slotRotations[slot], true
		}
	}
	return NoRotation, false
}

// ParseHeading accepts full names and single-letter abbreviations
func ParseHeading(s string) (Heading, error) {
	switch s {
	case "up", "u":
		return Up, nil
	case "right", "r":
		return Right, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	}
	return Up, fmt.Errorf("unknown heading %q", s)
}

// MarshalText encodes the heading by name
func (h Heading) MarshalText() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("invalid heading %d", uint8(h))
	}
	return []byte(h.String()), nil
}

// UnmarshalText decodes a heading name
func (h *Heading) UnmarshalText(text []byte) error {
	parsed, err := ParseHeading(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Rotation is a turn in degrees, positive clockwise.
type Rotation int

const (
	RotateLeft  Rotation = -90
	NoRotation  Rotation = 0
	RotateRight Rotation = 90
)

// slotRotations maps a sensor slot (left, front, right) to its rotation.
var slotRotations = [3]Rotation{RotateLeft, NoRotation, RotateRight}

// Valid reports whether r is one of the three rotations the robot can perform
func (r Rotation) Valid() bool {
	return r == RotateLeft || r == NoRotation || r == RotateRight
}

// Position is a cell coordinate. X grows to the right, Y grows upward.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the neighboring position along h
func (p Position) Step(h Heading) Position {
	d := h.Delta()
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Origin is the starting cell of every run.
var Origin = Position{X: 0, Y: 0}

// Pose is the robot's logical position and heading.
type Pose struct {
	Position Position `json:"position"`
	Heading  Heading  `json:"heading"`
}

// StartPose is the pose the robot occupies at the beginning of each run.
var StartPose = Pose{Position: Origin, Heading: Up}
