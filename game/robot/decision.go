package robot

import "fmt"

// MaxStride is the most cells the robot may travel in one command.
const MaxStride = 3

// Sensors holds the distances to the nearest wall on the robot's left, front
// and right, in that order. Zero means a wall is immediately adjacent.
type Sensors [3]int

// Move is a single command: rotate, then travel Distance cells.
type Move struct {
	Rotation Rotation `json:"rotation"`
	Distance int      `json:"distance"`
}

// DecisionKind tells which variant a Decision holds.
type DecisionKind uint8

const (
	// KindMove carries a Move command
	KindMove DecisionKind = iota
	// KindReset ends the current run and asks for the robot to be placed back at the start
	KindReset
	// KindDone reports that the goal has been reached and no move is needed
	KindDone
)

var decisionKindNames = [...]string{"move", "reset", "done"}

func (k DecisionKind) String() string {
	if int(k) < len(decisionKindNames) {
		return decisionKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText encodes the kind by name
func (k DecisionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *DecisionKind) UnmarshalText(text []byte) error {
	for i, name := range decisionKindNames {
		if name == string(text) {
			*k = DecisionKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown decision kind %q", text)
}

// Decision is the controller's answer to one sensor reading.
type Decision struct {
	Kind DecisionKind `json:"kind"`
	Move Move         `json:"move"`
}

// MoveDecision builds a move command
func MoveDecision(rotation Rotation, distance int) Decision {
	return Decision{Kind: KindMove, Move: Move{Rotation: rotation, Distance: distance}}
}

// ResetDecision builds a reset signal
func ResetDecision() Decision {
	return Decision{Kind: KindReset}
}

// DoneDecision builds a goal-reached report
func DoneDecision() Decision {
	return Decision{Kind: KindDone}
}

// IsReset reports whether d is a reset signal
func (d Decision) IsReset() bool { return d.Kind == KindReset }

// IsDone reports whether d reports goal arrival
func (d Decision) IsDone() bool { return d.Kind == KindDone }

func (d Decision) String() string {
	switch d.Kind {
	case KindMove:
		return fmt.Sprintf("(%d, %d)", d.Move.Rotation, d.Move.Distance)
	case KindReset:
		return "(Reset, Reset)"
	default:
		return d.Kind.String()
	}
}
