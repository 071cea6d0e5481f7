package robot

import "errors"

// ErrOffPolicy is returned when the robot stands on a cell the policy does
// not cover.
var ErrOffPolicy = errors.New("current cell is not on the planned route")

// Navigator follows a Policy, merging consecutive straight cells into one
// command of up to MaxStride cells.
type Navigator struct {
	policy *Policy
	turns  int
	done   bool
}

// NewNavigator creates a navigator for policy
func NewNavigator(policy *Policy) *Navigator {
	return &Navigator{policy: policy}
}

// Step issues the next command from pose and advances pose accordingly.
// The rotation of the first cell is the only rotation in the command; the
// batch stops before any later cell that would need to turn.
func (n *Navigator) Step(pose *Pose) (Decision, error) {
	dim := n.policy.Dim()
	if IsGoal(dim, pose.Position) {
		n.done = true
		return DoneDecision(), nil
	}

	var rotation Rotation
	count := 0
	for count < MaxStride {
		pos := pose.Position
		if count > 0 && IsGoal(dim, pos) {
			break
		}

		step, ok := n.policy.At(pos)
		if !ok {
			if count == 0 {
				return Decision{}, ErrOffPolicy
			}
			break
		}

		if count == 0 {
			rotation = step.Rotation
			pose.Heading = pose.Heading.Rotate(rotation)
		} else if step.Rotation != NoRotation {
			break
		}

		pose.Position = pos.Step(step.Action)
		count++
	}

	n.turns++
	return MoveDecision(rotation, count), nil
}

// Turns returns how many move commands have been issued. The turn that
// reports Done is not a move and is not counted.
func (n *Navigator) Turns() int { return n.turns }

// Done reports whether the navigator has observed goal arrival
func (n *Navigator) Done() bool { return n.done }
