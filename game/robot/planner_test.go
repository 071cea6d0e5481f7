package robot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// corridorMaze is an 8x8 grid with one route: up column 0 to (0,3), then
// right along row 3 into the goal at (3,3). Every other cell is closed.
func corridorMaze() [][]int {
	walls := make([][]int, 8)
	for x := range walls {
		walls[x] = make([]int, 8)
	}
	u, r, d, l := 1, 2, 4, 8
	walls[0][0] = u
	walls[0][1] = u | d
	walls[0][2] = u | d
	walls[0][3] = d | r
	walls[1][3] = l | r
	walls[2][3] = l | r
	walls[3][3] = l
	return walls
}

func TestPlanOpenMaze(t *testing.T) {
	g := NewKnownGridMap(4, openMaze(4))

	policy, err := Plan(g, Origin, Up)
	require.NoError(t, err)

	assert.Equal(t, 2, policy.Length())
	assert.Equal(t, Position{X: 1, Y: 1}, policy.Goal())
	assert.Equal(t, 5, policy.Expanded())
	assert.Equal(t, []Position{{0, 0}, {0, 1}, {1, 1}}, policy.Path())

	step, ok := policy.At(Origin)
	require.True(t, ok)
	assert.Equal(t, PolicyStep{Rotation: NoRotation, Action: Up}, step)

	step, ok = policy.At(Position{X: 0, Y: 1})
	require.True(t, ok)
	assert.Equal(t, PolicyStep{Rotation: RotateRight, Action: Right}, step)

	_, ok = policy.At(Position{X: 1, Y: 0})
	assert.False(t, ok)
	_, ok = policy.At(Position{X: -1, Y: 0})
	assert.False(t, ok)
}

func TestPlanCorridor(t *testing.T) {
	g := NewKnownGridMap(8, corridorMaze())

	policy, err := Plan(g, Origin, Up)
	require.NoError(t, err)
	assert.Equal(t, 6, policy.Length())
	assert.Equal(t, Position{X: 3, Y: 3}, policy.Goal())

	route := policy.Route()
	require.Len(t, route, 6)
	assert.Equal(t, Origin, route[0].Position)
	assert.Equal(t, RotateRight, route[3].Rotation)
	assert.Equal(t, Right, route[3].Action)
	for i, entry := range route {
		if i != 3 {
			assert.Equal(t, NoRotation, entry.Rotation, entry.Position.String())
		}
	}
}

func TestPlanDisconnected(t *testing.T) {
	walls := openMaze(4)
	walls[0][0] = 0

	_, err := Plan(NewKnownGridMap(4, walls), Origin, Up)
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestPlanDoesNotEnterUnknownCells(t *testing.T) {
	g := NewGridMap(4)
	g.MarkIfUnknown(Origin, Up.Bit()|Right.Bit())

	_, err := Plan(g, Origin, Up)
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestPlanSkipsHalfTurns(t *testing.T) {
	// The only exit from the origin is behind the robot.
	walls := make([][]int, 4)
	for x := range walls {
		walls[x] = make([]int, 4)
	}
	walls[0][0] = 1
	walls[0][1] = 4 | 1
	walls[0][2] = 4 | 2
	walls[1][2] = 8

	_, err := Plan(NewKnownGridMap(4, walls), Origin, Down)
	assert.ErrorIs(t, err, ErrNoPath)

	policy, err := Plan(NewKnownGridMap(4, walls), Origin, Up)
	require.NoError(t, err)
	assert.Equal(t, 3, policy.Length())
}

func TestPlanFromGoal(t *testing.T) {
	g := NewKnownGridMap(2, openMaze(2))

	policy, err := Plan(g, Origin, Up)
	require.NoError(t, err)
	assert.Equal(t, 0, policy.Length())
	assert.Equal(t, Origin, policy.Goal())
	assert.Empty(t, policy.Route())
}

func TestPlanLeavesGridUntouched(t *testing.T) {
	g := NewKnownGridMap(4, openMaze(4))
	before := g.KnownCount()

	_, err := Plan(g, Origin, Up)
	require.NoError(t, err)
	assert.Equal(t, before, g.KnownCount())
	assert.Equal(t, 0, g.Visits(Origin))
}
