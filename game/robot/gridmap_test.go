package robot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openMaze returns wall bitmasks for a dim x dim maze with only the
// boundary walls.
func openMaze(dim int) [][]int {
	walls := make([][]int, dim)
	for x := range walls {
		walls[x] = make([]int, dim)
		for y := range walls[x] {
			var o int
			if y < dim-1 {
				o |= 1
			}
			if x < dim-1 {
				o |= 2
			}
			if y > 0 {
				o |= 4
			}
			if x > 0 {
				o |= 8
			}
			walls[x][y] = o
		}
	}
	return walls
}

func TestNewGridMapStartsUnknown(t *testing.T) {
	g := NewGridMap(4)
	assert.Equal(t, 4, g.Dim())
	assert.Equal(t, 0, g.KnownCount())
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			p := Position{X: x, Y: y}
			assert.False(t, g.Known(p))
			assert.Equal(t, Unknown, g.Openings(p))
			assert.Equal(t, 0, g.Visits(p))
		}
	}
}

func TestMarkIfUnknownIsWriteOnce(t *testing.T) {
	g := NewGridMap(4)
	p := Position{X: 1, Y: 2}

	require.True(t, g.MarkIfUnknown(p, Up.Bit()|Down.Bit()))
	assert.False(t, g.MarkIfUnknown(p, AllOpen))
	assert.Equal(t, Up.Bit()|Down.Bit(), g.Openings(p))
	assert.Equal(t, 1, g.KnownCount())

	assert.True(t, g.Openings(p).Has(Up))
	assert.False(t, g.Openings(p).Has(Left))
}

func TestUnknownHasNoOpenings(t *testing.T) {
	for _, h := range Headings {
		assert.False(t, Unknown.Has(h))
	}
}

func TestOpeningsString(t *testing.T) {
	assert.Equal(t, "?", Unknown.String())
	assert.Equal(t, "-", Openings(0).String())
	assert.Equal(t, "ur", (Up.Bit() | Right.Bit()).String())
	assert.Equal(t, "urdl", AllOpen.String())
}

func TestHeuristicAndGoal(t *testing.T) {
	g := NewGridMap(12)
	assert.Equal(t, Position{X: 6, Y: 6}, g.Center())
	assert.Equal(t, 12, g.Heuristic(Origin))
	assert.Equal(t, 0, g.Heuristic(Position{X: 6, Y: 6}))
	assert.Equal(t, 2, g.Heuristic(Position{X: 5, Y: 5}))

	goals := GoalCells(12)
	assert.Len(t, goals, 4)
	for _, p := range goals {
		assert.True(t, g.IsGoal(p), p.String())
	}
	assert.False(t, g.IsGoal(Position{X: 4, Y: 5}))
	assert.False(t, g.IsGoal(Position{X: 7, Y: 6}))
}

func TestNewKnownGridMap(t *testing.T) {
	g := NewKnownGridMap(4, openMaze(4))
	assert.Equal(t, 16, g.KnownCount())
	assert.Equal(t, Up.Bit()|Right.Bit(), g.Openings(Origin))
	assert.Equal(t, AllOpen, g.Openings(Position{X: 1, Y: 1}))
}

func TestVisits(t *testing.T) {
	g := NewGridMap(4)
	g.IncrementVisit(Origin)
	g.IncrementVisit(Origin)
	assert.Equal(t, 2, g.Visits(Origin))
	assert.True(t, g.InBounds(Position{X: 3, Y: 3}))
	assert.False(t, g.InBounds(Position{X: 4, Y: 0}))
	assert.False(t, g.InBounds(Position{X: 0, Y: -1}))
}
