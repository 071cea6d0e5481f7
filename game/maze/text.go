package maze

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads the plain text maze format: the dimension on the first line,
// then one line per column x holding comma separated bitmasks for y = 0..dim-1.
func Parse(r io.Reader) (*Maze, error) {
	scanner := bufio.NewScanner(r)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read maze: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidMaze)
	}

	dim, err := strconv.Atoi(lines[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad dimension line %q", ErrInvalidMaze, lines[0])
	}
	if len(lines)-1 != dim {
		return nil, fmt.Errorf("%w: expected %d wall lines, got %d", ErrInvalidMaze, dim, len(lines)-1)
	}

	walls := make([][]int, dim)
	for x, line := range lines[1:] {
		fields := strings.Split(line, ",")
		walls[x] = make([]int, len(fields))
		for y, field := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d entry %d: %q is not a number", ErrInvalidMaze, x+2, y+1, field)
			}
			walls[x][y] = v
		}
	}
	return New(dim, walls)
}

// WriteTo writes the maze in the format Parse reads
func (m *Maze) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(strconv.Itoa(m.dim))
	b.WriteByte('\n')
	for _, column := range m.walls {
		for y, v := range column {
			if y > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(v))
		}
		b.WriteByte('\n')
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
