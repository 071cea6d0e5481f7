// Package maze models the true walls of a micromouse maze.
//
// A Maze answers the questions the trial simulator asks: which sides of a
// cell are open, how far the sensors can see, and whether a layout is
// playable at all. Layouts are read from the classic text format or built
// from a wall matrix loaded elsewhere.
package maze
