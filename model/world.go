package model

import "github.com/pkg/errors"

// World is a grid plus the number of generations computed since the last reset
type World struct {
	Grid       *Grid
	Generation int
}

// NewWorld returns a generation 0 world with an all-dead grid
func NewWorld(dims Dimensions) (World, error) {
	grid, err := NewGrid(dims)
	if err != nil {
		return World{}, errors.Wrap(err, "[NewWorld] failed to create grid")
	}
	return World{Grid: grid}, nil
}

// Dimensions returns the size of the world's grid
func (w World) Dimensions() Dimensions {
	return w.Grid.Dimensions()
}

// StateAt returns the state of a cell; coordinates must be in range
func (w World) StateAt(row, column int) CellState {
	return w.Grid.StateAt(row, column)
}

// Clone returns a world with a deep copy of the grid and the same generation
func (w World) Clone() World {
	return World{Grid: w.Grid.Clone(), Generation: w.Generation}
}
