package model

import "fmt"

// Dimensions is the fixed size of a grid
type Dimensions struct {
	Rows    int
	Columns int
}

// Contains reports whether (row, column) lies inside the dimensions
func (d Dimensions) Contains(row, column int) bool {
	return row >= 0 && row < d.Rows && column >= 0 && column < d.Columns
}

// Area returns the number of cells
func (d Dimensions) Area() int {
	return d.Rows * d.Columns
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Rows, d.Columns)
}

// CellState is either Dead or Live. The zero value is Dead.
type CellState uint8

const (
	Dead CellState = iota
	Live
)

// Toggled returns the opposite state
func (s CellState) Toggled() CellState {
	if s == Live {
		return Dead
	}
	return Live
}

func (s CellState) String() string {
	if s == Live {
		return "live"
	}
	return "dead"
}

// Cell is a single grid position. Its coordinates are fixed at construction,
// only the state changes.
type Cell struct {
	state  CellState
	row    int
	column int
}

// State returns the cell state
func (c Cell) State() CellState { return c.state }

// Row returns the cell row
func (c Cell) Row() int { return c.row }

// Column returns the cell column
func (c Cell) Column() int { return c.column }

// IsLive reports whether the cell is Live
func (c Cell) IsLive() bool { return c.state == Live }
