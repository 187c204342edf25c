package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Grid represents the game board. Cells are stored row-major in one slice,
// indexed by row*columns+column.
type Grid struct {
	dims  Dimensions
	cells []Cell
}

// Bounds is an inclusive rectangle of grid coordinates
type Bounds struct {
	MinRow, MaxRow       int
	MinColumn, MaxColumn int
}

// NewGrid creates an all-dead grid with the specified dimensions
func NewGrid(dims Dimensions) (*Grid, error) {
	if dims.Rows < 0 || dims.Columns < 0 {
		return nil, errors.Errorf("[NewGrid] negative dimensions: %+v", dims)
	}
	return newGrid(dims), nil
}

func newGrid(dims Dimensions) *Grid {
	cells := make([]Cell, dims.Area())
	for row := range dims.Rows {
		for column := range dims.Columns {
			cells[row*dims.Columns+column] = Cell{state: Dead, row: row, column: column}
		}
	}
	return &Grid{dims: dims, cells: cells}
}

// Dimensions returns the grid size, constant for the grid's lifetime
func (g *Grid) Dimensions() Dimensions {
	return g.dims
}

// CellAt returns the cell at the given coordinates. Coordinates outside the
// grid are a caller bug and panic.
func (g *Grid) CellAt(row, column int) Cell {
	if !g.dims.Contains(row, column) {
		panic(fmt.Sprintf("model: CellAt(%d, %d) out of range for %s grid", row, column, g.dims))
	}
	return g.cells[row*g.dims.Columns+column]
}

// StateAt returns the state of the cell at the given coordinates, with the
// same precondition as CellAt
func (g *Grid) StateAt(row, column int) CellState {
	return g.CellAt(row, column).state
}

// Toggle flips the cell between Live and Dead. Out of range coordinates are ignored.
func (g *Grid) Toggle(row, column int) {
	if !g.dims.Contains(row, column) {
		return
	}
	idx := row*g.dims.Columns + column
	g.cells[idx].state = g.cells[idx].state.Toggled()
}

// Set sets the state of a cell. Out of range coordinates are ignored.
func (g *Grid) Set(row, column int, state CellState) {
	if g.dims.Contains(row, column) {
		g.cells[row*g.dims.Columns+column].state = state
	}
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{dims: g.dims, cells: cells}
}

// Blank returns a new all-dead grid with the same dimensions
func (g *Grid) Blank() *Grid {
	return newGrid(g.dims)
}

// LiveNeighbors counts living neighbours inside the grid. Positions past the
// edges do not count; there is no wraparound.
func (g *Grid) LiveNeighbors(row, column int) int {
	count := 0

	minRow := max(0, row-1)
	maxRow := min(g.dims.Rows-1, row+1)
	minColumn := max(0, column-1)
	maxColumn := min(g.dims.Columns-1, column+1)

	for r := minRow; r <= maxRow; r++ {
		base := r * g.dims.Columns
		for c := minColumn; c <= maxColumn; c++ {
			if r == row && c == column {
				continue
			}
			if g.cells[base+c].state == Live {
				count++
			}
		}
	}

	return count
}

// ActiveBounds returns the bounding box of living cells. ok is false when no
// cell is alive.
func (g *Grid) ActiveBounds() (b Bounds, ok bool) {
	for i, cell := range g.cells {
		if cell.state != Live {
			continue
		}
		row, column := i/g.dims.Columns, i%g.dims.Columns
		if !ok {
			b = Bounds{MinRow: row, MaxRow: row, MinColumn: column, MaxColumn: column}
			ok = true
			continue
		}
		b.MinRow = min(b.MinRow, row)
		b.MaxRow = max(b.MaxRow, row)
		b.MinColumn = min(b.MinColumn, column)
		b.MaxColumn = max(b.MaxColumn, column)
	}
	return b, ok
}

// CountLivingCells returns the total number of living cells
func (g *Grid) CountLivingCells() (count int) {
	for _, cell := range g.cells {
		if cell.state == Live {
			count++
		}
	}
	return
}

// LiveCells returns the living cells in row-major order
func (g *Grid) LiveCells() []Cell {
	var live []Cell
	for _, cell := range g.cells {
		if cell.state == Live {
			live = append(live, cell)
		}
	}
	return live
}

// Equal reports whether both grids have the same dimensions and cell states
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.dims != other.dims {
		return false
	}
	for i := range g.cells {
		if g.cells[i].state != other.cells[i].state {
			return false
		}
	}
	return true
}
