// Package simulator computes Game of Life generations. A Simulator carries
// only configuration; every call is a pure function of its input world.
package simulator

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/rules"
)

// Simulator advances and edits worlds
type Simulator struct {
	workers  int
	parallel bool
	bounded  bool
}

// Option configures a Simulator
type Option func(*Simulator)

// WithWorkers sets the number of goroutines used by Advance. Values below 1
// mean runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(s *Simulator) { s.workers = n }
}

// WithParallel enables splitting Advance across workers
func WithParallel(enabled bool) Option {
	return func(s *Simulator) { s.parallel = enabled }
}

// WithBoundedRegion restricts Advance to the live-cell bounding box plus a
// one-cell margin
func WithBoundedRegion(enabled bool) Option {
	return func(s *Simulator) { s.bounded = enabled }
}

// New returns a simulator. By default it is parallel over NumCPU workers and
// evaluates the whole grid.
func New(opts ...Option) Simulator {
	s := Simulator{parallel: true}
	for _, opt := range opts {
		opt(&s)
	}
	if s.workers < 1 {
		s.workers = runtime.NumCPU()
	}
	return s
}

var defaultSimulator = New()

// Advance computes the next generation with the default simulator
func Advance(w model.World) model.World {
	return defaultSimulator.Advance(w)
}

// ToggleCell flips one cell with the default simulator
func ToggleCell(w model.World, row, column int) model.World {
	return defaultSimulator.ToggleCell(w, row, column)
}

// Advance returns the next generation in a freshly allocated grid. The input
// world is only read, so a concurrent reader of it stays valid.
func (s Simulator) Advance(w model.World) model.World {
	current := w.Grid
	next := current.Blank()
	result := model.World{Grid: next, Generation: w.Generation + 1}

	dims := current.Dimensions()
	region := model.Bounds{MinRow: 0, MaxRow: dims.Rows - 1, MinColumn: 0, MaxColumn: dims.Columns - 1}
	if s.bounded {
		active, ok := current.ActiveBounds()
		if !ok {
			return result
		}
		// Cells further than one step from any live cell have no live
		// neighbours and stay dead.
		region = model.Bounds{
			MinRow:    max(0, active.MinRow-1),
			MaxRow:    min(dims.Rows-1, active.MaxRow+1),
			MinColumn: max(0, active.MinColumn-1),
			MaxColumn: min(dims.Columns-1, active.MaxColumn+1),
		}
	}
	if region.MaxRow < region.MinRow || region.MaxColumn < region.MinColumn {
		return result
	}

	numWorkers := 1
	if s.parallel {
		numWorkers = s.workers
	}
	height := region.MaxRow - region.MinRow + 1
	numWorkers = min(numWorkers, height)
	if numWorkers <= 1 {
		stepBand(current, next, region, region.MinRow, region.MaxRow+1)
		return result
	}

	var (
		eg            errgroup.Group
		rowsPerWorker = (height + numWorkers - 1) / numWorkers // Ceiling division
	)

	for i := range numWorkers {
		var (
			startRow = region.MinRow + i*rowsPerWorker
			endRow   = min(startRow+rowsPerWorker, region.MaxRow+1)
		)
		if startRow > region.MaxRow {
			break
		}

		eg.Go(func() error {
			stepBand(current, next, region, startRow, endRow)
			return nil
		})
	}

	// Bands never fail; Wait is only a join.
	_ = eg.Wait()

	return result
}

// stepBand writes rows [startRow, endRow) of next from current. Bands are
// disjoint so workers never write the same cell.
func stepBand(current, next *model.Grid, region model.Bounds, startRow, endRow int) {
	for row := startRow; row < endRow; row++ {
		for column := region.MinColumn; column <= region.MaxColumn; column++ {
			alive := current.StateAt(row, column) == model.Live
			if rules.ApplyConwayRules(current.LiveNeighbors(row, column), alive) {
				next.Set(row, column, model.Live)
			}
		}
	}
}

// ToggleCell flips the cell at (row, column) in place and returns a world
// with the same generation. Out of range coordinates leave the world as is.
func (s Simulator) ToggleCell(w model.World, row, column int) model.World {
	w.Grid.Toggle(row, column)
	return model.World{Grid: w.Grid, Generation: w.Generation}
}
