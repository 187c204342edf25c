package model

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Pattern names accepted by Seed
const (
	PatternEmpty   = "empty"
	PatternRandom  = "random"
	PatternGlider  = "glider"
	PatternBlinker = "blinker"
	PatternBlock   = "block"
	PatternMixed   = "mixed"
)

// Patterns lists every pattern name Seed understands
var Patterns = []string{PatternEmpty, PatternRandom, PatternGlider, PatternBlinker, PatternBlock, PatternMixed}

// PlaceGlider adds a glider with its top-left corner at the given position
func (g *Grid) PlaceGlider(startRow, startColumn int) {
	pattern := [][]bool{
		{false, true, false},
		{false, false, true},
		{true, true, true},
	}

	for r, line := range pattern {
		for c, alive := range line {
			state := Dead
			if alive {
				state = Live
			}
			g.Set(startRow+r, startColumn+c, state)
		}
	}
}

// PlaceBlinker adds a horizontal blinker oscillator
func (g *Grid) PlaceBlinker(startRow, startColumn int) {
	g.Set(startRow, startColumn, Live)
	g.Set(startRow, startColumn+1, Live)
	g.Set(startRow, startColumn+2, Live)
}

// PlaceBlock adds a 2x2 still life
func (g *Grid) PlaceBlock(startRow, startColumn int) {
	g.Set(startRow, startColumn, Live)
	g.Set(startRow, startColumn+1, Live)
	g.Set(startRow+1, startColumn, Live)
	g.Set(startRow+1, startColumn+1, Live)
}

// Randomize sets every cell alive with the given probability
func (g *Grid) Randomize(rng *rand.Rand, density float64) {
	for i := range g.cells {
		if rng.Float64() < density {
			g.cells[i].state = Live
		} else {
			g.cells[i].state = Dead
		}
	}
}

// Seed replaces the grid contents with a named pattern
func (g *Grid) Seed(pattern string, rng *rand.Rand, density float64) error {
	for i := range g.cells {
		g.cells[i].state = Dead
	}

	rows, columns := g.dims.Rows, g.dims.Columns
	switch pattern {
	case PatternEmpty:
	case PatternRandom:
		g.Randomize(rng, density)
	case PatternGlider:
		g.PlaceGlider(1, 1)
	case PatternBlinker:
		g.PlaceBlinker(rows/2, columns/2-1)
	case PatternBlock:
		g.PlaceBlock(rows/2-1, columns/2-1)
	case PatternMixed:
		g.Randomize(rng, density)
		if rows >= 10 && columns >= 10 {
			g.PlaceGlider(5, 5)
			if rows >= 15 && columns >= 20 {
				g.PlaceGlider(5, columns-8)
			}
			g.PlaceBlinker(rows/4, columns/4)
			if columns >= 30 {
				g.PlaceBlinker(3*rows/4, 3*columns/4)
			}
		}
	default:
		return errors.Errorf("[Seed] unknown pattern: %+v", pattern)
	}
	return nil
}
