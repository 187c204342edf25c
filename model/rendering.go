package model

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

const (
	gridPosBlock = "██"
	gridPosEmpty = "  "
)

// TextRenderer draws a grid as text, two characters per cell
type TextRenderer struct {
	Live string
	Dead string
}

// NewTextRenderer returns a renderer using full blocks for live cells
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{Live: gridPosBlock, Dead: gridPosEmpty}
}

// Render writes one line per grid row to w
func (r *TextRenderer) Render(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	dims := g.Dimensions()
	for row := range dims.Rows {
		for column := range dims.Columns {
			if g.StateAt(row, column) == Live {
				bw.WriteString(r.Live)
			} else {
				bw.WriteString(r.Dead)
			}
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "[Render] failed to write grid")
	}
	return nil
}
