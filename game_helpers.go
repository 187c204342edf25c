package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/session"
	"github.com/sheikhrachel/go-life/utils"
)

const (
	headerRows = 2
	cellWidth  = 2
	speedStep  = 0.5

	helpLine = "space play/pause | n step | s stop | +/- speed | click toggle | q quit"
)

var (
	errQuit = errors.New("quit requested")

	liveStyle   = tcell.StyleDefault.Background(tcell.ColorWhite)
	deadStyle   = tcell.StyleDefault.Background(tcell.ColorBlack)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

// displayGameInfo shows the initial game information
func displayGameInfo(out io.Writer, config utils.Config, world model.World) {
	fmt.Fprintf(out, "Features: Parallel: %v, Bounded: %v | Pattern: %s\n",
		config.UseParallel, config.UseBoundedGrid, config.Pattern)
	fmt.Fprintf(out, "Grid: %s | Initial living cells: %d\n",
		world.Dimensions(), world.Grid.CountLivingCells())
	fmt.Fprintln(out, "Press Ctrl+C to exit gracefully")
	fmt.Fprintln(out)
}

// displayGameStatus shows the current game status
func displayGameStatus(out io.Writer, world model.World, stats *utils.Stats) {
	living := world.Grid.CountLivingCells()
	density := 0.0
	if area := world.Dimensions().Area(); area > 0 {
		density = float64(living) / float64(area) * 100
	}

	fmt.Fprintf(out, "Gen: %d | Living: %d | Density: %.1f%%\n", world.Generation, living, density)
	fmt.Fprintf(out, "Performance: %.1f gen/sec | Avg Pop: %.1f | Runtime: %.1fs\n",
		stats.GenerationsPerSecond, stats.AveragePopulation, time.Since(stats.StartTime).Seconds())
}

func newGameScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "[newGameScreen] failed to create screen")
	}
	if err = screen.Init(); err != nil {
		return nil, errors.Wrap(err, "[newGameScreen] failed to initialize screen")
	}
	screen.EnableMouse()
	screen.HideCursor()
	screen.Clear()
	return screen, nil
}

// gameView draws session worlds onto a tcell screen. Draws come from the
// session goroutine (events) and the input goroutine (resizes).
type gameView struct {
	mu     sync.Mutex
	screen tcell.Screen
	dims   model.Dimensions
	stats  *utils.Stats

	world     model.World
	state     session.State
	speed     float64
	lastFrame time.Time
}

func newGameView(screen tcell.Screen, dims model.Dimensions) *gameView {
	return &gameView{
		screen:    screen,
		dims:      dims,
		stats:     utils.NewStats(),
		lastFrame: time.Now(),
	}
}

// OnEvent is the session observer. Advances and toggles only redraw the
// cells that changed between the two worlds.
func (v *gameView) OnEvent(e session.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.world = e.Next
	v.state = e.State

	switch e.Kind {
	case session.Advanced:
		v.stats.Update(e.Next.Generation, e.Next.Grid.CountLivingCells(), time.Since(v.lastFrame))
		v.lastFrame = time.Now()
		v.drawChanged(e.Prev, e.Next)
	case session.Toggled:
		v.drawChanged(e.Prev, e.Next)
	case session.Reset:
		v.stats.Reset()
		v.lastFrame = time.Now()
		v.drawGrid(e.Next)
	}
	v.drawStatus()
	v.screen.Show()
}

// SetSpeed records the speed shown in the status line
func (v *gameView) SetSpeed(speed float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.speed = speed
	v.drawStatus()
	v.screen.Show()
}

func (v *gameView) draw(world model.World, state session.State, speed float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.world, v.state, v.speed = world, state, speed
	v.redraw()
}

// Redraw repaints everything, e.g. after a terminal resize
func (v *gameView) Redraw() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.redraw()
}

func (v *gameView) redraw() {
	v.screen.Clear()
	v.drawGrid(v.world)
	v.drawStatus()
	v.screen.Show()
}

func (v *gameView) drawGrid(world model.World) {
	for row := range v.dims.Rows {
		for column := range v.dims.Columns {
			v.drawCell(row, column, world.StateAt(row, column))
		}
	}
}

func (v *gameView) drawChanged(prev, next model.World) {
	if prev.Grid == nil || prev.Dimensions() != next.Dimensions() {
		v.drawGrid(next)
		return
	}
	for row := range v.dims.Rows {
		for column := range v.dims.Columns {
			if state := next.StateAt(row, column); state != prev.StateAt(row, column) {
				v.drawCell(row, column, state)
			}
		}
	}
}

func (v *gameView) drawCell(row, column int, state model.CellState) {
	style := deadStyle
	if state == model.Live {
		style = liveStyle
	}
	x, y := column*cellWidth, row+headerRows
	for i := range cellWidth {
		v.screen.SetContent(x+i, y, ' ', nil, style)
	}
}

func (v *gameView) drawStatus() {
	width, _ := v.screen.Size()
	status := fmt.Sprintf("Generation: %d | %s | x%.2f | Living: %d | Avg Pop: %.1f | %.1f gen/sec",
		v.world.Generation, v.state, v.speed, v.world.Grid.CountLivingCells(),
		v.stats.AveragePopulation, v.stats.GenerationsPerSecond)
	drawText(v.screen, 0, 0, width, status)
	drawText(v.screen, 0, 1, width, helpLine)
}

func drawText(screen tcell.Screen, x, y, width int, text string) {
	column := x
	for _, r := range text {
		if column >= width {
			return
		}
		screen.SetContent(column, y, r, nil, statusStyle)
		column++
	}
	for ; column < width; column++ {
		screen.SetContent(column, y, ' ', nil, tcell.StyleDefault)
	}
}

// cellAt maps a screen position to grid coordinates
func (v *gameView) cellAt(x, y int) (row, column int, ok bool) {
	row, column = y-headerRows, x/cellWidth
	return row, column, v.dims.Contains(row, column)
}

// handleInput turns terminal events into session commands until the user
// quits or ctx is cancelled
func handleInput(ctx context.Context, screen tcell.Screen, view *gameView, game *session.Session) error {
	go func() {
		<-ctx.Done()
		// wake PollEvent
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	pressed := false
	for {
		var err error
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		case *tcell.EventResize:
			screen.Sync()
			view.Redraw()
		case *tcell.EventMouse:
			down := ev.Buttons()&tcell.Button1 != 0
			if down && !pressed {
				if row, column, ok := view.cellAt(ev.Position()); ok {
					err = game.Toggle(ctx, row, column)
				}
			}
			pressed = down
		case *tcell.EventKey:
			err = handleKey(ctx, ev, view, game)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func handleKey(ctx context.Context, ev *tcell.EventKey, view *gameView, game *session.Session) error {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return errQuit
	case tcell.KeyRune:
	default:
		return nil
	}

	switch ev.Rune() {
	case 'q':
		return errQuit
	case ' ':
		return game.TogglePlay(ctx)
	case 'p':
		return game.Pause(ctx)
	case 'r':
		return game.Resume(ctx)
	case 'n':
		return game.Step(ctx)
	case 's':
		return game.Stop(ctx)
	case '+', '=':
		return changeSpeed(ctx, view, game, speedStep)
	case '-', '_':
		return changeSpeed(ctx, view, game, -speedStep)
	}
	return nil
}

func changeSpeed(ctx context.Context, view *gameView, game *session.Session, delta float64) error {
	if err := game.SetSpeed(ctx, game.Speed()+delta); err != nil {
		return err
	}
	view.SetSpeed(game.Speed())
	return nil
}
