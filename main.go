package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-life/model"
	"github.com/sheikhrachel/go-life/session"
	"github.com/sheikhrachel/go-life/simulator"
	"github.com/sheikhrachel/go-life/utils"
)

func main() {
	var (
		configPath  = flag.String("config", "config.json", "path to a JSON config file")
		headless    = flag.Bool("headless", false, "print generations to stdout instead of opening the interactive screen")
		generations = flag.Int("generations", -1, "generations to run in headless mode (overrides max_generations)")
		pattern     = flag.String("pattern", "", "initial pattern: empty, random, glider, blinker, block or mixed")
		logPath     = flag.String("log", "", "file to write session logs to in interactive mode")
	)
	flag.Parse()

	// Load configuration - fallback to defaults if file doesn't exist
	config, err := utils.LoadConfig(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("%+v", err)
		}
		fmt.Fprintf(os.Stderr, "Using default configuration (%s not found)\n", *configPath)
		config = utils.DefaultConfig()
	}
	if *headless {
		config.Headless = true
	}
	if *generations >= 0 {
		config.MaxGenerations = *generations
	}
	if *pattern != "" {
		config.Pattern = *pattern
	}
	if err = config.Validate(); err != nil {
		log.Fatalf("%+v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.Headless {
		err = runHeadless(ctx, config, os.Stdout)
	} else {
		err = runInteractive(ctx, config, *logPath)
	}
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

// initialWorld builds the seeded generation 0 world described by config
func initialWorld(config utils.Config) (model.World, error) {
	world, err := model.NewWorld(config.Dimensions())
	if err != nil {
		return model.World{}, errors.Wrap(err, "[initialWorld] failed to create world")
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if err = world.Grid.Seed(config.Pattern, rand.New(rand.NewSource(seed)), config.RandomDensity); err != nil {
		return model.World{}, errors.Wrap(err, "[initialWorld] failed to seed grid")
	}
	return world, nil
}

func newSimulator(config utils.Config) simulator.Simulator {
	return simulator.New(
		simulator.WithWorkers(config.Workers),
		simulator.WithParallel(config.UseParallel),
		simulator.WithBoundedRegion(config.UseBoundedGrid),
	)
}

// runHeadless advances config.MaxGenerations times, printing every generation
func runHeadless(ctx context.Context, config utils.Config, out io.Writer) error {
	world, err := initialWorld(config)
	if err != nil {
		return err
	}

	var (
		sim           = newSimulator(config)
		renderer      = model.NewTextRenderer()
		stats         = utils.NewStats()
		lastFrameTime = time.Now()
	)

	displayGameInfo(out, config, world)

	for {
		stats.Update(world.Generation, world.Grid.CountLivingCells(), time.Since(lastFrameTime))
		lastFrameTime = time.Now()

		displayGameStatus(out, world, stats)
		if err = renderer.Render(out, world.Grid); err != nil {
			return err
		}

		if world.Generation >= config.MaxGenerations {
			fmt.Fprintf(out, "\n🏁 Reached maximum generations limit (%d)\n", config.MaxGenerations)
			return nil
		}

		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\n🛑 Shutting down gracefully...")
			return nil
		default:
		}

		world = sim.Advance(world)
	}
}

// runInteractive runs the session loop and the terminal input loop together
func runInteractive(ctx context.Context, config utils.Config, logPath string) error {
	logger := log.New(io.Discard, "", 0)
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrapf(err, "[runInteractive] failed to open log file: %+v", logPath)
		}
		defer f.Close()
		logger = log.New(f, "go-life ", log.LstdFlags)
	}

	world, err := initialWorld(config)
	if err != nil {
		return err
	}

	screen, err := newGameScreen()
	if err != nil {
		return err
	}
	defer screen.Fini()

	view := newGameView(screen, config.Dimensions())
	game, err := session.New(config.Dimensions(),
		session.WithSimulator(newSimulator(config)),
		session.WithInterval(config.TickInterval),
		session.WithSpeed(config.Speed),
		session.WithInitialWorld(world),
		session.WithLogger(logger),
		session.WithObserver(view.OnEvent),
	)
	if err != nil {
		return err
	}
	view.draw(game.Snapshot(), game.State(), game.Speed())

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return game.Run(egCtx)
	})
	eg.Go(func() error {
		return handleInput(egCtx, screen, view, game)
	})
	if err = eg.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}
