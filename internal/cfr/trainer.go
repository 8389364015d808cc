package cfr

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"
)

// Method selects which traversal kernel a Trainer drives its
// iterations with.
type Method int

const (
	Vanilla Method = iota
	ChanceSampling
	ExternalSampling
	FSI
)

func (m Method) String() string {
	switch m {
	case Vanilla:
		return "vanilla"
	case ChanceSampling:
		return "chance-sampling"
	case ExternalSampling:
		return "external-sampling"
	case FSI:
		return "fsi"
	default:
		return "unknown"
	}
}

// LinearAveragingConfig controls CFR+-style linear weighting of the
// strategy-sum contribution.
type LinearAveragingConfig struct {
	Enabled bool
	Warmup  int
}

// TrainerConfig is the full set of knobs a Trainer needs: which kernel
// to run, how many iterations, how much to parallelize, and the
// regret-update behavior every visited InfoSet is updated with.
type TrainerConfig struct {
	Method     Method
	Iterations int
	// ParallelTables fans each iteration out across this many
	// independent game instances sharing one InfoSet table. With
	// ParallelTables == 1 a Trainer is bit-for-bit deterministic for a
	// given Seed (draw order depends only on Seed, and there is a
	// single writer per update). With ParallelTables > 1, two tables
	// can race to update the same InfoSet within one iteration; the
	// entry's own mutex keeps that race-free, but the order the two
	// float additions land in is scheduler-dependent, so the resulting
	// table need not be bit-identical run to run even for the same
	// Seed. Use ParallelTables == 1 when exact reproducibility matters
	// more than throughput.
	ParallelTables       int
	Seed                 uint64
	ClampNegativeRegrets bool
	LinearAveraging      LinearAveragingConfig
	CheckpointEvery      int
	ProgressEvery        int
}

// Validate checks the subset of TrainerConfig that has no sane
// default.
func (c TrainerConfig) Validate() error {
	if c.Iterations <= 0 {
		return newError(IllegalGameState, "iterations must be > 0, got %d", c.Iterations)
	}
	if c.ParallelTables < 0 {
		return newError(IllegalGameState, "parallel tables must be >= 0, got %d", c.ParallelTables)
	}
	return nil
}

func (c TrainerConfig) withDefaults() TrainerConfig {
	if c.ParallelTables == 0 {
		c.ParallelTables = 1
	}
	if c.ProgressEvery == 0 {
		c.ProgressEvery = 1
	}
	return c
}

func (c TrainerConfig) updateOptions(iteration int) UpdateOptions {
	return UpdateOptions{
		ClampNegativeRegrets: c.ClampNegativeRegrets,
		LinearAveraging:      c.LinearAveraging.Enabled,
		Iteration:            iteration,
		Warmup:               c.LinearAveraging.Warmup,
	}
}

// GameFactory builds a fresh Game instance whose own internal
// randomness (if any) is derived from seed, so that a Trainer
// constructed with the same seed and the same factory always drives
// the same sequence of deals.
type GameFactory func(seed uint64) Game

// Progress is delivered to a Trainer's progress callback periodically
// during Run.
type Progress struct {
	Iteration       int
	TableSize       int
	RegretMagnitude float64
	IterationTime   time.Duration
}

// Trainer drives repeated CFR iterations of one Method against one
// shared InfoSet table, optionally fanning each iteration's work out
// across ParallelTables independent game instances and optionally
// persisting progress to a Sink on a checkpoint cadence.
type Trainer struct {
	cfg     TrainerConfig
	newGame GameFactory
	table   *Table
	logger  *log.Logger
	clock   quartz.Clock
	sink    Sink

	rng       *DrawCount
	iteration int
}

// NewTrainer constructs a Trainer. logger may be nil, in which case a
// logger writing to io.Discard is used.
func NewTrainer(cfg TrainerConfig, newGame GameFactory, logger *log.Logger) (*Trainer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if newGame == nil {
		return nil, newError(IllegalGameState, "newGame factory must not be nil")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Trainer{
		cfg:     cfg,
		newGame: newGame,
		table:   NewTable(),
		logger:  logger,
		clock:   quartz.NewReal(),
		rng:     NewDrawCount(NewRNG(cfg.Seed)),
	}, nil
}

// WithClock overrides the Trainer's clock, which measures the
// IterationTime reported in Progress. Checkpoint cadence counts
// iterations and does not read the clock.
func (t *Trainer) WithClock(c quartz.Clock) *Trainer {
	t.clock = c
	return t
}

// WithSink attaches a snapshot sink. When set, Run persists a snapshot
// every CheckpointEvery iterations and once more after the last
// iteration completes. A Run that stops early on cancellation or an
// error writes no final snapshot.
func (t *Trainer) WithSink(s Sink) *Trainer {
	t.sink = s
	return t
}

// Table returns the Trainer's InfoSet table.
func (t *Trainer) Table() *Table {
	return t.table
}

// Iteration returns the number of iterations completed so far.
func (t *Trainer) Iteration() int {
	return t.iteration
}

// Config returns the Trainer's configuration.
func (t *Trainer) Config() TrainerConfig {
	return t.cfg
}

// Run executes iterations until cfg.Iterations is reached or ctx is
// canceled, calling progress (if non-nil) every ProgressEvery
// iterations and after the final one.
func (t *Trainer) Run(ctx context.Context, progress func(Progress)) error {
	for t.iteration < t.cfg.Iterations {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := t.clock.Now()
		if err := t.singleIteration(t.iteration + 1); err != nil {
			return err
		}
		elapsed := t.clock.Since(start)
		t.iteration++

		if t.sink != nil && t.cfg.CheckpointEvery > 0 && t.iteration%t.cfg.CheckpointEvery == 0 {
			if err := t.saveSnapshot(); err != nil {
				return fmt.Errorf("checkpoint at iteration %d: %w", t.iteration, err)
			}
		}

		if progress != nil && (t.iteration%t.cfg.ProgressEvery == 0 || t.iteration == t.cfg.Iterations) {
			progress(Progress{
				Iteration:       t.iteration,
				TableSize:       t.table.Size(),
				RegretMagnitude: RegretMagnitude(t.table),
				IterationTime:   elapsed,
			})
		}
		t.logger.Debug("iteration complete", "iteration", t.iteration, "tableSize", t.table.Size())
	}

	if t.sink != nil {
		if err := t.saveSnapshot(); err != nil {
			return fmt.Errorf("final checkpoint: %w", err)
		}
	}
	return nil
}

func (t *Trainer) singleIteration(iteration int) error {
	opts := t.cfg.updateOptions(iteration)

	if t.cfg.Method == FSI {
		return t.runFSIBatch(opts)
	}

	seeds := make([]uint64, t.cfg.ParallelTables)
	for i := range seeds {
		seeds[i] = t.rng.Uint64()
	}

	group, _ := errgroup.WithContext(context.Background())
	for _, seed := range seeds {
		seed := seed
		group.Go(func() error {
			return t.runTable(opts, seed)
		})
	}
	return group.Wait()
}

func (t *Trainer) runTable(opts UpdateOptions, seed uint64) error {
	switch t.cfg.Method {
	case Vanilla:
		g := t.newGame(seed)
		g.NewRandom()
		v := NewVanillaCFR(t.table, opts)
		_, err := v.Run(g, onesVector(g.NumPlayers()))
		return err

	case ChanceSampling:
		g := t.newGame(seed)
		g.NewRandom()
		c := NewChanceSamplingCFR(t.table, opts, NewRNG(seed))
		_, err := c.Run(g, onesVector(g.NumPlayers()))
		return err

	case ExternalSampling:
		rng := NewRNG(seed)
		g := t.newGame(seed)
		g.NewRandom()
		numPlayers := g.NumPlayers()
		for player := 0; player < numPlayers; player++ {
			hand := g.Clone()
			e := NewExternalSamplingCFR(t.table, opts, rng, player)
			if _, err := e.Run(hand, onesVector(numPlayers)); err != nil {
				return err
			}
		}
		return nil

	default:
		return newError(IllegalGameState, "unknown method %d", t.cfg.Method)
	}
}

func (t *Trainer) runFSIBatch(opts UpdateOptions) error {
	parallel := t.cfg.ParallelTables
	games := make([]Game, parallel)
	reach := make([][]float64, parallel)
	for i := 0; i < parallel; i++ {
		seed := t.rng.Uint64()
		g := t.newGame(seed)
		g.NewRandom()
		games[i] = g
		reach[i] = onesVector(g.NumPlayers())
	}
	fsi := NewFSICFR(t.table, opts)
	_, err := fsi.RunBatch(games, reach)
	return err
}

func onesVector(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
