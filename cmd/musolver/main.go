// Command musolver trains and inspects CFR-family equilibrium solvers
// against the bundled benchmark games.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/musolver/musolver/internal/cfr"
	"github.com/musolver/musolver/internal/cfrconfig"
	"github.com/musolver/musolver/internal/games/kuhn"
	"github.com/musolver/musolver/internal/games/pennies"
	"github.com/musolver/musolver/internal/games/rps"
	"github.com/musolver/musolver/internal/progress"
	"github.com/musolver/musolver/internal/snapshot"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Train   TrainCmd   `cmd:"" help:"run CFR training and write a snapshot"`
	Resume  ResumeCmd  `cmd:"" help:"resume training from a snapshot"`
	Inspect InspectCmd `cmd:"" help:"print summary information about a snapshot"`
}

type TrainCmd struct {
	Game            string `help:"benchmark game (rps|pennies|kuhn)" enum:"rps,pennies,kuhn" default:"kuhn"`
	Config          string `help:"HCL training config file"`
	Method          string `help:"override method (vanilla|chance-sampling|external-sampling|fsi)"`
	Iterations      int    `help:"override iteration count" default:"0"`
	ParallelTables  int    `help:"override parallel table count" default:"0"`
	Seed            uint64 `help:"override RNG seed" default:"0"`
	CFRPlus         bool   `help:"enable CFR+ (regret clamping and linear averaging)"`
	Out             string `help:"path to write the final snapshot" required:""`
	CheckpointEvery int    `help:"checkpoint every N iterations (0 disables)" default:"0"`
	ProgressEvery   int    `help:"emit progress every N iterations" default:"0"`
	NoTUI           bool   `help:"disable the interactive progress display"`
	Serve           string `help:"address to serve a live websocket snapshot stream on, e.g. :8080 (empty disables)"`
}

type ResumeCmd struct {
	From            string `help:"snapshot to resume from" required:""`
	Game            string `help:"benchmark game (rps|pennies|kuhn)" enum:"rps,pennies,kuhn" default:"kuhn"`
	Iterations      int    `help:"extend training to this many total iterations" default:"0"`
	Out             string `help:"path to write the resumed snapshot" required:""`
	CheckpointEvery int    `help:"checkpoint every N iterations (0 disables)" default:"0"`
	ProgressEvery   int    `help:"emit progress every N iterations" default:"0"`
	NoTUI           bool   `help:"disable the interactive progress display"`
	Serve           string `help:"address to serve a live websocket snapshot stream on, e.g. :8080 (empty disables)"`
}

type InspectCmd struct {
	Path string   `arg:"" help:"snapshot file to inspect"`
	Keys []string `help:"info-set keys to print the sealed average strategy for (default: every key in the snapshot)"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("musolver"),
		kong.Description("CFR equilibrium solver"),
		kong.UsageOnError(),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if cli.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	var err error
	switch ctx.Command() {
	case "train":
		err = cli.Train.Run(logger)
	case "resume":
		err = cli.Resume.Run(logger)
	case "inspect <path>":
		err = cli.Inspect.Run(logger)
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}
	if err != nil {
		logger.Fatal("command failed", "err", err)
	}
}

func (cmd *TrainCmd) Run(logger *log.Logger) error {
	cfg := cfr.TrainerConfig{
		Method:         cfr.Vanilla,
		Iterations:     100000,
		ParallelTables: 1,
		ProgressEvery:  1000,
	}
	if cmd.Config != "" {
		loaded, err := cfrconfig.Load(cmd.Config)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Method != "" {
		method, err := parseMethod(cmd.Method)
		if err != nil {
			return err
		}
		cfg.Method = method
	}
	if cmd.Iterations > 0 {
		cfg.Iterations = cmd.Iterations
	}
	if cmd.ParallelTables > 0 {
		cfg.ParallelTables = cmd.ParallelTables
	}
	if cmd.Seed != 0 {
		cfg.Seed = cmd.Seed
	}
	if cmd.CFRPlus {
		cfg.ClampNegativeRegrets = true
		cfg.LinearAveraging = cfr.LinearAveragingConfig{Enabled: true}
	}
	if cmd.CheckpointEvery > 0 {
		cfg.CheckpointEvery = cmd.CheckpointEvery
	}
	if cmd.ProgressEvery > 0 {
		cfg.ProgressEvery = cmd.ProgressEvery
	}

	factory, err := gameFactory(cmd.Game)
	if err != nil {
		return err
	}

	sink, cfg := attachSinks(cfg, cmd.Out, cmd.Serve, logger)

	trainer, err := cfr.NewTrainer(cfg, factory, logger)
	if err != nil {
		return err
	}
	if sink != nil {
		trainer.WithSink(sink)
	}

	return runTraining(trainer, cmd.Out, cmd.NoTUI)
}

func (cmd *ResumeCmd) Run(logger *log.Logger) error {
	snap, err := cfr.LoadSnapshot(cmd.From)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if cmd.Iterations > 0 {
		snap.Config.Iterations = cmd.Iterations
	}
	if cmd.CheckpointEvery > 0 {
		snap.Config.CheckpointEvery = cmd.CheckpointEvery
	}
	if cmd.ProgressEvery > 0 {
		snap.Config.ProgressEvery = cmd.ProgressEvery
	}

	factory, err := gameFactory(cmd.Game)
	if err != nil {
		return err
	}

	sink, resumedCfg := attachSinks(snap.Config, cmd.Out, cmd.Serve, logger)
	snap.Config = resumedCfg

	trainer, err := cfr.NewTrainerFromSnapshot(snap, factory, logger)
	if err != nil {
		return fmt.Errorf("resume from snapshot: %w", err)
	}
	if sink != nil {
		trainer.WithSink(sink)
	}

	return runTraining(trainer, cmd.Out, cmd.NoTUI)
}

// attachSinks builds the Sink a Trainer should checkpoint to from the
// CLI's --out/--serve flags: a FileSink when checkpointing is enabled,
// a websocket snapshot.Hub when --serve is set, or both combined. A
// non-empty serveAddr forces checkpointing on (defaulting to every
// iteration) since a spectator otherwise never receives a snapshot
// until training finishes.
func attachSinks(cfg cfr.TrainerConfig, out, serveAddr string, logger *log.Logger) (cfr.Sink, cfr.TrainerConfig) {
	var sinks multiSink
	if serveAddr != "" && cfg.CheckpointEvery == 0 {
		cfg.CheckpointEvery = 1
	}
	if cfg.CheckpointEvery > 0 {
		sinks = append(sinks, cfr.NewFileSink(out))
	}
	if serveAddr != "" {
		hub := snapshot.NewHub()
		sinks = append(sinks, hub)
		serveHub(serveAddr, hub, logger)
	}
	if len(sinks) == 0 {
		return nil, cfg
	}
	return sinks, cfg
}

// multiSink fans a single Write out to every underlying Sink, in order.
type multiSink []cfr.Sink

func (m multiSink) Write(snap cfr.Snapshot) error {
	for _, s := range m {
		if err := s.Write(snap); err != nil {
			return err
		}
	}
	return nil
}

func serveHub(addr string, hub *snapshot.Hub, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	logger.Info("serving snapshot stream", "addr", addr, "path", "/ws")
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("snapshot server stopped", "err", err)
		}
	}()
}

func (cmd *InspectCmd) Run(logger *log.Logger) error {
	snap, err := cfr.LoadSnapshot(cmd.Path)
	if err != nil {
		return err
	}
	logger.Info("snapshot",
		"iteration", snap.Iteration,
		"method", snap.Config.Method,
		"infosets", len(snap.Entries),
		"seed", snap.Seed,
		"draws", snap.Draws,
	)

	sealed, err := cfr.SealSnapshot(snap)
	if err != nil {
		return fmt.Errorf("seal snapshot: %w", err)
	}

	keys := cmd.Keys
	if len(keys) == 0 {
		for key := range snap.Entries {
			keys = append(keys, key)
		}
		sort.Strings(keys)
	}
	for _, key := range keys {
		avg, ok := sealed.Strategy(key)
		if !ok {
			logger.Warn("key not found in snapshot", "key", key)
			continue
		}
		fmt.Printf("%s\t%v\n", key, avg)
	}
	return nil
}

func runTraining(trainer *cfr.Trainer, out string, noTUI bool) error {
	ctx := context.Background()
	cfg := trainer.Config()

	if noTUI {
		err := trainer.Run(ctx, nil)
		if err != nil {
			return err
		}
		return cfr.NewFileSink(out).Write(trainer.Snapshot())
	}

	model := progress.NewModel(cfg.Iterations)
	program := tea.NewProgram(model)
	onProgress, onDone := progress.Callback(program)

	trainErr := make(chan error, 1)
	go func() {
		trainErr <- trainer.Run(ctx, onProgress)
		onDone()
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("progress display: %w", err)
	}
	if err := <-trainErr; err != nil {
		return err
	}
	return cfr.NewFileSink(out).Write(trainer.Snapshot())
}

func gameFactory(name string) (cfr.GameFactory, error) {
	switch name {
	case "rps":
		return func(seed uint64) cfr.Game { return rps.New() }, nil
	case "pennies":
		return func(seed uint64) cfr.Game { return pennies.New() }, nil
	case "kuhn":
		return func(seed uint64) cfr.Game { return kuhn.New() }, nil
	default:
		return nil, fmt.Errorf("unknown game %q", name)
	}
}

func parseMethod(s string) (cfr.Method, error) {
	switch s {
	case "vanilla":
		return cfr.Vanilla, nil
	case "chance-sampling":
		return cfr.ChanceSampling, nil
	case "external-sampling":
		return cfr.ExternalSampling, nil
	case "fsi":
		return cfr.FSI, nil
	default:
		return 0, fmt.Errorf("unknown method %q", s)
	}
}
