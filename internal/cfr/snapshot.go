package cfr

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

const snapshotFormatVersion = 1

// InfoSetSnapshot is the serializable form of one InfoSet record.
// Average is the primary record of a solve: the time-averaged
// strategy strategy_sum converges to as iterations grow, recomputed
// at snapshot time rather than stored redundantly. Regrets and
// StrategySum are kept so training can resume exactly; a reader that
// only wants the solved policy needs Average alone.
type InfoSetSnapshot struct {
	Arity       int       `json:"arity"`
	Regrets     []float64 `json:"regrets"`
	StrategySum []float64 `json:"strategy_sum"`
	Average     []float64 `json:"average"`
	LastIter    int       `json:"last_iter"`
}

// Snapshot is the serializable state of a Trainer: enough to resume
// training from exactly where it left off, including the RNG position
// so a resumed run draws the same sequence of table seeds a
// continuous run would have.
type Snapshot struct {
	Version   int                        `json:"version"`
	Iteration int                        `json:"iteration"`
	Config    TrainerConfig              `json:"config"`
	Seed      uint64                     `json:"seed"`
	Draws     uint64                     `json:"draws"`
	Entries   map[string]InfoSetSnapshot `json:"entries"`
}

// Sink persists a Snapshot somewhere: a local file, a remote object
// store, a streaming connection to a spectator. Write must be safe to
// call repeatedly with growing Snapshots from the same Trainer.
type Sink interface {
	Write(snap Snapshot) error
}

// Snapshot captures the Trainer's current state.
func (t *Trainer) Snapshot() Snapshot {
	entries := make(map[string]InfoSetSnapshot)
	t.table.Range(func(e *InfoSet) {
		regrets, strategySum, lastIter := e.snapshot()
		entries[e.Key] = InfoSetSnapshot{
			Arity:       e.Arity,
			Regrets:     regrets,
			StrategySum: strategySum,
			Average:     AverageStrategy(strategySum),
			LastIter:    lastIter,
		}
	})
	return Snapshot{
		Version:   snapshotFormatVersion,
		Iteration: t.iteration,
		Config:    t.cfg,
		Seed:      t.cfg.Seed,
		Draws:     t.rng.Draws(),
		Entries:   entries,
	}
}

func (t *Trainer) saveSnapshot() error {
	return t.sink.Write(t.Snapshot())
}

// RestoreTable rebuilds an InfoSet table from a Snapshot.
func RestoreTable(snap Snapshot) *Table {
	table := NewTable()
	for key, e := range snap.Entries {
		shard := table.shardFor(key)
		shard.mu.Lock()
		shard.entries[key] = &InfoSet{
			Key:         key,
			Arity:       e.Arity,
			Regrets:     append([]float64(nil), e.Regrets...),
			StrategySum: append([]float64(nil), e.StrategySum...),
			LastIter:    e.LastIter,
		}
		shard.mu.Unlock()
	}
	return table
}

// NewTrainerFromSnapshot reconstructs a Trainer that will resume
// exactly where snap left off: same table contents, same iteration
// count, and an RNG fast-forwarded to the same position so subsequent
// per-table seeds continue the sequence a continuous run would have
// drawn.
func NewTrainerFromSnapshot(snap Snapshot, newGame GameFactory, logger *log.Logger) (*Trainer, error) {
	trainer, err := NewTrainer(snap.Config, newGame, logger)
	if err != nil {
		return nil, err
	}
	trainer.table = RestoreTable(snap)
	trainer.iteration = snap.Iteration
	trainer.rng = NewDrawCount(NewRNG(snap.Seed))
	trainer.rng.Skip(snap.Draws)
	return trainer, nil
}

// FileSink writes Snapshots to Path as indented JSON, via a temp file
// plus rename so a reader never observes a partially written file.
type FileSink struct {
	Path string
}

// NewFileSink returns a Sink that writes to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

func (s *FileSink) Write(snap Snapshot) error {
	dir := filepath.Dir(s.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return newError(SnapshotIO, "create snapshot dir: %v", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return newError(SnapshotIO, "create snapshot temp file: %v", err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return newError(SnapshotIO, "encode snapshot: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return newError(SnapshotIO, "close snapshot temp file: %v", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		os.Remove(tmp.Name())
		return newError(SnapshotIO, "rename snapshot into place: %v", err)
	}
	return nil
}

// LoadSnapshot reads a Snapshot previously written by FileSink.
func LoadSnapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, newError(SnapshotIO, "open snapshot: %v", err)
	}
	defer f.Close()

	var snap Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return Snapshot{}, newError(SnapshotIO, "decode snapshot: %v", err)
	}
	if snap.Version != snapshotFormatVersion {
		return Snapshot{}, newError(SnapshotIO, "unsupported snapshot version %d", snap.Version)
	}
	return snap, nil
}
