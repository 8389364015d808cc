package cfr_test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/musolver/musolver/internal/cfr"
	"github.com/musolver/musolver/internal/games/kuhn"
)

func kuhnFactory(seed uint64) cfr.Game { return kuhn.New() }

func TestTrainerIsDeterministicForAFixedSeed(t *testing.T) {
	cfg := cfr.TrainerConfig{
		Method:         cfr.ExternalSampling,
		Iterations:     200,
		ParallelTables: 1,
		Seed:           42,
	}

	t1, err := cfr.NewTrainer(cfg, kuhnFactory, nil)
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}
	if err := t1.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	t2, err := cfr.NewTrainer(cfg, kuhnFactory, nil)
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}
	if err := t2.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	s1 := t1.Snapshot()
	s2 := t2.Snapshot()
	if !reflect.DeepEqual(s1.Entries, s2.Entries) {
		t.Fatal("two trainers with the same seed and config diverged")
	}
}

func TestTrainerSnapshotRoundTrip(t *testing.T) {
	cfg := cfr.TrainerConfig{
		Method:         cfr.Vanilla,
		Iterations:     50,
		ParallelTables: 1,
		Seed:           7,
	}
	trainer, err := cfr.NewTrainer(cfg, kuhnFactory, nil)
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}
	if err := trainer.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snapshot.json")
	sink := cfr.NewFileSink(path)
	if err := sink.Write(trainer.Snapshot()); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	loaded, err := cfr.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if loaded.Iteration != trainer.Iteration() {
		t.Fatalf("loaded iteration = %d, want %d", loaded.Iteration, trainer.Iteration())
	}
	if len(loaded.Entries) != trainer.Table().Size() {
		t.Fatalf("loaded %d entries, want %d", len(loaded.Entries), trainer.Table().Size())
	}
}

func TestResumedTrainingMatchesAContinuousRun(t *testing.T) {
	cfg := cfr.TrainerConfig{
		Method:         cfr.ExternalSampling,
		Iterations:     100,
		ParallelTables: 1,
		Seed:           99,
	}

	continuous, err := cfr.NewTrainer(cfg, kuhnFactory, nil)
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}
	if err := continuous.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	splitCfg := cfg
	splitCfg.Iterations = 40
	firstHalf, err := cfr.NewTrainer(splitCfg, kuhnFactory, nil)
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}
	if err := firstHalf.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	snap := firstHalf.Snapshot()
	snap.Config.Iterations = 100
	resumed, err := cfr.NewTrainerFromSnapshot(snap, kuhnFactory, nil)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := resumed.Run(context.Background(), nil); err != nil {
		t.Fatalf("run resumed: %v", err)
	}

	want := continuous.Snapshot()
	got := resumed.Snapshot()
	if !reflect.DeepEqual(want.Entries, got.Entries) {
		t.Fatal("resumed training diverged from a continuous run with the same seed")
	}
}
