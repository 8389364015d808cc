package cfr_test

import (
	"math"
	"testing"

	"github.com/musolver/musolver/internal/cfr"
	"github.com/musolver/musolver/internal/games/pennies"
	"github.com/musolver/musolver/internal/games/rps"
)

func TestVanillaCFRConvergesToUniformOnRockPaperScissors(t *testing.T) {
	table := cfr.NewTable()
	v := cfr.NewVanillaCFR(table, cfr.UpdateOptions{})
	g := rps.New()
	for i := 0; i < 2000; i++ {
		g.NewRandom()
		if _, err := v.Run(g, []float64{1, 1}); err != nil {
			t.Fatalf("run: %v", err)
		}
	}
	assertNearUniform(t, table, "p0", 3, 0.05)
	assertNearUniform(t, table, "p1", 3, 0.05)
}

func TestVanillaCFRPlusConvergesOnMatchingPennies(t *testing.T) {
	table := cfr.NewTable()
	g := pennies.New()
	for i := 1; i <= 2000; i++ {
		opts := cfr.CFRPlusOptions(i, 0)
		v := cfr.NewVanillaCFR(table, opts)
		g.NewRandom()
		if _, err := v.Run(g, []float64{1, 1}); err != nil {
			t.Fatalf("run: %v", err)
		}
	}
	assertNearUniform(t, table, "p0", 2, 0.05)
	assertNearUniform(t, table, "p1", 2, 0.05)
}

func TestVanillaCFRKeepsTerminalUtilitiesZeroSum(t *testing.T) {
	table := cfr.NewTable()
	v := cfr.NewVanillaCFR(table, cfr.UpdateOptions{})
	g := rps.New()
	g.NewRandom()
	values, err := v.Run(g, []float64{1, 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if math.Abs(values[0]+values[1]) > 1e-9 {
		t.Fatalf("values = %v, want zero-sum", values)
	}
}

func assertNearUniform(t *testing.T, table *cfr.Table, key string, arity int, tol float64) {
	t.Helper()
	entry, err := table.GetOrCreate(key, arity)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	avg := entry.Average()
	want := 1.0 / float64(arity)
	for i, p := range avg {
		if math.Abs(p-want) > tol {
			t.Fatalf("avg[%d] = %v, want close to %v", i, p, want)
		}
	}
}
