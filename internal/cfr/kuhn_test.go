package cfr_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/musolver/musolver/internal/cfr"
	"github.com/musolver/musolver/internal/games/kuhn"
)

// kuhnGameValue is the known equilibrium value of three-card Kuhn
// poker to the first player to act.
const kuhnGameValue = -1.0 / 18.0

func TestVanillaCFRConvergesOnKuhnPoker(t *testing.T) {
	table := cfr.NewTable()
	v := cfr.NewVanillaCFR(table, cfr.UpdateOptions{})
	g := kuhn.New()
	for i := 0; i < 10000; i++ {
		g.NewRandom()
		if _, err := v.Run(g, []float64{1, 1}); err != nil {
			t.Fatalf("run: %v", err)
		}
	}
	assertKuhnValueNear(t, table, 0.01)
	if table.Size() != 12 {
		t.Fatalf("table size = %d, want 12 info sets", table.Size())
	}
}

func TestChanceSamplingCFRApproximatesVanillaOnKuhnPoker(t *testing.T) {
	table := cfr.NewTable()
	rng := rand.New(rand.NewPCG(1, 2))
	c := cfr.NewChanceSamplingCFR(table, cfr.UpdateOptions{}, rng)
	g := kuhn.New()
	for i := 0; i < 20000; i++ {
		g.NewRandom()
		if _, err := c.Run(g, []float64{1, 1}); err != nil {
			t.Fatalf("run: %v", err)
		}
	}
	assertKuhnValueNear(t, table, 0.02)
}

func TestExternalSamplingCFRApproximatesVanillaOnKuhnPoker(t *testing.T) {
	table := cfr.NewTable()
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 60000; i++ {
		for player := 0; player < 2; player++ {
			e := cfr.NewExternalSamplingCFR(table, cfr.UpdateOptions{}, rng, player)
			g := kuhn.New()
			g.NewRandom()
			if _, err := e.Run(g, []float64{1, 1}); err != nil {
				t.Fatalf("run: %v", err)
			}
		}
	}
	assertKuhnValueNear(t, table, 0.03)
}

func TestFSICFRIsConsistentWithChanceSamplingOnKuhnPoker(t *testing.T) {
	table := cfr.NewTable()
	for i := 1; i <= 5000; i++ {
		opts := cfr.UpdateOptions{Iteration: i}
		fsi := cfr.NewFSICFR(table, opts)
		games := make([]cfr.Game, 4)
		reach := make([][]float64, 4)
		for j := range games {
			g := kuhn.New()
			g.NewRandom()
			games[j] = g
			reach[j] = []float64{1, 1}
		}
		if _, err := fsi.RunBatch(games, reach); err != nil {
			t.Fatalf("run batch: %v", err)
		}
	}
	assertKuhnValueNear(t, table, 0.03)
}

func assertKuhnValueNear(t *testing.T, table *cfr.Table, tol float64) {
	t.Helper()
	g := kuhn.New()
	g.NewRandom()
	values, err := evaluateAverageStrategy(g, table)
	if err != nil {
		t.Fatalf("evaluate average strategy: %v", err)
	}
	if math.Abs(values[0]-kuhnGameValue) > tol {
		t.Fatalf("player 0 value = %v, want close to %v", values[0], kuhnGameValue)
	}
	if math.Abs(values[0]+values[1]) > 1e-9 {
		t.Fatalf("values = %v, want zero-sum", values)
	}
}
