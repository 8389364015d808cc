package cfr

import (
	"math"
	"testing"
)

func TestRegretMatchingUniformFallback(t *testing.T) {
	sigma := RegretMatching([]float64{0, -1, -2})
	want := 1.0 / 3.0
	for i, p := range sigma {
		if math.Abs(p-want) > 1e-12 {
			t.Fatalf("sigma[%d] = %v, want %v", i, p, want)
		}
	}
}

func TestRegretMatchingNormalizesPositivePart(t *testing.T) {
	sigma := RegretMatching([]float64{3, 1, -5})
	if math.Abs(sigma[0]-0.75) > 1e-12 {
		t.Fatalf("sigma[0] = %v, want 0.75", sigma[0])
	}
	if math.Abs(sigma[1]-0.25) > 1e-12 {
		t.Fatalf("sigma[1] = %v, want 0.25", sigma[1])
	}
	if sigma[2] != 0 {
		t.Fatalf("sigma[2] = %v, want 0", sigma[2])
	}
	sum := sigma[0] + sigma[1] + sigma[2]
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("sigma sums to %v, want 1", sum)
	}
}

func TestAverageStrategyUniformFallback(t *testing.T) {
	avg := AverageStrategy([]float64{0, 0})
	if avg[0] != 0.5 || avg[1] != 0.5 {
		t.Fatalf("avg = %v, want [0.5 0.5]", avg)
	}
}

func TestInfoSetUpdateRejectsArityMismatch(t *testing.T) {
	e := newInfoSet("k", 3)
	err := e.Update([]float64{1, 2}, []float64{0.5, 0.5}, 1, UpdateOptions{})
	if err == nil {
		t.Fatal("expected arity mismatch error")
	}
	cerr, ok := err.(*Error)
	if !ok || cerr.Kind != ArityMismatch {
		t.Fatalf("err = %v, want ArityMismatch", err)
	}
}

func TestInfoSetUpdateRejectsNaN(t *testing.T) {
	e := newInfoSet("k", 2)
	err := e.Update([]float64{math.NaN(), 0}, []float64{0.5, 0.5}, 1, UpdateOptions{})
	if err == nil {
		t.Fatal("expected numerical invariant error")
	}
	cerr, ok := err.(*Error)
	if !ok || cerr.Kind != NumericalInvariant {
		t.Fatalf("err = %v, want NumericalInvariant", err)
	}
}

func TestInfoSetUpdateClampsNegativeRegrets(t *testing.T) {
	e := newInfoSet("k", 2)
	opts := UpdateOptions{ClampNegativeRegrets: true}
	if err := e.Update([]float64{-5, 3}, []float64{0.5, 0.5}, 1, opts); err != nil {
		t.Fatalf("update: %v", err)
	}
	if e.Regrets[0] != 0 {
		t.Fatalf("Regrets[0] = %v, want 0 (clamped)", e.Regrets[0])
	}
	if e.Regrets[1] != 3 {
		t.Fatalf("Regrets[1] = %v, want 3", e.Regrets[1])
	}
}

func TestInfoSetUpdateLinearAveragingWeightsLaterIterationsMore(t *testing.T) {
	e := newInfoSet("k", 1)
	sigma := []float64{1}
	if err := e.Update([]float64{0}, sigma, 1, UpdateOptions{LinearAveraging: true, Iteration: 1}); err != nil {
		t.Fatalf("update: %v", err)
	}
	first := e.StrategySum[0]
	if err := e.Update([]float64{0}, sigma, 1, UpdateOptions{LinearAveraging: true, Iteration: 10}); err != nil {
		t.Fatalf("update: %v", err)
	}
	second := e.StrategySum[0] - first
	if second <= first {
		t.Fatalf("iteration 10 contributed %v, want more than iteration 1's %v", second, first)
	}
}
