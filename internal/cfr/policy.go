package cfr

import "math"

// RegretMatching computes the current policy from a regrets vector:
// positive parts normalized to a distribution, uniform fallback
// when every entry is non-positive.
func RegretMatching(regrets []float64) []float64 {
	n := len(regrets)
	sigma := make([]float64, n)
	var z float64
	for i, r := range regrets {
		if r > 0 {
			sigma[i] = r
			z += r
		}
	}
	if z > 0 {
		for i := range sigma {
			sigma[i] /= z
		}
		return sigma
	}
	uniform := 1.0 / float64(n)
	for i := range sigma {
		sigma[i] = uniform
	}
	return sigma
}

// AverageStrategy normalizes a strategy-sum vector into the average
// strategy sigma-bar that converges to Nash play, with a uniform
// fallback when the record has accumulated no weight.
func AverageStrategy(strategySum []float64) []float64 {
	n := len(strategySum)
	out := make([]float64, n)
	var total float64
	for _, v := range strategySum {
		total += v
	}
	if total <= 0 {
		uniform := 1.0 / float64(n)
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	for i, v := range strategySum {
		out[i] = v / total
	}
	return out
}

// UpdateOptions configures how a single visit folds its instantaneous
// regret and current policy into a record's running totals. The zero
// value is plain vanilla CFR (no clamping, no linear averaging).
type UpdateOptions struct {
	// ClampNegativeRegrets floors regrets to 0 after every update
	// (CFR+).
	ClampNegativeRegrets bool
	// LinearAveraging scales the strategy-sum contribution of this
	// visit by max(Iteration-Warmup, 1) instead of 1.
	LinearAveraging bool
	// Iteration is the 1-indexed iteration this visit occurred on.
	// Required when LinearAveraging is set.
	Iteration int
	// Warmup is the linear-averaging warm-up t0 (open question);
	// default 0.
	Warmup int
}

func (o UpdateOptions) iterationWeight() float64 {
	if !o.LinearAveraging {
		return 1
	}
	w := o.Iteration - o.Warmup
	if w < 1 {
		w = 1
	}
	return float64(w)
}

// Update folds an instantaneous regret vector and the policy that was
// played into the record's running totals. regretDelta and sigma must
// both have length e.Arity. reachWeight is the weight applied to the
// strategy-sum contribution: reach[p] in vanilla CFR, or a
// variant-specific substitute.
func (e *InfoSet) Update(regretDelta []float64, sigma []float64, reachWeight float64, opts UpdateOptions) error {
	if len(regretDelta) != e.Arity || len(sigma) != e.Arity {
		return newError(ArityMismatch, "key %q: update vector length != arity %d", e.Key, e.Arity)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	iterWeight := opts.iterationWeight()
	stratWeight := reachWeight * iterWeight

	for i, d := range regretDelta {
		if math.IsNaN(d) {
			return newError(NumericalInvariant, "key %q: NaN regret delta at action %d", e.Key, i)
		}
		e.Regrets[i] += d
		if opts.ClampNegativeRegrets && e.Regrets[i] < 0 {
			e.Regrets[i] = 0
		}
		e.StrategySum[i] += stratWeight * sigma[i]
		if e.StrategySum[i] < 0 {
			e.StrategySum[i] = 0
		}
	}
	if opts.Iteration > e.LastIter {
		e.LastIter = opts.Iteration
	}
	return nil
}

// Strategy returns the record's current regret-matching policy.
func (e *InfoSet) Strategy() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return RegretMatching(e.Regrets)
}

// Average returns the record's average strategy.
func (e *InfoSet) Average() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return AverageStrategy(e.StrategySum)
}
