package cfr

// CFRPlusOptions builds the UpdateOptions for a CFR+ iteration: regrets
// are floored at zero immediately after every update, and the
// strategy-sum contribution is weighted linearly by iteration so later
// iterations, which reflect a more converged policy, dominate the
// average strategy. warmup delays the onset of linear weighting; an
// iteration at or before warmup contributes weight 1.
func CFRPlusOptions(iteration, warmup int) UpdateOptions {
	return UpdateOptions{
		ClampNegativeRegrets: true,
		LinearAveraging:      true,
		Iteration:            iteration,
		Warmup:               warmup,
	}
}

// RegretMagnitude sums the positive regret mass across every InfoSet in
// table. It is a cheap, non-rigorous proxy for how far a table is from
// convergence: a well-converged equilibrium drives a game's exploitable
// regret toward zero, and a persistently large total is a sign training
// has not run long enough or the abstraction is too coarse.
func RegretMagnitude(table *Table) float64 {
	var total float64
	table.Range(func(e *InfoSet) {
		e.mu.Lock()
		defer e.mu.Unlock()
		for _, r := range e.Regrets {
			if r > 0 {
				total += r
			}
		}
	})
	return total
}
