package cfr_test

import "github.com/musolver/musolver/internal/cfr"

// evaluateAverageStrategy computes the exact expected utility to every
// player of playing each InfoSet's average strategy against itself,
// by brute-force enumeration of g's game tree. It is only tractable
// for the small benchmark games this package tests against.
func evaluateAverageStrategy(g cfr.Game, table *cfr.Table) ([]float64, error) {
	reach := make([]float64, g.NumPlayers())
	for i := range reach {
		reach[i] = 1
	}
	return evalRecurse(g, table, reach)
}

func evalRecurse(g cfr.Game, table *cfr.Table, reach []float64) ([]float64, error) {
	switch g.Kind() {
	case cfr.Terminal:
		u := make([]float64, g.NumPlayers())
		for p := range u {
			u[p] = g.Utility(p)
		}
		return u, nil

	case cfr.Chance:
		actions := g.Actions()
		total := make([]float64, g.NumPlayers())
		for _, a := range actions {
			p := g.ChanceProb(a)
			if p <= 0 {
				continue
			}
			child := g.Clone()
			child.Act(a)
			values, err := evalRecurse(child, table, reach)
			if err != nil {
				return nil, err
			}
			for i := range total {
				total[i] += p * values[i]
			}
		}
		return total, nil

	default: // Player
		player := g.CurrentPlayer()
		actions := g.Actions()
		key := g.InfoSetKey(player)
		entry, err := table.GetOrCreate(key, len(actions))
		if err != nil {
			return nil, err
		}
		sigma := entry.Average()

		total := make([]float64, g.NumPlayers())
		for i, a := range actions {
			if sigma[i] <= 0 {
				continue
			}
			child := g.Clone()
			child.Act(a)
			values, err := evalRecurse(child, table, reach)
			if err != nil {
				return nil, err
			}
			for p := range total {
				total[p] += sigma[i] * values[p]
			}
		}
		return total, nil
	}
}
