package cfr

import "math/rand/v2"

// ExternalSamplingCFR traverses the full action set only at the nodes
// of one designated traverser; every other player's decision nodes and
// every chance node sample a single action drawn from the current
// policy (or the chance distribution) instead of branching. A Trainer
// runs one traversal per player in every iteration, each player taking
// the traverser role in turn, so every player's regrets accumulate.
type ExternalSamplingCFR struct {
	Table     *Table
	Options   UpdateOptions
	RNG       *rand.Rand
	Traverser int
}

// NewExternalSamplingCFR returns a traverser backed by table that
// branches fully only at traverser's own decision nodes.
func NewExternalSamplingCFR(table *Table, opts UpdateOptions, rng *rand.Rand, traverser int) *ExternalSamplingCFR {
	return &ExternalSamplingCFR{Table: table, Options: opts, RNG: rng, Traverser: traverser}
}

// Run walks g, sampling every node that is not traverser's, and
// returns the utility to traverser of the resulting path.
func (c *ExternalSamplingCFR) Run(g Game, reach []float64) (float64, error) {
	return c.recurse(g, reach)
}

func (c *ExternalSamplingCFR) recurse(g Game, reach []float64) (float64, error) {
	switch g.Kind() {
	case Terminal:
		return g.Utility(c.Traverser), nil

	case Chance:
		a, err := sampleChanceAction(g, c.RNG)
		if err != nil {
			return 0, err
		}
		child := g.Clone()
		child.Act(a)
		return c.recurse(child, reach)

	case Player:
		if g.CurrentPlayer() == c.Traverser {
			return c.visitTraverserNode(g, reach)
		}
		return c.visitOpponentNode(g, reach)

	default:
		return 0, newError(IllegalGameState, "unknown node kind")
	}
}

func (c *ExternalSamplingCFR) visitTraverserNode(g Game, reach []float64) (float64, error) {
	player := c.Traverser
	actions := g.Actions()
	if len(actions) == 0 {
		return 0, newError(IllegalGameState, "player node with no actions")
	}

	key := g.InfoSetKey(player)
	infoSet, err := c.Table.GetOrCreate(key, len(actions))
	if err != nil {
		return 0, err
	}
	sigma := infoSet.Strategy()

	actionUtil := make([]float64, len(actions))
	nodeUtil := 0.0
	for i, a := range actions {
		childReach := append([]float64(nil), reach...)
		childReach[player] *= sigma[i]

		child := g.Clone()
		child.Act(a)

		u, err := c.recurse(child, childReach)
		if err != nil {
			return 0, err
		}
		actionUtil[i] = u
		nodeUtil += sigma[i] * u
	}

	cfReach := counterfactualReach(reach, player)
	regretDelta := make([]float64, len(actions))
	for i := range actions {
		regretDelta[i] = cfReach * (actionUtil[i] - nodeUtil)
	}
	if err := infoSet.Update(regretDelta, sigma, reach[player], c.Options); err != nil {
		return 0, err
	}
	return nodeUtil, nil
}

func (c *ExternalSamplingCFR) visitOpponentNode(g Game, reach []float64) (float64, error) {
	player := g.CurrentPlayer()
	actions := g.Actions()
	if len(actions) == 0 {
		return 0, newError(IllegalGameState, "player node with no actions")
	}

	key := g.InfoSetKey(player)
	infoSet, err := c.Table.GetOrCreate(key, len(actions))
	if err != nil {
		return 0, err
	}
	sigma := infoSet.Strategy()

	idx := sampleStrategyIndex(sigma, c.RNG)

	child := g.Clone()
	child.Act(actions[idx])

	// reach is left unchanged: this node's sampling already stands in
	// for the opponent's full mixture, so folding sigma[idx] into the
	// traverser's counterfactual reach downstream would double-count it.
	u, err := c.recurse(child, reach)
	if err != nil {
		return 0, err
	}

	// The opponent's own strategy sum still accumulates from the policy
	// in effect at the sampled visit, with the sampled action's own
	// weight rather than an accumulated reach.
	if err := infoSet.Update(make([]float64, len(actions)), sigma, 1, c.Options); err != nil {
		return 0, err
	}
	return u, nil
}

// sampleStrategyIndex draws an index from sigma treated as a
// distribution.
func sampleStrategyIndex(sigma []float64, rng *rand.Rand) int {
	target := rng.Float64()
	var cumulative float64
	for i, p := range sigma {
		cumulative += p
		if target < cumulative {
			return i
		}
	}
	return len(sigma) - 1
}
