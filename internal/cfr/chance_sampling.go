package cfr

import "math/rand/v2"

// ChanceSamplingCFR performs a full traversal of every player action at
// every player node, but samples a single outcome at each chance node
// instead of summing over all of them. The sampling probabilities
// cancel out of the counterfactual value computation, so the estimator
// is unbiased; it trades chance-node branching factor for iteration
// count.
type ChanceSamplingCFR struct {
	Table   *Table
	Options UpdateOptions
	RNG     *rand.Rand
}

// NewChanceSamplingCFR returns a traverser backed by table, sampling
// chance outcomes from rng.
func NewChanceSamplingCFR(table *Table, opts UpdateOptions, rng *rand.Rand) *ChanceSamplingCFR {
	return &ChanceSamplingCFR{Table: table, Options: opts, RNG: rng}
}

// Run walks g to a single sampled path through its chance nodes,
// branching fully at player nodes, and returns the expected utility to
// each player of the policies played during the traversal. Each InfoSet
// is updated as soon as its subtree is done, so a key reached again
// later in the same call plays its already-updated policy.
func (c *ChanceSamplingCFR) Run(g Game, reach []float64) ([]float64, error) {
	return c.recurse(g, reach)
}

func (c *ChanceSamplingCFR) recurse(g Game, reach []float64) ([]float64, error) {
	switch g.Kind() {
	case Terminal:
		return terminalUtilities(g), nil

	case Chance:
		a, err := sampleChanceAction(g, c.RNG)
		if err != nil {
			return nil, err
		}
		child := g.Clone()
		child.Act(a)
		return c.recurse(child, reach)

	case Player:
		return c.visitPlayerNode(g, reach)

	default:
		return nil, newError(IllegalGameState, "unknown node kind")
	}
}

func (c *ChanceSamplingCFR) visitPlayerNode(g Game, reach []float64) ([]float64, error) {
	player := g.CurrentPlayer()
	actions := g.Actions()
	if len(actions) == 0 {
		return nil, newError(IllegalGameState, "player node with no actions")
	}

	key := g.InfoSetKey(player)
	infoSet, err := c.Table.GetOrCreate(key, len(actions))
	if err != nil {
		return nil, err
	}
	sigma := infoSet.Strategy()

	numPlayers := g.NumPlayers()
	nodeValue := make([]float64, numPlayers)
	actionValues := make([][]float64, len(actions))

	for i, a := range actions {
		childReach := append([]float64(nil), reach...)
		childReach[player] *= sigma[i]

		child := g.Clone()
		child.Act(a)

		values, err := c.recurse(child, childReach)
		if err != nil {
			return nil, err
		}
		actionValues[i] = values
		for p := 0; p < numPlayers; p++ {
			nodeValue[p] += sigma[i] * values[p]
		}
	}

	cfReach := counterfactualReach(reach, player)
	regretDelta := make([]float64, len(actions))
	for i := range actions {
		regretDelta[i] = cfReach * (actionValues[i][player] - nodeValue[player])
	}

	if err := infoSet.Update(regretDelta, sigma, reach[player], c.Options); err != nil {
		return nil, err
	}

	return nodeValue, nil
}

// sampleChanceAction draws one action from a Chance node's distribution
// using inverse-CDF sampling over Actions() in the order given.
func sampleChanceAction(g Game, rng *rand.Rand) (Action, error) {
	actions := g.Actions()
	if len(actions) == 0 {
		return nil, newError(IllegalGameState, "chance node with no actions")
	}
	target := rng.Float64()
	var cumulative float64
	for _, a := range actions {
		cumulative += g.ChanceProb(a)
		if target < cumulative {
			return a, nil
		}
	}
	return actions[len(actions)-1], nil
}
