package cfr

// VanillaCFR performs a full-tree traversal: every chance outcome and
// every legal action at every player node is visited on every
// iteration. It is the reference traversal the sampling variants are
// checked against, and it is the only variant with no sampling
// variance of its own.
type VanillaCFR struct {
	Table   *Table
	Options UpdateOptions
}

// NewVanillaCFR returns a traverser backed by table. opts is applied to
// every InfoSet update; callers drive CFR+ behavior (regret clamping,
// linear averaging) by setting its fields before each iteration.
func NewVanillaCFR(table *Table, opts UpdateOptions) *VanillaCFR {
	return &VanillaCFR{Table: table, Options: opts}
}

// Run walks g from its current node to every terminal reachable from
// it, updating every visited InfoSet, and returns the expected utility
// to each player of the policies played during the traversal. Each
// InfoSet is updated as soon as its subtree is done, so a key reached
// again later in the same call plays its already-updated policy.
// g must already be positioned at the state to traverse from;
// callers call g.NewRandom() themselves between iterations.
func (c *VanillaCFR) Run(g Game, reach []float64) ([]float64, error) {
	return c.recurse(g, reach, 1)
}

// chanceReach is the product of every chance probability played to
// reach g from the root of this Run call, so a player node under a
// non-uniform or interleaved chance node still has its regret scaled
// by the true probability of the path that produced it rather than
// treating every chance branch as equally weighted.
func (c *VanillaCFR) recurse(g Game, reach []float64, chanceReach float64) ([]float64, error) {
	switch g.Kind() {
	case Terminal:
		return terminalUtilities(g), nil

	case Chance:
		actions := g.Actions()
		if len(actions) == 0 {
			return nil, newError(IllegalGameState, "chance node with no actions")
		}
		total := make([]float64, g.NumPlayers())
		for _, a := range actions {
			p := g.ChanceProb(a)
			if p <= 0 {
				continue
			}
			child := g.Clone()
			child.Act(a)
			values, err := c.recurse(child, reach, chanceReach*p)
			if err != nil {
				return nil, err
			}
			for i := range total {
				total[i] += p * values[i]
			}
		}
		return total, nil

	case Player:
		return c.visitPlayerNode(g, reach, chanceReach)

	default:
		return nil, newError(IllegalGameState, "unknown node kind")
	}
}

func (c *VanillaCFR) visitPlayerNode(g Game, reach []float64, chanceReach float64) ([]float64, error) {
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

		values, err := c.recurse(child, childReach, chanceReach)
		if err != nil {
			return nil, err
		}
		actionValues[i] = values
		for p := 0; p < numPlayers; p++ {
			nodeValue[p] += sigma[i] * values[p]
		}
	}

	cfReach := counterfactualReach(reach, player) * chanceReach
	regretDelta := make([]float64, len(actions))
	for i := range actions {
		regretDelta[i] = cfReach * (actionValues[i][player] - nodeValue[player])
	}

	if err := infoSet.Update(regretDelta, sigma, reach[player], c.Options); err != nil {
		return nil, err
	}

	return nodeValue, nil
}

func terminalUtilities(g Game) []float64 {
	u := make([]float64, g.NumPlayers())
	for p := range u {
		u[p] = g.Utility(p)
	}
	return u
}

// counterfactualReach is the product of every player's reach except
// player's own: the probability mass of "everyone else played to reach
// this node", which is what scales an instantaneous regret.
func counterfactualReach(reach []float64, player int) float64 {
	cf := 1.0
	for p, r := range reach {
		if p == player {
			continue
		}
		cf *= r
	}
	return cf
}
