package cfr

import "sync"

// FSICFR performs fixed-strategy-iteration CFR: a batch of traversals
// runs against one strategy profile frozen at the start of the batch,
// and every accumulated regret and strategy-sum update is applied to
// the table only after the whole batch finishes. This decouples
// sigma-computation from sigma-consumption within a batch, which is
// what lets a Trainer fan the batch's traversals out across goroutines
// without one traversal's mid-batch update perturbing another's.
//
// An information set visited for the first time inside a batch is
// created with a uniform strategy and that strategy is frozen into the
// batch's cache immediately, so later traversals in the same batch that
// reach the same new key see a consistent sigma rather than racing each
// other's regret updates.
type FSICFR struct {
	Table   *Table
	Options UpdateOptions

	mu         sync.Mutex
	sigmaCache map[string][]float64
	pending    []fsiPendingUpdate
}

type fsiPendingUpdate struct {
	infoSet     *InfoSet
	regretDelta []float64
	sigma       []float64
	reachWeight float64
}

// NewFSICFR returns a batch traverser backed by table.
func NewFSICFR(table *Table, opts UpdateOptions) *FSICFR {
	return &FSICFR{
		Table:      table,
		Options:    opts,
		sigmaCache: make(map[string][]float64),
	}
}

// RunBatch traverses every game in games (paired by index with an
// initial reach vector in reach) against the strategy frozen at the
// start of the call, then applies every accumulated update to the
// table. It returns the per-game vector of player utilities.
func (f *FSICFR) RunBatch(games []Game, reach [][]float64) ([][]float64, error) {
	values := make([][]float64, len(games))
	for i, g := range games {
		v, err := f.recurse(g, reach[i], 1)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	if err := f.applyPending(); err != nil {
		return nil, err
	}
	return values, nil
}

// chanceReach is the product of every chance probability played to
// reach g from the root of this call, applied to cfReach at player
// nodes so a non-uniform or interleaved chance node still weights
// regret by the true probability of the path, not by branch count.
func (f *FSICFR) recurse(g Game, reach []float64, chanceReach float64) ([]float64, error) {
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
			values, err := f.recurse(child, reach, chanceReach*p)
			if err != nil {
				return nil, err
			}
			for i := range total {
				total[i] += p * values[i]
			}
		}
		return total, nil

	case Player:
		return f.visitPlayerNode(g, reach, chanceReach)

	default:
		return nil, newError(IllegalGameState, "unknown node kind")
	}
}

func (f *FSICFR) visitPlayerNode(g Game, reach []float64, chanceReach float64) ([]float64, error) {
	player := g.CurrentPlayer()
	actions := g.Actions()
	if len(actions) == 0 {
		return nil, newError(IllegalGameState, "player node with no actions")
	}

	sigma, infoSet, err := f.strategyFor(g, player, len(actions))
	if err != nil {
		return nil, err
	}

	numPlayers := g.NumPlayers()
	nodeValue := make([]float64, numPlayers)
	actionValues := make([][]float64, len(actions))

	for i, a := range actions {
		childReach := append([]float64(nil), reach...)
		childReach[player] *= sigma[i]

		child := g.Clone()
		child.Act(a)

		values, err := f.recurse(child, childReach, chanceReach)
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

	f.mu.Lock()
	f.pending = append(f.pending, fsiPendingUpdate{
		infoSet:     infoSet,
		regretDelta: regretDelta,
		sigma:       sigma,
		reachWeight: reach[player],
	})
	f.mu.Unlock()

	return nodeValue, nil
}

// strategyFor returns the frozen sigma for the info-set g.InfoSetKey(player)
// observes, creating the record with a uniform strategy on first touch
// within the batch and caching whichever sigma the batch first saw.
func (f *FSICFR) strategyFor(g Game, player, arity int) ([]float64, *InfoSet, error) {
	key := g.InfoSetKey(player)
	infoSet, err := f.Table.GetOrCreate(key, arity)
	if err != nil {
		return nil, nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	sigma, ok := f.sigmaCache[key]
	if !ok {
		sigma = infoSet.Strategy()
		f.sigmaCache[key] = sigma
	}
	return sigma, infoSet, nil
}

func (f *FSICFR) applyPending() error {
	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	f.sigmaCache = make(map[string][]float64)
	f.mu.Unlock()

	for _, u := range pending {
		if err := u.infoSet.Update(u.regretDelta, u.sigma, u.reachWeight, f.Options); err != nil {
			return err
		}
	}
	return nil
}
