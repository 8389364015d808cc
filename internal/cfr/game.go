// Package cfr implements a generic Counterfactual Regret Minimization
// engine: a family of self-play tree-search algorithms that converge
// toward an approximate Nash equilibrium for imperfect-information
// sequential games. The engine is polymorphic over the Game contract
// defined in this file; it never knows the rules of any specific game.
package cfr

import "fmt"

// NodeKind classifies the current position of a Game.
type NodeKind int

const (
	// Chance is a node whose next action is drawn from a known
	// distribution (dealing cards, rolling dice).
	Chance NodeKind = iota
	// Terminal is a leaf; utilities are defined only here.
	Terminal
	// Player is a decision node for the acting player reported by
	// Game.CurrentPlayer.
	Player
)

func (k NodeKind) String() string {
	switch k {
	case Chance:
		return "chance"
	case Terminal:
		return "terminal"
	case Player:
		return "player"
	default:
		return "unknown"
	}
}

// Action is an opaque, equality-comparable, hashable move produced by a
// Game. The engine never inspects an Action's internals; it only uses it
// to advance state and to index per-node slices by position.
type Action interface{}

// Game is the sole ingress for problem specification. An
// implementation is expected to be cheap to clone: NewRandom resets a
// fresh instance, Clone produces an independent copy so a kernel can
// explore one action at a time without losing the state needed to try
// the next one, and the traversal kernels advance and abandon many
// short-lived states per iteration.
//
// The kernels take a Game interface value directly, not through a boxed
// interface{} game registry, so action enumeration, which sits in the
// hot inner loop, pays ordinary Go interface dispatch cost and nothing
// more. The kernels are not generic over the concrete game type, so
// these calls are not monomorphized.
type Game interface {
	// NumPlayers returns the number of players in the game. Must be >= 2
	// and constant for the lifetime of the Game.
	NumPlayers() int

	// NewRandom resets the receiver to a fresh, randomly dealt initial
	// state. If the first decision is a chance event the implementation
	// may resolve it immediately or leave the state at a Chance node.
	NewRandom()

	// Clone returns an independent copy of the receiver's current state.
	// Mutating the copy (via Act) must never affect the receiver, and
	// vice versa.
	Clone() Game

	// Kind reports the type of the current node.
	Kind() NodeKind

	// CurrentPlayer reports the acting player at a Player node. Its
	// result is undefined at Chance or Terminal nodes.
	CurrentPlayer() int

	// Actions enumerates the legal actions at the current node in a
	// stable order. It must never be called at a Terminal node, and it
	// must return a non-empty slice at every Player node (an empty
	// result is an IllegalGameState error raised by the kernel).
	Actions() []Action

	// ChanceProb returns the known probability of the given action at a
	// Chance node. It is only called for actions returned by Actions()
	// at a Chance node.
	ChanceProb(a Action) float64

	// Act advances the state by the given action. a must be one of the
	// values most recently returned by Actions(); calling Act with any
	// other action is a programming error in the Game.
	Act(a Action)

	// Utility returns the payoff to player for the current Terminal
	// node. Its result is undefined at non-Terminal nodes.
	Utility(player int) float64

	// InfoSetKey returns the information-set key observed by player at
	// the current Player node. Two states indistinguishable to player
	// must report identical keys.
	InfoSetKey(player int) string
}

// ActionLabel renders an Action for diagnostics and snapshot output
// when the concrete Action type does not implement fmt.Stringer.
func ActionLabel(a Action) string {
	if s, ok := a.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", a)
}
