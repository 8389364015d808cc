// Package pennies implements matching pennies, the canonical
// zero-sum simultaneous-move game whose unique Nash equilibrium is
// the uniform mixed strategy for both players, as a two-player
// extensive-form game in the same hidden-first-mover style as
// rock-paper-scissors.
package pennies

import "github.com/musolver/musolver/internal/cfr"

// Side is a coin face.
type Side int

const (
	Heads Side = iota
	Tails
)

func (s Side) String() string {
	if s == Heads {
		return "heads"
	}
	return "tails"
}

var allSides = []cfr.Action{Heads, Tails}

// Game is a single round of matching pennies. Player 0 is the
// matcher (wins when both sides agree); player 1 is the mismatcher.
type Game struct {
	p0, p1 Side
	p0Set  bool
	p1Set  bool
}

// New returns a fresh Game positioned at player 0's decision.
func New() *Game {
	return &Game{}
}

func (g *Game) NumPlayers() int { return 2 }

func (g *Game) NewRandom() {
	g.p0Set = false
	g.p1Set = false
}

func (g *Game) Clone() cfr.Game {
	c := *g
	return &c
}

func (g *Game) Kind() cfr.NodeKind {
	switch {
	case !g.p0Set:
		return cfr.Player
	case !g.p1Set:
		return cfr.Player
	default:
		return cfr.Terminal
	}
}

func (g *Game) CurrentPlayer() int {
	if !g.p0Set {
		return 0
	}
	return 1
}

func (g *Game) Actions() []cfr.Action {
	return allSides
}

func (g *Game) ChanceProb(a cfr.Action) float64 {
	return 0
}

func (g *Game) Act(a cfr.Action) {
	side := a.(Side)
	if !g.p0Set {
		g.p0 = side
		g.p0Set = true
		return
	}
	g.p1 = side
	g.p1Set = true
}

func (g *Game) Utility(player int) float64 {
	match := g.p0 == g.p1
	u0 := 1.0
	if !match {
		u0 = -1.0
	}
	if player == 0 {
		return u0
	}
	return -u0
}

func (g *Game) InfoSetKey(player int) string {
	if player == 0 {
		return "p0"
	}
	return "p1"
}
