// Package rps implements rock-paper-scissors as a two-player
// simultaneous-move game, modeled the standard way for extensive-form
// solvers: player 0 moves first and player 1 moves second without
// observing player 0's choice, which imperfect information makes
// equivalent to a true simultaneous game.
package rps

import "github.com/musolver/musolver/internal/cfr"

// Move is one of the three simultaneous choices.
type Move int

const (
	Rock Move = iota
	Paper
	Scissors
)

func (m Move) String() string {
	switch m {
	case Rock:
		return "rock"
	case Paper:
		return "paper"
	case Scissors:
		return "scissors"
	default:
		return "unknown"
	}
}

var allMoves = []cfr.Action{Rock, Paper, Scissors}

// Game is a single hand of rock-paper-scissors.
type Game struct {
	p0, p1 Move
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
	return allMoves
}

func (g *Game) ChanceProb(a cfr.Action) float64 {
	return 0
}

func (g *Game) Act(a cfr.Action) {
	move := a.(Move)
	if !g.p0Set {
		g.p0 = move
		g.p0Set = true
		return
	}
	g.p1 = move
	g.p1Set = true
}

func (g *Game) Utility(player int) float64 {
	u0 := beats(g.p0, g.p1)
	if player == 0 {
		return u0
	}
	return -u0
}

// beats returns +1 if a beats b, -1 if b beats a, 0 on a tie.
func beats(a, b Move) float64 {
	if a == b {
		return 0
	}
	switch a {
	case Rock:
		if b == Scissors {
			return 1
		}
	case Paper:
		if b == Rock {
			return 1
		}
	case Scissors:
		if b == Paper {
			return 1
		}
	}
	return -1
}

func (g *Game) InfoSetKey(player int) string {
	// Neither player observes anything before acting: both info sets
	// are singletons, which is what makes player 1's move simultaneous
	// with player 0's despite the sequential Act calls.
	if player == 0 {
		return "p0"
	}
	return "p1"
}
