// Package kuhn implements three-card Kuhn poker, the smallest
// nontrivial poker game and a standard benchmark for CFR-family
// solvers: two players each ante 1, are dealt one of Jack/Queen/King
// privately, and play a single round of pass/bet.
package kuhn

import "github.com/musolver/musolver/internal/cfr"

// Card ranks low to high.
type Card int

const (
	Jack Card = iota
	Queen
	King
)

func (c Card) String() string {
	switch c {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return "?"
	}
}

// Move is a player's action at any of their decision points. Its
// meaning (check/bet/call/fold) depends on the history it is played
// into, exactly as in the standard Kuhn poker notation.
type Move rune

const (
	Pass Move = 'p'
	Bet  Move = 'b'
)

func (m Move) String() string { return string(rune(m)) }

var betActions = []cfr.Action{Pass, Bet}

// deal is the chance node's move: a dealt (player0, player1) card
// pair. All 6 orderings of 2 distinct cards out of 3 are equally
// likely.
type deal struct {
	p0, p1 Card
}

var allDeals = buildDeals()

func buildDeals() []cfr.Action {
	cards := []Card{Jack, Queen, King}
	var deals []cfr.Action
	for _, a := range cards {
		for _, b := range cards {
			if a == b {
				continue
			}
			deals = append(deals, deal{p0: a, p1: b})
		}
	}
	return deals
}

// terminalHistories enumerates every history string at which the hand
// is over, in the standard Kuhn poker notation: "pp" (check-check,
// showdown for 1), "bp" (bet-fold), "bb" (bet-call, showdown for 2),
// "pbp" (check-bet-fold), "pbb" (check-bet-call, showdown for 2).
var terminalHistories = map[string]bool{
	"pp": true, "bp": true, "bb": true, "pbp": true, "pbb": true,
}

// Game is a single hand of Kuhn poker.
type Game struct {
	dealt   bool
	cards   [2]Card
	history string
}

// New returns a fresh Game positioned at the dealing chance node.
func New() *Game {
	return &Game{}
}

func (g *Game) NumPlayers() int { return 2 }

func (g *Game) NewRandom() {
	g.dealt = false
	g.cards = [2]Card{}
	g.history = ""
}

func (g *Game) Clone() cfr.Game {
	c := *g
	return &c
}

func (g *Game) Kind() cfr.NodeKind {
	if !g.dealt {
		return cfr.Chance
	}
	if terminalHistories[g.history] {
		return cfr.Terminal
	}
	return cfr.Player
}

func (g *Game) CurrentPlayer() int {
	return len(g.history) % 2
}

func (g *Game) Actions() []cfr.Action {
	if !g.dealt {
		return allDeals
	}
	return betActions
}

func (g *Game) ChanceProb(a cfr.Action) float64 {
	return 1.0 / float64(len(allDeals))
}

func (g *Game) Act(a cfr.Action) {
	if !g.dealt {
		d := a.(deal)
		g.cards = [2]Card{d.p0, d.p1}
		g.dealt = true
		return
	}
	g.history += string(rune(a.(Move)))
}

// Utility returns the payoff to player at a terminal history: ante 1
// is already sunk, so a fold pays 1 (the folder's ante) to the
// non-folder and a showdown pays the pot (1 or 2) to the higher card.
func (g *Game) Utility(player int) float64 {
	switch g.history {
	case "pp":
		return showdown(g.cards, player, 1)
	case "bp":
		return foldPayoff(player, 1)
	case "bb":
		return showdown(g.cards, player, 2)
	case "pbp":
		return foldPayoff(player, 0)
	case "pbb":
		return showdown(g.cards, player, 2)
	default:
		return 0
	}
}

// foldPayoff returns the payoff to player when folder folded: the
// other player wins the pot sunk so far.
func foldPayoff(player, folder int) float64 {
	if player == folder {
		return -1
	}
	return 1
}

func showdown(cards [2]Card, player int, pot float64) float64 {
	winner := 0
	if cards[1] > cards[0] {
		winner = 1
	}
	if player == winner {
		return pot
	}
	return -pot
}

func (g *Game) InfoSetKey(player int) string {
	return g.cards[player].String() + ":" + g.history
}
