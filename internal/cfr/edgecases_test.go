package cfr_test

import (
	"testing"

	"github.com/musolver/musolver/internal/cfr"
)

// terminalGame is already at a Terminal node from the start: the
// degenerate "both players folded before acting" case.
type terminalGame struct{}

func (terminalGame) NumPlayers() int          { return 2 }
func (terminalGame) NewRandom()               {}
func (g terminalGame) Clone() cfr.Game        { return g }
func (terminalGame) Kind() cfr.NodeKind       { return cfr.Terminal }
func (terminalGame) CurrentPlayer() int       { return 0 }
func (terminalGame) Actions() []cfr.Action    { return nil }
func (terminalGame) ChanceProb(cfr.Action) float64 { return 0 }
func (terminalGame) Act(cfr.Action)           {}
func (terminalGame) Utility(player int) float64 {
	if player == 0 {
		return 1
	}
	return -1
}
func (terminalGame) InfoSetKey(player int) string { return "root" }

func TestVanillaCFRHandlesTerminalAtRoot(t *testing.T) {
	table := cfr.NewTable()
	v := cfr.NewVanillaCFR(table, cfr.UpdateOptions{})
	values, err := v.Run(terminalGame{}, []float64{1, 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if values[0] != 1 || values[1] != -1 {
		t.Fatalf("values = %v, want [1 -1]", values)
	}
	if table.Size() != 0 {
		t.Fatalf("table size = %d, want 0 (no decision node visited)", table.Size())
	}
}

// singleActionGame has exactly one legal action at its only decision
// node, the boundary case where a strategy must always be [1.0].
type singleActionGame struct {
	acted bool
}

func (g *singleActionGame) NumPlayers() int { return 2 }
func (g *singleActionGame) NewRandom()      { g.acted = false }
func (g *singleActionGame) Clone() cfr.Game {
	c := *g
	return &c
}
func (g *singleActionGame) Kind() cfr.NodeKind {
	if g.acted {
		return cfr.Terminal
	}
	return cfr.Player
}
func (g *singleActionGame) CurrentPlayer() int    { return 0 }
func (g *singleActionGame) Actions() []cfr.Action { return []cfr.Action{"only"} }
func (g *singleActionGame) ChanceProb(cfr.Action) float64 {
	return 0
}
func (g *singleActionGame) Act(cfr.Action) { g.acted = true }
func (g *singleActionGame) Utility(player int) float64 {
	if player == 0 {
		return 1
	}
	return -1
}
func (g *singleActionGame) InfoSetKey(player int) string { return "only-choice" }

func TestVanillaCFRHandlesSingleLegalAction(t *testing.T) {
	table := cfr.NewTable()
	v := cfr.NewVanillaCFR(table, cfr.UpdateOptions{})
	g := &singleActionGame{}
	if _, err := v.Run(g, []float64{1, 1}); err != nil {
		t.Fatalf("run: %v", err)
	}
	entry, err := table.GetOrCreate("only-choice", 1)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if entry.Strategy()[0] != 1 {
		t.Fatalf("strategy = %v, want [1]", entry.Strategy())
	}
}
