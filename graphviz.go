package morph

import (
	"fmt"
	"strings"

	"github.com/npillmayer/morph/dict"
)

const (
	bosLabel = "BOS"
	eosLabel = "EOS"
	fontName = "Helvetica"
)

// GraphvizFormatter renders the lattice sections of a tokenizer run as a
// Graphviz digraph. Nodes are lattice nodes ("offset.index"), arcs are
// words labeled with surface, word cost and connection cost; arcs of the
// best path are highlighted.
type GraphvizFormatter struct {
	costs    *dict.ConnectionCosts
	bestPath map[string]string
	sb       strings.Builder
}

// NewGraphvizFormatter starts a new graph.
func NewGraphvizFormatter(costs *dict.ConnectionCosts) *GraphvizFormatter {
	g := &GraphvizFormatter{costs: costs, bestPath: make(map[string]string)}
	g.sb.WriteString("digraph viterbi {\n")
	g.sb.WriteString("  graph [ fontsize=30 labelloc=\"t\" label=\"\" splines=true overlap=false rankdir = \"LR\"];\n")
	fmt.Fprintf(&g.sb, "  edge [ fontname=\"%s\" fontcolor=\"red\" color=\"#606060\" ]\n", fontName)
	fmt.Fprintf(&g.sb, "  node [ style=\"filled\" fillcolor=\"#e8e8f0\" shape=\"Mrecord\" fontname=\"%s\" ]\n", fontName)
	g.sb.WriteString("  init [style=invis]\n")
	fmt.Fprintf(&g.sb, "  init -> 0.0 [label=\"%s\"]\n", bosLabel)
	return g
}

// Finish closes the graph and returns its source.
func (g *GraphvizFormatter) Finish() string {
	g.sb.WriteString("}\n")
	return g.sb.String()
}

func (g *GraphvizFormatter) onBacktrace(dp DictionaryProvider, positions *positionArray, lastBackTracePos int,
	endPosData *position, fromIdx int, fragment []rune, isEnd bool) {
	g.setBestPath(positions, lastBackTracePos, endPosData, fromIdx)
	g.formatNodes(dp, positions, lastBackTracePos, endPosData, fragment)
	if isEnd {
		g.sb.WriteString("  fini [style=invis]\n")
		fmt.Fprintf(&g.sb, "  %s -> fini [label=\"%s\"]\n", nodeID(endPosData.pos, fromIdx), eosLabel)
	}
}

// setBestPath records the arcs making up the best path of a section.
func (g *GraphvizFormatter) setBestPath(positions *positionArray, startPos int, endPosData *position, fromIdx int) {
	clear(g.bestPath)
	pos, bestIdx := endPosData.pos, fromIdx
	for pos > startPos {
		posData := positions.get(pos)
		backPos, backIdx := posData.backPos[bestIdx], posData.backIndex[bestIdx]
		g.bestPath[nodeID(backPos, backIdx)] = nodeID(pos, bestIdx)
		pos, bestIdx = backPos, backIdx
	}
}

func (g *GraphvizFormatter) formatNodes(dp DictionaryProvider, positions *positionArray, startPos int,
	endPosData *position, fragment []rune) {
	for pos := startPos + 1; pos <= endPosData.pos; pos++ {
		posData := positions.get(pos)
		for i := 0; i < posData.count; i++ {
			fmt.Fprintf(&g.sb, "  %s [label=\"%d: %d\"]\n", nodeID(pos, i), pos, posData.lastRightID[i])
		}
	}
	for pos := endPosData.pos; pos > startPos; pos-- {
		posData := positions.get(pos)
		for i := 0; i < posData.count; i++ {
			backPos := posData.backPos[i]
			backPosData := positions.get(backPos)
			to, from := nodeID(pos, i), nodeID(backPos, posData.backIndex[i])
			attrs := ""
			if g.bestPath[from] == to {
				attrs = " color=\"#40e050\" fontcolor=\"#40a050\" penwidth=3 fontsize=20"
			}
			d := dp.Dictionary(posData.backType[i])
			wordCost := d.WordCost(posData.backID[i])
			bgCost := g.costs.Get(backPosData.lastRightID[posData.backIndex[i]], d.LeftID(posData.backID[i]))
			surface := string(fragment[backPos-startPos : pos-startPos])
			fmt.Fprintf(&g.sb, "  %s -> %s [label=\"%s %d%+d\"%s]\n", from, to, surface, wordCost, bgCost, attrs)
		}
	}
}

func nodeID(pos, idx int) string {
	return fmt.Sprintf("%d.%d", pos, idx)
}
