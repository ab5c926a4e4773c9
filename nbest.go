package morph

import (
	"math"
	"slices"
	"sort"
)

// lattice is the node graph of one flushed section, rebuilt from the
// position window for N-best search. Nodes are numbered; node 0 is the
// beginning of the section (BOS) and node 1 its end (EOS). Node offsets are
// relative to rootBase.
type lattice struct {
	useEOS   bool
	rootBase int
	rootSize int
	lRoot    []int // first node starting at offset, chained by nodeLeftChain
	rRoot    []int // first node ending at offset, chained by nodeRightChain

	nodeCount      int
	nodeType       column[TokenType]
	nodeWordID     column[int]
	nodeMark       column[int] // -1: excluded, 0: unused, 1: best path, n: n-th best
	nodeLeft       column[int]
	nodeRight      column[int]
	nodeWordCost   column[int]
	nodeLeftCost   column[int]
	nodeRightCost  column[int]
	nodeLeftID     column[int]
	nodeRightID    column[int]
	nodeLeftChain  column[int]
	nodeRightChain column[int]
	nodeLeftNode   column[int]
	nodeRightNode  column[int]
}

func (l *lattice) setupRoot(baseOffset, lastOffset int) {
	assert(baseOffset <= lastOffset, "lattice section must not be negative")
	size := lastOffset - baseOffset + 1
	if len(l.lRoot) < size {
		l.lRoot = make([]int, oversize(size))
		l.rRoot = make([]int, oversize(size))
	}
	for i := 0; i < size; i++ {
		l.lRoot[i], l.rRoot[i] = -1, -1
	}
	l.rootSize = size
	l.rootBase = baseOffset
}

func (l *lattice) reserve(n int) {
	l.nodeType.ensure(n)
	l.nodeWordID.ensure(n)
	l.nodeMark.ensure(n)
	l.nodeLeft.ensure(n)
	l.nodeRight.ensure(n)
	l.nodeWordCost.ensure(n)
	l.nodeLeftCost.ensure(n)
	l.nodeRightCost.ensure(n)
	l.nodeLeftID.ensure(n)
	l.nodeRightID.ensure(n)
	l.nodeLeftChain.ensure(n)
	l.nodeRightChain.ensure(n)
	l.nodeLeftNode.ensure(n)
	l.nodeRightNode.ensure(n)
}

// addNode adds a word spanning [left, right); -1 marks an open end.
func (l *lattice) addNode(dp DictionaryProvider, typ TokenType, wordID, left, right int) int {
	assert(left == -1 || right == -1 || left < right, "lattice node must not be empty")
	node := l.nodeCount
	l.nodeCount++
	l.reserve(node)
	l.nodeType[node] = typ
	l.nodeWordID[node] = wordID
	l.nodeMark[node] = 0
	l.nodeLeftCost[node] = 0
	l.nodeRightCost[node] = 0
	l.nodeLeftNode[node] = -1
	l.nodeRightNode[node] = -1
	if wordID < 0 {
		l.nodeWordCost[node] = 0
		l.nodeLeftID[node] = 0
		l.nodeRightID[node] = 0
	} else {
		d := dp.Dictionary(typ)
		l.nodeWordCost[node] = d.WordCost(wordID)
		l.nodeLeftID[node] = d.LeftID(wordID)
		l.nodeRightID[node] = d.RightID(wordID)
	}
	l.nodeLeft[node] = left
	l.nodeRight[node] = right
	l.nodeLeftChain[node] = -1
	if left >= 0 {
		l.nodeLeftChain[node] = l.lRoot[left]
		l.lRoot[left] = node
	}
	l.nodeRightChain[node] = -1
	if right >= 0 {
		l.nodeRightChain[node] = l.rRoot[right]
		l.rRoot[right] = node
	}
	return node
}

// setup rebuilds the lattice of section (prevOffset, endOffset] from the
// position window. Positions not connected to anything ahead are skipped.
func (l *lattice) setup(dp DictionaryProvider, positions *positionArray, prevOffset, endOffset int, useEOS bool) {
	l.setupRoot(prevOffset, endOffset)
	l.nodeCount = 0
	l.useEOS = useEOS
	first := positions.get(prevOffset)
	l.addNode(dp, first.backType[0], first.backID[0], -1, 0)
	l.addNode(dp, Known, -1, endOffset-l.rootBase, -1)
	for offset := endOffset; offset > prevOffset; offset-- {
		right := offset - l.rootBase
		if l.lRoot[right] < 0 {
			continue
		}
		posData := positions.get(offset)
		for i := 0; i < posData.count; i++ {
			l.addNode(dp, posData.backType[i], posData.backID[i], posData.backPos[i]-l.rootBase, right)
		}
	}
}

// markUnreachable excludes nodes starting where no node ends.
func (l *lattice) markUnreachable() {
	for index := 1; index < l.rootSize-1; index++ {
		if l.rRoot[index] < 0 {
			for node := l.lRoot[index]; node >= 0; node = l.nodeLeftChain[node] {
				l.nodeMark[node] = -1
			}
		}
	}
}

func (l *lattice) connectionCost(cc connectionCoster, left, right int) int {
	leftID := l.nodeLeftID[right]
	if leftID == 0 && !l.useEOS {
		return 0
	}
	return cc.Get(l.nodeRightID[left], leftID)
}

// connectionCoster is the part of dict.ConnectionCosts the lattice needs.
type connectionCoster interface {
	Get(forwardID, backwardID int) int
}

// calcLeftCost computes, for every node, the cheapest path from BOS. Nodes
// without a live predecessor are excluded.
func (l *lattice) calcLeftCost(cc connectionCoster) {
	for index := 0; index < l.rootSize; index++ {
		for node := l.lRoot[index]; node >= 0; node = l.nodeLeftChain[node] {
			if l.nodeMark[node] < 0 {
				continue
			}
			leastNode, leastCost := -1, math.MaxInt
			for leftNode := l.rRoot[index]; leftNode >= 0; leftNode = l.nodeRightChain[leftNode] {
				if l.nodeMark[leftNode] >= 0 {
					cost := l.nodeLeftCost[leftNode] + l.nodeWordCost[leftNode] + l.connectionCost(cc, leftNode, node)
					if cost < leastCost {
						leastNode, leastCost = leftNode, cost
					}
				}
			}
			if leastNode < 0 {
				l.nodeMark[node] = -1
				continue
			}
			l.nodeLeftNode[node] = leastNode
			l.nodeLeftCost[node] = leastCost
		}
	}
}

// calcRightCost computes, for every node, the cheapest path to EOS. Nodes
// without a live successor are excluded.
func (l *lattice) calcRightCost(cc connectionCoster) {
	for index := l.rootSize - 1; index >= 0; index-- {
		for node := l.rRoot[index]; node >= 0; node = l.nodeRightChain[node] {
			if l.nodeMark[node] < 0 {
				continue
			}
			leastNode, leastCost := -1, math.MaxInt
			for rightNode := l.lRoot[index]; rightNode >= 0; rightNode = l.nodeLeftChain[rightNode] {
				if l.nodeMark[rightNode] >= 0 {
					cost := l.nodeRightCost[rightNode] + l.nodeWordCost[rightNode] + l.connectionCost(cc, node, rightNode)
					if cost < leastCost {
						leastNode, leastCost = rightNode, cost
					}
				}
			}
			if leastNode < 0 {
				l.nodeMark[node] = -1
				continue
			}
			l.nodeRightNode[node] = leastNode
			l.nodeRightCost[node] = leastCost
		}
	}
}

// markSameSpanNode marks all live nodes spanning the same text as refNode.
func (l *lattice) markSameSpanNode(refNode, value int) {
	left, right := l.nodeLeft[refNode], l.nodeRight[refNode]
	for node := l.lRoot[left]; node >= 0; node = l.nodeLeftChain[node] {
		if l.nodeRight[node] == right && l.nodeMark[node] >= 0 {
			l.nodeMark[node] = value
		}
	}
}

// bestPathNodeList returns the nodes of the best path and marks their spans.
func (l *lattice) bestPathNodeList() []int {
	var list []int
	for node := l.nodeRightNode[0]; node != 1 && node >= 0; node = l.nodeRightNode[node] {
		list = append(list, node)
		l.markSameSpanNode(node, 1)
	}
	return list
}

// cost is the cost of the cheapest complete path through node.
func (l *lattice) cost(node int) int {
	return l.nodeLeftCost[node] + l.nodeWordCost[node] + l.nodeRightCost[node]
}

// nBestNodeList returns the cheapest unmarked nodes (one per span) and marks
// their spans with n.
func (l *lattice) nBestNodeList(n int) []int {
	var list []int
	leastCost, leastLeft, leastRight := math.MaxInt, -1, -1
	for node := 2; node < l.nodeCount; node++ {
		if l.nodeMark[node] != 0 {
			continue
		}
		cost := l.cost(node)
		if cost < leastCost {
			leastCost, leastLeft, leastRight = cost, l.nodeLeft[node], l.nodeRight[node]
			list = append(list[:0], node)
		} else if cost == leastCost && (l.nodeLeft[node] != leastLeft || l.nodeRight[node] != leastRight) {
			list = append(list, node)
		}
	}
	for _, node := range list {
		l.markSameSpanNode(node, n)
	}
	return list
}

func (l *lattice) bestCost() int {
	return l.nodeLeftCost[1]
}

// probeDelta returns how much more than the best path the cheapest path
// through a word spanning [start, end) costs.
func (l *lattice) probeDelta(start, end int) int {
	left, right := start-l.rootBase, end-l.rootBase
	if left < 0 || right >= l.rootSize || left >= right {
		return math.MaxInt
	}
	probed := math.MaxInt
	for node := l.lRoot[left]; node >= 0; node = l.nodeLeftChain[node] {
		if l.nodeRight[node] == right && l.nodeMark[node] >= 0 {
			probed = min(probed, l.cost(node))
		}
	}
	if probed == math.MaxInt {
		return math.MaxInt
	}
	return probed - l.bestCost()
}

// backtraceNBest registers the tokens of the best path and of all near-best
// alternatives of the section ending at endPosData.
func (t *Tokenizer) backtraceNBest(endPosData *position, useEOS bool) {
	if t.lattice == nil {
		t.lattice = &lattice{}
	}
	l := t.lattice
	endPos := endPosData.pos
	fragment := t.buffer.slice(t.lastBackTracePos, endPos-t.lastBackTracePos)
	l.setup(t, &t.positions, t.lastBackTracePos, endPos, useEOS)
	l.markUnreachable()
	l.calcLeftCost(t.costs)
	l.calcRightCost(t.costs)
	bestCost := l.bestCost()
	for _, node := range l.bestPathNodeList() {
		t.registerNode(node, fragment)
	}
	for n := 2; ; n++ {
		nbest := l.nBestNodeList(n)
		if len(nbest) == 0 {
			break
		}
		cost := l.cost(nbest[0])
		if bestCost+t.nbestCost < cost {
			break
		}
		tracer().Debugf("%d-best cost %d (best %d)", n, cost, bestCost)
		for _, node := range nbest {
			t.registerNode(node, fragment)
		}
	}
}

// registerNode appends the token(s) of a lattice node to the pending list.
// A user phrase contributes itself and its shorter segments.
func (t *Tokenizer) registerNode(node int, fragment []rune) {
	l := t.lattice
	left, right := l.nodeLeft[node], l.nodeRight[node]
	typ := l.nodeType[node]
	if t.discardPunctuation && isPunctuation(fragment[left]) {
		return
	}
	if typ != User {
		t.pending = append(t.pending, &Token{
			wordID:   l.nodeWordID[node],
			fragment: fragment,
			offset:   left,
			length:   right - left,
			typ:      typ,
			position: l.rootBase + left,
			dict:     t.Dictionary(typ),
		})
		return
	}
	segmentation := t.user.LookupSegmentation(l.nodeWordID[node])
	wordID := segmentation[0]
	t.pending = append(t.pending, &Token{
		wordID:   wordID,
		fragment: fragment,
		offset:   left,
		length:   right - left,
		typ:      User,
		position: l.rootBase + left,
		dict:     t.user,
	})
	current := 0
	for j, segLen := range segmentation[1:] {
		if segLen < right-left {
			t.pending = append(t.pending, &Token{
				wordID:   wordID + j,
				fragment: fragment,
				offset:   left + current,
				length:   segLen,
				typ:      User,
				position: l.rootBase + left + current,
				dict:     t.user,
			})
		}
		current += segLen
	}
}

// fixupPendingList orders the pending tokens of an N-best section, removes
// tokens sharing a span (user tokens win) and computes position lengths from
// the ranks of token boundaries.
func (t *Tokenizer) fixupPendingList() {
	sort.SliceStable(t.pending, func(i, j int) bool {
		a, b := t.pending[i], t.pending[j]
		if a.position != b.position {
			return a.position < b.position
		}
		if a.length != b.length {
			return a.length < b.length
		}
		return a.typ > b.typ
	})
	t.pending = slices.CompactFunc(t.pending, func(a, b *Token) bool {
		return a.position == b.position && a.length == b.length
	})
	var edges []int
	for _, tok := range t.pending {
		edges = append(edges, tok.position, tok.position+tok.length)
	}
	slices.Sort(edges)
	edges = slices.Compact(edges)
	rank := func(offset int) int {
		i, _ := slices.BinarySearch(edges, offset)
		return i
	}
	for _, tok := range t.pending {
		tok.posLen = rank(tok.position+tok.length) - rank(tok.position)
	}
	slices.Reverse(t.pending)
}
