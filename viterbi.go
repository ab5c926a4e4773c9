package morph

import (
	"math"
	"unicode"

	"github.com/npillmayer/morph/dict"
	"github.com/pkg/errors"
)

// ErrNoLivePath is returned if no lattice path survives a forced flush of a
// long ambiguous section. It indicates inconsistent dictionary resources.
var ErrNoLivePath = errors.New("morph: no live lattice path")

// maxBacktraceGap is the longest stretch of input kept in the lattice. When
// exceeded, the cheapest path so far is fixed and emitted.
const maxBacktraceGap = 1024

// Search-mode length penalties for decompounding.
const (
	searchModeKanjiLength  = 2
	searchModeKanjiPenalty = 3000
	searchModeOtherLength  = 7
	searchModeOtherPenalty = 1700
)

// forward extends the lattice character by character until tokens are
// pending or the input is exhausted.
func (t *Tokenizer) forward() error {
	for t.buffer.get(t.pos) != eof {
		posData := t.positions.get(t.pos)
		isFrontier := t.positions.nextPos == t.pos+1
		if posData.count == 0 {
			// no path ends here
			t.pos++
			continue
		}
		if t.pos > t.lastBackTracePos && posData.count == 1 && isFrontier {
			// all paths meet in a single node: the path up to here is final
			t.flush(posData, 0, false)
			posData.costs[0] = 0
			if len(t.pending) > 0 {
				return nil
			}
		}
		if t.pos-t.lastBackTracePos >= maxBacktraceGap {
			if err := t.forceFlush(); err != nil {
				return err
			}
			if len(t.pending) > 0 {
				return nil
			}
			continue
		}
		t.expand(posData)
		t.pos++
	}
	t.end = true
	if t.buffer.err != nil {
		return errors.Wrap(t.buffer.err, "cannot read input")
	}
	if t.pos == 0 {
		return nil
	}
	endPosData := t.positions.get(t.pos)
	leastCost, leastIdx := math.MaxInt, -1
	for i := 0; i < endPosData.count; i++ {
		cost := endPosData.costs[i] + t.costs.Get(endPosData.lastRightID[i], 0)
		if cost < leastCost {
			leastCost, leastIdx = cost, i
		}
	}
	if leastIdx < 0 {
		tracer().Infof("no path reaches the end of input at offset %d", t.pos)
		return nil
	}
	t.flush(endPosData, leastIdx, true)
	return nil
}

// flush emits the best path ending in node fromIdx of endPosData, plus the
// near-best alternatives if N-best output is enabled.
func (t *Tokenizer) flush(endPosData *position, fromIdx int, useEOS bool) {
	nbest := t.nbestCost > 0 && endPosData.pos > t.lastBackTracePos
	if nbest {
		t.backtraceNBest(endPosData, useEOS)
	}
	t.backtrace(endPosData, fromIdx)
	if nbest {
		t.fixupPendingList()
	}
}

// forceFlush fixes the cheapest node at or ahead of the current offset and
// emits the path leading there. Every other node in that range is dropped.
func (t *Tokenizer) forceFlush() error {
	var least *position
	leastCost, leastIdx := math.MaxInt, -1
	for pos := t.pos; pos < t.positions.nextPos; pos++ {
		posData := t.positions.get(pos)
		for i := 0; i < posData.count; i++ {
			if posData.costs[i] < leastCost {
				least, leastCost, leastIdx = posData, posData.costs[i], i
			}
		}
	}
	if least == nil {
		return errors.Wrapf(ErrNoLivePath, "forced flush at offset %d", t.pos)
	}
	tracer().Debugf("forced flush at offset %d: best node ends at %d", t.pos, least.pos)
	nbest := t.nbestCost > 0 && least.pos > t.lastBackTracePos
	if nbest {
		t.backtraceNBest(least, false)
	}
	for pos := t.pos; pos < t.positions.nextPos; pos++ {
		if posData := t.positions.get(pos); posData != least {
			posData.reset()
		}
	}
	if leastIdx != 0 {
		least.costs[0] = least.costs[leastIdx]
		least.lastRightID[0] = least.lastRightID[leastIdx]
		least.backPos[0] = least.backPos[leastIdx]
		least.backWordPos[0] = least.backWordPos[leastIdx]
		least.backIndex[0] = least.backIndex[leastIdx]
		least.backID[0] = least.backID[leastIdx]
		least.backType[0] = least.backType[leastIdx]
	}
	least.count = 1
	t.backtrace(least, 0)
	if nbest {
		t.fixupPendingList()
	}
	least.costs[0] = 0
	t.pos = least.pos
	return nil
}

// expand adds all words starting at the current offset to the lattice.
func (t *Tokenizer) expand(posData *position) {
	wordPos := t.pos
	if t.spacePenalty != nil && unicode.Is(unicode.Zs, t.buffer.get(wordPos)) {
		// a single separator becomes a prefix of the following word
		if t.buffer.get(wordPos+1) != eof {
			wordPos++
		}
	}
	anyMatches := false
	if t.user != nil {
		anyMatches = t.matchUser(posData, wordPos)
	}
	if !anyMatches {
		anyMatches = t.matchSystem(posData, wordPos)
	}
	if t.mode == Normal && t.unknownWordEndIndex > posData.pos {
		// covered by an unknown word proposed before
		return
	}
	unk := t.unknown.Dictionary()
	n := t.unknown.ProcessUnknownWord(&t.buffer, wordPos, anyMatches, func(length, wordID int) {
		t.add(unk, posData, wordPos, wordPos+length, wordID, Unknown, false)
	})
	if n > 0 {
		t.unknownWordEndIndex = wordPos + n
	}
}

// matchUser adds the user phrases starting at wordPos.
func (t *Tokenizer) matchUser(posData *position, wordPos int) bool {
	lex := t.user.Lexicon()
	arc := lex.FirstArc()
	var output uint64
	longestEnd, longestOutput := -1, uint64(0)
	for ahead := wordPos; ; ahead++ {
		ch := t.buffer.get(ahead)
		if ch == eof {
			break
		}
		next, ok := lex.FindTargetArc(ch, arc, ahead == wordPos)
		if !ok {
			break
		}
		arc = next
		output += arc.Output
		if arc.Final {
			longestEnd, longestOutput = ahead+1, output+arc.FinalOutput
			if !t.longestUserOnly {
				t.add(t.user, posData, wordPos, longestEnd, int(longestOutput), User, false)
			}
		}
	}
	if longestEnd < 0 {
		return false
	}
	if t.longestUserOnly {
		t.add(t.user, posData, wordPos, longestEnd, int(longestOutput), User, false)
	}
	return true
}

// matchSystem adds the system dictionary words starting at wordPos.
func (t *Tokenizer) matchSystem(posData *position, wordPos int) bool {
	lex := t.system.Lexicon()
	arc := lex.FirstArc()
	var output uint64
	anyMatches := false
	for ahead := wordPos; ; ahead++ {
		ch := t.buffer.get(ahead)
		if ch == eof {
			break
		}
		next, ok := lex.FindTargetArc(ch, arc, ahead == wordPos)
		if !ok {
			break
		}
		arc = next
		output += arc.Output
		if arc.Final {
			for _, wordID := range t.system.LookupWordIDs(int(output + arc.FinalOutput)) {
				t.add(t.system, posData, wordPos, ahead+1, int(wordID), Known, false)
				anyMatches = true
			}
		}
	}
	return anyMatches
}

// add connects a word spanning [wordPos, endPos) to the cheapest path ending
// at from and records the result at endPos.
func (t *Tokenizer) add(d dict.Dictionary, from *position, wordPos, endPos, wordID int, typ TokenType, addPenalty bool) {
	assert(from.count > 0, "word added after a dead position")
	leftID := d.LeftID(wordID)
	leastCost, leastIdx := math.MaxInt, -1
	for i := 0; i < from.count; i++ {
		cost := from.costs[i] + t.costs.Get(from.lastRightID[i], leftID)
		if cost < leastCost {
			leastCost, leastIdx = cost, i
		}
	}
	leastCost += d.WordCost(wordID)
	if wordPos > from.pos && t.spacePenalty != nil {
		leastCost += t.spacePenalty(d, wordID)
	}
	if addPenalty && typ != User {
		leastCost += t.computePenalty(wordPos, endPos-wordPos)
	}
	t.positions.get(endPos).add(leastCost, d.RightID(wordID), from.pos, wordPos, leastIdx, wordID, typ)
}

// computePenalty is the search-mode penalty of a word: long words of
// ideographs, and very long words of any script, are discouraged.
func (t *Tokenizer) computePenalty(pos, length int) int {
	if length <= searchModeKanjiLength {
		return 0
	}
	allKanji := true
	for p := pos; p < pos+length; p++ {
		if !t.charDef.IsKanji(t.buffer.get(p)) {
			allKanji = false
			break
		}
	}
	if allKanji {
		return (length - searchModeKanjiLength) * searchModeKanjiPenalty
	}
	if length > searchModeOtherLength {
		return (length - searchModeOtherLength) * searchModeOtherPenalty
	}
	return 0
}

// SpacePenalty returns an extra cost for a word following whitespace.
type SpacePenalty func(d dict.Dictionary, wordID int) int

// POSSpacePenalty penalizes words after whitespace whose part-of-speech
// starts with one of the given prefixes. This keeps particles and endings,
// which attach to the preceding word, from starting a new word after a
// space.
func POSSpacePenalty(penalty int, prefixes ...string) SpacePenalty {
	return func(d dict.Dictionary, wordID int) int {
		pos := d.PartOfSpeech(wordID)
		for _, p := range prefixes {
			if len(pos) >= len(p) && pos[:len(p)] == p {
				return penalty
			}
		}
		return 0
	}
}
