package morph

import (
	"math"
	"slices"

	"github.com/npillmayer/morph/dict"
)

// backtrace follows the back pointers from node fromIdx of endPosData to the
// last flush point and appends the tokens of that path to the pending stack,
// last token first.
//
// In search mode, a long word on the path is replaced by its cheapest
// decomposition if that stays within the word's penalty. The long word is
// then emitted as an alternate token spanning its parts.
func (t *Tokenizer) backtrace(endPosData *position, fromIdx int) {
	endPos := endPosData.pos
	if endPos == t.lastBackTracePos {
		return
	}
	fragment := t.buffer.slice(t.lastBackTracePos, endPos-t.lastBackTracePos)
	if t.dot != nil {
		t.dot.onBacktrace(t, &t.positions, t.lastBackTracePos, endPosData, fromIdx, fragment, t.end)
	}
	pos := endPos
	bestIdx := fromIdx
	var altToken *Token
	lastLeftWordID := -1
	backCount := 0
	for pos > t.lastBackTracePos {
		posData := t.positions.get(pos)
		assert(bestIdx < posData.count, "back pointer beyond node count")
		backPos := posData.backPos[bestIdx]
		backWordPos := posData.backWordPos[bestIdx]
		assert(backPos >= t.lastBackTracePos, "back pointer before flush point")
		length := pos - backWordPos
		backType := posData.backType[bestIdx]
		backID := posData.backID[bestIdx]
		nextBestIdx := posData.backIndex[bestIdx]

		if t.mode != Normal && altToken == nil && backType != User {
			penalty := t.computePenalty(backPos, pos-backPos)
			if penalty > 0 {
				maxCost := posData.costs[bestIdx] + penalty
				if lastLeftWordID != -1 {
					maxCost += t.costs.Get(t.Dictionary(backType).RightID(backID), lastLeftWordID)
				}
				t.pruneAndRescore(backPos, pos, posData.backIndex[bestIdx])
				leastCost, leastIdx := math.MaxInt, -1
				for i := 0; i < posData.count; i++ {
					cost := posData.costs[i]
					if lastLeftWordID != -1 {
						cost += t.costs.Get(posData.lastRightID[i], lastLeftWordID)
					}
					if cost < leastCost {
						leastCost, leastIdx = cost, i
					}
				}
				if leastIdx != -1 && leastCost <= maxCost && posData.backPos[leastIdx] != backPos {
					altToken = &Token{
						wordID:   backID,
						fragment: fragment,
						offset:   backWordPos - t.lastBackTracePos,
						length:   length,
						typ:      backType,
						position: backWordPos,
						dict:     t.Dictionary(backType),
					}
					bestIdx = leastIdx
					nextBestIdx = posData.backIndex[bestIdx]
					backPos = posData.backPos[bestIdx]
					backWordPos = posData.backWordPos[bestIdx]
					length = pos - backWordPos
					backType = posData.backType[bestIdx]
					backID = posData.backID[bestIdx]
					backCount = 0
				}
			}
		}

		offset := backWordPos - t.lastBackTracePos
		if altToken != nil && altToken.position >= backWordPos {
			// reached the start of the decompounded word
			assert(altToken.position == backWordPos, "decomposition does not align with compound")
			if backCount > 0 {
				backCount++
				altToken.posLen = backCount
				if !t.discardCompoundToken {
					t.pending = append(t.pending, altToken)
				}
			}
			// otherwise all parts were punctuation and have been discarded
			altToken = nil
		}

		d := t.Dictionary(backType)
		switch {
		case backType == User:
			segmentation := t.user.LookupSegmentation(backID)
			first := len(t.pending)
			current := 0
			for j, segLen := range segmentation[1:] {
				t.pending = append(t.pending, &Token{
					wordID:   segmentation[0] + j,
					fragment: fragment,
					offset:   offset + current,
					length:   segLen,
					typ:      User,
					position: backWordPos + current,
					dict:     d,
				})
				current += segLen
			}
			slices.Reverse(t.pending[first:])
			backCount += len(segmentation) - 1
		case t.mode == Extended && backType == Unknown:
			// unknown words become unigrams
			ngramID := t.classWordID(dict.NGRAM)
			for i := length - 1; i >= 0; i-- {
				if t.discardPunctuation && isPunctuation(fragment[offset+i]) {
					continue
				}
				t.pending = append(t.pending, &Token{
					wordID:   ngramID,
					fragment: fragment,
					offset:   offset + i,
					length:   1,
					typ:      Unknown,
					position: backWordPos + i,
					dict:     d,
				})
				backCount++
			}
		case !t.discardPunctuation || length == 0 || !isPunctuation(fragment[offset]):
			t.pending = append(t.pending, &Token{
				wordID:   backID,
				fragment: fragment,
				offset:   offset,
				length:   length,
				typ:      backType,
				position: backWordPos,
				dict:     d,
			})
			backCount++
		}
		if !t.discardPunctuation && backWordPos != backPos {
			// whitespace skipped in front of the word
			t.pending = append(t.pending, &Token{
				wordID:   t.classWordID(dict.SPACE),
				fragment: fragment,
				offset:   backPos - t.lastBackTracePos,
				length:   backWordPos - backPos,
				typ:      Unknown,
				position: backPos,
				dict:     t.unknown.Dictionary(),
			})
			backCount++
		}
		lastLeftWordID = d.LeftID(backID)
		pos = backPos
		bestIdx = nextBestIdx
	}
	t.lastBackTracePos = endPos
	tracer().Debugf("backtrace to offset %d, %d tokens pending", endPos, len(t.pending))
	t.buffer.freeBefore(endPos)
	t.positions.freeBefore(endPos)
}

// pruneAndRescore re-scores the lattice section (startPos, endPos] with
// search-mode penalties. Only arcs starting at or after startPos are kept;
// paths are anchored at node bestStartIdx of startPos.
func (t *Tokenizer) pruneAndRescore(startPos, endPos, bestStartIdx int) {
	for pos := endPos; pos > startPos; pos-- {
		posData := t.positions.get(pos)
		for i := 0; i < posData.count; i++ {
			if backPos := posData.backPos[i]; backPos >= startPos {
				t.positions.get(backPos).addForward(pos, i, posData.backID[i], posData.backType[i])
			}
		}
		posData.count = 0
	}
	for pos := startPos; pos < endPos; pos++ {
		posData := t.positions.get(pos)
		if posData.count == 0 {
			posData.forwardCount = 0
			continue
		}
		if pos == startPos {
			rightID := posData.lastRightID[bestStartIdx]
			pathCost := posData.costs[bestStartIdx]
			for f := 0; f < posData.forwardCount; f++ {
				typ := posData.forwardType[f]
				d := t.Dictionary(typ)
				wordID := posData.forwardID[f]
				toPos := posData.forwardPos[f]
				cost := pathCost + d.WordCost(wordID) + t.costs.Get(rightID, d.LeftID(wordID)) +
					t.computePenalty(pos, toPos-pos)
				t.positions.get(toPos).add(cost, d.RightID(wordID), pos, pos, bestStartIdx, wordID, typ)
			}
		} else {
			for f := 0; f < posData.forwardCount; f++ {
				typ := posData.forwardType[f]
				t.add(t.Dictionary(typ), posData, pos, posData.forwardPos[f], posData.forwardID[f], typ, true)
			}
		}
		posData.forwardCount = 0
	}
}

// classWordID returns the first unknown-dictionary word of a character class,
// used for tokens synthesized from unknown text.
func (t *Tokenizer) classWordID(class byte) int {
	if unk, ok := t.unknown.Dictionary().(*dict.UnknownDictionary); ok {
		if ids := unk.LookupWordIDs(int(class)); len(ids) > 0 {
			return int(ids[0])
		}
	}
	return 0
}
