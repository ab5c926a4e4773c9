package morph

import (
	"unicode"

	"github.com/npillmayer/morph/dict"
)

// maxUnknownWordLength bounds unknown words grouped from a run of characters.
const maxUnknownWordLength = 1024

// RuneSource gives access to the input by character offset. RuneAt returns
// -1 past the end of input.
type RuneSource interface {
	RuneAt(pos int) rune
}

// UnknownWordHandler proposes lattice candidates for text the dictionaries
// do not cover.
type UnknownWordHandler interface {
	// Dictionary holds the entries proposed candidates refer to.
	Dictionary() dict.Dictionary

	// ProcessUnknownWord is called for every reachable offset pos. anyMatches
	// tells if a dictionary word starts at pos. For each candidate, emit is
	// called with its length and word id. The return value is the length of
	// the longest candidate text, even if the dictionary has no entry for it,
	// or 0 if no unknown word is due at pos.
	ProcessUnknownWord(text RuneSource, pos int, anyMatches bool, emit func(length, wordID int)) int
}

// CharClassUnknownWords is the default unknown-word strategy. It proposes an
// unknown word if no dictionary word starts at an offset, or if the first
// character's class is flagged invoke. Words of group classes extend over a
// run of characters sharing the class (and punctuation status); all other
// unknown words are one character long.
type CharClassUnknownWords struct {
	unknown *dict.UnknownDictionary
	charDef *dict.CharacterDefinition
}

// NewCharClassUnknownWords creates the default strategy for an unknown-word
// dictionary.
func NewCharClassUnknownWords(unknown *dict.UnknownDictionary) *CharClassUnknownWords {
	return &CharClassUnknownWords{unknown: unknown, charDef: unknown.CharacterDefinition()}
}

func (u *CharClassUnknownWords) Dictionary() dict.Dictionary {
	return u.unknown
}

func (u *CharClassUnknownWords) ProcessUnknownWord(text RuneSource, pos int, anyMatches bool,
	emit func(length, wordID int)) int {
	first := text.RuneAt(pos)
	if first == eof || (anyMatches && !u.charDef.IsInvoke(first)) {
		return 0
	}
	class := u.charDef.Class(first)
	length := 1
	if u.charDef.IsGroup(first) {
		punct := isPunctuation(first)
		for ahead := pos + 1; length < maxUnknownWordLength; ahead++ {
			ch := text.RuneAt(ahead)
			if ch == eof || u.charDef.Class(ch) != class || isPunctuation(ch) != punct {
				break
			}
			length++
		}
	}
	for _, id := range u.unknown.LookupWordIDs(int(class)) {
		emit(length, int(id))
	}
	return length
}

// punctuationCategories are the Unicode general categories counted as
// punctuation: separators, controls and format characters, punctuation and
// symbols.
var punctuationCategories = []*unicode.RangeTable{
	unicode.Zs, unicode.Zl, unicode.Zp, unicode.Cc, unicode.Cf,
	unicode.Pd, unicode.Ps, unicode.Pe, unicode.Pc, unicode.Po, unicode.Pi, unicode.Pf,
	unicode.Sm, unicode.Sc, unicode.Sk, unicode.So,
}

func isPunctuation(r rune) bool {
	return unicode.IsOneOf(punctuationCategories, r)
}
