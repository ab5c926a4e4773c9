package morph

import (
	"fmt"

	"github.com/npillmayer/morph/dict"
)

// TokenType tells which dictionary a token comes from.
type TokenType uint8

// Token types, in the order used for ranking tokens sharing a span.
const (
	Known TokenType = iota
	Unknown
	User
)

func (t TokenType) String() string {
	switch t {
	case Known:
		return "KNOWN"
	case Unknown:
		return "UNKNOWN"
	case User:
		return "USER"
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Token is a segment of the input together with its dictionary data.
type Token struct {
	wordID   int
	fragment []rune // text of the lattice section the token was found in
	offset   int    // into fragment
	length   int
	typ      TokenType
	position int // character offset in the input
	posInc   int
	posLen   int
	dict     dict.Dictionary
}

// Surface returns the text of the token.
func (t *Token) Surface() string {
	return string(t.surface())
}

func (t *Token) surface() []rune {
	return t.fragment[t.offset : t.offset+t.length]
}

// Start is the character offset of the token in the input.
func (t *Token) Start() int { return t.position }

// End is the character offset following the token.
func (t *Token) End() int { return t.position + t.length }

// Len is the length of the token in characters.
func (t *Token) Len() int { return t.length }

// Type tells which dictionary the token comes from.
func (t *Token) Type() TokenType { return t.typ }

// WordID is the id of the token's entry in its dictionary.
func (t *Token) WordID() int { return t.wordID }

// Dictionary returns the dictionary holding the token's entry.
func (t *Token) Dictionary() dict.Dictionary { return t.dict }

// PositionIncrement is 0 if the token starts at the same position as its
// predecessor and 1 otherwise.
func (t *Token) PositionIncrement() int { return t.posInc }

// PositionLength is the number of positions the token spans in the token
// graph; it is greater than 1 for compounds emitted next to their parts.
func (t *Token) PositionLength() int { return t.posLen }

func (t *Token) BaseForm() string       { return t.dict.BaseForm(t.wordID, t.surface()) }
func (t *Token) Reading() string        { return t.dict.Reading(t.wordID, t.surface()) }
func (t *Token) Pronunciation() string  { return t.dict.Pronunciation(t.wordID, t.surface()) }
func (t *Token) PartOfSpeech() string   { return t.dict.PartOfSpeech(t.wordID) }
func (t *Token) InflectionType() string { return t.dict.InflectionType(t.wordID) }
func (t *Token) InflectionForm() string { return t.dict.InflectionForm(t.wordID) }

func (t *Token) String() string {
	return fmt.Sprintf("Token(%q pos=%d len=%d posLen=%d type=%s wordId=%d leftID=%d)",
		t.Surface(), t.position, t.length, t.posLen, t.typ, t.wordID, t.dict.LeftID(t.wordID))
}
