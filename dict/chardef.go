package dict

import (
	"io"
	"unicode"

	"github.com/pkg/errors"
)

// Character classes. The numbering is part of the resource format.
const (
	NGRAM byte = iota
	DEFAULT
	SPACE
	SYMBOL
	NUMERIC
	ALPHA
	CYRILLIC
	GREEK
	HIRAGANA
	KATAKANA
	KANJI
	KANJINUMERIC
	ClassCount = int(iota)
)

var classNames = [ClassCount]string{
	"NGRAM", "DEFAULT", "SPACE", "SYMBOL", "NUMERIC", "ALPHA",
	"CYRILLIC", "GREEK", "HIRAGANA", "KATAKANA", "KANJI", "KANJINUMERIC",
}

// LookupCharacterClass returns the class id for a class name as used in
// character definition sources ("KANJI", "ALPHA", ...).
func LookupCharacterClass(name string) (byte, bool) {
	for i, n := range classNames {
		if n == name {
			return byte(i), true
		}
	}
	return 0, false
}

// ClassName returns the name of a character class.
func ClassName(class byte) string {
	if int(class) >= ClassCount {
		return "?"
	}
	return classNames[class]
}

const (
	invokeFlag = 1 << iota
	groupFlag
)

// CharacterDefinition assigns a character class to every BMP code unit and
// carries the unknown-word flags of each class:
//
//   - invoke: always propose unknown words starting with such a character,
//     even if known words start there, too.
//   - group: unknown words extend over a run of characters of the same class.
//
// Code points outside the BMP belong to class DEFAULT.
type CharacterDefinition struct {
	classes *pagedClassMap
	flags   [ClassCount]byte
}

// NewCharacterDefinition decodes a character-definition resource: a header,
// 0x10000 class bytes and one flag byte per class.
func NewCharacterDefinition(data []byte) (*CharacterDefinition, error) {
	in := newDataInput(data)
	if _, err := in.checkHeader(charDefCodec, formatVersion, formatVersion); err != nil {
		return nil, err
	}
	dense := in.readBytes(0x10000)
	flags := in.readBytes(ClassCount)
	if in.err != nil {
		return nil, in.err
	}
	for i, c := range dense {
		if int(c) >= ClassCount {
			return nil, errors.Wrapf(ErrCorruptData, "character class %d of U+%04X out of range", c, i)
		}
	}
	cd := &CharacterDefinition{classes: newPagedClassMap(dense)}
	copy(cd.flags[:], flags)
	tracer().Debugf("character definition uses %d class pages", cd.classes.numPages())
	return cd, nil
}

// Class returns the character class of r.
func (cd *CharacterDefinition) Class(r rune) byte {
	if r < 0 || r > 0xFFFF {
		return DEFAULT
	}
	return cd.classes.class(uint16(r))
}

// IsInvoke reports if unknown words are always proposed for r.
func (cd *CharacterDefinition) IsInvoke(r rune) bool {
	return cd.flags[cd.Class(r)]&invokeFlag != 0
}

// IsGroup reports if unknown words starting with r extend over runs of the
// same class.
func (cd *CharacterDefinition) IsGroup(r rune) bool {
	return cd.flags[cd.Class(r)]&groupFlag != 0
}

// IsKanji reports if r is an ideograph (including ideographic numerals).
func (cd *CharacterDefinition) IsKanji(r rune) bool {
	c := cd.Class(r)
	return c == KANJI || c == KANJINUMERIC
}

// CharacterDefinitionWriter assembles a character-definition resource.
// Every code unit starts out as DEFAULT.
type CharacterDefinitionWriter struct {
	classes [0x10000]byte
	flags   [ClassCount]byte
}

// NewCharacterDefinitionWriter creates a writer with all code units mapped
// to DEFAULT and all flags cleared.
func NewCharacterDefinitionWriter() *CharacterDefinitionWriter {
	w := &CharacterDefinitionWriter{}
	for i := range w.classes {
		w.classes[i] = DEFAULT
	}
	return w
}

// PutRange assigns class to all BMP code units in [from, to].
func (w *CharacterDefinitionWriter) PutRange(from, to rune, class byte) {
	assert(int(class) < ClassCount, "character class out of range")
	for r := max(from, 0); r <= to && r <= 0xFFFF; r++ {
		w.classes[r] = class
	}
}

// PutTable assigns class to every BMP code unit in a Unicode range table.
func (w *CharacterDefinitionWriter) PutTable(table *unicode.RangeTable, class byte) {
	for _, r16 := range table.R16 {
		for r := rune(r16.Lo); r <= rune(r16.Hi); r += rune(r16.Stride) {
			w.classes[r] = class
		}
	}
}

// PutFlags sets the unknown-word flags of a class.
func (w *CharacterDefinitionWriter) PutFlags(class byte, invoke, group bool) {
	var f byte
	if invoke {
		f |= invokeFlag
	}
	if group {
		f |= groupFlag
	}
	w.flags[class] = f
}

// WriteTo serializes the character definition.
func (w *CharacterDefinitionWriter) WriteTo(out io.Writer) (int64, error) {
	var o dataOutput
	o.writeHeader(charDefCodec, formatVersion)
	o.Write(w.classes[:])
	o.Write(w.flags[:])
	return o.WriteTo(out)
}
