package dict

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/pkg/errors"
)

// Dictionary gives access to the morphological data of a word id. Surface is
// the text the word was matched against; it is needed to expand data the
// dictionary stores relative to the surface form.
type Dictionary interface {
	LeftID(wordID int) int
	RightID(wordID int) int
	WordCost(wordID int) int
	BaseForm(wordID int, surface []rune) string
	Reading(wordID int, surface []rune) string
	Pronunciation(wordID int, surface []rune) string
	PartOfSpeech(wordID int) string
	InflectionType(wordID int) string
	InflectionForm(wordID int) string
}

// Entry flags, stored in the low bits of the context id short.
const (
	hasBaseForm = 1 << iota
	hasReading
	hasPronunciation
	flagBits = 3
)

// BinaryDictionary is the compact word dictionary: a target map from source
// ids to word ids, a byte buffer of entries and a POS table.
//
// A word id is the byte offset of its entry. Entries are laid out as
//
//	int16  leftID<<3 | flags      (left and right context share the id)
//	int16  word cost
//	[base form]     byte sharedPrefix<<4 | suffixLen, suffix as UTF-16
//	[reading]       byte len<<1 | kana, then len bytes (kana) or UTF-16 units
//	[pronunciation] same as reading
//
// with the bracketed parts present only if the corresponding flag is set.
type BinaryDictionary struct {
	targets *targetMap
	buffer  []byte
	pos     *posTable
}

var _ Dictionary = (*BinaryDictionary)(nil)

// NewBinaryDictionary decodes the target map, the entry buffer and the
// (optional) POS table of a dictionary. The entry buffer is not copied.
func NewBinaryDictionary(targetMapData, dictData, posData []byte) (*BinaryDictionary, error) {
	tm, err := readTargetMap(targetMapData)
	if err != nil {
		return nil, errors.WithMessage(err, "target map")
	}
	in := newDataInput(dictData)
	if _, err := in.checkHeader(dictCodec, formatVersion, formatVersion); err != nil {
		return nil, err
	}
	size := int(in.readVInt())
	buffer := in.readBytes(size)
	if in.err != nil {
		return nil, errors.WithMessage(in.err, "dictionary buffer")
	}
	for _, wordID := range tm.targets {
		if int(wordID)+4 > len(buffer) {
			return nil, errors.Wrapf(ErrCorruptData, "word id %d beyond entry buffer of size %d", wordID, len(buffer))
		}
	}
	d := &BinaryDictionary{targets: tm, buffer: buffer}
	if posData != nil {
		if d.pos, err = readPOSTable(posData); err != nil {
			return nil, err
		}
	}
	tracer().Debugf("binary dictionary: %d sources, %d words, %d bytes", tm.sourceCount(), len(tm.targets), len(buffer))
	return d, nil
}

// LookupWordIDs returns all word ids sharing sourceID, ascending. The result
// must not be modified.
func (d *BinaryDictionary) LookupWordIDs(sourceID int) []int32 {
	return d.targets.lookup(sourceID)
}

// SourceCount returns the number of source ids of the target map.
func (d *BinaryDictionary) SourceCount() int {
	return d.targets.sourceCount()
}

func (d *BinaryDictionary) short(offset int) int {
	return int(binary.BigEndian.Uint16(d.buffer[offset:]))
}

func (d *BinaryDictionary) hasFlag(wordID, flag int) bool {
	return d.short(wordID)&flag != 0
}

func (d *BinaryDictionary) LeftID(wordID int) int {
	return d.short(wordID) >> flagBits
}

func (d *BinaryDictionary) RightID(wordID int) int {
	return d.short(wordID) >> flagBits
}

func (d *BinaryDictionary) WordCost(wordID int) int {
	return int(int16(d.short(wordID + 2)))
}

func (d *BinaryDictionary) BaseForm(wordID int, surface []rune) string {
	if !d.hasFlag(wordID, hasBaseForm) {
		return string(surface)
	}
	offset := wordID + 4
	data := d.buffer[offset]
	prefix := utf16Prefix(surface, int(data>>4))
	return string(prefix) + d.literal(offset+1, int(data&0xF), false)
}

func (d *BinaryDictionary) readingOffset(wordID int) int {
	offset := wordID + 4
	if d.hasFlag(wordID, hasBaseForm) {
		offset += 1 + 2*int(d.buffer[offset]&0xF)
	}
	return offset
}

func (d *BinaryDictionary) pronunciationOffset(wordID int) int {
	offset := d.readingOffset(wordID)
	if d.hasFlag(wordID, hasReading) {
		data := d.buffer[offset]
		if data&1 == 0 {
			offset += 2 * int(data>>1)
		} else {
			offset += int(data >> 1)
		}
		offset++
	}
	return offset
}

func (d *BinaryDictionary) Reading(wordID int, surface []rune) string {
	if !d.hasFlag(wordID, hasReading) {
		return toKatakana(surface)
	}
	offset := d.readingOffset(wordID)
	data := d.buffer[offset]
	return d.literal(offset+1, int(data>>1), data&1 != 0)
}

func (d *BinaryDictionary) Pronunciation(wordID int, surface []rune) string {
	if !d.hasFlag(wordID, hasPronunciation) {
		return d.Reading(wordID, surface)
	}
	offset := d.pronunciationOffset(wordID)
	data := d.buffer[offset]
	return d.literal(offset+1, int(data>>1), data&1 != 0)
}

func (d *BinaryDictionary) PartOfSpeech(wordID int) string {
	return d.pos.get(d.LeftID(wordID), posField)
}

func (d *BinaryDictionary) InflectionType(wordID int) string {
	return d.pos.get(d.LeftID(wordID), inflTypeField)
}

func (d *BinaryDictionary) InflectionForm(wordID int) string {
	return d.pos.get(d.LeftID(wordID), inflFormField)
}

// literal decodes n characters at offset, either as katakana packed into one
// byte each or as big-endian UTF-16 code units.
func (d *BinaryDictionary) literal(offset, n int, kana bool) string {
	if kana {
		r := make([]rune, n)
		for i := range r {
			r[i] = 0x30A0 + rune(d.buffer[offset+i])
		}
		return string(r)
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(d.buffer[offset+2*i:])
	}
	return string(utf16.Decode(units))
}

// utf16Prefix returns the leading runes of s spanning n UTF-16 code units.
func utf16Prefix(s []rune, n int) []rune {
	i := 0
	for units := 0; i < len(s) && units < n; i++ {
		units += utf16.RuneLen(s[i])
	}
	return s[:i]
}

// toKatakana maps hiragana to katakana and keeps everything else.
func toKatakana(s []rune) string {
	r := make([]rune, len(s))
	for i, ch := range s {
		if ch > 0x3040 && ch < 0x3097 {
			ch += 0x60
		}
		r[i] = ch
	}
	return string(r)
}
