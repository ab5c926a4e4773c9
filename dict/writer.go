package dict

import (
	"io"
	"unicode/utf16"

	"github.com/pkg/errors"
)

// Entry is the source form of a dictionary word.
type Entry struct {
	Surface        string
	ContextID      int // left and right context id
	Cost           int16
	PartOfSpeech   string
	InflectionType string
	InflectionForm string
	BaseForm       string // empty or "*": same as surface
	Reading        string // empty: surface in katakana
	Pronunciation  string // empty: same as reading
}

// maxContextID is bounded by the bits left over next to the entry flags.
const maxContextID = 1<<(16-flagBits) - 1

// BinaryDictionaryWriter assembles the resources of a BinaryDictionary.
// Entries are appended with Put; AddMapping then associates the returned word
// ids with source ids, which must be presented in ascending order.
type BinaryDictionaryWriter struct {
	buffer  dataOutput
	targets targetMapBuilder
	pos     [][3]string // by context id
	posSet  []bool
}

// NewBinaryDictionaryWriter creates an empty dictionary writer.
func NewBinaryDictionaryWriter() *BinaryDictionaryWriter {
	return &BinaryDictionaryWriter{}
}

// Put appends an entry and returns its word id.
func (w *BinaryDictionaryWriter) Put(e Entry) (int, error) {
	if e.ContextID < 0 || e.ContextID > maxContextID {
		return 0, errors.Wrapf(ErrIllegalEntry, "%q: context id %d out of range", e.Surface, e.ContextID)
	}
	if e.PartOfSpeech == "" {
		return 0, errors.Wrapf(ErrIllegalEntry, "%q: POS is empty", e.Surface)
	}
	surface := []rune(e.Surface)
	reading := e.Reading
	if reading == "" {
		reading = toKatakana(surface)
	}
	pronunciation := e.Pronunciation
	if pronunciation == "" {
		pronunciation = reading
	}
	flags := 0
	if e.BaseForm != "" && e.BaseForm != "*" && e.BaseForm != e.Surface {
		flags |= hasBaseForm
	}
	if reading != toKatakana(surface) {
		flags |= hasReading
	}
	if pronunciation != reading {
		flags |= hasPronunciation
	}
	if err := w.putPOS(e); err != nil {
		return 0, err
	}
	wordID := w.buffer.Len()
	w.buffer.writeInt16(int16(e.ContextID<<flagBits | flags))
	w.buffer.writeInt16(e.Cost)
	if flags&hasBaseForm != 0 {
		base := utf16.Encode([]rune(e.BaseForm))
		shared := sharedPrefix(utf16.Encode(surface), base)
		if shared > 0xF || len(base)-shared > 0xF {
			return 0, errors.Wrapf(ErrIllegalEntry, "%q: base form %q too long", e.Surface, e.BaseForm)
		}
		w.buffer.WriteByte(byte(shared<<4 | (len(base) - shared)))
		for _, u := range base[shared:] {
			w.buffer.writeInt16(int16(u))
		}
	}
	if flags&hasReading != 0 {
		if err := w.putLiteral(reading); err != nil {
			return 0, errors.WithMessagef(err, "%q: reading", e.Surface)
		}
	}
	if flags&hasPronunciation != 0 {
		if err := w.putLiteral(pronunciation); err != nil {
			return 0, errors.WithMessagef(err, "%q: pronunciation", e.Surface)
		}
	}
	return wordID, nil
}

func (w *BinaryDictionaryWriter) putPOS(e Entry) error {
	id := e.ContextID
	for len(w.pos) <= id {
		w.pos = append(w.pos, [3]string{})
		w.posSet = append(w.posSet, false)
	}
	pos := [3]string{e.PartOfSpeech, e.InflectionType, e.InflectionForm}
	if w.posSet[id] && w.pos[id] != pos {
		return errors.Wrapf(ErrIllegalEntry, "%q: context id %d already bound to POS %v", e.Surface, id, w.pos[id])
	}
	w.pos[id], w.posSet[id] = pos, true
	return nil
}

// putLiteral writes a reading or pronunciation, packing pure katakana into one
// byte per character.
func (w *BinaryDictionaryWriter) putLiteral(s string) error {
	runes := []rune(s)
	if isKatakana(runes) {
		if len(runes) > 0x7F {
			return errors.Wrapf(ErrIllegalEntry, "literal %q too long", s)
		}
		w.buffer.WriteByte(byte(len(runes)<<1 | 1))
		for _, r := range runes {
			w.buffer.WriteByte(byte(r - 0x30A0))
		}
		return nil
	}
	units := utf16.Encode(runes)
	if len(units) > 0x7F {
		return errors.Wrapf(ErrIllegalEntry, "literal %q too long", s)
	}
	w.buffer.WriteByte(byte(len(units) << 1))
	for _, u := range units {
		w.buffer.writeInt16(int16(u))
	}
	return nil
}

// AddMapping appends wordID to the word ids of sourceID.
func (w *BinaryDictionaryWriter) AddMapping(sourceID, wordID int) error {
	return w.targets.put(sourceID, wordID)
}

// WriteTargetMap writes the target map resource.
func (w *BinaryDictionaryWriter) WriteTargetMap(out io.Writer) error {
	return w.targets.writeTo(out)
}

// WriteDictionary writes the entry buffer resource.
func (w *BinaryDictionaryWriter) WriteDictionary(out io.Writer) error {
	var o dataOutput
	o.writeHeader(dictCodec, formatVersion)
	o.writeVInt(int32(w.buffer.Len()))
	o.Write(w.buffer.Bytes())
	return o.flushTo(out)
}

// WritePOSDict writes the POS table resource.
func (w *BinaryDictionaryWriter) WritePOSDict(out io.Writer) error {
	var o dataOutput
	o.writeHeader(posDictCodec, formatVersion)
	o.writeVInt(int32(len(w.pos)))
	for _, p := range w.pos {
		for _, s := range p {
			o.writeString(s)
		}
	}
	return o.flushTo(out)
}

func isKatakana(s []rune) bool {
	for _, r := range s {
		if r < 0x30A0 || r > 0x30FF {
			return false
		}
	}
	return true
}

func sharedPrefix(a, b []uint16) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
